package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "balance",
			Description: "Check your current balance",
		},
		{
			Name:        "daily",
			Description: "Claim your daily reward",
		},
		{
			Name:        "work",
			Description: "Work a job for coins (1 hour cooldown)",
		},
		{
			Name:        "gamble",
			Description: "Bet coins on a coin flip",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "amount",
					Description: "Amount to bet: a number, 'all', or formats like '1k' or '1.5k'",
					Required:    true,
				},
			},
		},
		{
			Name:        "donate",
			Description: "Transfer coins to another player",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to donate to",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Amount to donate in coins",
					Required:    true,
				},
			},
		},
		{
			Name:        "history",
			Description: "Show your most recent transactions",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "limit",
					Description: "Number of entries to show (default 10)",
					Required:    false,
				},
			},
		},
		{
			Name:        "leaderboard",
			Description: "Show the richest players",
		},
		{
			Name:                     "ban",
			Description:              "Ban or unban an account from the economy",
			DefaultMemberPermissions: int64Ptr(int64(discordgo.PermissionModerateMembers)),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to ban or unban",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "banned",
					Description: "true to ban, false to unban",
					Required:    true,
				},
			},
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create command %s: %w", cmd.Name, err)
		}
	}

	return nil
}

// handleCommands dispatches slash commands to their handlers
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "balance":
		b.handleBalance(s, i)
	case "daily":
		b.handleDaily(s, i)
	case "work":
		b.handleWork(s, i)
	case "gamble":
		b.handleGamble(s, i)
	case "donate":
		b.handleDonate(s, i)
	case "history":
		b.handleHistory(s, i)
	case "leaderboard":
		b.handleLeaderboard(s, i)
	case "ban":
		b.handleBan(s, i)
	}
}

func int64Ptr(v int64) *int64 {
	return &v
}
