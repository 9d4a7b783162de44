package bot

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"coinbank/models"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	accountID := interactionUserID(i)

	balance, err := b.ledgerService.GetBalance(ctx, accountID)
	if err != nil {
		log.Errorf("Error getting balance for %s: %v", accountID, err)
		b.respondWithError(s, i, userMessage(err))
		return
	}

	b.respond(s, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "💰 Balance",
			Description: fmt.Sprintf("You have **%s coins**.", FormatBalance(balance)),
			Color:       0x5865F2,
		}},
	})
}

func (b *Bot) handleDaily(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	accountID := interactionUserID(i)

	result, err := b.dailyService.Claim(ctx, accountID)
	if err != nil {
		b.respondWithError(s, i, userMessage(err))
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🎁 Daily Reward",
		Description: fmt.Sprintf("You claimed **%s coins**!", FormatBalance(result.Amount)),
		Color:       0x57F287,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🔥 Streak", Value: fmt.Sprintf("%d days", result.Streak), Inline: true},
			{Name: "🏦 New Balance", Value: fmt.Sprintf("%s coins", FormatBalance(result.NewBalance)), Inline: true},
		},
	}
	if result.Streak >= 7 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "🎉 Bonus", Value: "7-day streak bonus!",
		})
	} else if result.Streak >= 3 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "🎉 Bonus", Value: "3-day streak bonus!",
		})
	}

	b.respond(s, i, &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}})
}

func (b *Bot) handleWork(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	accountID := interactionUserID(i)

	result, err := b.workService.Work(ctx, accountID)
	if err != nil {
		b.respondWithError(s, i, userMessage(err))
		return
	}

	b.respond(s, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "💼 Work Complete!",
			Description: fmt.Sprintf("You worked as a **%s** and earned **%s coins**!", result.JobName, FormatBalance(result.Amount)),
			Color:       0x57F287,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "🔥 Work Streak", Value: fmt.Sprintf("%d", result.Streak), Inline: true},
				{Name: "🏦 New Balance", Value: fmt.Sprintf("%s coins", FormatBalance(result.NewBalance)), Inline: true},
			},
		}},
	})
}

func (b *Bot) handleDonate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	accountID := interactionUserID(i)

	var recipientID string
	var amount int64
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "user":
			recipientID = opt.UserValue(nil).ID
		case "amount":
			amount = opt.IntValue()
		}
	}

	result, err := b.ledgerService.Transfer(ctx, accountID, recipientID, amount)
	if err != nil {
		b.respondWithError(s, i, userMessage(err))
		return
	}

	b.respond(s, i, &discordgo.InteractionResponseData{
		Content: fmt.Sprintf("✅ Sent **%s coins** to <@%s>. Your balance: **%s coins**.",
			FormatBalance(amount), recipientID, FormatBalance(result.Sent.BalanceAfter)),
	})
}

func (b *Bot) handleHistory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	accountID := interactionUserID(i)

	limit := 10
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "limit" {
			limit = int(opt.IntValue())
		}
	}

	history, err := b.ledgerService.History(ctx, accountID, limit)
	if err != nil {
		log.Errorf("Error getting history for %s: %v", accountID, err)
		b.respondWithError(s, i, userMessage(err))
		return
	}
	if len(history) == 0 {
		b.respond(s, i, &discordgo.InteractionResponseData{
			Content: "No transactions yet.",
			Flags:   discordgo.MessageFlagsEphemeral,
		})
		return
	}

	var lines []string
	for _, tx := range history {
		sign := "+"
		if tx.Amount < 0 {
			sign = ""
		}
		lines = append(lines, fmt.Sprintf("`%s` %s — %s%s → %s coins",
			tx.CreatedAt.Format("Jan 02 15:04"),
			describeTransaction(tx),
			sign, FormatBalance(tx.Amount),
			FormatBalance(tx.BalanceAfter)))
	}

	b.respond(s, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "📜 Transaction History",
			Description: strings.Join(lines, "\n"),
			Color:       0x5865F2,
		}},
		Flags: discordgo.MessageFlagsEphemeral,
	})
}

func (b *Bot) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	accounts, err := b.ledgerService.TopBalances(ctx, 10)
	if err != nil {
		log.Errorf("Error getting leaderboard: %v", err)
		b.respondWithError(s, i, userMessage(err))
		return
	}

	var lines []string
	for rank, account := range accounts {
		lines = append(lines, fmt.Sprintf("**%d.** <@%s> — %s coins", rank+1, account.ID, FormatBalance(account.Balance)))
	}
	if len(lines) == 0 {
		lines = append(lines, "Nobody has any coins yet.")
	}

	b.respond(s, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "🏆 Richest Players",
			Description: strings.Join(lines, "\n"),
			Color:       0xFEE75C,
		}},
	})
}

func (b *Bot) handleBan(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	var targetID string
	var banned bool
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "user":
			targetID = opt.UserValue(nil).ID
		case "banned":
			banned = opt.BoolValue()
		}
	}

	if err := b.ledgerService.SetBanned(ctx, targetID, banned); err != nil {
		log.Errorf("Error setting ban flag for %s: %v", targetID, err)
		b.respondWithError(s, i, userMessage(err))
		return
	}

	verb := "unbanned"
	if banned {
		verb = "banned"
	}
	b.respond(s, i, &discordgo.InteractionResponseData{
		Content: fmt.Sprintf("✅ <@%s> has been %s from the economy.", targetID, verb),
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}

func describeTransaction(tx *models.Transaction) string {
	switch tx.Type {
	case models.TransactionTypeDailyReward:
		return "Daily reward"
	case models.TransactionTypeWork:
		return "Work"
	case models.TransactionTypeGambleWin:
		return "Gamble win"
	case models.TransactionTypeGambleLoss:
		return "Gamble loss"
	case models.TransactionTypeTransferSent:
		return "Transfer sent"
	case models.TransactionTypeTransferReceived:
		return "Transfer received"
	case models.TransactionTypeDebit:
		return "Debit"
	default:
		return "Credit"
	}
}
