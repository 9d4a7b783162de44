package bot

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"coinbank/models"

	"github.com/bwmarrin/discordgo"
)

const (
	betConfirmPrefix = "bet_confirm_"
	betCancelPrefix  = "bet_cancel_"
)

// handleGamble runs the two-phase bet flow. Low-stakes bets are
// confirmed immediately; high-stakes bets get confirm/cancel buttons
// that share the pending bet's expiry window.
func (b *Bot) handleGamble(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	accountID := interactionUserID(i)

	var rawAmount string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "amount" {
			rawAmount = opt.StringValue()
		}
	}

	bet, err := b.gamblingService.ProposeBet(ctx, accountID, rawAmount)
	if err != nil {
		b.respondWithError(s, i, userMessage(err))
		return
	}

	if bet.RequiresConfirmation {
		percent := float64(bet.Amount) / float64(bet.BalanceAtProposal) * 100
		description := fmt.Sprintf("You're betting **%s coins** (%.1f%% of your balance)!", FormatBalance(bet.Amount), percent)
		if bet.CappedFromAll {
			description = fmt.Sprintf("Maximum bet is %s coins, betting that instead.\n%s",
				FormatBalance(bet.Amount), description)
		}

		b.respond(s, i, &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{{
				Title:       "⚠️ High-Stakes Bet",
				Description: description,
				Color:       0xFEE75C,
			}},
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							Label:    "Confirm",
							Style:    discordgo.SuccessButton,
							CustomID: betConfirmPrefix + bet.Token,
						},
						discordgo.Button{
							Label:    "Cancel",
							Style:    discordgo.DangerButton,
							CustomID: betCancelPrefix + bet.Token,
						},
					},
				},
			},
		})
		return
	}

	result, err := b.gamblingService.ConfirmBet(ctx, bet.Token)
	if err != nil {
		b.respondWithError(s, i, userMessage(err))
		return
	}

	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{buildBetResultEmbed(result)},
	}
	if bet.CappedFromAll {
		data.Content = fmt.Sprintf("⚠️ Maximum bet is %s coins, bet that instead.", FormatBalance(bet.Amount))
	}
	b.respond(s, i, data)
}

// handleBetInteraction reacts to the confirm/cancel buttons
func (b *Bot) handleBetInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	customID := i.MessageComponentData().CustomID

	switch {
	case strings.HasPrefix(customID, betConfirmPrefix):
		token := strings.TrimPrefix(customID, betConfirmPrefix)
		result, err := b.gamblingService.ConfirmBet(context.Background(), token)
		if err != nil {
			b.respondWithError(s, i, userMessage(err))
			return
		}
		b.respond(s, i, &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{buildBetResultEmbed(result)},
		})

	case strings.HasPrefix(customID, betCancelPrefix):
		token := strings.TrimPrefix(customID, betCancelPrefix)
		b.gamblingService.CancelBet(token)
		b.respond(s, i, &discordgo.InteractionResponseData{
			Content: "❌ Bet cancelled.",
			Flags:   discordgo.MessageFlagsEphemeral,
		})

	default:
		log.Debugf("Unhandled component interaction: %s", customID)
	}
}

func buildBetResultEmbed(result *models.BetResult) *discordgo.MessageEmbed {
	if result.Won {
		return &discordgo.MessageEmbed{
			Title:       "🎉 You Won!",
			Description: fmt.Sprintf("You bet **%s coins** and won **%s coins**!", FormatBalance(result.BetAmount), FormatBalance(result.Payout)),
			Color:       0x57F287,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "💰 Profit", Value: fmt.Sprintf("+%s coins", FormatBalance(result.Payout-result.BetAmount)), Inline: true},
				{Name: "🏦 New Balance", Value: fmt.Sprintf("%s coins", FormatBalance(result.NewBalance)), Inline: true},
			},
		}
	}
	return &discordgo.MessageEmbed{
		Title:       "💸 You Lost!",
		Description: fmt.Sprintf("You bet **%s coins** and lost them all!", FormatBalance(result.BetAmount)),
		Color:       0xED4245,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💸 Loss", Value: fmt.Sprintf("-%s coins", FormatBalance(result.BetAmount)), Inline: true},
			{Name: "🏦 New Balance", Value: fmt.Sprintf("%s coins", FormatBalance(result.NewBalance)), Inline: true},
		},
	}
}
