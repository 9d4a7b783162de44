package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"coinbank/service"

	"github.com/bwmarrin/discordgo"
)

// FormatBalance formats a coin amount with thousand separators
func FormatBalance(balance int64) string {
	str := fmt.Sprintf("%d", balance)
	negative := strings.HasPrefix(str, "-")
	if negative {
		str = str[1:]
	}

	n := len(str)
	if n > 3 {
		var result strings.Builder
		for i, digit := range str {
			if i > 0 && (n-i)%3 == 0 {
				result.WriteRune(',')
			}
			result.WriteRune(digit)
		}
		str = result.String()
	}

	if negative {
		return "-" + str
	}
	return str
}

// FormatDuration renders a wait like "1h 23m 45s", dropping zero units
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return "a moment"
	}

	d = d.Round(time.Second)
	hours := int64(d / time.Hour)
	minutes := int64(d % time.Hour / time.Minute)
	seconds := int64(d % time.Minute / time.Second)

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 && hours == 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	return strings.Join(parts, " ")
}

// userMessage maps a service error to a message safe to show the user.
// Internal details never leak; unknown errors render generically.
func userMessage(err error) string {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}

	var insufficientErr *service.InsufficientFundsError
	if errors.As(err, &insufficientErr) {
		return fmt.Sprintf("You don't have enough coins! You have %s, need %s.",
			FormatBalance(insufficientErr.Balance), FormatBalance(insufficientErr.Needed))
	}

	var cooldownErr *service.CooldownActiveError
	if errors.As(err, &cooldownErr) {
		return fmt.Sprintf("Slow down! Try again in %s.", FormatDuration(cooldownErr.Remaining))
	}

	var bannedErr *service.BannedAccountError
	if errors.As(err, &bannedErr) {
		return "You can't use economy commands right now."
	}

	if errors.Is(err, service.ErrBetNotFound) || errors.Is(err, service.ErrBetExpired) {
		return "That bet is no longer pending."
	}

	return "Something went wrong. Please try again."
}

// interactionUserID resolves the acting user's id for guild and DM interactions
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func (b *Bot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, data *discordgo.InteractionResponseData) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		log.Errorf("Error responding to interaction: %v", err)
	}
}

func (b *Bot) respondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	b.respond(s, i, &discordgo.InteractionResponseData{
		Content: fmt.Sprintf("❌ %s", message),
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}
