package bot

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"coinbank/events"
	"coinbank/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string
}

type Bot struct {
	config          Config
	session         *discordgo.Session
	ledgerService   service.LedgerService
	dailyService    service.DailyService
	workService     service.WorkService
	gamblingService service.GamblingService
	eventBus        *events.Bus
}

func New(config Config, ledgerService service.LedgerService, dailyService service.DailyService, workService service.WorkService, gamblingService service.GamblingService, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	bot := &Bot{
		config:          config,
		session:         dg,
		ledgerService:   ledgerService,
		dailyService:    dailyService,
		workService:     workService,
		gamblingService: gamblingService,
		eventBus:        eventBus,
	}

	// Register slash command and component handlers
	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleBetInteraction)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	// Observability taps on the committed-event bus
	eventBus.Subscribe(events.EventTypeBetResolved, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.BetResolvedEvent); ok {
			log.WithFields(log.Fields{
				"accountId": e.AccountID,
				"amount":    e.Amount,
				"won":       e.Won,
				"payout":    e.Payout,
			}).Info("Bet resolved")
		}
	})
	eventBus.Subscribe(events.EventTypeAccountCreated, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.AccountCreatedEvent); ok {
			log.WithFields(log.Fields{
				"accountId":      e.AccountID,
				"initialBalance": e.InitialBalance,
			}).Info("Account created")
		}
	})

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}
