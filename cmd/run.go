package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"coinbank/bot"
	"coinbank/config"
	"coinbank/database"
	"coinbank/events"
	"coinbank/repository"
	"coinbank/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting coinbank bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	log.Println("Initializing event bus...")
	eventBus := events.NewBus()

	// Initialize repositories and unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	accountRepo := repository.NewAccountRepository(db)
	ledgerRepo := repository.NewTransactionLogRepository(db)
	cooldownRepo := repository.NewCooldownRepository(db)

	// Initialize services
	log.Println("Initializing services...")
	svcConfig := service.FromAppConfig(cfg)
	clock := service.NewClock()
	ledgerService := service.NewLedgerService(uowFactory, accountRepo, ledgerRepo, svcConfig)
	dailyService := service.NewDailyService(uowFactory, accountRepo, cooldownRepo, clock, svcConfig)
	workService := service.NewWorkService(uowFactory, accountRepo, cooldownRepo, clock, svcConfig)
	gamblingService := service.NewGamblingService(uowFactory, accountRepo, cooldownRepo, clock, svcConfig)
	log.Println("Services initialized successfully")

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:   cfg.DiscordToken,
		GuildID: cfg.DiscordGuildID,
	}
	discordBot, err := bot.New(botConfig, ledgerService, dailyService, workService, gamblingService, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")

	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
