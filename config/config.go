package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string
	DiscordGuildID string

	// Database configuration
	DatabaseURL string

	// Economy configuration
	StartingBalance int64 // Balance assigned on first reference to an account
	MinBet          int64 // Smallest accepted bet
	MaxBet          int64 // Largest accepted bet ("all" is capped to this)
	WinProbability  float64

	// Cooldown windows, in seconds
	DailyCooldownSeconds  int64
	WorkCooldownSeconds   int64
	GambleCooldownSeconds int64

	// Streak tuning, in seconds
	StreakResetSeconds  int64 // Gap after which a streak falls back to 1
	StreakMinGapSeconds int64 // Gap below which a claim is treated as replayed

	// Seconds before an unconfirmed high-stakes bet expires
	BetConfirmTimeoutSeconds int64

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Discord
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),

		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Economy defaults
		StartingBalance: 1000,
		MinBet:          10,
		MaxBet:          10000,
		WinProbability:  0.44,

		DailyCooldownSeconds:  24 * 3600,
		WorkCooldownSeconds:   3600,
		GambleCooldownSeconds: 10,

		StreakResetSeconds:  25 * 3600, // one hour of slack past the daily window
		StreakMinGapSeconds: 3600,

		BetConfirmTimeoutSeconds: 30,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsedBalance, err := strconv.ParseInt(balance, 10, 64); err == nil {
			config.StartingBalance = parsedBalance
		}
	}
	if maxBet := os.Getenv("MAX_BET"); maxBet != "" {
		if parsedMaxBet, err := strconv.ParseInt(maxBet, 10, 64); err == nil {
			config.MaxBet = parsedMaxBet
		}
	}
	if winProb := os.Getenv("WIN_PROBABILITY"); winProb != "" {
		if parsedProb, err := strconv.ParseFloat(winProb, 64); err == nil && parsedProb > 0 && parsedProb < 0.5 {
			config.WinProbability = parsedProb
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
