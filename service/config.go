package service

import (
	"time"

	appconfig "coinbank/config"
)

// Config carries the gameplay tunables the services need. It is built
// once at wiring time so services never read global configuration.
type Config struct {
	StartingBalance int64
	MinBet          int64
	MaxBet          int64
	WinProbability  float64

	DailyCooldown  time.Duration
	WorkCooldown   time.Duration
	GambleCooldown time.Duration

	StreakReset  time.Duration
	StreakMinGap time.Duration

	BetConfirmTimeout time.Duration
}

// FromAppConfig converts the environment-backed configuration into
// service tunables.
func FromAppConfig(cfg *appconfig.Config) Config {
	return Config{
		StartingBalance:   cfg.StartingBalance,
		MinBet:            cfg.MinBet,
		MaxBet:            cfg.MaxBet,
		WinProbability:    cfg.WinProbability,
		DailyCooldown:     time.Duration(cfg.DailyCooldownSeconds) * time.Second,
		WorkCooldown:      time.Duration(cfg.WorkCooldownSeconds) * time.Second,
		GambleCooldown:    time.Duration(cfg.GambleCooldownSeconds) * time.Second,
		StreakReset:       time.Duration(cfg.StreakResetSeconds) * time.Second,
		StreakMinGap:      time.Duration(cfg.StreakMinGapSeconds) * time.Second,
		BetConfirmTimeout: time.Duration(cfg.BetConfirmTimeoutSeconds) * time.Second,
	}
}
