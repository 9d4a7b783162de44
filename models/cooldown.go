package models

import "time"

// ActionType identifies a cooldown-gated action
type ActionType string

const (
	ActionDaily  ActionType = "daily"
	ActionWork   ActionType = "work"
	ActionGamble ActionType = "gamble"
)

// Cooldown records when an account may next attempt a gated action
type Cooldown struct {
	AccountID   string     `db:"account_id"`
	ActionType  ActionType `db:"action_type"`
	AvailableAt time.Time  `db:"available_at"`
}
