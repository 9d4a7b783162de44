package models

import (
	"time"
)

// Account represents a ledger-tracked identity with a coin balance
// and the metadata needed for cooldown and streak decisions.
type Account struct {
	ID                string     `db:"id"`
	Balance           int64      `db:"balance"`
	LastDailyClaim    *time.Time `db:"last_daily_claim"`
	DailyStreak       int        `db:"daily_streak"`
	LastWorkTime      *time.Time `db:"last_work_time"`
	WorkStreak        int        `db:"work_streak"`
	TotalWorkSessions int64      `db:"total_work_sessions"`
	TotalCommandsUsed int64      `db:"total_commands_used"`
	IsBanned          bool       `db:"is_banned"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}
