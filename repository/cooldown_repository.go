package repository

import (
	"context"
	"fmt"
	"time"

	"coinbank/database"
	"coinbank/models"

	"github.com/jackc/pgx/v5"
)

// CooldownRepository implements the service.CooldownRepository
// interface. It runs directly against the pool rather than inside a
// unit of work: a reservation must commit immediately so it survives
// even when the gated action's settlement later fails (cooldown is
// consumed on attempt, not on success).
type CooldownRepository struct {
	db *database.DB
}

// NewCooldownRepository creates a new cooldown repository
func NewCooldownRepository(db *database.DB) *CooldownRepository {
	return &CooldownRepository{db: db}
}

// CheckAndReserve atomically reserves the window for (account, action).
// The reservation is a single upsert whose WHERE clause only fires when
// the previous window has elapsed, so two concurrent calls cannot both
// observe allowed.
func (r *CooldownRepository) CheckAndReserve(ctx context.Context, accountID string, action models.ActionType, window time.Duration, now time.Time) (bool, time.Duration, error) {
	reserve := `
		INSERT INTO cooldowns (account_id, action_type, available_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, action_type) DO UPDATE
		SET available_at = EXCLUDED.available_at
		WHERE cooldowns.available_at <= $4
	`

	tag, err := r.db.Exec(ctx, reserve, accountID, action, now.Add(window), now)
	if err != nil {
		return false, 0, fmt.Errorf("failed to reserve cooldown for %s/%s: %w", accountID, action, err)
	}
	if tag.RowsAffected() == 1 {
		return true, 0, nil
	}

	// Rejected: report how long the caller still has to wait
	var availableAt time.Time
	err = r.db.QueryRow(ctx,
		`SELECT available_at FROM cooldowns WHERE account_id = $1 AND action_type = $2`,
		accountID, action,
	).Scan(&availableAt)
	if err == pgx.ErrNoRows {
		// Row vanished between statements; treat as still cooling down
		// for the full window rather than handing out a second success.
		return false, window, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("failed to read cooldown for %s/%s: %w", accountID, action, err)
	}

	remaining := availableAt.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return false, remaining, nil
}
