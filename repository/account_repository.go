package repository

import (
	"context"
	"fmt"

	"coinbank/database"
	"coinbank/models"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `
	id, balance, last_daily_claim, daily_streak, last_work_time,
	work_streak, total_work_sessions, total_commands_used, is_banned,
	created_at, updated_at`

// AccountRepository implements the service.AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a pool-backed account repository for
// read paths; writes go through the unit of work.
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates an account repository bound to a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

// Get retrieves an account by id, or nil if it does not exist
func (r *AccountRepository) Get(ctx context.Context, accountID string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, accountID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", accountID, err)
	}
	return account, nil
}

// GetOrCreateForUpdate locks the account row for the duration of the
// surrounding transaction. Accounts are created lazily on first
// reference with the given initial balance.
func (r *AccountRepository) GetOrCreateForUpdate(ctx context.Context, accountID string, initialBalance int64) (*models.Account, bool, error) {
	insert := `
		INSERT INTO accounts (id, balance)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`
	tag, err := r.q.Exec(ctx, insert, accountID, initialBalance)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create account %s: %w", accountID, mapConcurrencyError(err))
	}
	created := tag.RowsAffected() == 1

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	account, err := scanAccount(r.q.QueryRow(ctx, query, accountID))
	if err != nil {
		return nil, false, fmt.Errorf("failed to lock account %s: %w", accountID, mapConcurrencyError(err))
	}

	return account, created, nil
}

// Update writes the account's mutable fields
func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE accounts
		SET balance = $2,
		    last_daily_claim = $3,
		    daily_streak = $4,
		    last_work_time = $5,
		    work_streak = $6,
		    total_work_sessions = $7,
		    total_commands_used = $8,
		    is_banned = $9,
		    updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.q.Exec(ctx, query,
		account.ID,
		account.Balance,
		account.LastDailyClaim,
		account.DailyStreak,
		account.LastWorkTime,
		account.WorkStreak,
		account.TotalWorkSessions,
		account.TotalCommandsUsed,
		account.IsBanned,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", account.ID, mapConcurrencyError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s not found", account.ID)
	}

	return nil
}

// TopBalances returns accounts ordered by balance, richest first
func (r *AccountRepository) TopBalances(ctx context.Context, limit int) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY balance DESC, id LIMIT $1`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top balances: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.Balance,
		&account.LastDailyClaim,
		&account.DailyStreak,
		&account.LastWorkTime,
		&account.WorkStreak,
		&account.TotalWorkSessions,
		&account.TotalCommandsUsed,
		&account.IsBanned,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}
