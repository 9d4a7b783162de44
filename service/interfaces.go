package service

import (
	"context"
	"time"

	"coinbank/events"
	"coinbank/models"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// Get retrieves an account by id, or nil if it does not exist
	Get(ctx context.Context, accountID string) (*models.Account, error)

	// GetOrCreateForUpdate locks the account row for the duration of the
	// surrounding transaction, creating it with the initial balance on
	// first reference. Reports whether the account was created.
	GetOrCreateForUpdate(ctx context.Context, accountID string, initialBalance int64) (*models.Account, bool, error)

	// Update writes the account's mutable fields
	Update(ctx context.Context, account *models.Account) error

	// TopBalances returns accounts ordered by balance, richest first
	TopBalances(ctx context.Context, limit int) ([]*models.Account, error)
}

// TransactionLogRepository defines the interface for the append-only ledger.
// There is deliberately no update or delete operation.
type TransactionLogRepository interface {
	// Append writes a new ledger entry and fills in its ID and CreatedAt
	Append(ctx context.Context, transaction *models.Transaction) error

	// History returns ledger entries for an account, most recent first
	History(ctx context.Context, accountID string, limit int) ([]*models.Transaction, error)
}

// CooldownRepository gates time-limited actions. Reservations are
// committed independently of any settle transaction: a cooldown is
// consumed on attempt, not on success.
type CooldownRepository interface {
	// CheckAndReserve atomically reserves the action window. Two
	// concurrent calls for the same (account, action) pair cannot both
	// observe allowed. When rejected, remaining reports the time left.
	CheckAndReserve(ctx context.Context, accountID string, action models.ActionType, window time.Duration, now time.Time) (allowed bool, remaining time.Duration, err error)
}

// EventPublisher publishes events raised inside a unit of work
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	TransactionLogRepository() TransactionLogRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// Clock provides the current time; injected so cooldown and streak
// decisions are testable.
type Clock interface {
	Now() time.Time
}

// LedgerService is the facade for direct balance operations
type LedgerService interface {
	GetBalance(ctx context.Context, accountID string) (int64, error)
	Credit(ctx context.Context, accountID string, amount int64, reason string) (*models.Transaction, error)
	Debit(ctx context.Context, accountID string, amount int64, reason string) (*models.Transaction, error)
	Transfer(ctx context.Context, fromID, toID string, amount int64) (*models.TransferResult, error)
	History(ctx context.Context, accountID string, limit int) ([]*models.Transaction, error)
	SetBanned(ctx context.Context, accountID string, banned bool) error
	Reset(ctx context.Context, accountID string) (*models.Account, error)
	TopBalances(ctx context.Context, limit int) ([]*models.Account, error)
}

// DailyService handles the daily reward claim
type DailyService interface {
	Claim(ctx context.Context, accountID string) (*models.DailyResult, error)
}

// WorkService handles paid work sessions
type WorkService interface {
	Work(ctx context.Context, accountID string) (*models.WorkResult, error)
}

// GamblingService handles the two-phase bet flow
type GamblingService interface {
	ProposeBet(ctx context.Context, accountID, rawAmount string) (*models.PendingBet, error)
	ConfirmBet(ctx context.Context, token string) (*models.BetResult, error)
	CancelBet(token string)
}
