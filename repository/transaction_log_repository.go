package repository

import (
	"context"
	"fmt"

	"coinbank/database"
	"coinbank/models"
)

// TransactionLogRepository implements the service.TransactionLogRepository
// interface. The log is append-only: no update or delete exists here.
type TransactionLogRepository struct {
	q queryable
}

// NewTransactionLogRepository creates a pool-backed ledger repository
func NewTransactionLogRepository(db *database.DB) *TransactionLogRepository {
	return &TransactionLogRepository{q: db.Pool}
}

// newTransactionLogRepositoryWithTx creates a ledger repository bound to a transaction
func newTransactionLogRepositoryWithTx(tx queryable) *TransactionLogRepository {
	return &TransactionLogRepository{q: tx}
}

// Append writes a new ledger entry and fills in its ID and CreatedAt
func (r *TransactionLogRepository) Append(ctx context.Context, transaction *models.Transaction) error {
	query := `
		INSERT INTO transactions (account_id, type, amount, balance_after, reason, correlation_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		transaction.AccountID,
		transaction.Type,
		transaction.Amount,
		transaction.BalanceAfter,
		transaction.Reason,
		transaction.CorrelationID,
	).Scan(&transaction.ID, &transaction.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append transaction for account %s: %w", transaction.AccountID, mapConcurrencyError(err))
	}

	return nil
}

// History returns ledger entries for an account, most recent first
func (r *TransactionLogRepository) History(ctx context.Context, accountID string, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT id, account_id, type, amount, balance_after, reason, correlation_id, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history for account %s: %w", accountID, err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var transaction models.Transaction
		err := rows.Scan(
			&transaction.ID,
			&transaction.AccountID,
			&transaction.Type,
			&transaction.Amount,
			&transaction.BalanceAfter,
			&transaction.Reason,
			&transaction.CorrelationID,
			&transaction.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}
