package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeCredit           TransactionType = "credit"
	TransactionTypeDebit            TransactionType = "debit"
	TransactionTypeDailyReward      TransactionType = "daily_reward"
	TransactionTypeWork             TransactionType = "work"
	TransactionTypeGambleWin        TransactionType = "gamble_win"
	TransactionTypeGambleLoss       TransactionType = "gamble_loss"
	TransactionTypeTransferSent     TransactionType = "transfer_sent"
	TransactionTypeTransferReceived TransactionType = "transfer_received"
)

// Transaction is one immutable ledger entry. Replaying every transaction
// for an account from a zero balance reproduces its current balance; the
// redundant BalanceAfter column exists for audit and history display.
type Transaction struct {
	ID            int64           `db:"id"`
	AccountID     string          `db:"account_id"`
	Type          TransactionType `db:"type"`
	Amount        int64           `db:"amount"` // signed delta applied to the balance
	BalanceAfter  int64           `db:"balance_after"`
	Reason        string          `db:"reason"`
	CorrelationID *uuid.UUID      `db:"correlation_id"` // shared by the two halves of a transfer
	CreatedAt     time.Time       `db:"created_at"`
}
