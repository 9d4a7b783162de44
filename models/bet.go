package models

import "time"

// PendingBet is a proposed bet waiting for confirmation. High-stakes
// proposals must be confirmed explicitly; everything else may be
// confirmed immediately by the caller. An unconfirmed proposal expires
// after its TTL with no ledger effect.
type PendingBet struct {
	Token                string
	AccountID            string
	Amount               int64
	RequiresConfirmation bool
	CappedFromAll        bool // "all" exceeded the maximum bet and was capped
	BalanceAtProposal    int64
	ExpiresAt            time.Time
}

// BetResult represents the outcome of a settled bet
type BetResult struct {
	Won        bool
	BetAmount  int64
	Payout     int64 // gross amount returned on a win, zero on a loss
	NewBalance int64
}

// DailyResult represents a successful daily claim
type DailyResult struct {
	Amount     int64
	NewBalance int64
	Streak     int
}

// WorkResult represents a completed work session
type WorkResult struct {
	Amount     int64
	NewBalance int64
	JobName    string
	Streak     int
}

// TransferResult represents a completed transfer; the two transactions
// share a correlation reference.
type TransferResult struct {
	Sent     *Transaction
	Received *Transaction
}
