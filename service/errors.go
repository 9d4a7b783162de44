package service

import (
	"errors"
	"fmt"
	"time"

	"coinbank/models"
)

// ValidationReason tags a rejection so the presentation layer can
// render it without parsing error strings.
type ValidationReason string

const (
	ReasonInvalidAmount ValidationReason = "invalid_amount"
	ReasonBelowMinimum  ValidationReason = "below_minimum"
	ReasonAboveMaximum  ValidationReason = "above_maximum"
	ReasonSelfTransfer  ValidationReason = "self_transfer"
)

// ValidationError reports bad input. Always recoverable; the message is
// safe to surface verbatim.
type ValidationError struct {
	Reason  ValidationReason
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// InsufficientFundsError reports a debit that would drive the balance
// negative. Carries the current balance for display.
type InsufficientFundsError struct {
	Balance int64
	Needed  int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient balance: have %d, need %d", e.Balance, e.Needed)
}

// CooldownActiveError reports that a gated action was attempted inside
// its cooldown window.
type CooldownActiveError struct {
	Action    models.ActionType
	Remaining time.Duration
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("%s is on cooldown for another %s", e.Action, e.Remaining.Round(time.Second))
}

// RemainingSeconds reports the wait rounded up to whole seconds
func (e *CooldownActiveError) RemainingSeconds() int64 {
	secs := int64((e.Remaining + time.Second - 1) / time.Second)
	if secs < 0 {
		return 0
	}
	return secs
}

// BannedAccountError reports that the account is excluded from all
// economy actions. Rendered as a generic denial.
type BannedAccountError struct {
	AccountID string
}

func (e *BannedAccountError) Error() string {
	return "account is not permitted to use economy actions"
}

var (
	// ErrConcurrencyConflict marks a mutation invalidated by a concurrent
	// writer. The facade retries a bounded number of times before
	// surfacing it.
	ErrConcurrencyConflict = errors.New("concurrent modification detected")

	// ErrBetNotFound is returned for unknown or already-finalized tokens
	ErrBetNotFound = errors.New("no pending bet for that token")

	// ErrBetExpired is returned when a proposal outlived its confirmation
	// window; the balance is unchanged.
	ErrBetExpired = errors.New("bet confirmation window expired")
)
