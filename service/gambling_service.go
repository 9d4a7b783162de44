package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"coinbank/events"
	"coinbank/models"

	"github.com/google/uuid"
)

// High-stakes confirmation applies when the stake is more than half the
// balance and the balance is worth protecting.
const highStakesBalanceFloor = 1000

type gamblingService struct {
	uowFactory UnitOfWorkFactory
	accounts   AccountRepository
	cooldowns  CooldownRepository
	clock      Clock
	cfg        Config

	// rng is injectable for deterministic tests
	rng func() float64

	mu      sync.Mutex
	pending map[string]*models.PendingBet
}

// NewGamblingService creates a new gambling service
func NewGamblingService(uowFactory UnitOfWorkFactory, accounts AccountRepository, cooldowns CooldownRepository, clock Clock, cfg Config) GamblingService {
	return &gamblingService{
		uowFactory: uowFactory,
		accounts:   accounts,
		cooldowns:  cooldowns,
		clock:      clock,
		cfg:        cfg,
		rng:        rand.Float64,
		pending:    make(map[string]*models.PendingBet),
	}
}

// ProposeBet validates a raw stake against the account and reserves the
// gamble cooldown. The returned proposal must be confirmed before any
// balance moves; high-stakes proposals additionally require an explicit
// user confirmation. The cooldown stays consumed even when parsing
// rejects the stake.
func (s *gamblingService) ProposeBet(ctx context.Context, accountID, rawAmount string) (*models.PendingBet, error) {
	now := s.clock.Now()

	account, err := s.getOrCreateAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.IsBanned {
		return nil, &BannedAccountError{AccountID: accountID}
	}

	allowed, remaining, err := s.cooldowns.CheckAndReserve(ctx, accountID, models.ActionGamble, s.cfg.GambleCooldown, now)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve gamble cooldown: %w", err)
	}
	if !allowed {
		return nil, &CooldownActiveError{Action: models.ActionGamble, Remaining: remaining}
	}

	amount, capped, err := parseBetAmount(rawAmount, account.Balance, s.cfg.MinBet, s.cfg.MaxBet)
	if err != nil {
		return nil, err
	}

	bet := &models.PendingBet{
		Token:                uuid.NewString(),
		AccountID:            accountID,
		Amount:               amount,
		RequiresConfirmation: amount*2 > account.Balance && account.Balance > highStakesBalanceFloor,
		CappedFromAll:        capped,
		BalanceAtProposal:    account.Balance,
		ExpiresAt:            now.Add(s.cfg.BetConfirmTimeout),
	}

	s.mu.Lock()
	s.sweepExpiredLocked()
	s.pending[bet.Token] = bet
	s.mu.Unlock()

	return bet, nil
}

// ConfirmBet settles a pending bet: the outcome is rolled once, then
// the stake and payout are applied as a single account mutation plus
// ledger append. An expired token is an error and leaves the balance
// untouched.
func (s *gamblingService) ConfirmBet(ctx context.Context, token string) (*models.BetResult, error) {
	bet, err := s.takePending(token)
	if err != nil {
		return nil, err
	}

	// Roll once, outside the mutation, so a concurrency retry cannot
	// re-roll the outcome.
	won := s.rng() < s.cfg.WinProbability

	var result models.BetResult
	_, _, err = mutateAccount(ctx, s.uowFactory, s.cfg.StartingBalance, bet.AccountID,
		func(uow UnitOfWork, account *models.Account) ([]*models.Transaction, error) {
			if account.IsBanned {
				return nil, &BannedAccountError{AccountID: bet.AccountID}
			}
			if account.Balance < bet.Amount {
				return nil, &InsufficientFundsError{Balance: account.Balance, Needed: bet.Amount}
			}

			account.TotalCommandsUsed++

			transaction := &models.Transaction{
				AccountID: bet.AccountID,
			}
			if won {
				account.Balance += bet.Amount
				transaction.Type = models.TransactionTypeGambleWin
				transaction.Amount = bet.Amount
				transaction.Reason = fmt.Sprintf("won %d coin bet", bet.Amount)
			} else {
				account.Balance -= bet.Amount
				transaction.Type = models.TransactionTypeGambleLoss
				transaction.Amount = -bet.Amount
				transaction.Reason = fmt.Sprintf("lost %d coin bet", bet.Amount)
			}
			transaction.BalanceAfter = account.Balance

			payout := int64(0)
			if won {
				payout = bet.Amount * 2
			}
			result = models.BetResult{
				Won:        won,
				BetAmount:  bet.Amount,
				Payout:     payout,
				NewBalance: account.Balance,
			}

			uow.EventBus().Publish(events.BetResolvedEvent{
				AccountID: bet.AccountID,
				Amount:    bet.Amount,
				Won:       won,
				Payout:    payout,
			})

			return []*models.Transaction{transaction}, nil
		})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// CancelBet discards a pending proposal. Cancelling an unknown or
// already-expired token is a no-op.
func (s *gamblingService) CancelBet(token string) {
	s.mu.Lock()
	delete(s.pending, token)
	s.mu.Unlock()
}

// takePending removes and returns the proposal for token, enforcing the
// confirmation window.
func (s *gamblingService) takePending(token string) (*models.PendingBet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bet, ok := s.pending[token]
	if !ok {
		return nil, ErrBetNotFound
	}
	delete(s.pending, token)

	if s.clock.Now().After(bet.ExpiresAt) {
		return nil, ErrBetExpired
	}
	return bet, nil
}

// sweepExpiredLocked drops proposals past their confirmation window.
// Caller must hold s.mu.
func (s *gamblingService) sweepExpiredLocked() {
	now := s.clock.Now()
	for token, bet := range s.pending {
		if now.After(bet.ExpiresAt) {
			delete(s.pending, token)
		}
	}
}

// getOrCreateAccount reads the account, materializing it with the
// starting balance on first reference.
func (s *gamblingService) getOrCreateAccount(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account != nil {
		return account, nil
	}

	account, _, err = mutateAccount(ctx, s.uowFactory, s.cfg.StartingBalance, accountID,
		func(uow UnitOfWork, account *models.Account) ([]*models.Transaction, error) {
			return nil, nil
		})
	return account, err
}
