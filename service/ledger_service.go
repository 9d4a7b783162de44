package service

import (
	"context"
	"errors"
	"fmt"

	"coinbank/models"

	"github.com/google/uuid"
)

// ledgerService implements the LedgerService interface
type ledgerService struct {
	uowFactory UnitOfWorkFactory
	accounts   AccountRepository
	ledger     TransactionLogRepository
	cfg        Config
}

// NewLedgerService creates a new ledger service. The accounts and
// ledger repositories are pool-backed and used for reads only; every
// write goes through a unit of work.
func NewLedgerService(uowFactory UnitOfWorkFactory, accounts AccountRepository, ledger TransactionLogRepository, cfg Config) LedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
		accounts:   accounts,
		ledger:     ledger,
		cfg:        cfg,
	}
}

// GetBalance returns the account's balance, creating the account with
// the starting balance on first reference.
func (s *ledgerService) GetBalance(ctx context.Context, accountID string) (int64, error) {
	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}
	if account != nil {
		return account.Balance, nil
	}

	// First reference: materialize the account and its initial credit
	account, _, err = mutateAccount(ctx, s.uowFactory, s.cfg.StartingBalance, accountID,
		func(uow UnitOfWork, account *models.Account) ([]*models.Transaction, error) {
			return nil, nil
		})
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

func (s *ledgerService) Credit(ctx context.Context, accountID string, amount int64, reason string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, &ValidationError{Reason: ReasonInvalidAmount, Message: "credit amount must be positive"}
	}

	_, transactions, err := mutateAccount(ctx, s.uowFactory, s.cfg.StartingBalance, accountID,
		func(uow UnitOfWork, account *models.Account) ([]*models.Transaction, error) {
			account.Balance += amount
			return []*models.Transaction{{
				AccountID:    accountID,
				Type:         models.TransactionTypeCredit,
				Amount:       amount,
				BalanceAfter: account.Balance,
				Reason:       reason,
			}}, nil
		})
	if err != nil {
		return nil, err
	}
	return transactions[0], nil
}

func (s *ledgerService) Debit(ctx context.Context, accountID string, amount int64, reason string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, &ValidationError{Reason: ReasonInvalidAmount, Message: "debit amount must be positive"}
	}

	_, transactions, err := mutateAccount(ctx, s.uowFactory, s.cfg.StartingBalance, accountID,
		func(uow UnitOfWork, account *models.Account) ([]*models.Transaction, error) {
			if account.Balance < amount {
				return nil, &InsufficientFundsError{Balance: account.Balance, Needed: amount}
			}
			account.Balance -= amount
			return []*models.Transaction{{
				AccountID:    accountID,
				Type:         models.TransactionTypeDebit,
				Amount:       -amount,
				BalanceAfter: account.Balance,
				Reason:       reason,
			}}, nil
		})
	if err != nil {
		return nil, err
	}
	return transactions[0], nil
}

// Transfer debits the sender and credits the receiver in one database
// transaction, so partial application is structurally impossible. Rows
// are locked in lexicographic account-id order to avoid deadlocks.
func (s *ledgerService) Transfer(ctx context.Context, fromID, toID string, amount int64) (*models.TransferResult, error) {
	if amount <= 0 {
		return nil, &ValidationError{Reason: ReasonInvalidAmount, Message: "transfer amount must be positive"}
	}
	if fromID == toID {
		return nil, &ValidationError{Reason: ReasonSelfTransfer, Message: "cannot transfer to yourself"}
	}

	var lastErr error
	for attempt := 0; attempt < maxMutationAttempts; attempt++ {
		result, err := s.tryTransfer(ctx, fromID, toID, amount)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, ErrConcurrencyConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("transfer failed after %d attempts: %w", maxMutationAttempts, lastErr)
}

func (s *ledgerService) tryTransfer(ctx context.Context, fromID, toID string, amount int64) (*models.TransferResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	// Fixed global lock ordering across the two rows
	firstID, secondID := fromID, toID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}

	locked := make(map[string]*models.Account, 2)
	for _, id := range []string{firstID, secondID} {
		account, created, err := uow.AccountRepository().GetOrCreateForUpdate(ctx, id, s.cfg.StartingBalance)
		if err != nil {
			return nil, fmt.Errorf("failed to lock account: %w", err)
		}
		if created {
			if err := recordInitialBalance(ctx, uow, account); err != nil {
				return nil, err
			}
		}
		locked[id] = account
	}
	sender, receiver := locked[fromID], locked[toID]

	if sender.IsBanned {
		return nil, &BannedAccountError{AccountID: fromID}
	}
	if sender.Balance < amount {
		return nil, &InsufficientFundsError{Balance: sender.Balance, Needed: amount}
	}

	sender.Balance -= amount
	sender.TotalCommandsUsed++
	receiver.Balance += amount

	if err := uow.AccountRepository().Update(ctx, sender); err != nil {
		return nil, fmt.Errorf("failed to update sender: %w", err)
	}
	if err := uow.AccountRepository().Update(ctx, receiver); err != nil {
		return nil, fmt.Errorf("failed to update receiver: %w", err)
	}

	correlationID := uuid.New()
	sent := &models.Transaction{
		AccountID:     fromID,
		Type:          models.TransactionTypeTransferSent,
		Amount:        -amount,
		BalanceAfter:  sender.Balance,
		Reason:        fmt.Sprintf("transfer to %s", toID),
		CorrelationID: &correlationID,
	}
	received := &models.Transaction{
		AccountID:     toID,
		Type:          models.TransactionTypeTransferReceived,
		Amount:        amount,
		BalanceAfter:  receiver.Balance,
		Reason:        fmt.Sprintf("transfer from %s", fromID),
		CorrelationID: &correlationID,
	}

	if err := appendTransaction(ctx, uow, sent); err != nil {
		return nil, err
	}
	if err := appendTransaction(ctx, uow, received); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.TransferResult{Sent: sent, Received: received}, nil
}

func (s *ledgerService) History(ctx context.Context, accountID string, limit int) ([]*models.Transaction, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	history, err := s.ledger.History(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history for account %s: %w", accountID, err)
	}
	return history, nil
}

// SetBanned flips the ban flag. Invoked by the moderation subsystem;
// a banned account keeps its balance but every economy action is
// rejected.
func (s *ledgerService) SetBanned(ctx context.Context, accountID string, banned bool) error {
	_, _, err := mutateAccount(ctx, s.uowFactory, s.cfg.StartingBalance, accountID,
		func(uow UnitOfWork, account *models.Account) ([]*models.Transaction, error) {
			account.IsBanned = banned
			return nil, nil
		})
	return err
}

// Reset returns the account to the starting balance and zeroes its
// streak and counter state. The identity and its ledger history
// persist; the balance delta is logged so replayability holds.
func (s *ledgerService) Reset(ctx context.Context, accountID string) (*models.Account, error) {
	account, _, err := mutateAccount(ctx, s.uowFactory, s.cfg.StartingBalance, accountID,
		func(uow UnitOfWork, account *models.Account) ([]*models.Transaction, error) {
			delta := s.cfg.StartingBalance - account.Balance

			account.Balance = s.cfg.StartingBalance
			account.LastDailyClaim = nil
			account.DailyStreak = 0
			account.LastWorkTime = nil
			account.WorkStreak = 0
			account.TotalWorkSessions = 0
			account.TotalCommandsUsed = 0

			if delta == 0 {
				return nil, nil
			}

			transaction := &models.Transaction{
				AccountID:    accountID,
				Amount:       delta,
				BalanceAfter: account.Balance,
				Reason:       "account reset",
			}
			if delta > 0 {
				transaction.Type = models.TransactionTypeCredit
			} else {
				transaction.Type = models.TransactionTypeDebit
			}
			return []*models.Transaction{transaction}, nil
		})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (s *ledgerService) TopBalances(ctx context.Context, limit int) ([]*models.Account, error) {
	if limit <= 0 {
		limit = 10
	}
	accounts, err := s.accounts.TopBalances(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top balances: %w", err)
	}
	return accounts, nil
}
