package service

import (
	"context"
	"errors"
	"fmt"

	"coinbank/events"
	"coinbank/models"
)

// maxMutationAttempts bounds retries after a concurrency conflict
const maxMutationAttempts = 3

// accountMutation computes the new account state in place and returns
// the ledger entries to append. BalanceAfter must already be set on
// each entry. Returning an error aborts the mutation with no state
// change.
type accountMutation func(uow UnitOfWork, account *models.Account) ([]*models.Transaction, error)

// mutateAccount is the sole write path for single-account changes. It
// locks the account row (creating the account lazily with the starting
// balance), applies fn, persists the account, appends the ledger
// entries in the same transaction, and commits. Only a concurrency
// conflict is retried; the caller's decision is never recomputed.
func mutateAccount(ctx context.Context, factory UnitOfWorkFactory, startingBalance int64, accountID string, fn accountMutation) (*models.Account, []*models.Transaction, error) {
	var lastErr error

	for attempt := 0; attempt < maxMutationAttempts; attempt++ {
		account, transactions, err := tryMutateAccount(ctx, factory, startingBalance, accountID, fn)
		if err == nil {
			return account, transactions, nil
		}
		if !errors.Is(err, ErrConcurrencyConflict) {
			return nil, nil, err
		}
		lastErr = err
	}

	return nil, nil, fmt.Errorf("mutation failed after %d attempts: %w", maxMutationAttempts, lastErr)
}

func tryMutateAccount(ctx context.Context, factory UnitOfWorkFactory, startingBalance int64, accountID string, fn accountMutation) (*models.Account, []*models.Transaction, error) {
	uow := factory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, created, err := uow.AccountRepository().GetOrCreateForUpdate(ctx, accountID, startingBalance)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock account: %w", err)
	}
	if created {
		if err := recordInitialBalance(ctx, uow, account); err != nil {
			return nil, nil, err
		}
	}

	transactions, err := fn(uow, account)
	if err != nil {
		return nil, nil, err
	}

	if err := uow.AccountRepository().Update(ctx, account); err != nil {
		return nil, nil, fmt.Errorf("failed to update account: %w", err)
	}

	for _, transaction := range transactions {
		if err := appendTransaction(ctx, uow, transaction); err != nil {
			return nil, nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, transactions, nil
}

// appendTransaction writes one ledger entry and queues the matching
// balance-change event. This is the single entry point for ledger
// appends inside a mutation.
func appendTransaction(ctx context.Context, uow UnitOfWork, transaction *models.Transaction) error {
	if err := uow.TransactionLogRepository().Append(ctx, transaction); err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		AccountID:       transaction.AccountID,
		OldBalance:      transaction.BalanceAfter - transaction.Amount,
		NewBalance:      transaction.BalanceAfter,
		TransactionType: transaction.Type,
		ChangeAmount:    transaction.Amount,
	})

	return nil
}

// recordInitialBalance logs the lazily created account's starting
// credit so a replay of the ledger from zero reproduces its balance.
func recordInitialBalance(ctx context.Context, uow UnitOfWork, account *models.Account) error {
	initial := &models.Transaction{
		AccountID:    account.ID,
		Type:         models.TransactionTypeCredit,
		Amount:       account.Balance,
		BalanceAfter: account.Balance,
		Reason:       "initial balance",
	}
	if err := appendTransaction(ctx, uow, initial); err != nil {
		return err
	}

	uow.EventBus().Publish(events.AccountCreatedEvent{
		AccountID:      account.ID,
		InitialBalance: account.Balance,
	})

	return nil
}
