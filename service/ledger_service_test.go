package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"coinbank/events"
	"coinbank/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		StartingBalance:   1000,
		MinBet:            10,
		MaxBet:            10000,
		WinProbability:    0.44,
		DailyCooldown:     24 * time.Hour,
		WorkCooldown:      time.Hour,
		GambleCooldown:    10 * time.Second,
		StreakReset:       25 * time.Hour,
		StreakMinGap:      time.Hour,
		BetConfirmTimeout: 30 * time.Second,
	}
}

func TestLedgerService_Credit(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockTransactionLogRepository)
	mockUoW.SetRepositories(mockAccountRepo, mockLedgerRepo)

	service := NewLedgerService(mockFactory, mockAccountRepo, mockLedgerRepo, testConfig())

	existing := &models.Account{ID: "acct-1", Balance: 1000}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetOrCreateForUpdate", ctx, "acct-1", int64(1000)).Return(existing, false, nil)
	mockAccountRepo.On("Update", ctx, mock.MatchedBy(func(a *models.Account) bool {
		return a.ID == "acct-1" && a.Balance == 1500
	})).Return(nil)

	mockLedgerRepo.On("Append", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.AccountID == "acct-1" &&
			tx.Type == models.TransactionTypeCredit &&
			tx.Amount == 500 &&
			tx.BalanceAfter == 1500 &&
			tx.Reason == "event prize"
	})).Return(nil)

	transaction, err := service.Credit(ctx, "acct-1", 500, "event prize")

	require.NoError(t, err)
	assert.Equal(t, int64(500), transaction.Amount)
	assert.Equal(t, int64(1500), transaction.BalanceAfter)

	// The committed mutation queued a balance-change event
	require.Len(t, mockUoW.Publisher.Events, 1)
	change, ok := mockUoW.Publisher.Events[0].(events.BalanceChangeEvent)
	require.True(t, ok)
	assert.Equal(t, int64(1000), change.OldBalance)
	assert.Equal(t, int64(1500), change.NewBalance)

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
	mockLedgerRepo.AssertExpectations(t)
}

func TestLedgerService_Credit_LazyAccountCreation(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockTransactionLogRepository)
	mockUoW.SetRepositories(mockAccountRepo, mockLedgerRepo)

	service := NewLedgerService(mockFactory, mockAccountRepo, mockLedgerRepo, testConfig())

	fresh := &models.Account{ID: "acct-new", Balance: 1000}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetOrCreateForUpdate", ctx, "acct-new", int64(1000)).Return(fresh, true, nil)
	mockAccountRepo.On("Update", ctx, mock.AnythingOfType("*models.Account")).Return(nil)

	// Both the initial credit and the requested credit hit the ledger
	mockLedgerRepo.On("Append", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.Reason == "initial balance" && tx.Amount == 1000 && tx.BalanceAfter == 1000
	})).Return(nil)
	mockLedgerRepo.On("Append", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.Type == models.TransactionTypeCredit && tx.Amount == 200 && tx.BalanceAfter == 1200
	})).Return(nil)

	transaction, err := service.Credit(ctx, "acct-new", 200, "welcome bonus")

	require.NoError(t, err)
	assert.Equal(t, int64(1200), transaction.BalanceAfter)

	mockLedgerRepo.AssertExpectations(t)
}

func TestLedgerService_Credit_RejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockTransactionLogRepository)

	service := NewLedgerService(mockFactory, mockAccountRepo, mockLedgerRepo, testConfig())

	for _, amount := range []int64{0, -50} {
		_, err := service.Credit(ctx, "acct-1", amount, "nope")

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, ReasonInvalidAmount, validationErr.Reason)
	}

	mockFactory.AssertNotCalled(t, "Create")
}

func TestLedgerService_Debit_InsufficientFunds(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockTransactionLogRepository)
	mockUoW.SetRepositories(mockAccountRepo, mockLedgerRepo)

	service := NewLedgerService(mockFactory, mockAccountRepo, mockLedgerRepo, testConfig())

	existing := &models.Account{ID: "acct-1", Balance: 100}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockAccountRepo.On("GetOrCreateForUpdate", ctx, "acct-1", int64(1000)).Return(existing, false, nil)

	_, err := service.Debit(ctx, "acct-1", 500, "purchase")

	var fundsErr *InsufficientFundsError
	require.ErrorAs(t, err, &fundsErr)
	assert.Equal(t, int64(100), fundsErr.Balance)
	assert.Equal(t, int64(500), fundsErr.Needed)

	// Nothing was persisted and nothing committed
	mockAccountRepo.AssertNotCalled(t, "Update", ctx, mock.Anything)
	mockLedgerRepo.AssertNotCalled(t, "Append", ctx, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit")
	assert.Empty(t, mockUoW.Publisher.Events)
}

func TestLedgerService_Debit(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockTransactionLogRepository)
	mockUoW.SetRepositories(mockAccountRepo, mockLedgerRepo)

	service := NewLedgerService(mockFactory, mockAccountRepo, mockLedgerRepo, testConfig())

	existing := &models.Account{ID: "acct-1", Balance: 1000}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockAccountRepo.On("GetOrCreateForUpdate", ctx, "acct-1", int64(1000)).Return(existing, false, nil)
	mockAccountRepo.On("Update", ctx, mock.MatchedBy(func(a *models.Account) bool {
		return a.Balance == 400
	})).Return(nil)
	mockLedgerRepo.On("Append", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.Type == models.TransactionTypeDebit && tx.Amount == -600 && tx.BalanceAfter == 400
	})).Return(nil)

	transaction, err := service.Debit(ctx, "acct-1", 600, "purchase")

	require.NoError(t, err)
	assert.Equal(t, int64(-600), transaction.Amount)
	assert.Equal(t, int64(400), transaction.BalanceAfter)

	mockUoW.AssertExpectations(t)
}

func TestLedgerService_Transfer(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockTransactionLogRepository)
	mockUoW.SetRepositories(mockAccountRepo, mockLedgerRepo)

	service := NewLedgerService(mockFactory, mockAccountRepo, mockLedgerRepo, testConfig())

	sender := &models.Account{ID: "alice", Balance: 1000}
	receiver := &models.Account{ID: "bob", Balance: 200}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetOrCreateForUpdate", ctx, "alice", int64(1000)).Return(sender, false, nil)
	mockAccountRepo.On("GetOrCreateForUpdate", ctx, "bob", int64(1000)).Return(receiver, false, nil)
	mockAccountRepo.On("Update", ctx, mock.MatchedBy(func(a *models.Account) bool {
		return a.ID == "alice" && a.Balance == 700
	})).Return(nil)
	mockAccountRepo.On("Update", ctx, mock.MatchedBy(func(a *models.Account) bool {
		return a.ID == "bob" && a.Balance == 500
	})).Return(nil)

	mockLedgerRepo.On("Append", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.AccountID == "alice" &&
			tx.Type == models.TransactionTypeTransferSent &&
			tx.Amount == -300 &&
			tx.BalanceAfter == 700 &&
			tx.CorrelationID != nil
	})).Return(nil)
	mockLedgerRepo.On("Append", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.AccountID == "bob" &&
			tx.Type == models.TransactionTypeTransferReceived &&
			tx.Amount == 300 &&
			tx.BalanceAfter == 500 &&
			tx.CorrelationID != nil
	})).Return(nil)

	result, err := service.Transfer(ctx, "alice", "bob", 300)

	require.NoError(t, err)
	require.NotNil(t, result.Sent)
	require.NotNil(t, result.Received)

	// Both legs carry the same correlation id
	require.NotNil(t, result.Sent.CorrelationID)
	require.NotNil(t, result.Received.CorrelationID)
	assert.Equal(t, *result.Sent.CorrelationID, *result.Received.CorrelationID)

	// Both legs surfaced as balance-change events
	assert.Len(t, mockUoW.Publisher.Events, 2)

	mockUoW.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
	mockLedgerRepo.AssertExpectations(t)
}

func TestLedgerService_Transfer_RejectsSelfTransfer(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	service := NewLedgerService(mockFactory, new(MockAccountRepository), new(MockTransactionLogRepository), testConfig())

	_, err := service.Transfer(ctx, "alice", "alice", 300)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, ReasonSelfTransfer, validationErr.Reason)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestLedgerService_Transfer_InsufficientFundsLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockTransactionLogRepository)
	mockUoW.SetRepositories(mockAccountRepo, mockLedgerRepo)

	service := NewLedgerService(mockFactory, mockAccountRepo, mockLedgerRepo, testConfig())

	sender := &models.Account{ID: "alice", Balance: 100}
	receiver := &models.Account{ID: "bob", Balance: 200}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockAccountRepo.On("GetOrCreateForUpdate", ctx, "alice", int64(1000)).Return(sender, false, nil)
	mockAccountRepo.On("GetOrCreateForUpdate", ctx, "bob", int64(1000)).Return(receiver, false, nil)

	_, err := service.Transfer(ctx, "alice", "bob", 300)

	var fundsErr *InsufficientFundsError
	require.ErrorAs(t, err, &fundsErr)

	mockAccountRepo.AssertNotCalled(t, "Update", ctx, mock.Anything)
	mockLedgerRepo.AssertNotCalled(t, "Append", ctx, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestLedgerService_Transfer_BannedSender(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockTransactionLogRepository)
	mockUoW.SetRepositories(mockAccountRepo, mockLedgerRepo)

	service := NewLedgerService(mockFactory, mockAccountRepo, mockLedgerRepo, testConfig())

	sender := &models.Account{ID: "alice", Balance: 5000, IsBanned: true}
	receiver := &models.Account{ID: "bob", Balance: 200}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockAccountRepo.On("GetOrCreateForUpdate", ctx, "alice", int64(1000)).Return(sender, false, nil)
	mockAccountRepo.On("GetOrCreateForUpdate", ctx, "bob", int64(1000)).Return(receiver, false, nil)

	_, err := service.Transfer(ctx, "alice", "bob", 300)

	var bannedErr *BannedAccountError
	require.ErrorAs(t, err, &bannedErr)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestLedgerService_RetriesOnConcurrencyConflict(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockTransactionLogRepository)
	mockUoW.SetRepositories(mockAccountRepo, mockLedgerRepo)

	service := NewLedgerService(mockFactory, mockAccountRepo, mockLedgerRepo, testConfig())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockUoW.On("Commit").Return(fmt.Errorf("serialization failure: %w", ErrConcurrencyConflict))

	mockAccountRepo.On("GetOrCreateForUpdate", ctx, "acct-1", int64(1000)).
		Return(&models.Account{ID: "acct-1", Balance: 1000}, false, nil)
	mockAccountRepo.On("Update", ctx, mock.AnythingOfType("*models.Account")).Return(nil)
	mockLedgerRepo.On("Append", ctx, mock.AnythingOfType("*models.Transaction")).Return(nil)

	_, err := service.Credit(ctx, "acct-1", 100, "retry test")

	require.ErrorIs(t, err, ErrConcurrencyConflict)
	mockFactory.AssertNumberOfCalls(t, "Create", 3)
}

func TestLedgerService_GetBalance_ExistingAccount(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)

	service := NewLedgerService(mockFactory, mockAccountRepo, new(MockTransactionLogRepository), testConfig())

	mockAccountRepo.On("Get", ctx, "acct-1").Return(&models.Account{ID: "acct-1", Balance: 4200}, nil)

	balance, err := service.GetBalance(ctx, "acct-1")

	require.NoError(t, err)
	assert.Equal(t, int64(4200), balance)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestLedgerService_GetBalance_CreatesAccountOnFirstReference(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockTransactionLogRepository)
	mockUoW.SetRepositories(mockAccountRepo, mockLedgerRepo)

	service := NewLedgerService(mockFactory, mockAccountRepo, mockLedgerRepo, testConfig())

	mockAccountRepo.On("Get", ctx, "acct-new").Return(nil, nil)
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockAccountRepo.On("GetOrCreateForUpdate", ctx, "acct-new", int64(1000)).
		Return(&models.Account{ID: "acct-new", Balance: 1000}, true, nil)
	mockAccountRepo.On("Update", ctx, mock.AnythingOfType("*models.Account")).Return(nil)
	mockLedgerRepo.On("Append", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.Reason == "initial balance"
	})).Return(nil)

	balance, err := service.GetBalance(ctx, "acct-new")

	require.NoError(t, err)
	assert.Equal(t, int64(1000), balance)
	mockLedgerRepo.AssertExpectations(t)
}

func TestLedgerService_Reset(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockTransactionLogRepository)
	mockUoW.SetRepositories(mockAccountRepo, mockLedgerRepo)

	service := NewLedgerService(mockFactory, mockAccountRepo, mockLedgerRepo, testConfig())

	claim := time.Now().UTC()
	rich := &models.Account{
		ID:                "acct-1",
		Balance:           9000,
		LastDailyClaim:    &claim,
		DailyStreak:       5,
		WorkStreak:        3,
		TotalWorkSessions: 12,
		TotalCommandsUsed: 40,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockAccountRepo.On("GetOrCreateForUpdate", ctx, "acct-1", int64(1000)).Return(rich, false, nil)
	mockAccountRepo.On("Update", ctx, mock.MatchedBy(func(a *models.Account) bool {
		return a.Balance == 1000 && a.DailyStreak == 0 && a.WorkStreak == 0 &&
			a.LastDailyClaim == nil && a.TotalWorkSessions == 0 && a.TotalCommandsUsed == 0
	})).Return(nil)

	// The balance came down, so the delta is logged as a debit
	mockLedgerRepo.On("Append", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.Type == models.TransactionTypeDebit &&
			tx.Amount == -8000 &&
			tx.BalanceAfter == 1000 &&
			tx.Reason == "account reset"
	})).Return(nil)

	account, err := service.Reset(ctx, "acct-1")

	require.NoError(t, err)
	assert.Equal(t, int64(1000), account.Balance)

	mockLedgerRepo.AssertExpectations(t)
}
