package testutil

import (
	"time"

	"coinbank/models"
)

// CreateTestAccount creates an account with sensible defaults for testing
func CreateTestAccount(accountID string) *models.Account {
	return CreateTestAccountWithBalance(accountID, 1000)
}

// CreateTestAccountWithBalance creates an account with a specific balance
func CreateTestAccountWithBalance(accountID string, balance int64) *models.Account {
	now := time.Now().UTC()
	return &models.Account{
		ID:        accountID,
		Balance:   balance,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestTransaction creates a ledger entry with sensible defaults
func CreateTestTransaction(accountID string, transactionType models.TransactionType, amount, balanceAfter int64) *models.Transaction {
	return &models.Transaction{
		AccountID:    accountID,
		Type:         transactionType,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		Reason:       "test transaction",
	}
}
