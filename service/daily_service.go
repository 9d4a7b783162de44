package service

import (
	"context"
	"fmt"

	"coinbank/events"
	"coinbank/models"
)

type dailyService struct {
	uowFactory UnitOfWorkFactory
	accounts   AccountRepository
	cooldowns  CooldownRepository
	clock      Clock
	cfg        Config
}

// NewDailyService creates a new daily reward service
func NewDailyService(uowFactory UnitOfWorkFactory, accounts AccountRepository, cooldowns CooldownRepository, clock Clock, cfg Config) DailyService {
	return &dailyService{
		uowFactory: uowFactory,
		accounts:   accounts,
		cooldowns:  cooldowns,
		clock:      clock,
		cfg:        cfg,
	}
}

// Claim awards the daily reward. The cooldown is reserved before the
// reward is settled and stays consumed even when settlement fails, so
// rapid retries cannot farm extra attempts.
func (s *dailyService) Claim(ctx context.Context, accountID string) (*models.DailyResult, error) {
	now := s.clock.Now()

	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account != nil && account.IsBanned {
		return nil, &BannedAccountError{AccountID: accountID}
	}

	allowed, remaining, err := s.cooldowns.CheckAndReserve(ctx, accountID, models.ActionDaily, s.cfg.DailyCooldown, now)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve daily cooldown: %w", err)
	}
	if !allowed {
		return nil, &CooldownActiveError{Action: models.ActionDaily, Remaining: remaining}
	}

	var result models.DailyResult
	_, _, err = mutateAccount(ctx, s.uowFactory, s.cfg.StartingBalance, accountID,
		func(uow UnitOfWork, account *models.Account) ([]*models.Transaction, error) {
			if account.IsBanned {
				return nil, &BannedAccountError{AccountID: accountID}
			}

			streak, err := computeStreak(models.ActionDaily, account.LastDailyClaim, account.DailyStreak, now, s.cfg.StreakReset, s.cfg.StreakMinGap)
			if err != nil {
				return nil, err
			}

			amount := dailyReward(streak)

			claimedAt := now
			account.Balance += amount
			account.DailyStreak = streak
			account.LastDailyClaim = &claimedAt
			account.TotalCommandsUsed++

			result = models.DailyResult{
				Amount:     amount,
				NewBalance: account.Balance,
				Streak:     streak,
			}

			uow.EventBus().Publish(events.DailyClaimedEvent{
				AccountID: accountID,
				Amount:    amount,
				Streak:    streak,
			})

			return []*models.Transaction{{
				AccountID:    accountID,
				Type:         models.TransactionTypeDailyReward,
				Amount:       amount,
				BalanceAfter: account.Balance,
				Reason:       fmt.Sprintf("daily reward (streak %d)", streak),
			}}, nil
		})
	if err != nil {
		return nil, err
	}

	return &result, nil
}
