package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"coinbank/models"
)

// workMinGap guards the work streak against replays that slip past the
// cooldown tracker through divergent storage or clock manipulation.
const workMinGap = time.Minute

type workService struct {
	uowFactory UnitOfWorkFactory
	accounts   AccountRepository
	cooldowns  CooldownRepository
	clock      Clock
	cfg        Config
}

// NewWorkService creates a new work service
func NewWorkService(uowFactory UnitOfWorkFactory, accounts AccountRepository, cooldowns CooldownRepository, clock Clock, cfg Config) WorkService {
	return &workService{
		uowFactory: uowFactory,
		accounts:   accounts,
		cooldowns:  cooldowns,
		clock:      clock,
		cfg:        cfg,
	}
}

// Work pays out a random job's wage plus the streak bonus, minus the
// fatigue penalty that builds with every session. Like every gated
// action, the cooldown is consumed on attempt.
func (s *workService) Work(ctx context.Context, accountID string) (*models.WorkResult, error) {
	now := s.clock.Now()

	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account != nil && account.IsBanned {
		return nil, &BannedAccountError{AccountID: accountID}
	}

	allowed, remaining, err := s.cooldowns.CheckAndReserve(ctx, accountID, models.ActionWork, s.cfg.WorkCooldown, now)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve work cooldown: %w", err)
	}
	if !allowed {
		return nil, &CooldownActiveError{Action: models.ActionWork, Remaining: remaining}
	}

	// Draw the job before settling so a retried mutation pays the same wage
	job := models.Jobs[rand.Intn(len(models.Jobs))]
	base := job.Min + rand.Int63n(job.Max-job.Min+1)

	var result models.WorkResult
	_, _, err = mutateAccount(ctx, s.uowFactory, s.cfg.StartingBalance, accountID,
		func(uow UnitOfWork, account *models.Account) ([]*models.Transaction, error) {
			if account.IsBanned {
				return nil, &BannedAccountError{AccountID: accountID}
			}

			streak, err := computeStreak(models.ActionWork, account.LastWorkTime, account.WorkStreak, now, s.cfg.StreakReset, workMinGap)
			if err != nil {
				return nil, err
			}

			amount := workPayout(base, streak, account.TotalWorkSessions)

			workedAt := now
			account.Balance += amount
			account.WorkStreak = streak
			account.LastWorkTime = &workedAt
			account.TotalWorkSessions++
			account.TotalCommandsUsed++

			result = models.WorkResult{
				Amount:     amount,
				NewBalance: account.Balance,
				JobName:    job.Name,
				Streak:     streak,
			}

			return []*models.Transaction{{
				AccountID:    accountID,
				Type:         models.TransactionTypeWork,
				Amount:       amount,
				BalanceAfter: account.Balance,
				Reason:       fmt.Sprintf("worked as %s", job.Name),
			}}, nil
		})
	if err != nil {
		return nil, err
	}

	return &result, nil
}
