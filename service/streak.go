package service

import (
	"time"

	"coinbank/models"
)

// computeStreak decides the new consecutive-action count for a gated
// action. A gap shorter than minGap is rejected outright: the cooldown
// tracker should already have blocked it, so seeing one here means the
// caller bypassed it (clock manipulation, divergent storage) and the
// attempt must not count. A gap longer than resetThreshold starts the
// streak over at 1; anything in between extends it.
func computeStreak(action models.ActionType, last *time.Time, current int, now time.Time, resetThreshold, minGap time.Duration) (int, error) {
	if last == nil {
		return 1, nil
	}

	gap := now.Sub(*last)
	if gap < minGap {
		return 0, &CooldownActiveError{Action: action, Remaining: minGap - gap}
	}
	if gap > resetThreshold {
		return 1, nil
	}
	return current + 1, nil
}

const dailyBaseReward = 100

// dailyReward applies the streak multiplier to the base daily amount:
// 1.5x from a 7-day streak, 1.2x from a 3-day streak.
func dailyReward(streak int) int64 {
	switch {
	case streak >= 7:
		return int64(float64(dailyBaseReward) * 1.5)
	case streak >= 3:
		return int64(float64(dailyBaseReward) * 1.2)
	default:
		return dailyBaseReward
	}
}

const (
	workStreakBonusPerDay = 3
	workStreakBonusCap    = 30
	workFatigueInterval   = 20
	workMinimumPayout     = 10
)

// workPayout combines the drawn base pay with the streak bonus and the
// fatigue penalty that builds up every workFatigueInterval sessions.
// The result never drops below workMinimumPayout.
func workPayout(base int64, streak int, totalSessions int64) int64 {
	bonus := int64(streak * workStreakBonusPerDay)
	if bonus > workStreakBonusCap {
		bonus = workStreakBonusCap
	}
	penalty := (totalSessions % workFatigueInterval) * 2

	payout := base + bonus - penalty
	if payout < workMinimumPayout {
		payout = workMinimumPayout
	}
	return payout
}
