package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// parseBetAmount turns a raw user-supplied stake into a concrete bet.
// "all" stakes the whole balance, capped at maxBet (cappedFromAll is set
// when the cap applied). Numeric stakes accept thousands separators and
// the k/m suffixes, so "1.5k" is 1500. The result must be an integer in
// [minBet, maxBet] not exceeding the balance.
func parseBetAmount(raw string, balance, minBet, maxBet int64) (amount int64, cappedFromAll bool, err error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, false, &ValidationError{Reason: ReasonInvalidAmount, Message: "specify an amount, 'all', or formats like '1k' or '1.5k'"}
	}

	if s == "all" {
		amount = balance
		if amount > maxBet {
			amount = maxBet
			cappedFromAll = true
		}
		if amount < minBet {
			return 0, false, &ValidationError{Reason: ReasonBelowMinimum, Message: fmt.Sprintf("minimum bet is %d coins", minBet)}
		}
		return amount, cappedFromAll, nil
	}

	s = strings.ReplaceAll(s, ",", "")

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(s, "k"):
		multiplier = 1_000
		s = strings.TrimSuffix(s, "k")
	case strings.HasSuffix(s, "m"):
		multiplier = 1_000_000
		s = strings.TrimSuffix(s, "m")
	}

	value, parseErr := strconv.ParseFloat(s, 64)
	if parseErr != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false, &ValidationError{Reason: ReasonInvalidAmount, Message: "invalid amount: use a number, 'all', or formats like '1k' or '1.5k'"}
	}
	if value <= 0 {
		return 0, false, &ValidationError{Reason: ReasonInvalidAmount, Message: "bet amount must be positive"}
	}

	scaled := value * float64(multiplier)
	if scaled > math.MaxInt64/2 {
		return 0, false, &ValidationError{Reason: ReasonAboveMaximum, Message: fmt.Sprintf("maximum bet is %d coins", maxBet)}
	}
	amount = int64(scaled)

	if amount < minBet {
		return 0, false, &ValidationError{Reason: ReasonBelowMinimum, Message: fmt.Sprintf("minimum bet is %d coins", minBet)}
	}
	if amount > maxBet {
		return 0, false, &ValidationError{Reason: ReasonAboveMaximum, Message: fmt.Sprintf("maximum bet is %d coins", maxBet)}
	}
	if amount > balance {
		return 0, false, &InsufficientFundsError{Balance: balance, Needed: amount}
	}

	return amount, false, nil
}
