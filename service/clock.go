package service

import "time"

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// NewClock returns a Clock backed by the system wall clock
func NewClock() Clock {
	return systemClock{}
}
