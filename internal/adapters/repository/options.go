package repository

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithClock overrides the time source used for created, verified and drawn
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPicker overrides how the draw picks one of n eligible participants.
// pick must return a value in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(s *MemoryStore) {
		if pick != nil {
			s.pick = pick
		}
	}
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *MemoryStore) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

// WithPrize sets the prize description recorded on drawn winners.
func WithPrize(prize string) Option {
	return func(s *MemoryStore) {
		if prize != "" {
			s.prize = prize
		}
	}
}
