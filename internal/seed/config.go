// Package seed fills a store with fake verified participants for local draws.
package seed

import "time"

// Config holds seeding options.
type Config struct {
	Count    int    // Number of participants to create
	Workers  int    // Number of concurrent workers
	Password string // Password set on every seeded account
	Domain   string // Email domain of seeded accounts
}

// Fake is one generated participant.
type Fake struct {
	Email    string
	FullName string
	Phone    string
}

// Stats holds seeding results.
type Stats struct {
	Generated int
	Created   int
	Existing  int
	Failed    int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Defaults.
const (
	DefaultDomain   = "example.com"
	DefaultPassword = "password123"
	defaultWorkers  = 4
)
