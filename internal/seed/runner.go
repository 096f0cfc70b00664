package seed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/raffle/internal/adapters/repository"
	"github.com/okian/raffle/pkg/logger"
)

// Run registers, verifies and activates cfg.Count fake participants.
// Accounts that already exist are counted and skipped.
func Run(ctx context.Context, store repository.Store, cfg Config) (Stats, error) {
	stats := Stats{StartTime: time.Now()}
	if cfg.Count <= 0 {
		return stats, nil
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.Password == "" {
		cfg.Password = DefaultPassword
	}

	log := logger.Named("seed")
	log.Info(ctx, "seeding participants",
		logger.Int("count", cfg.Count),
		logger.Int("workers", cfg.Workers),
		logger.String("domain", cfg.Domain),
	)

	fakes := Generate(cfg.Count, cfg.Domain)
	stats.Generated = len(fakes)

	jobs := make(chan Fake)
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	for range min(cfg.Workers, len(fakes)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				err := enroll(ctx, store, f, cfg.Password)
				mu.Lock()
				switch {
				case err == nil:
					stats.Created++
				case errors.Is(err, repository.ErrEmailTaken):
					stats.Existing++
				default:
					stats.Failed++
					if firstErr == nil {
						firstErr = err
					}
					log.Warn(ctx, "seeding participant failed", logger.String("email", f.Email), logger.Error(err))
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for _, f := range fakes {
		select {
		case jobs <- f:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "seeding finished",
		logger.Int("created", stats.Created),
		logger.Int("existing", stats.Existing),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration),
	)

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("seeding cancelled: %w", err)
	}
	if firstErr != nil {
		return stats, fmt.Errorf("%d participants failed to seed: %w", stats.Failed, firstErr)
	}
	return stats, nil
}

func enroll(ctx context.Context, store repository.Store, f Fake, password string) error {
	p, err := store.Register(ctx, f.Email, f.FullName, f.Phone)
	if err != nil {
		return err
	}
	if _, err := store.Verify(ctx, p.VerificationToken); err != nil {
		return fmt.Errorf("verify %s: %w", f.Email, err)
	}
	if _, err := store.SetPassword(ctx, p.VerificationToken, password); err != nil {
		return fmt.Errorf("set password for %s: %w", f.Email, err)
	}
	return nil
}
