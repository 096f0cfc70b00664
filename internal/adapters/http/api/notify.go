package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/raffle/internal/adapters/repository"
	"github.com/okian/raffle/internal/domain/model"
	"github.com/okian/raffle/pkg/logger"
)

// Notifier delivers participant-facing messages.
type Notifier interface {
	NotifyVerification(ctx context.Context, p repository.Participant) error
	NotifyWinner(ctx context.Context, w repository.Winner) error
}

// Dispatcher hands a notification off for delivery. A queue dispatches
// asynchronously; Deliverer delivers in the caller's goroutine.
type Dispatcher interface {
	Dispatch(ctx context.Context, n model.Notification) error
}

// Deliverer resolves notifications against the store and sends them.
type Deliverer struct {
	store    repository.Store
	notifier Notifier
}

// NewDeliverer creates a Deliverer.
func NewDeliverer(store repository.Store, notifier Notifier) *Deliverer {
	return &Deliverer{store: store, notifier: notifier}
}

// Deliver sends n. A delivered winner notification marks the winner notified.
func (d *Deliverer) Deliver(ctx context.Context, n model.Notification) error {
	switch n.Kind {
	case model.NotifyVerification:
		p, err := d.store.Participant(ctx, n.SubjectID)
		if err != nil {
			return fmt.Errorf("load participant %s: %w", n.SubjectID, err)
		}
		return d.notifier.NotifyVerification(ctx, p)
	case model.NotifyWinner:
		w, err := d.store.Winner(ctx, n.SubjectID)
		if err != nil {
			return fmt.Errorf("load winner %s: %w", n.SubjectID, err)
		}
		if err := d.notifier.NotifyWinner(ctx, w); err != nil {
			return err
		}
		if _, err := d.store.MarkNotified(ctx, w.ID); err != nil {
			return fmt.Errorf("mark winner %s notified: %w", w.ID, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownNotification, n.Kind)
	}
}

// Dispatch implements Dispatcher by delivering immediately.
func (d *Deliverer) Dispatch(ctx context.Context, n model.Notification) error {
	return d.Deliver(ctx, n)
}

// LogNotifier writes messages to the log instead of sending email.
type LogNotifier struct {
	frontendURL string
	logger      logger.Logger
}

// NewLogNotifier builds verification links under frontendURL.
func NewLogNotifier(frontendURL string, l logger.Logger) *LogNotifier {
	if l == nil {
		l = logger.Named("notifier")
	}
	return &LogNotifier{frontendURL: strings.TrimRight(frontendURL, "/"), logger: l}
}

// VerificationLink returns the page a participant opens to verify token.
func (n *LogNotifier) VerificationLink(token string) string {
	return n.frontendURL + "/verify/" + token
}

// NotifyVerification implements Notifier.
func (n *LogNotifier) NotifyVerification(ctx context.Context, p repository.Participant) error {
	n.logger.Info(ctx, "verification email",
		logger.String("to", p.Email),
		logger.String("name", p.FullName),
		logger.String("token", p.VerificationToken),
		logger.String("link", n.VerificationLink(p.VerificationToken)),
	)
	return nil
}

// NotifyWinner implements Notifier.
func (n *LogNotifier) NotifyWinner(ctx context.Context, w repository.Winner) error {
	n.logger.Info(ctx, "winner email",
		logger.String("to", w.Participant.Email),
		logger.String("name", w.Participant.FullName),
		logger.String("prize", w.Prize),
	)
	return nil
}
