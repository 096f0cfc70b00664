// Package service binds the raffle API operations to the request dispatcher.
package service

import (
	"context"
	"fmt"

	"github.com/okian/raffle/internal/adapters/http/client"
	"github.com/okian/raffle/internal/domain/model"
	"github.com/okian/raffle/pkg/logger"
)

// Service exposes one typed method per API operation.
type Service struct {
	client *client.Client
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service dispatching through c.
func New(c *client.Client, opts ...Option) *Service {
	s := &Service{client: c}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	return s
}

// invoke is the single dispatch routine behind every binding. payload, when
// non-nil, is JSON-encoded as the body; query is appended to the path.
func invoke[T any](ctx context.Context, s *Service, op Operation, payload any, query string) (T, error) {
	ep, ok := Lookup(op)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrUnknownOperation, op)
	}
	s.logger.Debug(ctx, "dispatching",
		logger.String("operation", string(op)),
		logger.String("method", ep.Method),
		logger.String("path", ep.Path+query),
	)
	return client.Do[T](ctx, s.client, ep.Path+query, client.Request{
		Method: ep.Method,
		Body:   payload,
	})
}

// RegisterParticipant enrolls a new participant.
func (s *Service) RegisterParticipant(ctx context.Context, req model.RegistrationRequest) (model.RegistrationResponse, error) {
	return invoke[model.RegistrationResponse](ctx, s, OpRegisterParticipant, req, "")
}

// VerifyEmail confirms the address behind a verification token.
func (s *Service) VerifyEmail(ctx context.Context, token string) (model.ParticipantResponse, error) {
	return invoke[model.ParticipantResponse](ctx, s, OpVerifyEmail, model.VerifyEmailRequest{Token: token}, "")
}

// SetPassword activates a verified participant's account.
func (s *Service) SetPassword(ctx context.Context, req model.SetPasswordRequest) (model.ParticipantResponse, error) {
	return invoke[model.ParticipantResponse](ctx, s, OpSetPassword, req, "")
}

// LoginAdmin authenticates an administrator. The caller decides where to keep
// the returned tokens.
func (s *Service) LoginAdmin(ctx context.Context, email, password string) (model.LoginResponse, error) {
	return invoke[model.LoginResponse](ctx, s, OpLoginAdmin, model.LoginRequest{Email: email, Password: password}, "")
}

// ListParticipants returns one page of participants matching f.
func (s *Service) ListParticipants(ctx context.Context, f model.ParticipantFilter) (model.Page[model.ParticipantSummary], error) {
	return invoke[model.Page[model.ParticipantSummary]](ctx, s, OpListParticipants, nil, participantQuery(f))
}

// Stats returns participation totals.
func (s *Service) Stats(ctx context.Context) (model.Stats, error) {
	return invoke[model.Stats](ctx, s, OpStats, nil, "")
}

// DrawWinner picks a random eligible participant. The request has no body.
func (s *Service) DrawWinner(ctx context.Context) (model.DrawResponse, error) {
	return invoke[model.DrawResponse](ctx, s, OpDrawWinner, nil, "")
}

// ListWinners returns previously drawn winners, newest first.
func (s *Service) ListWinners(ctx context.Context) (model.Page[model.Winner], error) {
	return invoke[model.Page[model.Winner]](ctx, s, OpListWinners, nil, "")
}
