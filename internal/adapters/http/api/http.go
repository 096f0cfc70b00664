// Package api serves the raffle REST surface backed by a repository.Store.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/raffle/internal/adapters/repository"
	"github.com/okian/raffle/internal/domain/model"
	"github.com/okian/raffle/pkg/logger"
)

const defaultPageSize = 10

// Server wires HTTP routes for the raffle API.
type Server struct {
	store      repository.Store
	notifier   Notifier
	dispatcher Dispatcher
	logger     logger.Logger
	pageSize   int
	router     chi.Router

	healthHandler *HealthHandler
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets a custom logger for the server.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNotifier sets how verification and winner messages are delivered.
func WithNotifier(n Notifier) Option {
	return func(s *Server) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithDispatcher routes notifications through d, typically a queue drained
// by background workers. Without it notifications are delivered inline.
func WithDispatcher(d Dispatcher) Option {
	return func(s *Server) {
		if d != nil {
			s.dispatcher = d
		}
	}
}

// WithPageSize sets the list page size.
func WithPageSize(size int) Option {
	return func(s *Server) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(store repository.Store, opts ...Option) *Server {
	s := &Server{
		store:         store,
		pageSize:      defaultPageSize,
		router:        chi.NewRouter(),
		healthHandler: NewHealthHandler(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("api")
	}
	if s.notifier == nil {
		s.notifier = NewLogNotifier("", s.logger)
	}
	if s.dispatcher == nil {
		s.dispatcher = NewDeliverer(store, s.notifier)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))

	r.Post("/participants/register/", MetricsMiddleware(s.handleRegister, "register"))
	r.Post("/participants/verify-email/", MetricsMiddleware(s.handleVerifyEmail, "verify_email"))
	r.Post("/participants/set-password/", MetricsMiddleware(s.handleSetPassword, "set_password"))
	r.Post("/auth/login/", MetricsMiddleware(s.handleLogin, "login"))

	r.Group(func(r chi.Router) {
		r.Use(s.RequireAdmin)
		r.Get("/admin/participants/", MetricsMiddleware(s.handleListParticipants, "participants"))
		r.Get("/admin/participants/stats/", MetricsMiddleware(s.handleStats, "stats"))
		r.Get("/admin/participants/{id}/", MetricsMiddleware(s.handleGetParticipant, "participant"))
		r.Post("/admin/winners/draw/", MetricsMiddleware(s.handleDraw, "draw"))
		r.Get("/admin/winners/", MetricsMiddleware(s.handleListWinners, "winners"))
		r.Get("/admin/winners/{id}/", MetricsMiddleware(s.handleGetWinner, "winner"))
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusNotFound, msgNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %q not allowed.", r.Method))
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// dispatch hands a notification to the dispatcher. Failures are logged and
// never fail the request.
func (s *Server) dispatch(ctx context.Context, kind model.NotificationKind, subjectID string) {
	n := model.Notification{Kind: kind, SubjectID: subjectID, EnqueuedAt: time.Now()}
	if err := s.dispatcher.Dispatch(ctx, n); err != nil {
		s.logger.Warn(ctx, "notification not delivered",
			logger.String("kind", string(kind)),
			logger.String("subject_id", subjectID),
			logger.Error(err),
		)
	}
}

// fieldErrors maps a request field to its validation messages.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, msg string) {
	f[field] = append(f[field], msg)
}

// decodeBody reads an optional JSON object into v. An empty body leaves v
// untouched so required-field checks report the missing fields.
func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("%w - %w", ErrMalformedJSON, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w - %w", ErrMalformedJSON, err)
	}
	return nil
}

// requireString validates a required, non-blank string field.
func requireString(errs fieldErrors, field string, v *string) string {
	switch {
	case v == nil:
		errs.add(field, msgRequired)
		return ""
	case *v == "":
		errs.add(field, msgBlank)
		return ""
	}
	return *v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type detailResponse struct {
	Detail string `json:"detail"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) internalError(ctx context.Context, w http.ResponseWriter, err error) {
	s.logger.Error(ctx, "request failed", logger.Error(err))
	writeDetail(w, http.StatusInternalServerError, "A server error occurred.")
}

// badBody reports a decode failure or a set of field errors. It returns false
// when neither applies.
func badBody(w http.ResponseWriter, decodeErr error, errs fieldErrors) bool {
	switch {
	case errors.Is(decodeErr, ErrMalformedJSON):
		writeDetail(w, http.StatusBadRequest, decodeErr.Error())
		return true
	case len(errs) > 0:
		writeJSON(w, http.StatusBadRequest, errs)
		return true
	}
	return false
}
