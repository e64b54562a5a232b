// Package lockout throttles repeated failed sign-in attempts per login
// identity. It is advisory hardening for the credential endpoints; a nil
// *Service disables it entirely.
package lockout

import (
	"context"
	"errors"
	"log/slog"
	"time"

	dErrors "schemeportal/pkg/domain-errors"
)

// Store counts failures within a rolling window.
type Store interface {
	// RecordFailure increments the failure count for key and returns the
	// new count. The first failure starts the window.
	RecordFailure(ctx context.Context, key string, window time.Duration) (int, error)
	// Failures returns the current failure count for key (0 if none).
	Failures(ctx context.Context, key string) (int, error)
	// Clear removes the failure record for key.
	Clear(ctx context.Context, key string) error
}

// Config tunes the throttle.
type Config struct {
	MaxFailures int
	Window      time.Duration
}

func DefaultConfig() Config {
	return Config{MaxFailures: 5, Window: 15 * time.Minute}
}

type Service struct {
	store  Store
	config Config
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithConfig(cfg Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("lockout store is required")
	}
	svc := &Service{store: store, config: DefaultConfig()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Check fails with an unauthorized error when the identity has exhausted its
// attempts for the current window. A nil receiver allows callers to skip
// wiring a store in deployments without Redis.
func (s *Service) Check(ctx context.Context, identity string) error {
	if s == nil {
		return nil
	}
	count, err := s.store.Failures(ctx, identity)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check login throttle")
	}
	if count >= s.config.MaxFailures {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "login locked out", "identity", identity, "failures", count)
		}
		return dErrors.New(dErrors.CodeUnauthorized, "too many failed attempts, try again later")
	}
	return nil
}

// RecordFailure counts one failed attempt against the identity.
func (s *Service) RecordFailure(ctx context.Context, identity string) {
	if s == nil {
		return
	}
	if _, err := s.store.RecordFailure(ctx, identity, s.config.Window); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to record login failure", "error", err)
	}
}

// Clear resets the failure count after a successful sign-in.
func (s *Service) Clear(ctx context.Context, identity string) {
	if s == nil {
		return
	}
	if err := s.store.Clear(ctx, identity); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to clear login failures", "error", err)
	}
}
