package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/promptlab/jobtrack/internal/domain/auth"
	"github.com/promptlab/jobtrack/internal/observability/metrics"
	"github.com/promptlab/jobtrack/internal/observability/statsd"
)

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	Registry *RegistryService // Required: job registry
	Logger   *slog.Logger     // Optional: structured logger
	Metrics  statsd.Sink      // Optional: metrics sink (StatsD-compatible)
}

// SessionService binds the job registry to the authenticated identity.
//
// Each identity sees only its own namespace. Switching identities reloads
// the registry from that namespace's persisted state; logging out purges
// the departing identity's state and drops back to anonymous.
type SessionService struct {
	registry *RegistryService
	logger   *slog.Logger
	metrics  statsd.Sink

	mu       sync.Mutex
	identity auth.Identity
	now      func() time.Time
}

// NewSessionService constructs a new SessionService starting anonymous.
func NewSessionService(opts SessionServiceOptions) (*SessionService, error) {
	if opts.Registry == nil {
		return nil, errors.New("RegistryService is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "session_service")
	}

	return &SessionService{
		registry: opts.Registry,
		logger:   logger,
		metrics:  opts.Metrics,
		identity: auth.Identity{},
		now:      time.Now,
	}, nil
}

// MustNewSessionService constructs a new SessionService and wraps any error.
func MustNewSessionService(opts SessionServiceOptions) (*SessionService, error) {
	svc, err := NewSessionService(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create SessionService: %w", err)
	}
	return svc, nil
}

// Identity returns the active identity.
func (s *SessionService) Identity() auth.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Start hydrates the registry for the current identity. Call once after
// construction.
func (s *SessionService) Start(ctx context.Context) {
	s.mu.Lock()
	namespace := s.identity.Namespace()
	s.mu.Unlock()

	s.registry.Reload(ctx, namespace)
}

// SetIdentity switches the session to the given identity. Switching to an
// identity in the same namespace is a no-op; otherwise the registry is
// reloaded from the new namespace's persisted state. An identity whose
// expiry has already passed never opens its namespace; the session stays
// anonymous instead.
func (s *SessionService) SetIdentity(ctx context.Context, identity auth.Identity) {
	if identity.Expired(s.now()) {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "identity already expired, staying anonymous",
				"namespace", identity.Namespace(),
			)
		}
		identity = auth.Identity{}
	}

	s.mu.Lock()
	previous := s.identity.Namespace()
	s.identity = identity
	next := identity.Namespace()
	s.mu.Unlock()

	if next == previous {
		s.count("session.set_identity", metrics.ResultNoop)
		return
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "identity changed",
			"previous_namespace", previous,
			"namespace", next,
		)
	}
	s.registry.Reload(ctx, next)
	s.count("session.set_identity", metrics.ResultSuccess)
}

// Logout purges the departing identity's persisted job state and resets the
// session to anonymous. Logging out while anonymous still clears any
// anonymous state.
func (s *SessionService) Logout(ctx context.Context) {
	s.mu.Lock()
	departing := s.identity.Namespace()
	s.identity = auth.Identity{}
	s.mu.Unlock()

	s.registry.ClearAll(ctx)
	s.registry.Teardown()
	if departing != auth.AnonymousNamespace {
		s.registry.Reload(ctx, auth.AnonymousNamespace)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "logged out", "namespace", departing)
	}
	s.count("session.logout", metrics.ResultSuccess)
}

func (s *SessionService) count(name, result string) {
	if s.metrics != nil {
		s.metrics.Count(name, 1, map[string]string{"result": result})
	}
}
