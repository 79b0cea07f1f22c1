package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/promptlab/jobtrack/internal/domain/auth"
)

// IdentityProvider resolves the identity that owns the active job namespace.
type IdentityProvider interface {
	// Identify resolves the identity for the given credential. What the
	// credential is depends on the provider: the OIDC provider expects a raw
	// ID token, the static provider ignores it. An empty credential yields
	// the anonymous identity for providers that allow it.
	Identify(ctx context.Context, credential string) (domainauth.Identity, error)
}
