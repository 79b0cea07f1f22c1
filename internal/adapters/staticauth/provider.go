package staticauth

// Package staticauth provides a config-driven IdentityProvider for local
// development and single-user deployments.

import (
	"context"
	"time"

	domainauth "github.com/promptlab/jobtrack/internal/domain/auth"
	"github.com/promptlab/jobtrack/internal/ports"
)

// Config controls the static identity. An empty UserID means every caller is
// anonymous.
type Config struct {
	UserID          string
	Email           string
	Groups          []string
	SessionDuration time.Duration // default 8h when zero
}

// Provider implements ports.IdentityProvider with a fixed identity from
// configuration. The credential argument is ignored.
type Provider struct {
	config Config
}

var _ ports.IdentityProvider = (*Provider)(nil)

// NewProvider constructs a static identity provider from Config.
func NewProvider(cfg Config) *Provider {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = 8 * time.Hour
	}
	return &Provider{config: cfg}
}

// Identify returns the configured identity with a fresh expiry, or the
// anonymous identity when no user id is configured.
func (p *Provider) Identify(_ context.Context, _ string) (domainauth.Identity, error) {
	if p.config.UserID == "" {
		return domainauth.Identity{}, nil
	}
	return domainauth.Identity{
		UserID:    p.config.UserID,
		Email:     p.config.Email,
		Groups:    append([]string(nil), p.config.Groups...),
		ExpiresAt: time.Now().Add(p.config.SessionDuration),
	}, nil
}
