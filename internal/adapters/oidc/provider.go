package oidc

// Package oidc verifies bearer ID tokens against an OIDC issuer and maps the
// claims onto the domain identity.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/promptlab/jobtrack/internal/domain/auth"
	"github.com/promptlab/jobtrack/internal/ports"
)

// Provider implements ports.IdentityProvider using go-oidc token verification.
type Provider struct {
	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
}

var _ ports.IdentityProvider = (*Provider)(nil)

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	// Issuer is the OIDC issuer URL. A discovery URL is accepted and
	// normalized to the issuer.
	Issuer string
	// ClientID is the expected audience of presented tokens.
	ClientID string
	// HTTPClient overrides the transport used for discovery and JWKS
	// fetches. Optional, defaults to a 30s-timeout client.
	HTTPClient *http.Client
}

// NewProvider performs OIDC discovery and prepares the token verifier.
func NewProvider(ctx context.Context, config ProviderConfig) (*Provider, error) {
	if config.Issuer == "" {
		return nil, errors.New("issuer is required")
	}
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	issuer := strings.TrimSuffix(config.Issuer, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")

	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	return &Provider{
		oidcProvider: op,
		verifier:     op.Verifier(&gooidc.Config{ClientID: config.ClientID}),
	}, nil
}

// idTokenClaims covers both plain OIDC and AD/ADFS claim shapes.
type idTokenClaims struct {
	Sub            string   `json:"sub"`
	SamAccountName string   `json:"samaccountname"`
	Email          string   `json:"email"`
	Mail           string   `json:"mail"`
	Groups         []string `json:"groups"`
	MemberOf       []string `json:"memberof"`
}

// Identify verifies the raw ID token and maps its claims to an identity.
// An empty credential yields an error: the OIDC provider has no notion of an
// anonymous user.
func (p *Provider) Identify(ctx context.Context, credential string) (domainauth.Identity, error) {
	if strings.TrimSpace(credential) == "" {
		return domainauth.Identity{}, errors.New("id token is required")
	}

	idToken, err := p.verifier.Verify(ctx, credential)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("verify id token: %w", err)
	}

	var claims idTokenClaims
	if err := idToken.Claims(&claims); err != nil {
		return domainauth.Identity{}, fmt.Errorf("parse id token claims: %w", err)
	}

	userID := firstNonEmpty(claims.SamAccountName, claims.Sub)
	if userID == "" {
		return domainauth.Identity{}, errors.New("id token carries no subject")
	}

	groups := claims.Groups
	if len(groups) == 0 {
		groups = claims.MemberOf
	}

	return domainauth.Identity{
		UserID:    userID,
		Email:     firstNonEmpty(claims.Email, claims.Mail),
		Groups:    groups,
		ExpiresAt: idToken.Expiry,
	}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
