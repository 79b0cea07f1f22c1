package config

import "strings"

// Auth mode names accepted by AuthConfig.Mode.
const (
	AuthModeStatic = "static"
	AuthModeOIDC   = "oidc"
)

// AuthConfig selects and configures the identity provider. Job state is
// namespaced per identity, so the provider determines whose jobs are
// loaded and persisted.
type AuthConfig struct {
	// Mode is "static" (fixed identity from env, anonymous when unset)
	// or "oidc" (verify bearer tokens against an OIDC issuer).
	Mode string `env:"AUTH_MODE" envDefault:"static"`

	// StaticUserID and StaticEmail define the fixed identity in static
	// mode. Both empty means the anonymous identity.
	StaticUserID string `env:"AUTH_STATIC_USER_ID"`
	StaticEmail  string `env:"AUTH_STATIC_EMAIL"`

	// OIDC issuer and audience, used only in oidc mode.
	OIDCIssuer   string `env:"AUTH_OIDC_ISSUER"`
	OIDCClientID string `env:"AUTH_OIDC_CLIENT_ID"`
}

// Sanitize applies guardrails to auth configuration.
func (c *AuthConfig) Sanitize() {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	switch c.Mode {
	case AuthModeStatic, AuthModeOIDC:
	default:
		c.Mode = AuthModeStatic
	}
	if c.Mode == AuthModeOIDC && strings.TrimSpace(c.OIDCIssuer) == "" {
		// Without an issuer there is nothing to verify against.
		c.Mode = AuthModeStatic
	}
}
