package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newDiscoveryServer serves a minimal OIDC discovery document whose issuer is
// the server itself.
func newDiscoveryServer(t *testing.T) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 srv.URL,
			"authorization_endpoint": srv.URL + "/auth",
			"token_endpoint":         srv.URL + "/token",
			"jwks_uri":               srv.URL + "/jwks",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewProvider(t *testing.T) {
	t.Run("requires issuer", func(t *testing.T) {
		_, err := NewProvider(context.Background(), ProviderConfig{ClientID: "app"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "issuer")
	})

	t.Run("requires client id", func(t *testing.T) {
		_, err := NewProvider(context.Background(), ProviderConfig{Issuer: "https://idp"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "client ID")
	})

	t.Run("performs discovery", func(t *testing.T) {
		srv := newDiscoveryServer(t)

		p, err := NewProvider(context.Background(), ProviderConfig{
			Issuer:   srv.URL,
			ClientID: "app",
		})

		require.NoError(t, err)
		require.NotNil(t, p)
	})

	t.Run("accepts a discovery URL as issuer", func(t *testing.T) {
		srv := newDiscoveryServer(t)

		_, err := NewProvider(context.Background(), ProviderConfig{
			Issuer:   srv.URL + "/.well-known/openid-configuration",
			ClientID: "app",
		})

		require.NoError(t, err)
	})

	t.Run("discovery failure is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		_, err := NewProvider(context.Background(), ProviderConfig{
			Issuer:   srv.URL,
			ClientID: "app",
		})

		require.Error(t, err)
	})
}

func TestProvider_Identify(t *testing.T) {
	srv := newDiscoveryServer(t)
	p, err := NewProvider(context.Background(), ProviderConfig{Issuer: srv.URL, ClientID: "app"})
	require.NoError(t, err)

	t.Run("empty credential is rejected", func(t *testing.T) {
		_, err := p.Identify(context.Background(), "  ")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "id token")
	})

	t.Run("malformed token is rejected", func(t *testing.T) {
		_, err := p.Identify(context.Background(), "not-a-jwt")
		require.Error(t, err)
	})
}
