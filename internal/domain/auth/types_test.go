package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIdentity_Namespace(t *testing.T) {
	tests := []struct {
		name     string
		identity Identity
		want     string
	}{
		{"anonymous when unset", Identity{}, AnonymousNamespace},
		{"anonymous when blank", Identity{UserID: "   "}, AnonymousNamespace},
		{"plain user id", Identity{UserID: "alice"}, "alice"},
		{"lowercased", Identity{UserID: "Alice"}, "alice"},
		{"separators replaced", Identity{UserID: "alice:smith/ext"}, "alice_smith_ext"},
		{"email-style id preserved", Identity{UserID: "alice@example.com"}, "alice_example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.identity.Namespace())
		})
	}
}

func TestIdentity_Expired(t *testing.T) {
	now := time.Now()

	assert.False(t, Identity{UserID: "alice"}.Expired(now), "zero expiry never expires")
	assert.False(t, Identity{UserID: "alice", ExpiresAt: now.Add(time.Hour)}.Expired(now))
	assert.True(t, Identity{UserID: "alice", ExpiresAt: now.Add(-time.Minute)}.Expired(now))
}

func TestIdentity_Anonymous(t *testing.T) {
	assert.True(t, Identity{}.Anonymous())
	assert.False(t, Identity{UserID: "bob"}.Anonymous())
}
