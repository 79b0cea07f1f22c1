// Package auth contains domain-level types for the authenticated identity that
// scopes all persisted job state.
package auth

import (
	"strings"
	"time"
)

// AnonymousNamespace is the storage namespace used when no identity is set.
const AnonymousNamespace = "anonymous"

// Identity describes the authenticated user that owns a job namespace.
type Identity struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	Groups    []string  `json:"groups,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Anonymous reports whether the identity is unset.
func (i Identity) Anonymous() bool {
	return strings.TrimSpace(i.UserID) == ""
}

// Expired reports whether the identity has an expiry in the past.
func (i Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// Namespace derives the storage namespace for this identity. All persisted
// keys for one identity live under this namespace, so one user's jobs never
// leak into another user's view.
func (i Identity) Namespace() string {
	if i.Anonymous() {
		return AnonymousNamespace
	}
	return sanitizeNamespace(i.UserID)
}

// sanitizeNamespace lowercases the user id and replaces characters that would
// collide with the store's key separators.
func sanitizeNamespace(userID string) string {
	v := strings.ToLower(strings.TrimSpace(userID))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, v)
}
