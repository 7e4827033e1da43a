// Package oauthstore holds in-flight OAuth 1.0a request tokens between the
// authorization-url step and the provider callback. The callback carries no
// platform session, so the provider-issued request token is the only
// correlation key back to the user who started the handshake.
package oauthstore

import (
	"context"
	"time"
)

// DefaultTTL matches Twitter's request-token lifetime. Entries older than
// this are unusable at the provider anyway.
const DefaultTTL = 15 * time.Minute

// Pending is the state held for one handshake.
type Pending struct {
	RequestSecret string    `json:"request_secret"`
	UserID        int64     `json:"user_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store keys Pending entries by request token. Entries are write-once,
// read-once: Take consumes the entry so a replayed callback finds nothing.
type Store interface {
	Put(ctx context.Context, requestToken string, p Pending) error
	Take(ctx context.Context, requestToken string) (*Pending, bool, error)
}
