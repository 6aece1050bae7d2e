// Package storage defines persistence contracts for the REST server.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a missing or expired record.
	ErrNotFound = errors.New("record not found")
)

// CacheStore keeps serialized upstream responses until they expire.
type CacheStore interface {
	GetCached(ctx context.Context, key string, now time.Time) ([]byte, error)
	PutCached(ctx context.Context, key string, value []byte, expiresAt time.Time) error
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Session is a logged-in game account bound to an issued token.
type Session struct {
	ID        string
	AccountID int
	PlayerID  int
	Name      string
	// GJP is the encoded account password needed by authenticated
	// endpoints.
	GJP       string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionStore persists REST sessions.
type SessionStore interface {
	PutSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, id string, now time.Time) (Session, error)
	DeleteSession(ctx context.Context, id string) error
}
