package session

import (
	"context"

	"github.com/rglek0/Metadata-Editor/internal/domain"
)

// Repository defines the interface for durable session persistence.
// Sessions survive process restarts.
type Repository interface {
	// Put stores a new session.
	Put(ctx context.Context, session *domain.Session) error

	// Get retrieves a session by its ID.
	// Returns the session and true if found, or nil and false if not found.
	Get(ctx context.Context, id string) (*domain.Session, bool, error)

	// Delete removes a session by its ID. Deleting an absent session is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes all sessions whose expiry lies at or before the
	// given Unix timestamp. Returns the number of sessions removed.
	DeleteExpired(ctx context.Context, now int64) (int64, error)

	// Close releases any resources held by the repository.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
// Returns an error if initialization fails.
type RepositoryFactory func() (Repository, error)
