package user

import (
	"context"

	"github.com/rglek0/Metadata-Editor/internal/domain"
)

// Repository defines the interface for user data persistence.
type Repository interface {
	// CreateUser adds a new user to the repository and returns the stored record.
	// Returns ErrUserAlreadyExists if the username is already taken. Uniqueness
	// is enforced by the storage layer, not by a lookup preceding the insert.
	CreateUser(ctx context.Context, username string, passwordHash []byte, role string) (*domain.User, error)

	// GetUserByUsername retrieves a user by their username.
	// Returns the user object and true if found, or nil and false if not found.
	// Returns an error if the operation fails.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, bool, error)

	// TouchLastLogin records the current time as the user's last successful login.
	TouchLastLogin(ctx context.Context, userID int64) error

	// UpdatePassword replaces the stored password hash for the given username.
	// Returns ErrUserNotFound if the username does not exist.
	UpdatePassword(ctx context.Context, username string, passwordHash []byte) error

	// Close releases any resources held by the repository.
	// Returns an error if cleanup fails.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
// Returns an error if initialization fails.
type RepositoryFactory func() (Repository, error)
