package upload

import (
	"context"
	"io"
)

// Repository defines the interface for storing uploaded files in a single
// directory under their resolved names.
type Repository interface {
	// Exists reports whether a regular file with the given name exists.
	// Directories and other non-regular entries do not count.
	Exists(ctx context.Context, name string) bool

	// CreateExclusive writes the content to a new file with the given name.
	// It fails with fs.ErrExist if the name is already taken; the creation is
	// atomic, so two concurrent calls for the same name cannot both succeed.
	// Returns the number of bytes written.
	CreateExclusive(ctx context.Context, name string, content io.Reader) (int64, error)

	// Remove deletes the file with the given name.
	Remove(ctx context.Context, name string) error

	// Path returns the full filesystem path for the given name.
	Path(name string) string
}

// RepositoryFactory is a function that creates a Repository rooted at the
// given directory. Returns an error if initialization fails.
type RepositoryFactory func(ctx context.Context, dir string) (Repository, error)
