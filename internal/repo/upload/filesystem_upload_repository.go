package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rglek0/Metadata-Editor/internal/infra/logging"
)

// ErrBytesWrittenMismatch is returned when the stored file size does not
// match the number of bytes copied from the upload.
var ErrBytesWrittenMismatch = errors.New("bytes written mismatch")

// FileSystemRepository implements Repository using a flat directory on the
// local filesystem. Names are stored as-is; collision handling is the
// caller's concern via CreateExclusive.
type FileSystemRepository struct {
	dir string
	log logging.Logger
}

var _ Repository = (*FileSystemRepository)(nil)

// FileSystemUploadRepositoryFactory returns a factory creating filesystem
// repositories. The factory function implements the RepositoryFactory type.
func FileSystemUploadRepositoryFactory() RepositoryFactory {
	return NewFileSystemUploadRepository
}

// NewFileSystemUploadRepository creates a new FileSystemRepository rooted at
// dir, creating the directory if needed.
func NewFileSystemUploadRepository(ctx context.Context, dir string) (Repository, error) {
	log := logging.GetLogger("repo.upload.filesystem_repository").With(
		logging.Group("repo", "dir", dir),
	)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.ErrorContext(ctx, "init storage failed", "error", err)

		return nil, fmt.Errorf("mkdir all: %w", err)
	}

	log.DebugContext(ctx, "init storage")

	return &FileSystemRepository{
		dir: dir,
		log: log,
	}, nil
}

// Path implements Repository.Path.
func (fsRepo *FileSystemRepository) Path(name string) string {
	return filepath.Join(fsRepo.dir, name)
}

// Exists implements Repository.Exists. Only a regular file counts as taken;
// a directory or device node at the path leaves the name available.
func (fsRepo *FileSystemRepository) Exists(ctx context.Context, name string) bool {
	info, err := os.Stat(fsRepo.Path(name))
	if err != nil {
		return false
	}

	return info.Mode().IsRegular()
}

// CreateExclusive implements Repository.CreateExclusive.
func (fsRepo *FileSystemRepository) CreateExclusive(
	ctx context.Context,
	name string,
	content io.Reader,
) (written int64, err error) {
	filename := fsRepo.Path(name)

	defer func() {
		log := fsRepo.log.With(logging.Group("file", "name", name))
		if err != nil {
			log.ErrorContext(ctx, "file store failed", "error", err)
		} else {
			log.DebugContext(ctx, "file stored", "size", written)
		}
	}()

	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open: %w", err)
	}
	defer file.Close()

	written, err = io.Copy(file, content)
	if err != nil {
		return written, fmt.Errorf("copy: %w", err)
	}

	if err := file.Sync(); err != nil {
		return written, fmt.Errorf("sync: %w", err)
	}

	if info, err := file.Stat(); err != nil {
		return written, fmt.Errorf("stat: %w", err)
	} else if info.Size() != written {
		return written, fmt.Errorf("%w: expected %d, got %d", ErrBytesWrittenMismatch, written, info.Size())
	}

	return written, nil
}

// Remove implements Repository.Remove.
func (fsRepo *FileSystemRepository) Remove(ctx context.Context, name string) (err error) {
	defer func() {
		log := fsRepo.log.With(logging.Group("file", "name", name))
		if err != nil {
			log.ErrorContext(ctx, "file remove failed", "error", err)
		} else {
			log.DebugContext(ctx, "file removed")
		}
	}()

	if err := os.Remove(fsRepo.Path(name)); err != nil {
		return fmt.Errorf("remove: %w", err)
	}

	return nil
}
