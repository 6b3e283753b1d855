package uploadsvc

import (
	"context"
	"io"

	"github.com/rglek0/Metadata-Editor/internal/domain"
)

// UploadService defines the interface for accepting image uploads, committing
// them to storage under collision-free names and embedding their metadata.
type UploadService interface {
	// MaxSize returns the maximum accepted upload size in bytes.
	MaxSize() int64

	// PredictStoredName returns the name the upload would be stored under
	// right now, without reserving it.
	PredictStoredName(ctx context.Context, desired string) string

	// Store validates the upload, saves it under a collision-free name and
	// writes the declared metadata into the stored file.
	// Returns domain.ErrFileTypeNotSupported for non-image payloads and
	// domain.ErrMetadataWrite when every metadata write strategy failed.
	Store(ctx context.Context, desired string, content io.Reader, tags domain.TagSet) (domain.UploadResult, error)

	// Preview stages the upload in temporary storage, reads the metadata
	// already embedded in it and discards the staged copy.
	Preview(ctx context.Context, filename string, content io.Reader) (map[string]any, error)
}
