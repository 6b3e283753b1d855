package uploadsvc_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rglek0/Metadata-Editor/internal/domain"
	"github.com/rglek0/Metadata-Editor/internal/repo/upload"
	"github.com/rglek0/Metadata-Editor/internal/svc/uploadsvc"
)

var (
	jpegPayload = "\xFF\xD8\xFF\xE0 not really a photo"
	pngPayload  = "\x89\x50\x4E\x47\x0D\x0A\x1A\x0A not really a photo"
)

type fakeMetaService struct {
	writePaths []string
	writeTags  []domain.TagSet
	writeErr   error

	readPaths []string
	readTags  map[string]any
	readErr   error
}

func (f *fakeMetaService) WriteTags(_ context.Context, path string, tags domain.TagSet) error {
	f.writePaths = append(f.writePaths, path)
	f.writeTags = append(f.writeTags, tags)

	return f.writeErr
}

func (f *fakeMetaService) ReadTags(_ context.Context, path string) (map[string]any, error) {
	f.readPaths = append(f.readPaths, path)

	if f.readErr != nil {
		return nil, f.readErr
	}

	return f.readTags, nil
}

func newTestUploadService(t *testing.T, metaSvc *fakeMetaService) (*uploadsvc.StorageUploadService, uploadsvc.UploadConfig) {
	t.Helper()

	dir := t.TempDir()
	cfg := uploadsvc.UploadConfig{
		OutputDir: filepath.Join(dir, "uploads"),
		TempDir:   filepath.Join(dir, "tmp"),
		MaxSize:   1 << 20,
	}

	svc, err := uploadsvc.NewStorageUploadService(
		context.Background(),
		upload.FileSystemUploadRepositoryFactory(),
		metaSvc,
		cfg,
	)
	require.NoError(t, err)

	return svc, cfg
}

func TestStorageUploadService_Store(t *testing.T) {
	t.Parallel()

	metaSvc := &fakeMetaService{}
	svc, cfg := newTestUploadService(t, metaSvc)

	tags := domain.TagSet{DateTaken: "2024-05-01T10:30", Latitude: 1, Longitude: 2}

	result, err := svc.Store(context.Background(), "photo.jpg", strings.NewReader(jpegPayload), tags)
	require.NoError(t, err)

	assert.Equal(t, "photo.jpg", result.StoredName)
	assert.Equal(t, int64(len(jpegPayload)), result.Size)

	stored, err := os.ReadFile(filepath.Join(cfg.OutputDir, "photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, jpegPayload, string(stored))

	require.Len(t, metaSvc.writePaths, 1)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "photo.jpg"), metaSvc.writePaths[0])
	assert.Equal(t, tags, metaSvc.writeTags[0])
}

func TestStorageUploadService_Store_ResolvesCollisions(t *testing.T) {
	t.Parallel()

	metaSvc := &fakeMetaService{}
	svc, cfg := newTestUploadService(t, metaSvc)
	ctx := context.Background()

	first, err := svc.Store(ctx, "photo.jpg", strings.NewReader(jpegPayload), domain.TagSet{})
	require.NoError(t, err)
	require.Equal(t, "photo.jpg", first.StoredName)

	second, err := svc.Store(ctx, "photo.jpg", strings.NewReader(jpegPayload), domain.TagSet{})
	require.NoError(t, err)
	assert.Equal(t, "photo (1).jpg", second.StoredName)

	assert.FileExists(t, filepath.Join(cfg.OutputDir, "photo.jpg"))
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "photo (1).jpg"))
}

func TestStorageUploadService_Store_RejectsUnsupportedUploads(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		payload  string
	}{
		{"unknown extension", "notes.txt", "hello"},
		{"header mismatch", "photo.jpg", pngPayload},
		{"empty payload", "photo.jpg", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			metaSvc := &fakeMetaService{}
			svc, cfg := newTestUploadService(t, metaSvc)

			_, err := svc.Store(context.Background(), tt.filename, strings.NewReader(tt.payload), domain.TagSet{})
			require.ErrorIs(t, err, domain.ErrFileTypeNotSupported)

			entries, err := os.ReadDir(cfg.OutputDir)
			require.NoError(t, err)
			assert.Empty(t, entries, "rejected upload must not be stored")
			assert.Empty(t, metaSvc.writePaths)
		})
	}
}

func TestStorageUploadService_Store_RemovesFileWhenMetadataFails(t *testing.T) {
	t.Parallel()

	metaSvc := &fakeMetaService{writeErr: domain.ErrMetadataWrite}
	svc, cfg := newTestUploadService(t, metaSvc)

	_, err := svc.Store(context.Background(), "photo.jpg", strings.NewReader(jpegPayload), domain.TagSet{})
	require.ErrorIs(t, err, domain.ErrMetadataWrite)

	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "photo.jpg"))
}

func TestStorageUploadService_Preview(t *testing.T) {
	t.Parallel()

	metaSvc := &fakeMetaService{readTags: map[string]any{"DateTimeOriginal": "2024:05:01 10:30:00"}}
	svc, cfg := newTestUploadService(t, metaSvc)

	tags, err := svc.Preview(context.Background(), "photo.png", strings.NewReader(pngPayload))
	require.NoError(t, err)
	assert.Equal(t, metaSvc.readTags, tags)

	require.Len(t, metaSvc.readPaths, 1)
	assert.Equal(t, ".png", filepath.Ext(metaSvc.readPaths[0]))

	// The staged copy is discarded after reading.
	entries, err := os.ReadDir(cfg.TempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Nothing reaches durable storage.
	entries, err = os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStorageUploadService_Preview_ReadFailure(t *testing.T) {
	t.Parallel()

	metaSvc := &fakeMetaService{readErr: errors.New("engine exploded")}
	svc, cfg := newTestUploadService(t, metaSvc)

	_, err := svc.Preview(context.Background(), "photo.png", strings.NewReader(pngPayload))
	require.Error(t, err)

	// Cleanup still runs on the error path.
	entries, err := os.ReadDir(cfg.TempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStorageUploadService_PredictStoredName(t *testing.T) {
	t.Parallel()

	metaSvc := &fakeMetaService{}
	svc, _ := newTestUploadService(t, metaSvc)
	ctx := context.Background()

	assert.Equal(t, "photo.jpg", svc.PredictStoredName(ctx, "photo.jpg"))

	_, err := svc.Store(ctx, "photo.jpg", strings.NewReader(jpegPayload), domain.TagSet{})
	require.NoError(t, err)

	// Prediction reflects the collision but does not reserve the name.
	assert.Equal(t, "photo (1).jpg", svc.PredictStoredName(ctx, "photo.jpg"))
	assert.Equal(t, "photo (1).jpg", svc.PredictStoredName(ctx, "photo.jpg"))
}
