package uploadsvc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/google/uuid"

	"github.com/rglek0/Metadata-Editor/internal/domain"
	"github.com/rglek0/Metadata-Editor/internal/infra/logging"
	"github.com/rglek0/Metadata-Editor/internal/repo/upload"
	"github.com/rglek0/Metadata-Editor/internal/svc/metasvc"
	"github.com/rglek0/Metadata-Editor/internal/util/encoding"
)

// maxCreateRetries bounds how often a lost create race is retried with a
// freshly resolved name.
const maxCreateRetries = 8

// StorageUploadService implements UploadService on top of a filesystem
// upload repository and the metadata service. Committed uploads and preview
// stagings live in separate directories.
type StorageUploadService struct {
	storeRepo upload.Repository
	tempRepo  upload.Repository
	metaSvc   metasvc.MetaService
	cfg       UploadConfig
	log       logging.Logger
}

var _ UploadService = (*StorageUploadService)(nil)

// NewStorageUploadService creates a new StorageUploadService with the given
// configuration. It initializes one repository for committed uploads and one
// for preview stagings.
// Returns an error if either repository initialization fails.
func NewStorageUploadService(
	ctx context.Context,
	repoFactory upload.RepositoryFactory,
	metaSvc metasvc.MetaService,
	cfg UploadConfig,
) (*StorageUploadService, error) {
	log := logging.GetLogger("svc.uploadsvc.storage_upload_service")

	storeRepo, err := repoFactory(ctx, cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("new store repository: %w", err)
	}

	tempRepo, err := repoFactory(ctx, cfg.TempDir)
	if err != nil {
		return nil, fmt.Errorf("new temp repository: %w", err)
	}

	return &StorageUploadService{
		storeRepo: storeRepo,
		tempRepo:  tempRepo,
		metaSvc:   metaSvc,
		cfg:       cfg,
		log:       log,
	}, nil
}

// MaxSize implements UploadService.MaxSize.
func (uploadSvc *StorageUploadService) MaxSize() int64 {
	return uploadSvc.cfg.MaxSize
}

// PredictStoredName implements UploadService.PredictStoredName.
func (uploadSvc *StorageUploadService) PredictStoredName(ctx context.Context, desired string) string {
	return ResolveFilename(desired, func(name string) bool {
		return uploadSvc.storeRepo.Exists(ctx, name)
	})
}

// Store implements UploadService.Store.
func (uploadSvc *StorageUploadService) Store(
	ctx context.Context,
	desired string,
	content io.Reader,
	tags domain.TagSet,
) (result domain.UploadResult, err error) {
	log := uploadSvc.log.With(logging.Group("upload", "filename", desired))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "upload store failed", "error", err)
		} else {
			log.DebugContext(ctx, "upload stored")
		}
	}()

	buffered := bufio.NewReader(content)

	if err := sniffUpload(desired, buffered); err != nil {
		return domain.UploadResult{}, err
	}

	storedName, size, err := uploadSvc.createResolved(ctx, desired, buffered)
	if err != nil {
		return domain.UploadResult{}, fmt.Errorf("create: %w", err)
	}

	log = log.With(logging.Group("upload", "storedName", storedName, "size", size))

	uploadSvc.probeDimensions(ctx, log, uploadSvc.storeRepo.Path(storedName))

	if err := uploadSvc.metaSvc.WriteTags(ctx, uploadSvc.storeRepo.Path(storedName), tags); err != nil {
		if removeErr := uploadSvc.storeRepo.Remove(ctx, storedName); removeErr != nil {
			log.WarnContext(ctx, "remove failed upload", "error", removeErr)
		}

		return domain.UploadResult{}, fmt.Errorf("write tags: %w", err)
	}

	return domain.UploadResult{StoredName: storedName, Size: size}, nil
}

// Preview implements UploadService.Preview.
func (uploadSvc *StorageUploadService) Preview(
	ctx context.Context,
	filename string,
	content io.Reader,
) (tags map[string]any, err error) {
	log := uploadSvc.log.With(logging.Group("upload", "filename", filename))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "upload preview failed", "error", err)
		} else {
			log.DebugContext(ctx, "upload previewed")
		}
	}()

	buffered := bufio.NewReader(content)

	if err := sniffUpload(filename, buffered); err != nil {
		return nil, err
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("new staging id: %w", err)
	}

	stagedName := encoding.EncodeCrockfordB32LC(id[:]) + path.Ext(SanitizeFilename(filename))

	if _, err := uploadSvc.tempRepo.CreateExclusive(ctx, stagedName, buffered); err != nil {
		return nil, fmt.Errorf("stage upload: %w", err)
	}

	defer func() {
		// Staged copies are throwaways; losing one only leaks disk space.
		if removeErr := uploadSvc.tempRepo.Remove(context.WithoutCancel(ctx), stagedName); removeErr != nil {
			log.WarnContext(ctx, "remove staged upload", "error", removeErr)
		}
	}()

	tags, err = uploadSvc.metaSvc.ReadTags(ctx, uploadSvc.tempRepo.Path(stagedName))
	if err != nil {
		return nil, fmt.Errorf("read tags: %w", err)
	}

	return tags, nil
}

// createResolved stores the content under the first free variant of the
// desired name. Exclusive creation closes the race between probing and
// creating; a lost race advances to the next candidate.
func (uploadSvc *StorageUploadService) createResolved(
	ctx context.Context,
	desired string,
	content io.Reader,
) (string, int64, error) {
	for attempt := 0; ; attempt++ {
		name := uploadSvc.PredictStoredName(ctx, desired)

		size, err := uploadSvc.storeRepo.CreateExclusive(ctx, name, content)
		if err == nil {
			return name, size, nil
		}

		if !errors.Is(err, fs.ErrExist) || attempt >= maxCreateRetries {
			return "", 0, err
		}
	}
}

// sniffUpload validates the upload's magic header against its filename
// extension without consuming the reader.
func sniffUpload(filename string, buffered *bufio.Reader) error {
	header, err := buffered.Peek(sniffLen)
	if err != nil && len(header) == 0 {
		return fmt.Errorf("%w: empty upload", domain.ErrFileTypeNotSupported)
	}

	if _, err := SniffImageType(SanitizeFilename(filename), header); err != nil {
		return fmt.Errorf("sniff upload: %w", err)
	}

	return nil
}

func (uploadSvc *StorageUploadService) probeDimensions(ctx context.Context, log logging.Logger, path string) {
	file, err := os.Open(path)
	if err != nil {
		log.WarnContext(ctx, "probe dimensions", "error", err)

		return
	}
	defer file.Close()

	width, height, err := ProbeImageDimensions(file)
	if err != nil {
		log.WarnContext(ctx, "probe dimensions", "error", err)

		return
	}

	log.DebugContext(ctx, "image dimensions", "width", width, "height", height)
}
