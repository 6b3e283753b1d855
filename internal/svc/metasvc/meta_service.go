package metasvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/rglek0/Metadata-Editor/internal/domain"
	"github.com/rglek0/Metadata-Editor/internal/infra/logging"
	"github.com/rglek0/Metadata-Editor/internal/svc/metasvc/tagengine"
)

// MetaService defines the interface for embedded-metadata operations on
// stored files.
type MetaService interface {
	// WriteTags commits the tag set to the file at path, working through the
	// primary-write / repair / alternate-space fallback chain. The file is
	// never renamed or moved. Returns domain.ErrMetadataWrite only after
	// every applicable strategy has failed.
	WriteTags(ctx context.Context, path string, tags domain.TagSet) error

	// ReadTags returns the file's embedded tags without modifying the file.
	ReadTags(ctx context.Context, path string) (map[string]any, error)
}

// EngineMetaService implements MetaService on top of an opaque tag engine.
type EngineMetaService struct {
	engine tagengine.Engine
	log    logging.Logger
}

var _ MetaService = (*EngineMetaService)(nil)

// NewEngineMetaService creates a new EngineMetaService using the given engine.
func NewEngineMetaService(engine tagengine.Engine) *EngineMetaService {
	return &EngineMetaService{
		engine: engine,
		log:    logging.GetLogger("svc.metasvc.meta_service"),
	}
}

// WriteTags implements MetaService.WriteTags.
//
// The sequence is bounded: at most one clear, two primary writes and one
// alternate write per call. No success path touches both tag spaces.
func (s *EngineMetaService) WriteTags(ctx context.Context, path string, tags domain.TagSet) (err error) {
	log := s.log.With(logging.Group("write",
		"path", path,
		"repair", tags.RepairBeforeWrite,
		"preferAlternate", tags.PreferAlternate,
	))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "metadata write failed", "error", err)
		} else {
			log.DebugContext(ctx, "metadata written")
		}
	}()

	// The caller asked for the alternate space outright: write it and
	// surface any failure directly, no fallback.
	if tags.PreferAlternate {
		if err := s.writeAlternate(ctx, path, tags); err != nil {
			return errors.Join(domain.ErrMetadataWrite, err)
		}

		return nil
	}

	cleared := false

	if tags.RepairBeforeWrite {
		// A failed clear is advisory: an absent or degenerate primary
		// container is the usual reason a repair was requested, and the
		// structured write may still succeed.
		if err := s.clearPrimary(ctx, path); err != nil {
			log.WarnContext(ctx, "pre-write clear failed", "error", err)
		}

		cleared = true
	}

	primaryErr := s.writePrimary(ctx, path, tags)
	if primaryErr == nil {
		return nil
	}

	kind := tagengine.Classify(primaryErr)
	log.WarnContext(ctx, "primary write failed", "error", primaryErr, "kind", int(kind))

	if tags.RepairBeforeWrite || kind != tagengine.FailureGeneric {
		// Repair and retry the structured write once. Skip the clear if one
		// already ran for this request.
		if !cleared {
			if err := s.clearPrimary(ctx, path); err != nil {
				log.WarnContext(ctx, "repair clear failed", "error", err)
			}
		}

		if err := s.writePrimary(ctx, path, tags); err == nil {
			return nil
		} else {
			log.WarnContext(ctx, "primary retry failed", "error", err)
		}
	}

	// Last resort: the alternate tag space.
	if err := s.writeAlternate(ctx, path, tags); err != nil {
		return errors.Join(domain.ErrMetadataWrite, err)
	}

	return nil
}

// ReadTags implements MetaService.ReadTags.
func (s *EngineMetaService) ReadTags(ctx context.Context, path string) (tags map[string]any, err error) {
	defer func() {
		log := s.log.With(logging.Group("read", "path", path))
		if err != nil {
			log.ErrorContext(ctx, "metadata read failed", "error", err)
		} else {
			log.DebugContext(ctx, "metadata read", "tags", len(tags))
		}
	}()

	tags, err = s.engine.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read tags: %w", err)
	}

	return tags, nil
}

func (s *EngineMetaService) writePrimary(ctx context.Context, path string, tags domain.TagSet) error {
	//nolint:exhaustruct
	if err := s.engine.Write(ctx, path, canonicalTags(GroupPrimary, tags), tagengine.WriteOptions{}); err != nil {
		return fmt.Errorf("write primary: %w", err)
	}

	return nil
}

func (s *EngineMetaService) writeAlternate(ctx context.Context, path string, tags domain.TagSet) error {
	opts := tagengine.WriteOptions{AllowDuplicates: true}

	if err := s.engine.Write(ctx, path, canonicalTags(GroupAlternate, tags), opts); err != nil {
		return fmt.Errorf("write alternate: %w", err)
	}

	return nil
}

// clearPrimary destructively removes every primary-space tag and the
// vendor-proprietary maker-note block in one engine operation.
func (s *EngineMetaService) clearPrimary(ctx context.Context, path string) error {
	if err := s.engine.DeleteAll(ctx, path, GroupPrimary+":all", TagMakerNotes); err != nil {
		return fmt.Errorf("clear primary: %w", err)
	}

	return nil
}
