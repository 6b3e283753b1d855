package tagengine

import "context"

// WriteOptions controls how an Engine write is performed.
type WriteOptions struct {
	// AllowDuplicates enables multi-valued writes, letting a tag be
	// assigned more than once instead of the last value winning.
	AllowDuplicates bool
}

// Engine is the external tag-reading/-writing capability. Implementations
// are opaque: the service never inspects file bytes itself, only tag maps.
type Engine interface {
	// Read returns all embedded tags of the file as a flat map.
	Read(ctx context.Context, path string) (map[string]any, error)

	// Write assigns the given tag values in place.
	Write(ctx context.Context, path string, tags map[string]string, opts WriteOptions) error

	// DeleteAll removes every tag matching any of the given patterns, e.g.
	// "EXIF:all" for a whole tag space or a single tag name. All patterns
	// are cleared in one operation.
	DeleteAll(ctx context.Context, path string, patterns ...string) error
}
