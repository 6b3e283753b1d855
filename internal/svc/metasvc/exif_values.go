package metasvc

import (
	"strconv"
	"time"

	"github.com/rglek0/Metadata-Editor/internal/domain"
)

// Tag space group prefixes understood by the engine. EXIF is the file's
// native structured container; XMP is the more permissive fallback container.
const (
	GroupPrimary   = "EXIF"
	GroupAlternate = "XMP"
)

// TagMakerNotes is the vendor-proprietary sub-field that corrupts writes on
// some camera-written files. It is cleared alongside the primary space and
// never written.
const TagMakerNotes = "MakerNotes"

const (
	tagDateTimeOriginal = "DateTimeOriginal"
	tagGPSLatitude      = "GPSLatitude"
	tagGPSLongitude     = "GPSLongitude"
	tagGPSLatitudeRef   = "GPSLatitudeRef"
	tagGPSLongitudeRef  = "GPSLongitudeRef"
)

// exifTimestampLayout is the colon-delimited timestamp format of embedded
// metadata containers.
const exifTimestampLayout = "2006:01:02 15:04:05"

//nolint:gochecknoglobals
var dateTimeInputLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ConvertDateTime converts a local date-and-time input (as produced by an
// HTML datetime-local control) into the metadata timestamp format, e.g.
// "2024-05-01T10:30" -> "2024:05:01 10:30:00". Input that matches no known
// layout is passed through unchanged.
func ConvertDateTime(input string) string {
	for _, layout := range dateTimeInputLayouts {
		if t, err := time.Parse(layout, input); err == nil {
			return t.Format(exifTimestampLayout)
		}
	}

	return input
}

// LatitudeRef derives the hemisphere reference letter from the sign of the
// latitude. Zero is treated as non-negative.
func LatitudeRef(latitude float64) string {
	if latitude >= 0 {
		return "N"
	}

	return "S"
}

// LongitudeRef derives the hemisphere reference letter from the sign of the
// longitude. Zero is treated as non-negative.
func LongitudeRef(longitude float64) string {
	if longitude >= 0 {
		return "E"
	}

	return "W"
}

// canonicalTags builds the canonical tag assignment for the given tag space
// group: capture timestamp, coordinates and sign-derived hemisphere refs.
func canonicalTags(group string, tags domain.TagSet) map[string]string {
	return map[string]string{
		group + ":" + tagDateTimeOriginal: ConvertDateTime(tags.DateTaken),
		group + ":" + tagGPSLatitude:      strconv.FormatFloat(tags.Latitude, 'f', -1, 64),
		group + ":" + tagGPSLongitude:     strconv.FormatFloat(tags.Longitude, 'f', -1, 64),
		group + ":" + tagGPSLatitudeRef:   LatitudeRef(tags.Latitude),
		group + ":" + tagGPSLongitudeRef:  LongitudeRef(tags.Longitude),
	}
}
