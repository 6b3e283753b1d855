package uploadsvc

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"path"
	"strings"

	// Registered decoders for image probing.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"

	"github.com/rglek0/Metadata-Editor/internal/domain"
)

const (
	MIMETypeJPEG = "image/jpeg"
	MIMETypePNG  = "image/png"
	MIMETypeTIFF = "image/tiff"
)

// sniffLen is the number of leading bytes consulted for the magic header.
const sniffLen = 8

//nolint:gochecknoglobals
var (
	imageExtTypes = map[string]string{
		".jpg":  MIMETypeJPEG,
		".jpeg": MIMETypeJPEG,
		".png":  MIMETypePNG,
		".tiff": MIMETypeTIFF,
		".tif":  MIMETypeTIFF,
	}

	imageExtHeaders = map[string][]string{
		MIMETypeJPEG: {"\xFF\xD8"},
		MIMETypePNG:  {"\x89\x50\x4E\x47\x0D\x0A\x1A\x0A"},
		MIMETypeTIFF: {"\x49\x49\x2A\x00", "\x4D\x4D\x00\x2A"},
	}
)

// SniffImageType determines the MIME type of an upload from its filename
// extension and verifies the file's magic header matches.
// Returns domain.ErrFileTypeNotSupported when the extension is unknown or the
// header disagrees with it.
func SniffImageType(filename string, header []byte) (string, error) {
	ext := strings.ToLower(path.Ext(filename))

	mimeType, ok := imageExtTypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrFileTypeNotSupported, ext)
	}

	for _, magic := range imageExtHeaders[mimeType] {
		if bytes.HasPrefix(header, []byte(magic)) {
			return mimeType, nil
		}
	}

	return "", fmt.Errorf("%w: header mismatch for %q", domain.ErrFileTypeNotSupported, mimeType)
}

// ProbeImageDimensions decodes just enough of the image to report its pixel
// dimensions. Returns domain.ErrFileTypeNotSupported when no registered
// decoder accepts the data.
func ProbeImageDimensions(r io.Reader) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", domain.ErrFileTypeNotSupported, err)
	}

	return cfg.Width, cfg.Height, nil
}
