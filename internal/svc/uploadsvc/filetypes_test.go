package uploadsvc_test

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"github.com/rglek0/Metadata-Editor/internal/domain"
	"github.com/rglek0/Metadata-Editor/internal/svc/uploadsvc"
)

func TestSniffImageType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		header   string
		want     string
		wantErr  bool
	}{
		{"jpeg", "a.jpg", "\xFF\xD8\xFF\xE0....", uploadsvc.MIMETypeJPEG, false},
		{"jpeg alt extension", "a.jpeg", "\xFF\xD8\xFF\xE0....", uploadsvc.MIMETypeJPEG, false},
		{"png", "a.png", "\x89\x50\x4E\x47\x0D\x0A\x1A\x0A", uploadsvc.MIMETypePNG, false},
		{"tiff little endian", "a.tif", "\x49\x49\x2A\x00....", uploadsvc.MIMETypeTIFF, false},
		{"tiff big endian", "a.tiff", "\x4D\x4D\x00\x2A....", uploadsvc.MIMETypeTIFF, false},
		{"uppercase extension", "a.JPG", "\xFF\xD8\xFF\xE0....", uploadsvc.MIMETypeJPEG, false},
		{"unknown extension", "a.gif", "GIF89a..", "", true},
		{"header mismatch", "a.jpg", "\x89\x50\x4E\x47\x0D\x0A\x1A\x0A", "", true},
		{"truncated header", "a.png", "\x89\x50", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := uploadsvc.SniffImageType(tt.filename, []byte(tt.header))
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrFileTypeNotSupported)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProbeImageDimensions(t *testing.T) {
	t.Parallel()

	img := image.NewRGBA(image.Rect(0, 0, 3, 2))

	t.Run("png", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, img))

		width, height, err := uploadsvc.ProbeImageDimensions(&buf)
		require.NoError(t, err)
		assert.Equal(t, 3, width)
		assert.Equal(t, 2, height)
	})

	t.Run("tiff", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, tiff.Encode(&buf, img, nil))

		width, height, err := uploadsvc.ProbeImageDimensions(&buf)
		require.NoError(t, err)
		assert.Equal(t, 3, width)
		assert.Equal(t, 2, height)
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()

		_, _, err := uploadsvc.ProbeImageDimensions(bytes.NewReader([]byte("not an image")))
		require.ErrorIs(t, err, domain.ErrFileTypeNotSupported)
	})
}
