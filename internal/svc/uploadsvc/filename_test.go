package uploadsvc_test

import (
	"testing"

	"github.com/rglek0/Metadata-Editor/internal/svc/uploadsvc"
)

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain name", "photo.jpg", "photo.jpg"},
		{"unix path stripped", "holiday/photo.jpg", "photo.jpg"},
		{"windows path stripped", "C:\\Users\\me\\photo.jpg", "photo.jpg"},
		{"traversal stripped", "../../x.png", "x.png"},
		{"whitespace trimmed", "  photo.jpg  ", "photo.jpg"},
		{"empty falls back", "", "image"},
		{"dot falls back", ".", "image"},
		{"dotdot falls back", "..", "image"},
		{"separator only falls back", "/", "image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := uploadsvc.SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolveFilename(t *testing.T) {
	t.Parallel()

	taken := func(names ...string) func(string) bool {
		set := make(map[string]bool, len(names))
		for _, name := range names {
			set[name] = true
		}

		return func(name string) bool { return set[name] }
	}

	tests := []struct {
		name    string
		desired string
		exists  func(string) bool
		want    string
	}{
		{"free name unchanged", "a.jpg", taken(), "a.jpg"},
		{"first collision", "a.jpg", taken("a.jpg"), "a (1).jpg"},
		{"second collision", "a.jpg", taken("a.jpg", "a (1).jpg"), "a (2).jpg"},
		{"gap is reused", "a.jpg", taken("a.jpg", "a (2).jpg"), "a (1).jpg"},
		{"no extension", "notes", taken("notes"), "notes (1)"},
		{"multiple dots keep last ext", "archive.tar.gz", taken("archive.tar.gz"), "archive.tar (1).gz"},
		{"path is sanitized before probing", "../../x.png", taken("x.png"), "x (1).png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := uploadsvc.ResolveFilename(tt.desired, tt.exists); got != tt.want {
				t.Errorf("ResolveFilename(%q) = %q, want %q", tt.desired, got, tt.want)
			}
		})
	}
}
