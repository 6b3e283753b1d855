package uploadsvc

import (
	"fmt"
	"path"
	"strings"
)

// fallbackStem names uploads whose sanitized filename comes out empty.
const fallbackStem = "image"

// SanitizeFilename reduces a client-supplied filename to its final path
// segment. Both separator styles are normalized first so a name like
// `..\..\x.png` cannot escape the storage directory. An empty result falls
// back to "image".
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = strings.TrimSpace(name)

	if name == "" || name == "." || name == ".." || name == "/" {
		return fallbackStem
	}

	return name
}

// ResolveFilename finds the first free variant of the desired filename.
// The desired name itself is tried first, then "stem (1).ext", "stem (2).ext"
// and so on until exists reports a free slot. The input is sanitized before
// probing.
func ResolveFilename(desired string, exists func(name string) bool) string {
	desired = SanitizeFilename(desired)

	stem, ext := splitStemExt(desired)

	candidate := desired
	for counter := 1; exists(candidate); counter++ {
		candidate = fmt.Sprintf("%s (%d)%s", stem, counter, ext)
	}

	return candidate
}

// splitStemExt splits "photo.jpg" into ("photo", ".jpg"). A leading dot, as
// in ".gitignore", is part of the stem rather than an extension.
func splitStemExt(name string) (string, string) {
	ext := path.Ext(name)
	if ext == name {
		return name, ""
	}

	return strings.TrimSuffix(name, ext), ext
}
