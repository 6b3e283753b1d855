package domain

// TagSet holds the user-declared metadata values for one upload, plus the
// caller's write-mode intents.
type TagSet struct {
	// DateTaken is the capture timestamp as entered by the user,
	// typically "2006-01-02T15:04" or "2006-01-02T15:04:05".
	DateTaken string
	// Latitude in decimal degrees, negative for the southern hemisphere.
	Latitude float64
	// Longitude in decimal degrees, negative for the western hemisphere.
	Longitude float64

	// RepairBeforeWrite requests a destructive clear of the primary tag
	// space before the structured write.
	RepairBeforeWrite bool
	// PreferAlternate requests the write to go straight to the alternate
	// tag space, skipping the primary space entirely.
	PreferAlternate bool
}

// UploadResult reports the outcome of a committed upload.
type UploadResult struct {
	// StoredName is the collision-resolved filename on durable storage.
	StoredName string `json:"storedName"`
	// Size is the stored file size in bytes.
	Size int64 `json:"size"`
}
