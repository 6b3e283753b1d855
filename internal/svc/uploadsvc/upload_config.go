package uploadsvc

// UploadConfig holds configuration parameters for the upload service.
type UploadConfig struct {
	// OutputDir is the directory committed uploads are stored in.
	OutputDir string `env:"OUTPUT_DIR" default:"var/storage/uploads"`

	// TempDir is the directory preview uploads are staged in.
	TempDir string `env:"TEMP_DIR" default:"var/tmp/uploads"`

	// MaxSize is the maximum accepted upload size in bytes.
	MaxSize int64 `env:"MAX_SIZE" default:"67108864"` // 64 MiB
}
