package tagengine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rglek0/Metadata-Editor/internal/infra/logging"
)

// ErrEmptyReadResult is returned when the engine produced no tag output for a file.
var ErrEmptyReadResult = errors.New("empty read result")

// ExiftoolEngineConfig holds configuration for the exiftool-backed engine.
type ExiftoolEngineConfig struct {
	// Binary is the exiftool executable name or path.
	Binary string `env:"EXIFTOOL_BIN" default:"exiftool"`
}

// ExiftoolEngine implements Engine by shelling out to exiftool.
type ExiftoolEngine struct {
	cfg ExiftoolEngineConfig
	log logging.Logger
}

var _ Engine = (*ExiftoolEngine)(nil)

// NewExiftoolEngine creates a new ExiftoolEngine with the given configuration.
func NewExiftoolEngine(cfg ExiftoolEngineConfig) *ExiftoolEngine {
	return &ExiftoolEngine{
		cfg: cfg,
		log: logging.GetLogger("svc.metasvc.tagengine.exiftool_engine"),
	}
}

// Read implements Engine.Read via `exiftool -json -n`.
func (e *ExiftoolEngine) Read(ctx context.Context, path string) (map[string]any, error) {
	out, err := e.run(ctx, "-json", "-n", path)
	if err != nil {
		return nil, fmt.Errorf("read tags: %w", err)
	}

	var results []map[string]any
	if err := json.Unmarshal(out, &results); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}

	if len(results) == 0 {
		return nil, ErrEmptyReadResult
	}

	return results[0], nil
}

// Write implements Engine.Write. Tags are assigned in place; numeric values
// are expected in decimal form (-n).
func (e *ExiftoolEngine) Write(
	ctx context.Context,
	path string,
	tags map[string]string,
	opts WriteOptions,
) error {
	args := []string{"-n", "-overwrite_original"}

	if opts.AllowDuplicates {
		args = append(args, "-a")
	}

	for tag, value := range tags {
		args = append(args, fmt.Sprintf("-%s=%s", tag, value))
	}

	args = append(args, path)

	if _, err := e.run(ctx, args...); err != nil {
		return fmt.Errorf("write tags: %w", err)
	}

	return nil
}

// DeleteAll implements Engine.DeleteAll. All patterns are cleared in a
// single exiftool invocation.
func (e *ExiftoolEngine) DeleteAll(ctx context.Context, path string, patterns ...string) error {
	args := []string{"-overwrite_original"}

	for _, pattern := range patterns {
		args = append(args, fmt.Sprintf("-%s=", pattern))
	}

	args = append(args, path)

	if _, err := e.run(ctx, args...); err != nil {
		return fmt.Errorf("delete tags: %w", err)
	}

	return nil
}

// run executes exiftool and returns stdout. On a non-zero exit the stderr
// text is folded into the returned error, since callers classify failures
// by message content.
func (e *ExiftoolEngine) run(ctx context.Context, args ...string) (out []byte, err error) {
	defer func() {
		log := e.log.With(logging.Group("exiftool", "args", strings.Join(args, " ")))
		if err != nil {
			log.ErrorContext(ctx, "exiftool failed", "error", err)
		} else {
			log.DebugContext(ctx, "exiftool done")
		}
	}()

	var (
		stdout bytes.Buffer
		stderr bytes.Buffer
	)

	cmd := exec.CommandContext(ctx, e.cfg.Binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}

		if msg != "" {
			return nil, fmt.Errorf("exiftool: %s: %w", msg, err)
		}

		return nil, fmt.Errorf("exiftool: %w", err)
	}

	return stdout.Bytes(), nil
}
