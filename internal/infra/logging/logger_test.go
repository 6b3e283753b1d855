package logging

import "testing"

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		levelStr string
		want     Level
	}{
		{"debug", "debug", LevelDebug},
		{"info", "info", LevelInfo},
		{"warn", "warn", LevelWarn},
		{"warning alias", "warning", LevelWarn},
		{"error", "error", LevelError},
		{"mixed case", "WARN", LevelWarn},
		{"surrounding whitespace", " info ", LevelInfo},
		{"unknown falls back", "loud", LevelError},
		{"empty falls back", "", LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := parseLogLevel(tt.levelStr, LevelError); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.levelStr, got, tt.want)
			}
		})
	}
}

func TestLoggerConfigPkgLevels(t *testing.T) {
	t.Parallel()

	//nolint:exhaustruct
	cfg := LoggerConfig{Filter: "svc.metasvc:debug,repo.user:error,garbage"}

	levels := cfg.getPkgLevels()

	if got := levels["svc.metasvc"]; got != LevelDebug {
		t.Errorf("svc.metasvc level = %v, want %v", got, LevelDebug)
	}

	if got := levels["repo.user"]; got != LevelError {
		t.Errorf("repo.user level = %v, want %v", got, LevelError)
	}

	if _, ok := levels["garbage"]; ok {
		t.Error("malformed filter entry must be skipped")
	}
}
