package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLevelParsing(t *testing.T) {
	testCases := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"nonsense", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			log := New(Config{Level: tc.level, JSONFormat: true})
			if log.GetLevel() != tc.want {
				t.Errorf("level %q: expected %s, got %s", tc.level, tc.want, log.GetLevel())
			}
		})
	}
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log := New(Config{Level: "info", Output: path, JSONFormat: true})
	log.Info().Str("key", "value").Msg("written to file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), `"message":"written to file"`) {
		t.Errorf("expected JSON log line in file, got %q", string(data))
	}
	if !strings.Contains(string(data), `"key":"value"`) {
		t.Errorf("expected structured field in file, got %q", string(data))
	}
}
