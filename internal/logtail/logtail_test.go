package logtail

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeLog(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "booktracker.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}
	return path
}

func TestRead_Tail(t *testing.T) {
	var all []string
	for i := 1; i <= 10; i++ {
		all = append(all, fmt.Sprintf("Line %d", i))
	}
	path := writeLog(t, all)

	tests := []struct {
		name     string
		lines    int
		expected []string
	}{
		{"read all (0)", 0, all},
		{"read all (negative)", -1, all},
		{"read partial (5)", 5, all[5:]},
		{"read exactly all (10)", 10, all},
		{"read more than exists (20)", 20, all},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(path, Options{Lines: tt.lines, MinLevel: slog.LevelDebug})
			if err != nil {
				t.Fatalf("Read returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Fatalf("Read = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_FiltersByLevel(t *testing.T) {
	path := writeLog(t, []string{
		`time=2026-01-01T00:00:00Z level=DEBUG msg="api request" op=shelves`,
		`time=2026-01-01T00:00:01Z level=INFO msg="logged in" user_id=7`,
		`time=2026-01-01T00:00:02Z level=WARN msg="api error status" status=500`,
		`panic: something without a level`,
		`time=2026-01-01T00:00:03Z level=ERROR msg="boom"`,
	})

	got, err := Read(path, Options{MinLevel: slog.LevelWarn})
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Read = %v, want 3 lines", got)
	}
	if !strings.Contains(got[0], "level=WARN") || !strings.HasPrefix(got[1], "panic") || !strings.Contains(got[2], "level=ERROR") {
		t.Fatalf("Read = %v, unexpected order or content", got)
	}

	got, err = Read(path, Options{Lines: 1, MinLevel: slog.LevelInfo})
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(got) != 1 || !strings.Contains(got[0], "boom") {
		t.Fatalf("Read = %v, want last line only", got)
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), Options{Lines: 5})
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("Read = %v, want nil", got)
	}
}
