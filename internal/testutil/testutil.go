package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Lines joins the lines of a CSV file, each terminated by \n.
func Lines(lines ...string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// MustWriteFile writes the lines to name inside dir and returns the path.
func MustWriteFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(Lines(lines...)), 0644); err != nil {
		t.Fatalf("failed to write %s: %s", path, err)
	}
	return path
}

// MustReadFile returns the content of the file at path.
func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %s", path, err)
	}
	return string(b)
}
