// Package testing holds shared helpers and fixtures for webpilot
// tests. Import it aliased, e.g. testutil, to avoid clashing with the
// standard testing package.
package testing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile writes content under dir, creating parent directories, and
// returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if parent := filepath.Dir(path); parent != dir {
		if err := os.MkdirAll(parent, 0755); err != nil {
			t.Fatalf("Failed to create directory %s: %v", parent, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}

// AssertFileExists checks that a file exists at the given path
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks that no file exists at the given path
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertFileContains checks that the file at path contains expected
func AssertFileContains(t *testing.T, path, expected string) {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), expected) {
		t.Errorf("File %s does not contain expected content.\nExpected substring: %s\nActual content:\n%s",
			path, expected, string(content))
	}
}
