package security

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewPathValidator(t *testing.T) {
	if _, err := NewPathValidator(""); err == nil {
		t.Error("expected error for empty directory")
	}

	validator, err := NewPathValidator("/does/not/exist/yet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if validator.Directory() != "/does/not/exist/yet" {
		t.Errorf("expected configured directory, got %s", validator.Directory())
	}
}

func TestPathValidator_Resolve(t *testing.T) {
	tempDir := t.TempDir()
	validator, err := NewPathValidator(tempDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	tests := []struct {
		name        string
		path        string
		expected    string
		expectError bool
	}{
		{"relative name", "fw9.pdf", filepath.Join(tempDir, "fw9.pdf"), false},
		{"nested relative name", "2026/fw9.pdf", filepath.Join(tempDir, "2026", "fw9.pdf"), false},
		{"absolute inside", filepath.Join(tempDir, "out.pdf"), filepath.Join(tempDir, "out.pdf"), false},
		{"null bytes removed", "fw\x009.pdf", filepath.Join(tempDir, "fw9.pdf"), false},
		{"empty", "", "", true},
		{"only null bytes", "\x00", "", true},
		{"parent traversal", "../outside.pdf", "", true},
		{"absolute outside", filepath.Join(filepath.Dir(tempDir), "outside.pdf"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := validator.Resolve(tt.path)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error for %q, got %s", tt.path, result)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("expected %s but got %s", tt.expected, result)
			}
		})
	}
}

func TestPathValidator_Within(t *testing.T) {
	tempDir := t.TempDir()
	outsideDir := t.TempDir()

	validator, err := NewPathValidator(tempDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	target := filepath.Join(tempDir, "target.pdf")
	if err := os.WriteFile(target, []byte("test"), 0o600); err != nil {
		t.Fatalf("Failed to create target file: %v", err)
	}
	outsideTarget := filepath.Join(outsideDir, "secret.pdf")
	if err := os.WriteFile(outsideTarget, []byte("secret"), 0o600); err != nil {
		t.Fatalf("Failed to create outside file: %v", err)
	}

	inLink := filepath.Join(tempDir, "in.pdf")
	outLink := filepath.Join(tempDir, "out.pdf")
	if err := os.Symlink(target, inLink); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	if err := os.Symlink(outsideTarget, outLink); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"path within directory", filepath.Join(tempDir, "test.pdf"), true},
		{"directory itself", tempDir, true},
		{"path outside directory", outsideTarget, false},
		{"parent directory traversal", filepath.Join(tempDir, "..", "outside.pdf"), false},
		{"sibling with common prefix", tempDir + "-other/test.pdf", false},
		{"symlink within directory", inLink, true},
		{"symlink escaping directory", outLink, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := validator.Within(tt.path)
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("Expected %v but got %v", tt.expected, result)
			}
		})
	}
}

func TestPathValidator_MissingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "later")
	validator, err := NewPathValidator(missing)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	// Nothing can escape a directory that does not exist yet
	within, err := validator.Within("/anywhere/at/all.pdf")
	if err != nil || !within {
		t.Errorf("expected any path to be accepted, got %v, %v", within, err)
	}

	resolved, err := validator.Resolve("fw9.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(resolved, missing) {
		t.Errorf("expected %s below %s", resolved, missing)
	}
}
