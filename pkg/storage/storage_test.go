package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndReadFile(t *testing.T) {
	s := &Storage{}
	path := filepath.Join(t.TempDir(), "out.txt")

	if err := s.SaveFile(path, []byte("hello")); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}
	data, err := s.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("got %q, want %q", string(data), "hello")
	}
}

func TestReadFile_Missing(t *testing.T) {
	s := &Storage{}
	if _, err := s.ReadFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestHasFile(t *testing.T) {
	s := &Storage{}
	dir := t.TempDir()
	path := filepath.Join(dir, "present.txt")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	if !s.HasFile(path) {
		t.Error("HasFile = false for existing file, want true")
	}
	if s.HasFile(filepath.Join(dir, "absent.txt")) {
		t.Error("HasFile = true for missing file, want false")
	}
}

func TestEnsureDir(t *testing.T) {
	s := &Storage{}
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	if err := s.EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat after EnsureDir failed: %v", err)
	}
	if !info.IsDir() {
		t.Error("EnsureDir target is not a directory")
	}

	// Calling again on an existing directory is fine.
	if err := s.EnsureDir(dir); err != nil {
		t.Errorf("EnsureDir on existing dir failed: %v", err)
	}
}

func TestGetFileStats(t *testing.T) {
	s := &Storage{}
	path := filepath.Join(t.TempDir(), "stats.txt")
	if err := os.WriteFile(path, []byte("12345"), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	stats, err := s.GetFileStats(path)
	if err != nil {
		t.Fatalf("GetFileStats failed: %v", err)
	}
	if stats.SizeBytes != 5 {
		t.Errorf("SizeBytes = %d, want 5", stats.SizeBytes)
	}
	if stats.ModTime.IsZero() {
		t.Error("ModTime is zero")
	}
}

func TestSummarizeDir(t *testing.T) {
	s := &Storage{}
	dir := t.TempDir()

	files := map[string]int{
		"001-intro.mp4":   100,
		"002-deep.webm":   250,
		"002-deep.en.vtt": 30, // subtitle sidecar, not counted
		"aria2c.log":      40,
		"003-closing.MOV": 75, // extension match is case-insensitive
	}
	for name, size := range files {
		if err := os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0644); err != nil {
			t.Fatalf("failed to write fixture %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "subdir.mp4"), 0755); err != nil {
		t.Fatalf("failed to create subdir: %v", err)
	}

	sum := s.SummarizeDir(dir)
	if sum.Files != 3 {
		t.Errorf("Files = %d, want 3", sum.Files)
	}
	if sum.TotalBytes != 425 {
		t.Errorf("TotalBytes = %d, want 425", sum.TotalBytes)
	}
}

func TestSummarizeDir_Missing(t *testing.T) {
	s := &Storage{}
	sum := s.SummarizeDir(filepath.Join(t.TempDir(), "never-created"))
	if sum.Files != 0 || sum.TotalBytes != 0 {
		t.Errorf("got %+v, want zero summary for missing dir", sum)
	}
}
