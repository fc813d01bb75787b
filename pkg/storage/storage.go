package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Storage struct{}

// FileStats holds metadata about a file without reading its contents.
type FileStats struct {
	SizeBytes int64
	ModTime   time.Time
}

// DirSummary totals the media files sitting in a download directory.
type DirSummary struct {
	Files      int
	TotalBytes int64
}

// videoExtensions are the ones counted by SummarizeDir. Subtitle and
// thumbnail sidecar files are deliberately left out of the totals.
var videoExtensions = map[string]bool{
	".mp4": true, ".m4v": true, ".webm": true, ".mkv": true, ".mov": true,
}

func (s *Storage) SaveFile(filePath string, content []byte) error {
	err := os.WriteFile(filePath, content, 0644)
	if err != nil {
		return fmt.Errorf("error saving file: %s", err)
	}

	return nil
}

func (s *Storage) ReadFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %s", err)
	}
	return data, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !os.IsNotExist(err)
}

func (s *Storage) HasFile(fn string) bool {
	if fileExists(fn) {
		return true
	}
	return false
}

// EnsureDir creates the directory and parents if missing.
func (s *Storage) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory: %s", err)
	}
	return nil
}

// GetFileStats returns metadata about a file using os.Stat (no I/O overhead).
func (s *Storage) GetFileStats(filePath string) (*FileStats, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error getting file stats: %s", err)
	}

	return &FileStats{
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
	}, nil
}

// SummarizeDir counts downloaded video files and their total size. A
// missing directory summarizes to zero, not an error.
func (s *Storage) SummarizeDir(dir string) DirSummary {
	var sum DirSummary
	entries, err := os.ReadDir(dir)
	if err != nil {
		return sum
	}
	for _, e := range entries {
		if e.IsDir() || !videoExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		sum.Files++
		sum.TotalBytes += info.Size()
	}
	return sum
}
