package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mlowther/vidgrab/models"
)

func writeCapture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write capture file: %v", err)
	}
	return path
}

func TestLoadVideos_WrappedObject(t *testing.T) {
	path := writeCapture(t, "grantcardone_videos.json",
		`{"videos":[{"url":"https://cdn.example.com/a.mp4","title":"Intro"}],"timestamp":"2026-01-01T00:00:00Z"}`)

	videos, err := LoadVideos(path)
	if err != nil {
		t.Fatalf("LoadVideos() error = %v", err)
	}
	if len(videos) != 1 {
		t.Fatalf("got %d videos, want 1", len(videos))
	}
	if videos[0].URL != "https://cdn.example.com/a.mp4" {
		t.Errorf("URL = %q", videos[0].URL)
	}

	items := BuildItems(videos)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Filename != "001-Intro" {
		t.Errorf("Filename = %q, want %q", items[0].Filename, "001-Intro")
	}
}

func TestLoadVideos_BareArray(t *testing.T) {
	path := writeCapture(t, "found_videos.json",
		`[{"url":"https://cdn.example.com/a.mp4"},{"url":"https://cdn.example.com/b.mp4","title":"Two"}]`)

	videos, err := LoadVideos(path)
	if err != nil {
		t.Fatalf("LoadVideos() error = %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("got %d videos, want 2", len(videos))
	}
}

func TestLoadVideos_MissingFile(t *testing.T) {
	_, err := LoadVideos(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrNoVideos) {
		t.Errorf("LoadVideos() error = %v, want ErrNoVideos", err)
	}
}

func TestLoadVideos_MalformedJSON(t *testing.T) {
	path := writeCapture(t, "grantcardone_videos.json", `{"videos": [`)
	_, err := LoadVideos(path)
	if !errors.Is(err, ErrNoVideos) {
		t.Errorf("LoadVideos() error = %v, want ErrNoVideos", err)
	}
}

func TestLoadVideos_EmptyList(t *testing.T) {
	path := writeCapture(t, "grantcardone_videos.json", `{"videos": []}`)
	_, err := LoadVideos(path)
	if !errors.Is(err, ErrNoVideos) {
		t.Errorf("LoadVideos() error = %v, want ErrNoVideos", err)
	}
}

func TestLoadCourses(t *testing.T) {
	path := writeCapture(t, "grantcardone_courses.json",
		`{"courses":[{"id":1,"title":"10X Sales","link":"https://t.example.com/c/1"}]}`)

	courses, err := LoadCourses(path)
	if err != nil {
		t.Fatalf("LoadCourses() error = %v", err)
	}
	if len(courses) != 1 || courses[0].Title != "10X Sales" {
		t.Errorf("courses = %+v", courses)
	}
}

func TestLoadCourses_Missing(t *testing.T) {
	_, err := LoadCourses(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrNoCourses) {
		t.Errorf("LoadCourses() error = %v, want ErrNoCourses", err)
	}
}

func TestBuildItems_PlaceholderTitlesAndSkips(t *testing.T) {
	videos := []models.Video{
		{URL: "https://cdn.example.com/a.mp4"},
		{URL: ""}, // dropped: no usable URL
		{URL: "https://cdn.example.com/b.mp4", Title: "Hello, World!"},
	}

	items := BuildItems(videos)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Video.Title != "Video 1" {
		t.Errorf("placeholder title = %q, want %q", items[0].Video.Title, "Video 1")
	}
	if items[1].Filename != "002-Hello-World" {
		t.Errorf("Filename = %q, want %q", items[1].Filename, "002-Hello-World")
	}
}

// Identical URLs in the capture stay separate items: ingest never dedupes,
// only the page scanner does.
func TestBuildItems_NoDeduplication(t *testing.T) {
	videos := []models.Video{
		{URL: "http://x/a.mp4"},
		{URL: "http://x/a.mp4"},
	}
	items := BuildItems(videos)
	if len(items) != 2 {
		t.Errorf("got %d items, want 2", len(items))
	}
}

func TestFindCapture_ProbeOrder(t *testing.T) {
	dir := t.TempDir()
	cfg := models.DefaultConfig()
	cfg.DataDir = dir

	names := VideoCaptureNames("grantcardone")

	if _, ok := FindCapture(cfg, names); ok {
		t.Fatal("FindCapture() found a file in an empty dir")
	}

	// Later variant present: probe falls through to it.
	if err := os.WriteFile(filepath.Join(dir, "found_videos.json"), []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}
	path, ok := FindCapture(cfg, names)
	if !ok || filepath.Base(path) != "found_videos.json" {
		t.Errorf("FindCapture() = %q, %v", path, ok)
	}

	// The combined automation file outranks it.
	if err := os.WriteFile(filepath.Join(dir, "grantcardone_complete.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	path, ok = FindCapture(cfg, names)
	if !ok || filepath.Base(path) != "grantcardone_complete.json" {
		t.Errorf("FindCapture() = %q, %v", path, ok)
	}
}
