package catalog

import (
	"path/filepath"
	"testing"

	"github.com/mlowther/vidgrab/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenAt(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenAt() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testItems() []models.DownloadItem {
	return []models.DownloadItem{
		{
			Index:    1,
			Video:    models.Video{URL: "https://cdn.example.com/a.mp4", Title: "Intro", Source: "video-tag"},
			Filename: "001-Intro",
		},
		{
			Index:    2,
			Video:    models.Video{URL: "https://cdn.example.com/b.mp4", Title: "Closing", Source: "iframe"},
			Filename: "002-Closing",
		},
	}
}

func TestRecordRun(t *testing.T) {
	db := setupTestDB(t)

	runID, err := db.RecordRun("ingest", "grantcardone_videos.json", testItems())
	if err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	if runID == 0 {
		t.Fatal("RecordRun() returned 0 run ID")
	}

	run, err := db.GetRunByID(runID)
	if err != nil {
		t.Fatalf("GetRunByID() error = %v", err)
	}
	if run.Kind != "ingest" {
		t.Errorf("run.Kind = %q, want %q", run.Kind, "ingest")
	}
	if run.VideoCount != 2 {
		t.Errorf("run.VideoCount = %d, want 2", run.VideoCount)
	}
	if run.Language != "" || run.Tool != "" {
		t.Errorf("new run has language %q tool %q, want empty", run.Language, run.Tool)
	}

	videos, err := db.GetRunVideos(runID)
	if err != nil {
		t.Fatalf("GetRunVideos() error = %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("got %d videos, want 2", len(videos))
	}
	if videos[0].Position != 1 || videos[0].Filename != "001-Intro" {
		t.Errorf("first video = %+v", videos[0])
	}
	if videos[1].Source != "iframe" {
		t.Errorf("second video source = %q", videos[1].Source)
	}
}

func TestGetRunByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.GetRunByID(99); err == nil {
		t.Error("GetRunByID(99) expected an error")
	}
}

func TestSetRunLanguageAndStats(t *testing.T) {
	db := setupTestDB(t)
	runID, err := db.RecordRun("scan", "https://site/library", testItems())
	if err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	if err := db.SetRunLanguage(runID, "es"); err != nil {
		t.Fatalf("SetRunLanguage() error = %v", err)
	}
	if err := db.UpdateRunStats(runID, "yt-dlp", 1, 1); err != nil {
		t.Fatalf("UpdateRunStats() error = %v", err)
	}

	run, err := db.GetRunByID(runID)
	if err != nil {
		t.Fatal(err)
	}
	if run.Language != "es" {
		t.Errorf("run.Language = %q, want %q", run.Language, "es")
	}
	if run.Tool != "yt-dlp" || run.SuccessCount != 1 || run.FailedCount != 1 {
		t.Errorf("run = %+v", run)
	}
}

func TestRecordDownload(t *testing.T) {
	db := setupTestDB(t)
	runID, err := db.RecordRun("ingest", "x.json", testItems())
	if err != nil {
		t.Fatal(err)
	}

	if err := db.RecordDownload(runID, 1, "ok", ""); err != nil {
		t.Fatalf("RecordDownload() error = %v", err)
	}
	if err := db.RecordDownload(runID, 2, "failed", "exit status 1"); err != nil {
		t.Fatalf("RecordDownload() error = %v", err)
	}

	downloads, err := db.GetRunDownloads(runID)
	if err != nil {
		t.Fatalf("GetRunDownloads() error = %v", err)
	}
	if len(downloads) != 2 {
		t.Fatalf("got %d downloads, want 2", len(downloads))
	}
	if downloads[0].Status != "ok" || downloads[0].ErrorMessage != "" {
		t.Errorf("first download = %+v", downloads[0])
	}
	if downloads[1].Status != "failed" || downloads[1].ErrorMessage != "exit status 1" {
		t.Errorf("second download = %+v", downloads[1])
	}
}

func TestRecordDownload_UnknownPosition(t *testing.T) {
	db := setupTestDB(t)
	runID, err := db.RecordRun("ingest", "x.json", testItems())
	if err != nil {
		t.Fatal(err)
	}
	if err := db.RecordDownload(runID, 7, "ok", ""); err == nil {
		t.Error("RecordDownload() expected an error for an unknown position")
	}
}

func TestListRunsAndLatest(t *testing.T) {
	db := setupTestDB(t)

	latest, err := db.LatestRun()
	if err != nil {
		t.Fatalf("LatestRun() error = %v", err)
	}
	if latest != nil {
		t.Errorf("LatestRun() on empty catalog = %+v, want nil", latest)
	}

	first, err := db.RecordRun("ingest", "a.json", testItems())
	if err != nil {
		t.Fatal(err)
	}
	second, err := db.RecordRun("scan", "https://site/library", nil)
	if err != nil {
		t.Fatal(err)
	}

	runs, err := db.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].RunID != second || runs[1].RunID != first {
		t.Errorf("runs not newest-first: %+v", runs)
	}

	latest, err = db.LatestRun()
	if err != nil {
		t.Fatal(err)
	}
	if latest == nil || latest.RunID != second {
		t.Errorf("LatestRun() = %+v, want run %d", latest, second)
	}

	limited, err := db.ListRuns(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("ListRuns(1) returned %d runs", len(limited))
	}
}

// Reopening an existing catalog must not wipe it.
func TestOpenAt_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := OpenAt(path)
	if err != nil {
		t.Fatal(err)
	}
	runID, err := db.RecordRun("ingest", "a.json", testItems())
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	db2, err := OpenAt(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db2.Close()

	run, err := db2.GetRunByID(runID)
	if err != nil {
		t.Fatalf("GetRunByID() after reopen error = %v", err)
	}
	if run.VideoCount != 2 {
		t.Errorf("run.VideoCount = %d after reopen", run.VideoCount)
	}
}
