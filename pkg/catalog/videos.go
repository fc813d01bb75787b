package catalog

import (
	"database/sql"
	"fmt"
	"time"
)

// VideoRow is one stored video item.
type VideoRow struct {
	VideoID  int64
	RunID    int64
	Position int
	URL      string
	Title    string
	Source   string
	Filename string
}

// DownloadRow is one stored download outcome.
type DownloadRow struct {
	DownloadID   int64
	VideoID      int64
	Position     int
	Filename     string
	CompletedAt  time.Time
	Status       string
	ErrorMessage string
}

// GetRunVideos retrieves a run's videos in capture order.
func (db *DB) GetRunVideos(runID int64) ([]VideoRow, error) {
	rows, err := db.Query(`
		SELECT video_id, run_id, position, url, title, source, filename
		FROM videos
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run videos: %w", err)
	}
	defer rows.Close()

	var videos []VideoRow
	for rows.Next() {
		var v VideoRow
		var title, source sql.NullString
		if err := rows.Scan(&v.VideoID, &v.RunID, &v.Position, &v.URL, &title, &source, &v.Filename); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		v.Title = title.String
		v.Source = source.String
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// RecordDownload stores the outcome for one video. Position identifies the
// video within the run.
func (db *DB) RecordDownload(runID int64, position int, status, errorMessage string) error {
	var videoID int64
	err := db.QueryRow(
		"SELECT video_id FROM videos WHERE run_id = ? AND position = ?",
		runID, position,
	).Scan(&videoID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("run %d has no video at position %d", runID, position)
	}
	if err != nil {
		return fmt.Errorf("failed to find video: %w", err)
	}

	var msg interface{}
	if errorMessage != "" {
		msg = errorMessage
	}
	_, err = db.Exec(`
		INSERT INTO downloads (run_id, video_id, status, error_message)
		VALUES (?, ?, ?, ?)
	`, runID, videoID, status, msg)
	if err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}
	return nil
}

// GetRunDownloads retrieves a run's download outcomes in capture order.
func (db *DB) GetRunDownloads(runID int64) ([]DownloadRow, error) {
	rows, err := db.Query(`
		SELECT d.download_id, d.video_id, v.position, v.filename, d.completed_at, d.status, d.error_message
		FROM downloads d
		JOIN videos v ON d.video_id = v.video_id
		WHERE d.run_id = ?
		ORDER BY v.position, d.download_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run downloads: %w", err)
	}
	defer rows.Close()

	var downloads []DownloadRow
	for rows.Next() {
		var d DownloadRow
		var errMsg sql.NullString
		if err := rows.Scan(&d.DownloadID, &d.VideoID, &d.Position, &d.Filename,
			&d.CompletedAt, &d.Status, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan download: %w", err)
		}
		d.ErrorMessage = errMsg.String
		downloads = append(downloads, d)
	}
	return downloads, rows.Err()
}
