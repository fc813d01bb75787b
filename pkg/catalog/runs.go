package catalog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mlowther/vidgrab/models"
)

// Run is one recorded harvest run.
type Run struct {
	RunID        int64
	CreatedAt    time.Time
	Kind         string
	Source       string
	VideoCount   int
	SuccessCount int
	FailedCount  int
	Language     string
	Tool         string
}

// RecordRun creates a run and its video rows in one transaction.
func (db *DB) RecordRun(kind, source string, items []models.DownloadItem) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		INSERT INTO runs (kind, source, video_count)
		VALUES (?, ?, ?)
	`, kind, source, len(items))
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}

	for _, item := range items {
		_, err := tx.Exec(`
			INSERT INTO videos (run_id, position, url, title, source, filename)
			VALUES (?, ?, ?, ?, ?, ?)
		`, runID, item.Index, item.Video.URL, item.Video.Title, item.Video.Source, item.Filename)
		if err != nil {
			return 0, fmt.Errorf("failed to insert video %d: %w", item.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// SetRunLanguage records the detected page language for a run.
func (db *DB) SetRunLanguage(runID int64, language string) error {
	_, err := db.Exec("UPDATE runs SET language = ? WHERE run_id = ?", language, runID)
	if err != nil {
		return fmt.Errorf("failed to set run language: %w", err)
	}
	return nil
}

// UpdateRunStats records the downloader used and the final counts.
func (db *DB) UpdateRunStats(runID int64, tool string, successCount, failedCount int) error {
	_, err := db.Exec(`
		UPDATE runs
		SET tool = ?, success_count = ?, failed_count = ?
		WHERE run_id = ?
	`, tool, successCount, failedCount, runID)
	if err != nil {
		return fmt.Errorf("failed to update run stats: %w", err)
	}
	return nil
}

// GetRunByID retrieves a run by its ID
func (db *DB) GetRunByID(runID int64) (*Run, error) {
	var run Run
	var language, tool sql.NullString
	err := db.QueryRow(`
		SELECT run_id, created_at, kind, source, video_count, success_count, failed_count, language, tool
		FROM runs
		WHERE run_id = ?
	`, runID).Scan(
		&run.RunID,
		&run.CreatedAt,
		&run.Kind,
		&run.Source,
		&run.VideoCount,
		&run.SuccessCount,
		&run.FailedCount,
		&language,
		&tool,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	run.Language = language.String
	run.Tool = tool.String
	return &run, nil
}

// LatestRun returns the most recent run, or nil when the catalog is empty.
func (db *DB) LatestRun() (*Run, error) {
	var runID int64
	err := db.QueryRow("SELECT run_id FROM runs ORDER BY run_id DESC LIMIT 1").Scan(&runID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest run: %w", err)
	}
	return db.GetRunByID(runID)
}

// ListRuns retrieves runs ordered by most recent first
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := `
		SELECT run_id, created_at, kind, source, video_count, success_count, failed_count, language, tool
		FROM runs
		ORDER BY created_at DESC, run_id DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var language, tool sql.NullString
		if err := rows.Scan(&r.RunID, &r.CreatedAt, &r.Kind, &r.Source, &r.VideoCount,
			&r.SuccessCount, &r.FailedCount, &language, &tool); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Language = language.String
		r.Tool = tool.String
		runs = append(runs, r)
	}

	return runs, rows.Err()
}
