package download

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mlowther/vidgrab/models"
	"github.com/mlowther/vidgrab/pkg/catalog"
	"github.com/mlowther/vidgrab/pkg/dispatch"
	ingestpkg "github.com/mlowther/vidgrab/pkg/ingest"
	"github.com/mlowther/vidgrab/pkg/storage"
)

// DownloadAction hands a run's items to the configured downloader and
// records the outcome.
func DownloadAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("tool") {
		cfg.Tool = c.String("tool")
	}

	db, err := catalog.OpenAt(cfg.DataPath(catalog.DefaultDBName))
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer db.Close()

	// --input skips the catalog lookup: straight from capture file to
	// downloader, but still recorded as a fresh run.
	var run *catalog.Run
	if c.IsSet("input") {
		videos, err := ingestpkg.LoadVideos(c.String("input"))
		if err != nil {
			if errors.Is(err, ingestpkg.ErrNoVideos) {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return err
		}
		items := ingestpkg.BuildItems(videos)
		runID, err := db.RecordRun("ingest", c.String("input"), items)
		if err != nil {
			return fmt.Errorf("failed to record run: %w", err)
		}
		run, err = db.GetRunByID(runID)
		if err != nil {
			return err
		}
	} else if c.IsSet("run") {
		run, err = db.GetRunByID(c.Int64("run"))
		if err != nil {
			return err
		}
	} else {
		run, err = db.LatestRun()
		if err != nil {
			return err
		}
		if run == nil {
			fmt.Fprintln(os.Stderr, "Error: no recorded runs")
			fmt.Fprintln(os.Stderr, "Ingest a capture file first: vidgrab ingest")
			os.Exit(1)
		}
	}

	rows, err := db.GetRunVideos(run.RunID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Printf("Run %d has no videos\n", run.RunID)
		return nil
	}

	items := make([]models.DownloadItem, len(rows))
	for i, row := range rows {
		items[i] = models.DownloadItem{
			Index:    row.Position,
			Video:    models.Video{URL: row.URL, Title: row.Title, Source: row.Source},
			Filename: row.Filename,
		}
	}

	// The run's detected page language beats the configured subtitle
	// language.
	subLang := cfg.SubLang
	if run.Language != "" {
		subLang = run.Language
	}

	logger.Info("starting downloads", "run", run.RunID, "videos", len(items), "tool", cfg.Tool)
	result, runErr := dispatch.Run(c.Context, cfg, items, subLang)

	// yt-dlp reports per-item outcomes; the aria2c batch succeeds or fails
	// as a whole and every item gets the batch status.
	if len(result.Outcomes) > 0 {
		for _, outcome := range result.Outcomes {
			status, msg := "ok", ""
			if outcome.Err != nil {
				status, msg = "failed", outcome.Err.Error()
			}
			if err := db.RecordDownload(run.RunID, outcome.Index, status, msg); err != nil {
				logger.Warn("failed to record download", "position", outcome.Index, "error", err)
			}
		}
	} else if !errors.Is(runErr, dispatch.ErrToolMissing) {
		status, msg := "ok", ""
		if runErr != nil {
			status, msg = "failed", runErr.Error()
		}
		for _, item := range items {
			if err := db.RecordDownload(run.RunID, item.Index, status, msg); err != nil {
				logger.Warn("failed to record download", "position", item.Index, "error", err)
			}
		}
	}
	if err := db.UpdateRunStats(run.RunID, cfg.Tool, result.Succeeded, result.Failed); err != nil {
		logger.Warn("failed to update run stats", "error", err)
	}

	if runErr != nil {
		if errors.Is(runErr, dispatch.ErrToolMissing) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
			os.Exit(1)
		}
		return runErr
	}

	store := &storage.Storage{}
	sum := store.SummarizeDir(cfg.DownloadDir)
	fmt.Printf("Run %d complete: %d/%d succeeded, %d failed\n", run.RunID, result.Succeeded, result.Total, result.Failed)
	fmt.Printf("Download directory: %s (%d files, %.2f GB)\n",
		cfg.DownloadDir, sum.Files, float64(sum.TotalBytes)/(1<<30))

	if result.Failed > 0 {
		os.Exit(1)
	}
	return nil
}
