package ingest

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mlowther/vidgrab/models"
	"github.com/mlowther/vidgrab/pkg/catalog"
	ingestpkg "github.com/mlowther/vidgrab/pkg/ingest"
)

// IngestAction loads a capture file saved by the console payloads, builds
// the download list, and records it as a run.
func IngestAction(c *cli.Context) error {
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

	if c.String("kind") == "courses" {
		return ingestCourses(c, cfg)
	}

	path := c.String("input")
	if path == "" {
		found, ok := ingestpkg.FindCapture(cfg, ingestpkg.VideoCaptureNames(cfg.FilePrefix))
		if !ok {
			fmt.Fprintln(os.Stderr, "Error: no capture file found")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Run the console payload in your browser first:")
			fmt.Fprintf(os.Stderr, "  1. Open %s\n", cfg.LibraryURL)
			fmt.Fprintln(os.Stderr, "  2. Open DevTools Console and paste the output of: vidgrab payload")
			fmt.Fprintf(os.Stderr, "  3. Save the downloaded JSON next to this tool (looked for %s)\n", cfg.FilePrefix+"_videos.json")
			os.Exit(1)
		}
		path = found
	}

	videos, err := ingestpkg.LoadVideos(path)
	if err != nil {
		if errors.Is(err, ingestpkg.ErrNoVideos) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintln(os.Stderr, "The capture file is missing, malformed, or empty. Redo the browser step and try again.")
			os.Exit(1)
		}
		return err
	}

	items := ingestpkg.BuildItems(videos)
	logger.Info("capture loaded", "file", path, "videos", len(items))

	db, err := catalog.OpenAt(cfg.DataPath(catalog.DefaultDBName))
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer db.Close()

	runID, err := db.RecordRun("ingest", path, items)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	fmt.Printf("Run %d: %d videos from %s\n", runID, len(items), path)
	for _, item := range items {
		fmt.Printf("  %s  %s\n", item.Filename, item.Video.URL)
	}
	fmt.Printf("\nNext: vidgrab download --run %d\n", runID)
	return nil
}

// ingestCourses prints a stage-1 course capture. Courses are not
// downloadable, so nothing is recorded; this is for checking the capture
// before visiting each course page.
func ingestCourses(c *cli.Context, cfg models.Config) error {
	path := c.String("input")
	if path == "" {
		found, ok := ingestpkg.FindCapture(cfg, ingestpkg.CourseCaptureNames(cfg.FilePrefix))
		if !ok {
			fmt.Fprintln(os.Stderr, "Error: no course capture file found")
			fmt.Fprintln(os.Stderr, "Run the stage-1 console payload first: vidgrab payload --stage 1")
			os.Exit(1)
		}
		path = found
	}

	courses, err := ingestpkg.LoadCourses(path)
	if err != nil {
		if errors.Is(err, ingestpkg.ErrNoCourses) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return err
	}

	fmt.Printf("%d courses from %s:\n", len(courses), path)
	for _, course := range courses {
		fmt.Printf("  %-40s %s\n", course.Title, course.Link)
	}
	return nil
}
