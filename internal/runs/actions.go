package runs

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mlowther/vidgrab/models"
	"github.com/mlowther/vidgrab/pkg/catalog"
)

// ListAction prints recorded runs, newest first.
func ListAction(c *cli.Context) error {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	db, err := catalog.OpenAt(cfg.DataPath(catalog.DefaultDBName))
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(c.Int("limit"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded")
		return nil
	}

	fmt.Printf("%-5s %-17s %-7s %-7s %-9s %-5s %s\n", "RUN", "CREATED", "KIND", "VIDEOS", "OK/FAIL", "LANG", "SOURCE")
	for _, r := range runs {
		lang := r.Language
		if lang == "" {
			lang = "-"
		}
		fmt.Printf("%-5d %-17s %-7s %-7d %d/%-7d %-5s %s\n",
			r.RunID, r.CreatedAt.Format("2006-01-02 15:04"), r.Kind,
			r.VideoCount, r.SuccessCount, r.FailedCount, lang, r.Source)
	}
	return nil
}

// ShowAction prints one run with its videos and download outcomes.
func ShowAction(c *cli.Context) error {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	if c.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: vidgrab runs show <run-id>")
		os.Exit(1)
	}
	var runID int64
	if _, err := fmt.Sscanf(c.Args().First(), "%d", &runID); err != nil {
		fmt.Fprintf(os.Stderr, "Error: bad run ID %q\n", c.Args().First())
		os.Exit(1)
	}

	db, err := catalog.OpenAt(cfg.DataPath(catalog.DefaultDBName))
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer db.Close()

	run, err := db.GetRunByID(runID)
	if err != nil {
		return err
	}

	fmt.Printf("Run %d  %s  kind=%s  source=%s\n", run.RunID, run.CreatedAt.Format("2006-01-02 15:04"), run.Kind, run.Source)
	if run.Language != "" {
		fmt.Printf("Language: %s\n", run.Language)
	}
	if run.Tool != "" {
		fmt.Printf("Downloader: %s  (%d ok, %d failed)\n", run.Tool, run.SuccessCount, run.FailedCount)
	}

	videos, err := db.GetRunVideos(runID)
	if err != nil {
		return err
	}
	fmt.Printf("\nVideos (%d):\n", len(videos))
	for _, v := range videos {
		fmt.Printf("  %s  [%s]  %s\n", v.Filename, v.Source, v.URL)
	}

	downloads, err := db.GetRunDownloads(runID)
	if err != nil {
		return err
	}
	if len(downloads) > 0 {
		fmt.Printf("\nDownloads (%d):\n", len(downloads))
		for _, d := range downloads {
			line := fmt.Sprintf("  %s  %s", d.Filename, d.Status)
			if d.ErrorMessage != "" {
				line += "  " + d.ErrorMessage
			}
			fmt.Println(line)
		}
	}
	return nil
}
