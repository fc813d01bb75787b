package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mlowther/vidgrab/internal/auth"
	"github.com/mlowther/vidgrab/internal/browser"
	"github.com/mlowther/vidgrab/internal/download"
	"github.com/mlowther/vidgrab/internal/ingest"
	"github.com/mlowther/vidgrab/internal/payload"
	"github.com/mlowther/vidgrab/internal/runs"
	"github.com/mlowther/vidgrab/internal/scan"
	"github.com/mlowther/vidgrab/models"
)

func main() {
	app := &cli.App{
		Name:  "vidgrab",
		Usage: "harvest and download videos from your own course library",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   models.DefaultConfigFile,
				Usage:   "path to the YAML config file",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "only log errors",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "payload",
				Usage: "print the browser-console JavaScript that captures course data",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "stage",
						Usage: "which payload: 1 (courses), 2 (videos), or all",
					},
					&cli.BoolFlag{
						Name:  "write",
						Usage: "write the combined payload to a file instead of stdout",
					},
				},
				Action: payload.PayloadAction,
			},
			{
				Name:  "ingest",
				Usage: "load a hand-saved capture file and record it as a run",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "capture file to load (default: probe known names)",
					},
					&cli.StringFlag{
						Name:  "kind",
						Value: "videos",
						Usage: "capture kind: videos or courses",
					},
				},
				Action: ingest.IngestAction,
			},
			{
				Name:  "scan",
				Usage: "extract video URLs from a page, file, live tab, or the site API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "file",
						Usage: "scan a saved HTML file",
					},
					&cli.StringFlag{
						Name:  "url",
						Usage: "fetch and scan a page",
					},
					&cli.BoolFlag{
						Name:  "render",
						Usage: "render --url in a headless browser before scanning",
					},
					&cli.BoolFlag{
						Name:  "tab",
						Usage: "scan the site tab of a browser with remote debugging enabled",
					},
					&cli.BoolFlag{
						Name:  "probe-api",
						Usage: "probe the site's JSON API endpoints",
					},
					&cli.StringFlag{
						Name:  "auth-bundle",
						Usage: "JSON file with headers, cookies, and localStorage from the browser",
					},
				},
				Action: scan.ScanAction,
			},
			{
				Name:  "download",
				Usage: "hand a run's videos to aria2c or yt-dlp",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:  "run",
						Usage: "run ID to download (default: latest)",
					},
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "download straight from a capture file",
					},
					&cli.StringFlag{
						Name:  "tool",
						Usage: "downloader to use: aria2c or yt-dlp",
					},
				},
				Action: download.DownloadAction,
			},
			{
				Name:  "auth",
				Usage: "export site cookies from an installed browser profile",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "browser",
						Usage: "only consider this browser (chrome, brave, chromium)",
					},
					&cli.StringFlag{
						Name:  "profile",
						Usage: "only consider this profile name",
					},
					&cli.StringFlag{
						Name:  "domain",
						Usage: "hostname substring to match cookies (default: configured site)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "where to write cookies.txt",
					},
					&cli.BoolFlag{
						Name:  "list",
						Usage: "list profiles instead of exporting",
					},
				},
				Action: auth.CookiesAction,
			},
			{
				Name:  "browser",
				Usage: "check the remote debugging endpoint or launch a debuggable browser",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "launch",
						Usage: "launch a browser with remote debugging enabled",
					},
					&cli.StringFlag{
						Name:  "binary",
						Usage: "browser binary to launch (default: first known install)",
					},
					&cli.StringFlag{
						Name:  "user-data-dir",
						Usage: "separate profile directory for the debugged instance",
					},
					&cli.IntFlag{
						Name:  "port",
						Usage: "remote debugging port (default: configured devtools_port)",
					},
				},
				Action: browser.BrowserAction,
			},
			{
				Name:  "runs",
				Usage: "inspect recorded runs",
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "list runs, newest first",
						Flags: []cli.Flag{
							&cli.IntFlag{
								Name:  "limit",
								Value: 20,
								Usage: "maximum runs to show",
							},
						},
						Action: runs.ListAction,
					},
					{
						Name:      "show",
						Usage:     "show one run with its videos and downloads",
						ArgsUsage: "<run-id>",
						Action:    runs.ShowAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
