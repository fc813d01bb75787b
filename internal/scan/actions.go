package scan

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/chromedp/cdproto/network"
	"github.com/urfave/cli/v2"

	"github.com/mlowther/vidgrab/models"
	"github.com/mlowther/vidgrab/pkg/catalog"
	"github.com/mlowther/vidgrab/pkg/chromecookies"
	"github.com/mlowther/vidgrab/pkg/describe"
	"github.com/mlowther/vidgrab/pkg/devtools"
	"github.com/mlowther/vidgrab/pkg/discover"
	"github.com/mlowther/vidgrab/pkg/fetcher"
	ingestpkg "github.com/mlowther/vidgrab/pkg/ingest"
)

// ScanAction mines a page for video URLs without the manual console step.
// The page can come from a saved HTML file, an authenticated fetch, or a
// live browser tab over the debugging endpoint.
func ScanAction(c *cli.Context) error {
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

	var html string
	var source string

	switch {
	case c.IsSet("file"):
		data, err := os.ReadFile(c.String("file"))
		if err != nil {
			return fmt.Errorf("failed to read page file: %w", err)
		}
		html = string(data)
		source = c.String("file")

	case c.IsSet("url"):
		source = c.String("url")
		if c.Bool("render") {
			html, err = renderPage(c.Context, cfg, source)
			if err != nil {
				return err
			}
			break
		}
		f, err := fetcher.NewFetcher(cfg.UserAgent)
		if err != nil {
			return err
		}
		if err := applyAuth(f, cfg, c.String("auth-bundle")); err != nil {
			return err
		}
		body, err := f.Get(c.Context, source)
		if err != nil {
			return fmt.Errorf("failed to fetch page: %w", err)
		}
		html = string(body)

	case c.Bool("tab"):
		endpoint := devtools.NewEndpoint(cfg.DevToolsPort)
		tabs, err := endpoint.ListTabs(c.Context)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: no debugging endpoint on port %d\n", cfg.DevToolsPort)
			fmt.Fprintln(os.Stderr, "Start one with: vidgrab browser --launch")
			os.Exit(1)
		}
		tab, ok := devtools.FindTab(tabs, cfg.Site)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: no open tab matches %s\n", cfg.Site)
			fmt.Fprintf(os.Stderr, "Open %s in the debugged browser first.\n", cfg.LibraryURL)
			os.Exit(1)
		}
		source = tab.URL
		logger.Info("attaching to tab", "title", tab.Title, "url", tab.URL)
		html, err = devtools.CapturePage(c.Context, tab.URL, devtools.CaptureOptions{
			WebSocketURL: tab.WebSocketDebuggerURL,
			UserAgent:    cfg.UserAgent,
		})
		if err != nil {
			return err
		}

	case c.Bool("probe-api"):
		return probeAPI(c, cfg)

	default:
		fmt.Fprintln(os.Stderr, "Error: one of --file, --url, --tab, or --probe-api is required")
		os.Exit(1)
	}

	videos := discover.Scan(html)
	if len(videos) == 0 {
		fmt.Println("No videos found on the page")
		if courses := discover.ScanCourses(html); len(courses) > 0 {
			fmt.Printf("Found %d course links instead; scan each course page:\n", len(courses))
			for _, course := range courses {
				fmt.Printf("  %-40s %s\n", course.Title, course.Link)
			}
		}
		return nil
	}

	items := ingestpkg.BuildItems(videos)
	runID, language, err := recordScan(cfg, source, html, items)
	if err != nil {
		return err
	}

	fmt.Printf("Run %d: %d videos from %s\n", runID, len(items), source)
	if language != "" {
		fmt.Printf("Page language: %s\n", language)
	}
	for _, item := range items {
		fmt.Printf("  %s  [%s]  %s\n", item.Filename, item.Video.Source, item.Video.URL)
	}
	fmt.Printf("\nNext: vidgrab download --run %d\n", runID)
	return nil
}

// recordScan stores the run and its detected page language.
func recordScan(cfg models.Config, source, html string, items []models.DownloadItem) (int64, string, error) {
	db, err := catalog.OpenAt(cfg.DataPath(catalog.DefaultDBName))
	if err != nil {
		return 0, "", fmt.Errorf("failed to open catalog: %w", err)
	}
	defer db.Close()

	runID, err := db.RecordRun("scan", source, items)
	if err != nil {
		return 0, "", fmt.Errorf("failed to record run: %w", err)
	}

	var language string
	if d, err := describe.Describe(source, html); err == nil {
		language = d.Language
		if language != "" {
			if err := db.SetRunLanguage(runID, language); err != nil {
				slog.Warn("failed to store page language", "error", err)
			}
		}
		if d.Excerpt != "" {
			slog.Info("page description", "title", d.Title, "excerpt", d.Excerpt)
		}
	}
	return runID, language, nil
}

// probeAPI walks the fixed endpoint list with the authenticated fetcher.
func probeAPI(c *cli.Context, cfg models.Config) error {
	f, err := fetcher.NewFetcher(cfg.UserAgent)
	if err != nil {
		return err
	}
	if err := applyAuth(f, cfg, c.String("auth-bundle")); err != nil {
		return err
	}

	videos, err := f.ProbeAPI(c.Context, cfg.APIBase)
	if err != nil {
		return err
	}
	if len(videos) == 0 {
		fmt.Println("No video data on any known API endpoint")
		return nil
	}

	items := ingestpkg.BuildItems(videos)

	db, err := catalog.OpenAt(cfg.DataPath(catalog.DefaultDBName))
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer db.Close()

	runID, err := db.RecordRun("probe", cfg.APIBase, items)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	fmt.Printf("Run %d: %d videos from API probing\n", runID, len(items))
	for _, item := range items {
		fmt.Printf("  %s  %s\n", item.Filename, item.Video.URL)
	}
	return nil
}

// renderPage loads the URL in a fresh headless browser so script-built
// pages finish rendering before the scan. Cookies from the freshest logged-in
// profile are injected when available.
func renderPage(ctx context.Context, cfg models.Config, target string) (string, error) {
	var params []*network.CookieParam
	for _, profile := range chromecookies.ScanProfiles() {
		cookies, err := chromecookies.Harvest(profile.CookiesPath(), cfg.Site)
		if err != nil {
			continue
		}
		if usable, _ := chromecookies.CountUsable(cookies); usable == 0 {
			continue
		}
		slog.Info("injecting browser cookies", "browser", profile.Browser, "profile", profile.Name)
		params = chromecookies.CookieParams(cookies)
		break
	}

	return devtools.CapturePage(ctx, target, devtools.CaptureOptions{
		UserAgent: cfg.UserAgent,
		Cookies:   params,
	})
}

// applyAuth loads credentials into the fetcher: a pasted bundle when given
// (or saved under the capture prefix), otherwise the freshest browser
// profile's cookies.
func applyAuth(f *fetcher.Fetcher, cfg models.Config, bundlePath string) error {
	if bundlePath == "" {
		probe := cfg.DataPath(cfg.FilePrefix + "_auth.json")
		if _, err := os.Stat(probe); err == nil {
			bundlePath = probe
		}
	}
	if bundlePath != "" {
		bundle, err := models.LoadAuthBundle(bundlePath)
		if err != nil {
			return err
		}
		slog.Info("using auth bundle", "file", bundlePath)
		return f.ApplyBundle(bundle, cfg.Site)
	}

	for _, profile := range chromecookies.ScanProfiles() {
		cookies, err := chromecookies.Harvest(profile.CookiesPath(), cfg.Site)
		if err != nil || len(cookies) == 0 {
			continue
		}
		usable, _ := chromecookies.CountUsable(cookies)
		if usable == 0 {
			continue
		}
		slog.Info("using browser cookies", "browser", profile.Browser, "profile", profile.Name, "cookies", usable)
		return f.ApplyCookies(cookies, cfg.Site)
	}
	slog.Warn("no usable browser cookies found, fetching unauthenticated")
	return nil
}
