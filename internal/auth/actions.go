package auth

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mlowther/vidgrab/models"
	"github.com/mlowther/vidgrab/pkg/chromecookies"
	"github.com/mlowther/vidgrab/pkg/storage"
)

// CookiesAction harvests site cookies from an installed browser profile
// and exports them as a Netscape cookies.txt for yt-dlp.
func CookiesAction(c *cli.Context) error {
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
	if c.IsSet("domain") {
		cfg.Site = c.String("domain")
	}

	profiles := chromecookies.ScanProfiles()
	if c.IsSet("browser") {
		var filtered []chromecookies.Profile
		for _, p := range profiles {
			if p.Browser == c.String("browser") {
				filtered = append(filtered, p)
			}
		}
		profiles = filtered
	}
	if len(profiles) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no browser profiles found")
		os.Exit(1)
	}

	if c.Bool("list") {
		fmt.Printf("Found %d profiles (most recently used first):\n", len(profiles))
		for _, p := range profiles {
			fmt.Printf("  %-10s %-20s %s\n", p.Browser, p.Name, p.LastUsed.Format("2006-01-02 15:04"))
		}
		return nil
	}

	// Most recently used profile with usable cookies wins.
	var cookies []models.Cookie
	var picked chromecookies.Profile
	for _, p := range profiles {
		if c.IsSet("profile") && p.Name != c.String("profile") {
			continue
		}
		harvested, err := chromecookies.Harvest(p.CookiesPath(), cfg.Site)
		if err != nil {
			logger.Debug("profile harvest failed", "browser", p.Browser, "profile", p.Name, "error", err)
			continue
		}
		if usable, _ := chromecookies.CountUsable(harvested); usable > 0 {
			cookies, picked = harvested, p
			break
		}
		if len(harvested) > 0 && cookies == nil {
			// Keep an all-encrypted harvest as a fallback for reporting.
			cookies, picked = harvested, p
		}
	}

	if len(cookies) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no cookies for %s in any profile\n", cfg.Site)
		fmt.Fprintln(os.Stderr, "Log in to the site in your browser, then retry.")
		os.Exit(1)
	}

	usable, empty := chromecookies.CountUsable(cookies)
	fmt.Printf("Profile %s [%s]: %d cookies for %s (%d usable, %d encrypted)\n",
		picked.Name, picked.Browser, len(cookies), cfg.Site, usable, empty)
	if usable == 0 {
		fmt.Fprintln(os.Stderr, "All cookie values are encrypted at rest on this platform.")
		fmt.Fprintln(os.Stderr, "Export them through the browser instead (DevTools or a cookie extension).")
		os.Exit(1)
	}

	outPath := c.String("output")
	if outPath == "" {
		outPath = cfg.DataPath("cookies.txt")
	}
	store := &storage.Storage{}
	if err := store.SaveFile(outPath, []byte(chromecookies.Netscape(cookies))); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", outPath)
	fmt.Printf("Use it with: vidgrab download --tool yt-dlp  (set cookies_file: %s in vidgrab.yaml)\n", outPath)
	return nil
}
