// Package chromecookies reads session cookies out of a Chromium-family
// browser's profile on disk. The Cookies SQLite file is copied to a temp
// directory first so the running browser's lock never matters.
package chromecookies

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	_ "modernc.org/sqlite"

	"github.com/mlowther/vidgrab/models"
)

// Chrome stores timestamps as microseconds since 1601-01-01.
const chromeEpochOffsetSeconds = 11644473600

// Profile is one browser profile directory worth trying.
type Profile struct {
	Browser  string
	Name     string
	Path     string
	LastUsed time.Time
}

// CookiesPath is the profile's cookie store location.
func (p Profile) CookiesPath() string {
	return filepath.Join(p.Path, "Cookies")
}

// browserRoots lists the per-platform profile container directories, paired
// with a browser label. Missing directories are skipped during the scan.
func browserRoots() map[string]string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	switch runtime.GOOS {
	case "darwin":
		base := filepath.Join(home, "Library", "Application Support")
		return map[string]string{
			"chrome":        filepath.Join(base, "Google", "Chrome"),
			"chrome-canary": filepath.Join(base, "Google", "Chrome Canary"),
			"brave":         filepath.Join(base, "BraveSoftware", "Brave-Browser"),
			"chromium":      filepath.Join(base, "Chromium"),
		}
	case "windows":
		base := os.Getenv("LOCALAPPDATA")
		if base == "" {
			return nil
		}
		return map[string]string{
			"chrome":   filepath.Join(base, "Google", "Chrome", "User Data"),
			"brave":    filepath.Join(base, "BraveSoftware", "Brave-Browser", "User Data"),
			"chromium": filepath.Join(base, "Chromium", "User Data"),
		}
	default:
		base := filepath.Join(home, ".config")
		return map[string]string{
			"chrome":   filepath.Join(base, "google-chrome"),
			"brave":    filepath.Join(base, "BraveSoftware", "Brave-Browser"),
			"chromium": filepath.Join(base, "chromium"),
		}
	}
}

// ScanProfiles finds usable profiles under the platform browser roots, most
// recently used first.
func ScanProfiles() []Profile {
	var all []Profile
	for browser, root := range browserRoots() {
		all = append(all, scanRoot(browser, root)...)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].LastUsed.After(all[j].LastUsed)
	})
	return all
}

// scanRoot collects the valid profile directories under one browser root. A
// directory counts as a profile when it holds at least one of the stores a
// real profile carries.
func scanRoot(browser, root string) []Profile {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	var profiles []Profile
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == "System Profile" || name == "Guest Profile" {
			continue
		}

		full := filepath.Join(root, name)
		valid := false
		for _, marker := range []string{"Cookies", "Login Data", "History"} {
			if _, err := os.Stat(filepath.Join(full, marker)); err == nil {
				valid = true
				break
			}
		}
		if !valid {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		profiles = append(profiles, Profile{
			Browser:  browser,
			Name:     name,
			Path:     full,
			LastUsed: info.ModTime(),
		})
	}
	return profiles
}

// Harvest reads cookies for hosts containing site out of the given cookie
// store. Values the browser encrypted at rest come back empty; they are
// still returned so the caller can report the usable/empty split.
func Harvest(cookiesPath, site string) ([]models.Cookie, error) {
	if _, err := os.Stat(cookiesPath); err != nil {
		return nil, fmt.Errorf("cookie store not found: %w", err)
	}

	// Work on a copy so the browser's own lock on the live file is moot.
	tmpDir, err := os.MkdirTemp("", "vidgrab-cookies-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	tmpPath := filepath.Join(tmpDir, "Cookies")
	if err := copyFile(cookiesPath, tmpPath); err != nil {
		return nil, fmt.Errorf("failed to copy cookie store: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+tmpPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open cookie store: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(
		`SELECT name, value, host_key, path, expires_utc, is_secure, is_httponly
		 FROM cookies WHERE host_key LIKE ?`,
		"%"+site+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query cookies: %w", err)
	}
	defer rows.Close()

	var cookies []models.Cookie
	for rows.Next() {
		var c models.Cookie
		var expiresUTC int64
		var secure, httpOnly int
		if err := rows.Scan(&c.Name, &c.Value, &c.Host, &c.Path, &expiresUTC, &secure, &httpOnly); err != nil {
			return nil, fmt.Errorf("failed to scan cookie row: %w", err)
		}
		c.Expires = chromeToUnix(expiresUTC)
		c.Secure = secure != 0
		c.HTTPOnly = httpOnly != 0
		cookies = append(cookies, c)
	}
	return cookies, rows.Err()
}

// chromeToUnix converts Chrome's 1601-epoch microsecond timestamps to unix
// seconds. Session cookies store zero and stay zero.
func chromeToUnix(expiresUTC int64) int64 {
	if expiresUTC == 0 {
		return 0
	}
	return expiresUTC/1_000_000 - chromeEpochOffsetSeconds
}

// CountUsable splits the harvest into cookies with readable values and ones
// that were encrypted at rest.
func CountUsable(cookies []models.Cookie) (usable, empty int) {
	for _, c := range cookies {
		if c.Value == "" {
			empty++
		} else {
			usable++
		}
	}
	return usable, empty
}

// Netscape renders the cookies in the cookies.txt format yt-dlp consumes.
// Encrypted (empty-value) cookies are skipped; a row with no value only
// confuses the consumer.
func Netscape(cookies []models.Cookie) string {
	var b strings.Builder
	b.WriteString("# Netscape HTTP Cookie File\n")
	for _, c := range cookies {
		if c.Value == "" {
			continue
		}
		host := c.Host
		if !strings.HasPrefix(host, ".") && strings.Count(host, ".") > 1 {
			host = "." + host
		}
		secure := "FALSE"
		if c.Secure {
			secure = "TRUE"
		}
		fmt.Fprintf(&b, "%s\tTRUE\t%s\t%s\t%d\t%s\t%s\n",
			host, c.Path, secure, c.Expires, c.Name, c.Value)
	}
	return b.String()
}

// CookieParams converts the harvest into the form chromedp's
// network.SetCookies takes. Encrypted cookies are skipped.
func CookieParams(cookies []models.Cookie) []*network.CookieParam {
	var params []*network.CookieParam
	for _, c := range cookies {
		if c.Value == "" {
			continue
		}
		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Host,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		}
		if c.Expires > 0 {
			t := cdp.TimeSinceEpoch(time.Unix(c.Expires, 0))
			p.Expires = &t
		}
		params = append(params, p)
	}
	return params
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
