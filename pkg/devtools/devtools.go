// Package devtools talks to a Chromium-family browser's remote debugging
// endpoint: listing tabs, waiting for the endpoint to come up after a
// launch, and driving a page capture over CDP.
package devtools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Tab is one entry from the endpoint's /json tab list.
type Tab struct {
	ID                   string `json:"id"`
	Type                 string `json:"type"`
	Title                string `json:"title"`
	URL                  string `json:"url"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// Endpoint wraps one debugging endpoint base URL, e.g. http://localhost:9222.
type Endpoint struct {
	BaseURL string
	client  *http.Client
}

func NewEndpoint(port int) *Endpoint {
	return &Endpoint{
		BaseURL: fmt.Sprintf("http://localhost:%d", port),
		client:  &http.Client{Timeout: 2 * time.Second},
	}
}

// ListTabs fetches and decodes the /json tab list.
func (e *Endpoint) ListTabs(ctx context.Context) ([]Tab, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.BaseURL+"/json", nil)
	if err != nil {
		return nil, err
	}
	resp, err := e.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("devtools endpoint not reachable: %w", err)
	}
	defer resp.Body.Close()

	var tabs []Tab
	if err := json.NewDecoder(resp.Body).Decode(&tabs); err != nil {
		return nil, fmt.Errorf("failed to decode tab list: %w", err)
	}
	return tabs, nil
}

// Alive reports whether anything answers on /json.
func (e *Endpoint) Alive(ctx context.Context) bool {
	_, err := e.ListTabs(ctx)
	return err == nil
}

// Wait polls /json until the endpoint answers or the timeout passes. Used
// after launching a browser, which takes a few seconds to open the port.
func (e *Endpoint) Wait(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		if e.Alive(ctx) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for devtools endpoint at %s", e.BaseURL)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (e *Endpoint) httpClient() *http.Client {
	if e.client == nil {
		e.client = &http.Client{Timeout: 2 * time.Second}
	}
	return e.client
}

// FindTab returns the first page tab whose URL contains site.
func FindTab(tabs []Tab, site string) (Tab, bool) {
	for _, t := range tabs {
		if t.Type != "" && t.Type != "page" {
			continue
		}
		if strings.Contains(t.URL, site) {
			return t, true
		}
	}
	return Tab{}, false
}

// browserCandidates lists the Chromium-family binaries probed per platform.
func browserCandidates() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"/Applications/Brave Browser.app/Contents/MacOS/Brave Browser",
			"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge",
		}
	case "windows":
		programFiles := os.Getenv("PROGRAMFILES")
		if programFiles == "" {
			programFiles = `C:\Program Files`
		}
		return []string{
			filepath.Join(programFiles, "Google", "Chrome", "Application", "chrome.exe"),
			filepath.Join(programFiles, "Microsoft", "Edge", "Application", "msedge.exe"),
			filepath.Join(programFiles, "BraveSoftware", "Brave-Browser", "Application", "brave.exe"),
		}
	default:
		return []string{
			"google-chrome",
			"google-chrome-stable",
			"chromium-browser",
			"chromium",
			"brave-browser",
		}
	}
}

// FindBrowser locates a Chromium-family binary. customPath, when set, is
// the only candidate tried.
func FindBrowser(customPath string) (string, error) {
	candidates := browserCandidates()
	if customPath != "" {
		candidates = []string{customPath}
	}
	for _, candidate := range candidates {
		if filepath.IsAbs(candidate) {
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		} else if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no Chromium-family browser found; pass an explicit path")
}

// Launch starts the browser with remote debugging enabled and returns
// without waiting for it to exit. It never touches an already running
// browser: when the endpoint already answers, callers should skip the
// launch and instruct the operator instead of killing anything.
func Launch(binary string, port int, userDataDir, openURL string) error {
	args := []string{
		fmt.Sprintf("--remote-debugging-port=%d", port),
		"--no-first-run",
		"--no-default-browser-check",
	}
	if userDataDir != "" {
		args = append(args, "--user-data-dir="+userDataDir)
	}
	if openURL != "" {
		args = append(args, openURL)
	}

	cmd := exec.Command(binary, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	// Detach: the browser outlives this process.
	return cmd.Process.Release()
}

// CaptureOptions configures a CDP page capture.
type CaptureOptions struct {
	// WebSocketURL attaches to an existing tab. Empty means a fresh
	// headless browser through the exec allocator.
	WebSocketURL string
	BrowserPath  string
	UserAgent    string
	Cookies      []*network.CookieParam
	// Wait is the settle time after navigation, for script-built pages.
	Wait time.Duration
}

// CapturePage navigates to targetURL and returns the rendered outer HTML.
func CapturePage(ctx context.Context, targetURL string, opts CaptureOptions) (string, error) {
	var allocCtx context.Context
	var cancelAlloc context.CancelFunc

	if opts.WebSocketURL != "" {
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(ctx, opts.WebSocketURL)
	} else {
		execOpts := chromedp.DefaultExecAllocatorOptions[:]
		if opts.BrowserPath != "" {
			execOpts = append(execOpts, chromedp.ExecPath(opts.BrowserPath))
		}
		if opts.UserAgent != "" {
			execOpts = append(execOpts, chromedp.UserAgent(opts.UserAgent))
		}
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(ctx, execOpts...)
	}
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if len(opts.Cookies) > 0 {
		if err := chromedp.Run(browserCtx, network.Enable(), network.SetCookies(opts.Cookies)); err != nil {
			return "", fmt.Errorf("failed to set cookies: %w", err)
		}
	}

	wait := opts.Wait
	if wait == 0 {
		wait = 5 * time.Second
	}

	var html string
	err := chromedp.Run(browserCtx, chromedp.Tasks{
		chromedp.Navigate(targetURL),
		chromedp.Sleep(wait),
		chromedp.OuterHTML("html", &html),
	})
	if err != nil {
		return "", fmt.Errorf("page capture failed: %w", err)
	}
	return html, nil
}
