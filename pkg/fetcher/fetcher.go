// Package fetcher is the authenticated HTTP side of the toolkit: a client
// with a cookie jar and browser-like headers, fed from harvested cookies or
// a pasted auth bundle, used for page fetches and API endpoint probing.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mlowther/vidgrab/models"
)

// requestDelay spaces consecutive requests. Variable so tests can zero it.
var requestDelay = 1 * time.Second

type Fetcher struct {
	client    *http.Client
	userAgent string
	headers   map[string]string
	lastReq   time.Time
}

func NewFetcher(userAgent string) (*Fetcher, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Fetcher{
		client: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
		userAgent: userAgent,
		headers:   map[string]string{},
	}, nil
}

// ApplyBundle loads a pasted auth bundle: headers verbatim, cookies into
// the jar for the given site, localStorage values that look like tokens
// promoted to a bearer header.
func (f *Fetcher) ApplyBundle(bundle models.AuthBundle, site string) error {
	for k, v := range bundle.Headers {
		f.headers[k] = v
	}

	if len(bundle.Cookies) > 0 {
		cookies := make([]*http.Cookie, 0, len(bundle.Cookies))
		for name, value := range bundle.Cookies {
			cookies = append(cookies, &http.Cookie{Name: name, Value: value, Path: "/"})
		}
		if err := f.setJarCookies(site, cookies); err != nil {
			return err
		}
	}

	if _, ok := f.headers["Authorization"]; !ok {
		for key, value := range bundle.LocalStorage {
			lower := strings.ToLower(key)
			if strings.Contains(lower, "token") || strings.Contains(lower, "auth") || strings.Contains(lower, "jwt") {
				f.headers["Authorization"] = "Bearer " + value
				break
			}
		}
	}
	return nil
}

// ApplyCookies loads harvested browser cookies into the jar. Encrypted
// (empty-value) cookies are skipped.
func (f *Fetcher) ApplyCookies(harvested []models.Cookie, site string) error {
	cookies := make([]*http.Cookie, 0, len(harvested))
	for _, c := range harvested {
		if c.Value == "" {
			continue
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: path})
	}
	return f.setJarCookies(site, cookies)
}

func (f *Fetcher) setJarCookies(site string, cookies []*http.Cookie) error {
	u, err := url.Parse("https://" + strings.TrimPrefix(site, "https://"))
	if err != nil {
		return fmt.Errorf("bad site %q: %w", site, err)
	}
	f.client.Jar.SetCookies(u, cookies)
	return nil
}

// Get fetches url with the browser headers applied, pacing requests with a
// fixed polite delay.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	if !f.lastReq.IsZero() {
		if wait := requestDelay - time.Since(f.lastReq); wait > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	f.lastReq = time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	f.applyHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s, status code: %d", rawURL, resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return bodyBytes, nil
}

// GetDocument fetches url and parses the body with goquery.
func (f *Fetcher) GetDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	bodyBytes, err := f.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(bodyBytes)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

func (f *Fetcher) applyHeaders(req *http.Request) {
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Connection", "keep-alive")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
}
