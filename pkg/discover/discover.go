// Package discover scans page HTML for video URLs without executing any
// scripts. It mirrors what the in-browser payload does, so a saved page
// source can be mined offline with the same heuristics.
package discover

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mlowther/vidgrab/models"
)

var (
	mediaFileRegex = regexp.MustCompile(`https?://[^\s"'<>\\]+\.(?:mp4|m3u8|webm|mov)(?:\?[^\s"'<>\\]*)?`)
	vimeoRegex     = regexp.MustCompile(`https?://(?:www\.|player\.)?vimeo\.com/(?:video/)?[0-9]+[^\s"'<>\\]*`)
	youtubeRegex   = regexp.MustCompile(`https?://(?:www\.)?(?:youtube\.com/(?:watch\?v=|embed/)|youtu\.be/)[a-zA-Z0-9_-]{11}[^\s"'<>\\]*`)
	wistiaRegex    = regexp.MustCompile(`https?://[^\s"'<>\\]*wistia\.(?:com|net)/(?:medias|embed)/[a-zA-Z0-9]+`)

	// Small inline JSON objects that carry a video-ish key, the kind
	// player configs embed in script tags.
	jsonURLRegex = regexp.MustCompile(`"(?:video_url|videoUrl|stream_url|streamUrl|download_url|source_url|src|file)"\s*:\s*"(https?://[^"]+)"`)
)

// videoURLKeys are probed, in order, on JSON objects found in API responses.
var videoURLKeys = []string{"video_url", "videoUrl", "stream_url", "streamUrl", "download_url", "source_url", "url", "src", "file"}

var titleKeys = []string{"title", "name", "label", "heading"}

// Scan runs the DOM pass then the raw-text passes over html and returns the
// found videos in document order, de-duplicated by exact URL string. A URL
// seen by the DOM pass is never re-reported by a regex pass.
func Scan(html string) []models.Video {
	seen := make(map[string]bool)
	var found []models.Video

	add := func(url, title, source string) {
		url = strings.TrimSpace(url)
		if url == "" || seen[url] {
			return
		}
		seen[url] = true
		found = append(found, models.Video{URL: url, Title: title, Source: source})
	}

	// Structured pass first. goquery tolerates broken markup, so a failed
	// parse only costs us the DOM heuristics, not the whole scan.
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		doc.Find("video").Each(func(_ int, s *goquery.Selection) {
			if src, ok := s.Attr("src"); ok {
				add(src, s.AttrOr("title", ""), "video-tag")
			}
			s.Find("source").Each(func(_ int, src *goquery.Selection) {
				if u, ok := src.Attr("src"); ok {
					add(u, "", "source-tag")
				}
			})
		})

		doc.Find("iframe").Each(func(_ int, s *goquery.Selection) {
			src, ok := s.Attr("src")
			if !ok {
				return
			}
			if isEmbedHost(src) {
				add(src, s.AttrOr("title", ""), "iframe")
			}
		})

		doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			href := s.AttrOr("href", "")
			if mediaFileRegex.MatchString(href) {
				add(href, strings.TrimSpace(s.Text()), "link")
			}
		})

		doc.Find("[data-video-url],[data-video-src]").Each(func(_ int, s *goquery.Selection) {
			if u := s.AttrOr("data-video-url", s.AttrOr("data-video-src", "")); u != "" {
				add(u, strings.TrimSpace(s.Text()), "data-attr")
			}
		})
	}

	// Raw-text passes catch what the DOM pass cannot see: URLs inside
	// script bodies, JSON blobs, and inline styles.
	for _, m := range mediaFileRegex.FindAllString(html, -1) {
		add(m, "", "regex")
	}
	for _, re := range []*regexp.Regexp{vimeoRegex, youtubeRegex, wistiaRegex} {
		for _, m := range re.FindAllString(html, -1) {
			add(m, "", "regex")
		}
	}
	for _, m := range jsonURLRegex.FindAllStringSubmatch(html, -1) {
		add(m[1], "", "json")
	}

	return found
}

func isEmbedHost(url string) bool {
	for _, host := range []string{"vimeo.com", "youtube.com", "youtu.be", "wistia.com", "wistia.net", "fast.wistia", "player."} {
		if strings.Contains(url, host) {
			return true
		}
	}
	return false
}

// ScanCourses extracts course tiles from a library page: anchors whose href
// contains a course path segment, with the anchor (or nearest heading) text
// as the title.
func ScanCourses(html string) []models.Course {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var courses []models.Course
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := s.AttrOr("href", "")
		if !strings.Contains(href, "/courses/") && !strings.Contains(href, "/programs/") {
			return
		}
		if seen[href] {
			return
		}
		seen[href] = true

		title := strings.TrimSpace(s.Text())
		if title == "" {
			title = strings.TrimSpace(s.Find("h1,h2,h3,h4").First().Text())
		}
		courses = append(courses, models.Course{
			ID:    len(courses) + 1,
			Title: title,
			Link:  href,
		})
	})
	return courses
}

// WalkJSON recursively collects video records from a decoded JSON API
// response. Any object carrying a video-ish URL key becomes a record; a
// title-ish key on the same object becomes its title.
func WalkJSON(data []byte) []models.Video {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var found []models.Video
	var walk func(node any)
	walk = func(node any) {
		switch v := node.(type) {
		case map[string]any:
			if url := firstString(v, videoURLKeys); url != "" && looksLikeVideoURL(url) && !seen[url] {
				seen[url] = true
				found = append(found, models.Video{
					URL:    url,
					Title:  firstString(v, titleKeys),
					Source: "api",
				})
			}
			for _, child := range v {
				walk(child)
			}
		case []any:
			for _, child := range v {
				walk(child)
			}
		}
	}
	walk(root)
	return found
}

func firstString(obj map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func looksLikeVideoURL(url string) bool {
	if !strings.HasPrefix(url, "http") {
		return false
	}
	return mediaFileRegex.MatchString(url) || isEmbedHost(url)
}
