package discover

import (
	"strings"
	"testing"
)

func TestScan_VideoAndSourceTags(t *testing.T) {
	html := `<html><body>
		<video src="https://cdn.example.com/a.mp4" title="Lesson A"></video>
		<video><source src="https://cdn.example.com/b.m3u8"></video>
	</body></html>`

	videos := Scan(html)
	if len(videos) != 2 {
		t.Fatalf("got %d videos, want 2", len(videos))
	}
	if videos[0].URL != "https://cdn.example.com/a.mp4" || videos[0].Source != "video-tag" {
		t.Errorf("first = %+v", videos[0])
	}
	if videos[0].Title != "Lesson A" {
		t.Errorf("title = %q, want %q", videos[0].Title, "Lesson A")
	}
	if videos[1].Source != "source-tag" {
		t.Errorf("second source = %q, want %q", videos[1].Source, "source-tag")
	}
}

func TestScan_EmbedIframes(t *testing.T) {
	html := `<iframe src="https://player.vimeo.com/video/12345"></iframe>
		<iframe src="https://maps.example.com/embed"></iframe>`

	videos := Scan(html)
	if len(videos) != 1 {
		t.Fatalf("got %d videos, want 1", len(videos))
	}
	if videos[0].Source != "iframe" {
		t.Errorf("source = %q, want %q", videos[0].Source, "iframe")
	}
}

// A URL that appears both as a DOM attribute and in raw script text must be
// reported once, tagged with the DOM source.
func TestScan_DOMWinsOverRegex(t *testing.T) {
	html := `<video src="https://cdn.example.com/a.mp4"></video>
		<script>var u = "https://cdn.example.com/a.mp4";</script>`

	videos := Scan(html)
	if len(videos) != 1 {
		t.Fatalf("got %d videos, want 1", len(videos))
	}
	if videos[0].Source != "video-tag" {
		t.Errorf("source = %q, want %q", videos[0].Source, "video-tag")
	}
}

func TestScan_RawTextRegex(t *testing.T) {
	html := `<script>
		player.load("https://cdn.example.com/stream/master.m3u8?token=abc");
		var cfg = {"video_url": "https://vault.example.com/v/full.mp4"};
		// https://youtu.be/dQw4w9WgXcQ
	</script>`

	videos := Scan(html)
	if len(videos) != 3 {
		t.Fatalf("got %d videos, want 3: %+v", len(videos), videos)
	}
	for _, v := range videos {
		if v.URL == "" {
			t.Errorf("empty URL in %+v", v)
		}
	}
}

// Query strings make URLs distinct. Only the exact string dedupes.
func TestScan_ExactURLDedupe(t *testing.T) {
	html := `<script>
		"https://x.example.com/a.mp4"
		"https://x.example.com/a.mp4"
		"https://x.example.com/a.mp4?q=1"
	</script>`

	videos := Scan(html)
	if len(videos) != 2 {
		t.Fatalf("got %d videos, want 2: %+v", len(videos), videos)
	}
}

func TestScan_EmptyAndJunkHTML(t *testing.T) {
	for _, html := range []string{"", "<<<>>>", "plain text, no urls"} {
		if videos := Scan(html); len(videos) != 0 {
			t.Errorf("Scan(%q) = %d videos, want 0", html, len(videos))
		}
	}
}

func TestScanCourses(t *testing.T) {
	html := `<div class="library">
		<a href="/courses/10x-sales"><h3>10X Sales</h3></a>
		<a href="/courses/closing">Closing the Deal</a>
		<a href="/courses/closing">Closing the Deal</a>
		<a href="/about">About</a>
	</div>`

	courses := ScanCourses(html)
	if len(courses) != 2 {
		t.Fatalf("got %d courses, want 2: %+v", len(courses), courses)
	}
	if courses[0].Title != "10X Sales" {
		t.Errorf("title = %q, want %q", courses[0].Title, "10X Sales")
	}
	if courses[1].ID != 2 {
		t.Errorf("ID = %d, want 2", courses[1].ID)
	}
}

func TestWalkJSON(t *testing.T) {
	body := `{
		"data": {
			"items": [
				{"title": "Intro", "video_url": "https://cdn.example.com/1.mp4", "duration": 300},
				{"name": "Deep Dive", "stream_url": "https://cdn.example.com/2.m3u8"},
				{"title": "No video here", "thumbnail": "https://cdn.example.com/t.jpg"}
			]
		},
		"next": null
	}`

	videos := WalkJSON([]byte(body))
	if len(videos) != 2 {
		t.Fatalf("got %d videos, want 2: %+v", len(videos), videos)
	}
	if videos[0].Title != "Intro" || videos[0].URL != "https://cdn.example.com/1.mp4" {
		t.Errorf("first = %+v", videos[0])
	}
	if videos[1].Title != "Deep Dive" {
		t.Errorf("second title = %q", videos[1].Title)
	}
	for _, v := range videos {
		if v.Source != "api" {
			t.Errorf("source = %q, want %q", v.Source, "api")
		}
	}
}

func TestWalkJSON_RejectsNonVideoURLs(t *testing.T) {
	body := `{"url": "https://example.com/profile", "title": "Me"}`
	if videos := WalkJSON([]byte(body)); len(videos) != 0 {
		t.Errorf("got %d videos, want 0", len(videos))
	}
}

func TestWalkJSON_Malformed(t *testing.T) {
	if videos := WalkJSON([]byte(`{nope`)); videos != nil {
		t.Errorf("got %v, want nil", videos)
	}
}

func TestScan_LargePageStaysOrdered(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString(`<video src="https://cdn.example.com/first.mp4"></video>`)
	for i := 0; i < 200; i++ {
		b.WriteString("<p>filler</p>")
	}
	b.WriteString(`<video src="https://cdn.example.com/last.mp4"></video>`)
	b.WriteString("</body></html>")

	videos := Scan(b.String())
	if len(videos) != 2 {
		t.Fatalf("got %d videos, want 2", len(videos))
	}
	if !strings.HasSuffix(videos[0].URL, "first.mp4") || !strings.HasSuffix(videos[1].URL, "last.mp4") {
		t.Errorf("order not preserved: %+v", videos)
	}
}
