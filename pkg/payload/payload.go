// Package payload generates the JavaScript snippets the operator pastes
// into the browser console. The browser does the walking and extraction;
// each payload ends by auto-downloading its findings as a JSON capture
// file that the ingest stage picks up.
package payload

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/mlowther/vidgrab/models"
	"github.com/mlowther/vidgrab/pkg/storage"
)

// CombinedFileName is where the combined payload is written on request.
const CombinedFileName = "complete_automation.js"

type templateData struct {
	LibraryURL   string
	CoursesFile  string
	VideosFile   string
	CompleteFile string
}

func data(cfg models.Config) templateData {
	return templateData{
		LibraryURL:   cfg.LibraryURL,
		CoursesFile:  cfg.FilePrefix + "_courses.json",
		VideosFile:   cfg.FilePrefix + "_videos.json",
		CompleteFile: cfg.FilePrefix + "_complete.json",
	}
}

func render(name, tmpl string, d templateData) string {
	var b strings.Builder
	// Templates are compile-time constants; a parse failure is a programming
	// error, not an input error.
	t := template.Must(template.New(name).Parse(tmpl))
	if err := t.Execute(&b, d); err != nil {
		panic(fmt.Sprintf("payload template %s: %v", name, err))
	}
	return b.String()
}

// Stage1 returns the course walker: find Start Now style buttons, pull the
// course title and link off the surrounding tile, save as a JSON file.
func Stage1(cfg models.Config) string {
	return render("stage1", stage1Template, data(cfg))
}

// Stage2 returns the video extractor for a single course page.
func Stage2(cfg models.Config) string {
	return render("stage2", stage2Template, data(cfg))
}

// Combined returns the one-shot payload that runs both extractions.
func Combined(cfg models.Config) string {
	return render("combined", combinedTemplate, data(cfg))
}

// WriteCombined saves the combined payload next to the capture files and
// returns the path.
func WriteCombined(cfg models.Config) (string, error) {
	store := &storage.Storage{}
	path := cfg.DataPath(CombinedFileName)
	if err := store.SaveFile(path, []byte(Combined(cfg))); err != nil {
		return "", err
	}
	return path, nil
}

const stage1Template = `// Course walker. Run on {{.LibraryURL}}
(function() {
    const courses = [];
    const buttons = Array.from(document.querySelectorAll('button, a')).filter(el => {
        const text = (el.textContent || '').toLowerCase();
        return text.includes('start now') || text.includes('start') || text.includes('begin');
    });

    buttons.forEach((button, index) => {
        const container = button.closest('.course, .lesson, .program, [class*="course"], [class*="lesson"]');
        let title = '';
        let link = '';
        if (container) {
            const titleEl = container.querySelector('h1, h2, h3, h4, .title, .course-title');
            title = titleEl?.textContent?.trim() || '';
            const linkEl = container.querySelector('a[href]');
            link = linkEl?.href || '';
        }
        if (!title) title = button.textContent.trim() || ('Course ' + (index + 1));
        courses.push({
            id: index + 1,
            title: title,
            link: link,
            buttonText: button.textContent.trim()
        });
    });

    console.log('Found ' + courses.length + ' courses');
    const data = JSON.stringify({courses: courses, timestamp: new Date().toISOString()}, null, 2);
    const blob = new Blob([data], {type: 'application/json'});
    const url = URL.createObjectURL(blob);
    const a = document.createElement('a');
    a.href = url;
    a.download = '{{.CoursesFile}}';
    document.body.appendChild(a);
    a.click();
    document.body.removeChild(a);
    URL.revokeObjectURL(url);
    console.log('Saved as {{.CoursesFile}}');
    return courses;
})();
`

const stage2Template = `// Video extractor. Run on each course page.
(function() {
    const videos = [];

    document.querySelectorAll('video').forEach((video, i) => {
        const src = video.src || video.querySelector('source')?.src;
        if (src && src.startsWith('http')) {
            videos.push({
                url: src,
                title: video.title || video.getAttribute('data-title') || ('Video ' + (i + 1)),
                source: 'video-element'
            });
        }
    });

    document.querySelectorAll('iframe').forEach((iframe, i) => {
        if (iframe.src && (iframe.src.includes('vimeo') || iframe.src.includes('youtube') || iframe.src.includes('player'))) {
            videos.push({
                url: iframe.src,
                title: iframe.title || ('Video ' + (i + 1)),
                source: 'iframe'
            });
        }
    });

    document.querySelectorAll('script').forEach(script => {
        const text = script.textContent;
        const urlPatterns = [
            /https?:\/\/[^\s"']+\.mp4[^\s"']*/g,
            /https?:\/\/[^\s"']+\.m3u8[^\s"']*/g,
            /https?:\/\/vimeo\.com\/[^\s"']+/g,
            /https?:\/\/youtu\.be\/[^\s"']+/g
        ];
        urlPatterns.forEach(pattern => {
            const matches = text.match(pattern);
            if (matches) {
                matches.forEach(url => {
                    videos.push({
                        url: url.trim(),
                        title: 'Video ' + (videos.length + 1),
                        source: 'script-detection'
                    });
                });
            }
        });
    });

    const unique = videos.filter((video, index, self) =>
        index === self.findIndex(v => v.url === video.url)
    );

    console.log('Found ' + unique.length + ' videos on ' + window.location.href);
    const data = JSON.stringify({
        videos: unique,
        pageUrl: window.location.href,
        timestamp: new Date().toISOString()
    }, null, 2);
    const blob = new Blob([data], {type: 'application/json'});
    const url = URL.createObjectURL(blob);
    const a = document.createElement('a');
    a.href = url;
    a.download = '{{.VideosFile}}';
    document.body.appendChild(a);
    a.click();
    document.body.removeChild(a);
    URL.revokeObjectURL(url);
    console.log('Saved as {{.VideosFile}}');
    return unique;
})();
`

const combinedTemplate = `// Combined course and video extraction. Run on {{.LibraryURL}}
(function() {
    const automationData = {
        courses: [],
        videos: [],
        timestamp: new Date().toISOString()
    };

    function extractCourseInfo() {
        const courses = [];
        const buttons = Array.from(document.querySelectorAll('button, a')).filter(el => {
            const text = (el.textContent || '').toLowerCase();
            return text.includes('start now') || text.includes('start') || text.includes('begin');
        });
        buttons.forEach((button, index) => {
            const container = button.closest('.course, .lesson, .program, [class*="course"], [class*="lesson"]');
            let title = '';
            let link = '';
            if (container) {
                const titleEl = container.querySelector('h1, h2, h3, h4, .title, .course-title');
                title = titleEl?.textContent?.trim() || '';
                const linkEl = container.querySelector('a[href]');
                link = linkEl?.href || '';
            }
            if (!title) title = button.textContent.trim() || ('Course ' + (index + 1));
            courses.push({id: index + 1, title: title, link: link, buttonText: button.textContent.trim()});
        });
        return courses;
    }

    function extractVideos() {
        const videos = [];
        document.querySelectorAll('video').forEach((video, i) => {
            const src = video.src || video.querySelector('source')?.src;
            if (src && src.startsWith('http')) {
                videos.push({url: src, title: video.title || ('Video ' + (i + 1)), source: 'video-element'});
            }
        });
        document.querySelectorAll('iframe').forEach((iframe, i) => {
            if (iframe.src && (iframe.src.includes('vimeo') || iframe.src.includes('youtube'))) {
                videos.push({url: iframe.src, title: iframe.title || ('Video ' + (i + 1)), source: 'iframe'});
            }
        });
        document.querySelectorAll('script').forEach(script => {
            const text = script.textContent;
            [/https?:\/\/[^\s"']+\.mp4[^\s"']*/g, /https?:\/\/[^\s"']+\.m3u8[^\s"']*/g].forEach(pattern => {
                const matches = text.match(pattern);
                if (matches) {
                    matches.forEach(url => {
                        videos.push({url: url.trim(), title: 'Video ' + (videos.length + 1), source: 'script-detection'});
                    });
                }
            });
        });
        return videos.filter((video, index, self) =>
            index === self.findIndex(v => v.url === video.url)
        );
    }

    automationData.courses = extractCourseInfo();
    automationData.videos = extractVideos();

    console.log('Courses: ' + automationData.courses.length);
    console.log('Videos: ' + automationData.videos.length);

    const dataStr = JSON.stringify(automationData, null, 2);
    const dataBlob = new Blob([dataStr], {type: 'application/json'});
    const url = URL.createObjectURL(dataBlob);
    const link = document.createElement('a');
    link.href = url;
    link.download = '{{.CompleteFile}}';
    document.body.appendChild(link);
    link.click();
    document.body.removeChild(link);
    URL.revokeObjectURL(url);
    return automationData;
})();
`
