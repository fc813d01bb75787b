// Package ingest turns hand-saved browser capture files into download items.
// It is the explicit stage boundary after the manual console step: a file
// path goes in, parsed records come out, no prompting in between.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mlowther/vidgrab/internal/common"
	"github.com/mlowther/vidgrab/models"
)

// ErrNoVideos covers the whole "nothing to work with" taxonomy: missing
// file, malformed JSON, and an empty videos list are all reported the same
// way, with instructions to redo the manual browser step.
var ErrNoVideos = errors.New("no videos found")

// ErrNoCourses is the course-capture counterpart of ErrNoVideos.
var ErrNoCourses = errors.New("no courses found")

// VideoCaptureNames returns the probe order for video capture files. The
// combined automation file wins over the stage-2 file, which wins over the
// legacy unprefixed names the older payload variants used.
func VideoCaptureNames(prefix string) []string {
	return []string{
		prefix + "_complete.json",
		prefix + "_videos.json",
		"video_data.json",
		"found_videos.json",
	}
}

// CourseCaptureNames returns the probe order for course capture files.
func CourseCaptureNames(prefix string) []string {
	return []string{prefix + "_courses.json"}
}

// FindCapture returns the first existing file among names, resolved against
// the data directory.
func FindCapture(cfg models.Config, names []string) (string, bool) {
	for _, name := range names {
		path := cfg.DataPath(name)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// LoadVideos parses a video capture file. Both shapes the payloads produce
// are accepted: the wrapped {"videos":[...]} object and a bare array.
func LoadVideos(path string) ([]models.Video, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoVideos)
	}

	var capture models.VideoCapture
	if err := json.Unmarshal(data, &capture); err == nil && len(capture.Videos) > 0 {
		return capture.Videos, nil
	}

	var bare []models.Video
	if err := json.Unmarshal(data, &bare); err == nil && len(bare) > 0 {
		return bare, nil
	}

	return nil, fmt.Errorf("%s: %w", path, ErrNoVideos)
}

// LoadCourses parses a stage-1 course capture file.
func LoadCourses(path string) ([]models.Course, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoCourses)
	}

	var capture models.CourseCapture
	if err := json.Unmarshal(data, &capture); err != nil || len(capture.Courses) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoCourses)
	}
	return capture.Courses, nil
}

// BuildItems assigns positions, placeholder titles, and sanitized filename
// stems. Records without a URL are dropped silently. No de-duplication
// happens here: positions must match the capture file so the operator can
// cross-reference, and identical URLs in the file stay identical items.
func BuildItems(videos []models.Video) []models.DownloadItem {
	items := make([]models.DownloadItem, 0, len(videos))
	for _, v := range videos {
		if v.URL == "" {
			continue
		}
		idx := len(items) + 1
		if v.Title == "" {
			v.Title = common.DefaultTitle(idx)
		}
		items = append(items, models.DownloadItem{
			Index:    idx,
			Video:    v,
			Filename: common.ItemFilename(idx, v.Title),
		})
	}
	return items
}
