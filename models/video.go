package models

// Video describes one downloadable resource. URL is the only required
// field; a missing title gets a positional "Video N" placeholder at ingest.
type Video struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Source      string `json:"source,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
}

// VideoCapture is the stage-2 JSON file as saved from the browser. The
// combined automation payload writes the same shape plus a courses list.
type VideoCapture struct {
	Videos    []Video  `json:"videos"`
	Courses   []Course `json:"courses,omitempty"`
	PageURL   string   `json:"pageUrl,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
}

// DownloadItem is a video bound to its 1-based position and the sanitized
// filename stem derived from it. Filenames are re-derived from position on
// every run; editing the capture file between runs renumbers items.
type DownloadItem struct {
	Index    int
	Video    Video
	Filename string
}
