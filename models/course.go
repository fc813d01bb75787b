package models

// Course identifies one course page found by the stage-1 console payload.
// No uniqueness is enforced beyond list order.
type Course struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Link       string `json:"link"`
	ButtonText string `json:"buttonText,omitempty"`
}

// CourseCapture is the stage-1 JSON file as saved from the browser.
type CourseCapture struct {
	Courses   []Course `json:"courses"`
	Timestamp string   `json:"timestamp,omitempty"`
}
