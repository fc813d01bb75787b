package common

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	unsafeChars  = regexp.MustCompile(`[^\w\s-]`)
	runsOfFiller = regexp.MustCompile(`[-\s]+`)
)

// SanitizeTitle reduces a human-readable title to a filesystem-safe stem:
// characters outside [A-Za-z0-9_ -] are stripped, then runs of whitespace
// and hyphens collapse to a single hyphen. Deterministic and idempotent.
// Two distinct titles can map to the same stem; that collision is accepted,
// the downloader's overwrite behavior decides which file survives.
func SanitizeTitle(title string) string {
	safe := unsafeChars.ReplaceAllString(title, "")
	safe = strings.TrimSpace(safe)
	return runsOfFiller.ReplaceAllString(safe, "-")
}

// ItemFilename builds the ordinal filename stem for the item at the given
// 1-based position. Position is list order at ingest time, nothing more:
// rerunning after editing the capture file renumbers everything.
func ItemFilename(index int, title string) string {
	return fmt.Sprintf("%03d-%s", index, SanitizeTitle(title))
}

// DefaultTitle is the placeholder for records that arrive without a title.
func DefaultTitle(index int) string {
	return fmt.Sprintf("Video %d", index)
}
