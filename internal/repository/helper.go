package repository

import (
	"fmt"
	"time"
)

// timeFormats lists the date layouts stored in the database: plain dates,
// RFC3339, and SQLite's CURRENT_TIMESTAMP form.
var timeFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ParseTime parses a date string in any of the stored formats.
func ParseTime(str string) (time.Time, error) {
	for _, format := range timeFormats {
		if returnTime, err := time.Parse(format, str); err == nil {
			return returnTime.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse date: %q", str)
}

// NormalizeClassAbbr maps the "main"/"Main" spellings used by some return
// snapshots onto the empty string used by fund rows. The two forms denote
// the same fund-level share class.
func NormalizeClassAbbr(classAbbr string) string {
	if classAbbr == "main" || classAbbr == "Main" {
		return ""
	}
	return classAbbr
}
