package service

import (
	"fmt"
	"time"
)

const (
	layoutDate     = "2006-01-02"
	layoutDateTime = "2006-01-02 15:04:05"
)

// DateFormatError reports a date field that could not be parsed.
type DateFormatError struct {
	Field string
	Value string
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("Invalid %s format (use YYYY-MM-DD)", e.Field)
}

// ParseDate accepts a calendar date (midnight UTC), a 'YYYY-MM-DD HH:MM:SS'
// UTC datetime, or an RFC3339 instant.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range []string{layoutDate, layoutDateTime, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
}

// DateToEpochMillis parses s with ParseDate and returns Unix milliseconds.
func DateToEpochMillis(s string) (int64, error) {
	t, err := ParseDate(s)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}
