package domain

import (
	"fmt"
	"time"
)

// DateTimeLayout is the wire layout for seance start times: HH:mm|dd.MM.yyyy.
const DateTimeLayout = "15:04|02.01.2006"

// FormatDateTime renders t using DateTimeLayout.
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// ParseDateTime parses a DateTimeLayout string in loc. A nil loc means time.Local.
func ParseDateTime(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateTimeLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date time %q: %w", value, err)
	}
	return t, nil
}
