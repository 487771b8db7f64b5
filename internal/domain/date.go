package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the format of the finalized-record date partition.
const DateLayout = "2006-01-02"

// DayKey returns the calendar day of t in loc as a partition key.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}

// ParseDayKey validates a yyyy-mm-dd partition key and returns it normalized.
func ParseDayKey(s string) (string, error) {
	s = strings.TrimSpace(s)
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: date %q must be yyyy-mm-dd", ErrInvalidInput, s)
	}
	return d.Format(DateLayout), nil
}
