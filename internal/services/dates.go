package services

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

// parseDateValue turns a caller-supplied date string into a timestamp.
// An empty string means "clear the field" and yields nil. A ten-character
// date-only string (YYYY-MM-DD) expands to midnight UTC; anything else is
// parsed as a full timestamp.
func parseDateValue(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	if len(value) == len("2006-01-02") {
		t, err := time.ParseInLocation("2006-01-02", value, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", value, err)
		}
		return &t, nil
	}

	t, err := dateparse.ParseAny(value)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp %q: %w", value, err)
	}
	return &t, nil
}
