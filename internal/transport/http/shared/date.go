package shared

import (
	"fmt"
	"strings"
	"time"
)

// ParseDate reads the two shapes the console sends: full RFC3339
// timestamps from date pickers and bare YYYY-MM-DD strings. Empty input
// parses to the zero time.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}
