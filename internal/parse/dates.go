package parse

import (
	"strings"
	"time"
)

// dateLayouts to try, in order, when parsing statement dates. The first
// layout consuming the full string wins.
var dateLayouts = []string{
	"2006-01-02", // YYYY-MM-DD
	"01/02/2006", // MM/DD/YYYY
	"02/01/2006", // DD/MM/YYYY
	"02/01/06",   // DD/MM/YY
	"01-02-2006", // MM-DD-YYYY
	"02-01-2006", // DD-MM-YYYY
	"02-01-06",   // DD-MM-YY
	"2006/01/02", // YYYY/MM/DD
	"02-Jan-2006",
	"02-January-2006",
	"02-Jan-06",
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// parseDate tries the known layouts against the trimmed value.
// Two-digit years are mapped into the 2000s. Returns ok=false when no
// layout matches; callers skip the row rather than failing the batch.
func parseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Year() < 100 {
			t = t.AddDate(2000, 0, 0)
		}
		return t, true
	}
	return time.Time{}, false
}
