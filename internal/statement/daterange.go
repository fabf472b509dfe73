package statement

import (
	"fmt"
	"time"
)

// DateRange describes the span of dates covered by a parsed batch.
type DateRange struct {
	Start     time.Time        `json:"start"`
	End       time.Time        `json:"end"`
	TotalDays int              `json:"total_days"`
	Suggested []SuggestedRange `json:"suggested,omitempty"`
}

// SuggestedRange is a pre-computed filter option offered to the user after
// upload, labeled with how many transactions it would keep.
type SuggestedRange struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Count int       `json:"count"`
}

// ExtractDateRange computes the min/max transaction dates and a set of
// suggested sub-ranges (last 1/3/6 months, last year for long statements).
// Returns a zero DateRange for an empty batch.
func ExtractDateRange(txs []Transaction) DateRange {
	var dr DateRange
	if len(txs) == 0 {
		return dr
	}

	dr.Start = txs[0].Date
	dr.End = txs[0].Date
	for _, tx := range txs {
		if tx.Date.Before(dr.Start) {
			dr.Start = tx.Date
		}
		if tx.Date.After(dr.End) {
			dr.End = tx.Date
		}
	}
	dr.TotalDays = int(dr.End.Sub(dr.Start).Hours()/24) + 1

	dr.Suggested = append(dr.Suggested, SuggestedRange{
		Label: fmt.Sprintf("All (%d transactions)", len(txs)),
		Start: dr.Start,
		End:   dr.End,
		Count: len(txs),
	})

	months := []struct {
		label string
		n     int
	}{
		{"Last 1 Month", 1},
		{"Last 3 Months", 3},
		{"Last 6 Months", 6},
	}
	for _, m := range months {
		start := dr.End.AddDate(0, -m.n, 0)
		if start.Before(dr.Start) {
			continue
		}
		count := countInRange(txs, start, dr.End)
		if count == 0 {
			continue
		}
		dr.Suggested = append(dr.Suggested, SuggestedRange{
			Label: fmt.Sprintf("%s (%d transactions)", m.label, count),
			Start: start,
			End:   dr.End,
			Count: count,
		})
	}

	if dr.TotalDays > 180 {
		start := dr.End.AddDate(-1, 0, 0)
		if !start.Before(dr.Start) {
			if count := countInRange(txs, start, dr.End); count > 0 {
				dr.Suggested = append(dr.Suggested, SuggestedRange{
					Label: fmt.Sprintf("Last 1 Year (%d transactions)", count),
					Start: start,
					End:   dr.End,
					Count: count,
				})
			}
		}
	}

	return dr
}

// FilterByDateRange keeps transactions whose date falls inside [start, end],
// bounds inclusive. An end before start is a DateRangeInvalid error.
func FilterByDateRange(txs []Transaction, start, end time.Time) ([]Transaction, error) {
	if end.Before(start) {
		return nil, NewError(ErrDateRangeInvalid, "end date %s is before start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	var filtered []Transaction
	for _, tx := range txs {
		if inRange(tx.Date, start, end) {
			filtered = append(filtered, tx)
		}
	}
	return filtered, nil
}

func countInRange(txs []Transaction, start, end time.Time) int {
	count := 0
	for _, tx := range txs {
		if inRange(tx.Date, start, end) {
			count++
		}
	}
	return count
}

func inRange(d, start, end time.Time) bool {
	return !d.Before(start) && !d.After(end)
}
