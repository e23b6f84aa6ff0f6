// internal/aggregate/timeseries.go
package aggregate

import (
	"fmt"
	"time"

	"recruitment-analytics/internal/dataset"
)

// Granularity selects the bucket width for trend series.
type Granularity string

const (
	ByMonth   Granularity = "month"
	ByWeek    Granularity = "week"
	ByQuarter Granularity = "quarter"
)

// ParseGranularity maps a config string to a Granularity, defaulting to month.
func ParseGranularity(s string) Granularity {
	switch Granularity(s) {
	case ByWeek:
		return ByWeek
	case ByQuarter:
		return ByQuarter
	default:
		return ByMonth
	}
}

// Bucket is one time interval of a trend series.
type Bucket struct {
	Start time.Time `json:"start"`
	Label string    `json:"label"`
	Count int       `json:"count"`
}

// Series is an ordered, gap-free trend over dated rows. Dropped counts the
// rows excluded because their date was missing.
type Series struct {
	Bucket  Granularity `json:"bucket"`
	Buckets []Bucket    `json:"buckets"`
	Dropped int         `json:"dropped"`
}

// TimeSeries groups rows into ordered date buckets and counts per bucket.
// Buckets with zero rows between the first and last populated bucket are
// included as zero so trend charts have no gaps. Rows with a missing date
// are excluded and reported via Dropped.
func TimeSeries(rows []dataset.Record, field dataset.DateField, g Granularity) Series {
	series := Series{Bucket: g}

	counts := make(map[time.Time]int)
	var min, max time.Time
	for _, rec := range rows {
		t, ok := rec.Date(field)
		if !ok {
			series.Dropped++
			continue
		}
		start := truncate(t.UTC(), g)
		if len(counts) == 0 || start.Before(min) {
			min = start
		}
		if len(counts) == 0 || start.After(max) {
			max = start
		}
		counts[start]++
	}

	if len(counts) == 0 {
		return series
	}

	for cur := min; !cur.After(max); cur = next(cur, g) {
		series.Buckets = append(series.Buckets, Bucket{
			Start: cur,
			Label: label(cur, g),
			Count: counts[cur],
		})
	}
	return series
}

// truncate maps a timestamp to the start of its bucket.
func truncate(t time.Time, g Granularity) time.Time {
	switch g {
	case ByWeek:
		// ISO week, Monday start.
		day := t.Truncate(24 * time.Hour)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case ByQuarter:
		q := (int(t.Month()) - 1) / 3
		return time.Date(t.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

func next(t time.Time, g Granularity) time.Time {
	switch g {
	case ByWeek:
		return t.AddDate(0, 0, 7)
	case ByQuarter:
		return t.AddDate(0, 3, 0)
	default:
		return t.AddDate(0, 1, 0)
	}
}

func label(t time.Time, g Granularity) string {
	switch g {
	case ByWeek:
		return t.Format("2006-01-02")
	case ByQuarter:
		return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
	default:
		return t.Format("Jan-2006")
	}
}
