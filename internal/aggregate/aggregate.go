// internal/aggregate/aggregate.go

// Package aggregate computes scalar and grouped statistics over record
// subsets. Every function is pure and defined for zero rows.
package aggregate

import (
	"math"
	"sort"
	"strings"

	"recruitment-analytics/internal/dataset"
)

// Stat is a numeric result with an explicit "no data" state. Valid is false
// when the subset was empty or every value for the field was missing, so a
// genuine zero is never confused with absent data.
type Stat struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// NoData returns the explicit empty-result marker.
func NoData() Stat {
	return Stat{}
}

// Count returns the number of rows. Zero for empty input.
func Count(rows []dataset.Record) int {
	return len(rows)
}

// CountWhere counts rows satisfying pred.
func CountWhere(rows []dataset.Record, pred func(dataset.Record) bool) int {
	n := 0
	for _, rec := range rows {
		if pred(rec) {
			n++
		}
	}
	return n
}

// ClosedPredicate builds the closed-requisition test from configured status
// markers: a row is closed when its status contains any marker,
// case-insensitive.
func ClosedPredicate(markers []string) func(dataset.Record) bool {
	lowered := make([]string, len(markers))
	for i, m := range markers {
		lowered[i] = strings.ToLower(m)
	}
	return func(rec dataset.Record) bool {
		status := strings.ToLower(rec.BroadStatus)
		for _, m := range lowered {
			if m != "" && strings.Contains(status, m) {
				return true
			}
		}
		return false
	}
}

// Mean computes the arithmetic mean of a numeric field over rows where the
// field is present.
func Mean(rows []dataset.Record, field dataset.NumericField) Stat {
	var sum float64
	n := 0
	for _, rec := range rows {
		if v, ok := rec.Numeric(field); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return NoData()
	}
	return Stat{Value: sum / float64(n), Valid: true}
}

// Sum totals a numeric field over rows where the field is present.
func Sum(rows []dataset.Record, field dataset.NumericField) Stat {
	var sum float64
	n := 0
	for _, rec := range rows {
		if v, ok := rec.Numeric(field); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return NoData()
	}
	return Stat{Value: sum, Valid: true}
}

// GroupCount is one partition of a grouped count.
type GroupCount struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// UnknownLabel stands in for rows whose dimension value is missing, so the
// per-value counts always sum to the subset size.
const UnknownLabel = "Unknown"

// GroupBy partitions rows by a dimension value, in first-seen order for
// deterministic chart rendering. Missing values group under the empty value
// with the Unknown label.
func GroupBy(rows []dataset.Record, dim dataset.Dimension) []GroupCount {
	index := make(map[string]int)
	var groups []GroupCount
	for _, rec := range rows {
		v := rec.Dimension(dim)
		i, ok := index[v]
		if !ok {
			label := v
			if label == "" {
				label = UnknownLabel
			}
			i = len(groups)
			index[v] = i
			groups = append(groups, GroupCount{Value: v, Label: label})
		}
		groups[i].Count++
	}
	return groups
}

// TopN returns the n largest groups by count, descending. The sort is stable,
// so first-seen order breaks ties. n <= 0 returns everything sorted.
func TopN(groups []GroupCount, n int) []GroupCount {
	out := make([]GroupCount, len(groups))
	copy(out, groups)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// HistogramBin is one equal-width bucket of a numeric distribution.
type HistogramBin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Histogram buckets the present values of a numeric field into equal-width
// bins spanning the observed range. Nil when no values are
// present. A single distinct value yields one bin containing everything.
func Histogram(rows []dataset.Record, field dataset.NumericField, bins int) []HistogramBin {
	if bins <= 0 {
		bins = 10
	}

	var values []float64
	for _, rec := range rows {
		if v, ok := rec.Numeric(field); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	if lo == hi {
		return []HistogramBin{{Low: lo, High: hi, Count: len(values)}}
	}

	width := (hi - lo) / float64(bins)
	out := make([]HistogramBin, bins)
	for i := range out {
		out[i].Low = lo + float64(i)*width
		out[i].High = lo + float64(i+1)*width
	}
	out[bins-1].High = hi

	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out
}

// BoxSummary is the five-number summary of a numeric field. Valid is false
// when no values were present.
type BoxSummary struct {
	Valid  bool    `json:"valid"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// BoxStats computes the five-number summary over the present values of a
// numeric field.
func BoxStats(rows []dataset.Record, field dataset.NumericField) BoxSummary {
	var values []float64
	for _, rec := range rows {
		if v, ok := rec.Numeric(field); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return BoxSummary{}
	}

	sort.Float64s(values)
	return BoxSummary{
		Valid:  true,
		Count:  len(values),
		Min:    values[0],
		Q1:     quantile(values, 0.25),
		Median: quantile(values, 0.5),
		Q3:     quantile(values, 0.75),
		Max:    values[len(values)-1],
	}
}

// quantile interpolates linearly between closest ranks. values must be sorted.
func quantile(values []float64, q float64) float64 {
	if len(values) == 1 {
		return values[0]
	}
	pos := q * float64(len(values)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return values[lo]
	}
	frac := pos - float64(lo)
	return values[lo]*(1-frac) + values[hi]*frac
}
