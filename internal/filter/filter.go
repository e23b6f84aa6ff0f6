// internal/filter/filter.go

// Package filter implements dimension-based selection over recruitment records.
package filter

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"recruitment-analytics/internal/dataset"
)

// Selection maps a dimension to its accepted values. An absent dimension or
// an empty value set imposes no constraint. Dimensions are AND-combined;
// values within one dimension are OR-combined.
type Selection map[dataset.Dimension][]string

// IsEmpty reports whether the selection constrains anything.
func (s Selection) IsEmpty() bool {
	for _, values := range s {
		if len(values) > 0 {
			return false
		}
	}
	return true
}

// Hash returns a stable digest of the selection, independent of map and value
// ordering. Used as part of the snapshot cache key. Every token is length
// prefixed, so a value containing separator characters cannot collide with a
// differently shaped selection.
func (s Selection) Hash() string {
	if s.IsEmpty() {
		return "all"
	}

	dims := make([]string, 0, len(s))
	for dim, values := range s {
		if len(values) > 0 {
			dims = append(dims, string(dim))
		}
	}
	sort.Strings(dims)

	h := sha1.New()
	for _, dim := range dims {
		values := s[dataset.Dimension(dim)]
		sorted := make([]string, len(values))
		for i, v := range values {
			sorted[i] = strings.ToLower(v)
		}
		sort.Strings(sorted)

		fmt.Fprintf(h, "%d:%s;", len(dim), dim)
		for _, v := range sorted {
			fmt.Fprintf(h, "%d:%s,", len(v), v)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Apply returns the ordered subsequence of records matching every constrained
// dimension. Matching is case-insensitive. A selection value that no longer
// exists in the data simply matches nothing; it is not an error. Pure: the
// input slice is never mutated, and an unconstrained selection returns it
// unchanged.
func Apply(records []dataset.Record, sel Selection) []dataset.Record {
	if sel.IsEmpty() {
		return records
	}

	sets := make(map[dataset.Dimension]map[string]bool, len(sel))
	for dim, allowed := range sel {
		if len(allowed) > 0 {
			sets[dim] = toLowerSet(allowed)
		}
	}
	if len(sets) == 0 {
		return records
	}

	out := make([]dataset.Record, 0, len(records))
	for _, rec := range records {
		pass := true
		for dim, set := range sets {
			if !set[strings.ToLower(rec.Dimension(dim))] {
				pass = false
				break
			}
		}
		if pass {
			out = append(out, rec)
		}
	}
	return out
}

// Values returns the distinct non-empty values of a dimension in first-seen
// order, for populating filter controls.
func Values(records []dataset.Record, dim dataset.Dimension) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range records {
		v := rec.Dimension(dim)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func toLowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = true
	}
	return set
}
