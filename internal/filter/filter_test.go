// internal/filter/filter_test.go
package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"recruitment-analytics/internal/dataset"
)

func rec(id, bu, dept, loc string) dataset.Record {
	return dataset.Record{
		RequisitionID: id,
		BusinessUnit:  bu,
		Department:    dept,
		Location:      loc,
	}
}

func ids(records []dataset.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.RequisitionID
	}
	return out
}

func TestApply(t *testing.T) {
	records := []dataset.Record{
		rec("R1", "Tech", "Engineering", "Pune"),
		rec("R2", "Tech", "Engineering", "Mumbai"),
		rec("R3", "Sales", "Field Sales", "Pune"),
		rec("R4", "Tech", "QA", "Pune"),
		rec("R5", "Sales", "Inside Sales", "Delhi"),
	}

	tests := []struct {
		name      string
		selection Selection
		expected  []string
	}{
		{
			name:      "empty selection returns everything",
			selection: Selection{},
			expected:  []string{"R1", "R2", "R3", "R4", "R5"},
		},
		{
			name:      "nil value list imposes no constraint",
			selection: Selection{dataset.DimBusinessUnit: nil},
			expected:  []string{"R1", "R2", "R3", "R4", "R5"},
		},
		{
			name:      "single dimension single value",
			selection: Selection{dataset.DimBusinessUnit: {"Sales"}},
			expected:  []string{"R3", "R5"},
		},
		{
			name:      "values within a dimension are OR-combined",
			selection: Selection{dataset.DimLocation: {"Pune", "Delhi"}},
			expected:  []string{"R1", "R3", "R4", "R5"},
		},
		{
			name: "dimensions are AND-combined",
			selection: Selection{
				dataset.DimBusinessUnit: {"Tech"},
				dataset.DimLocation:     {"Pune"},
			},
			expected: []string{"R1", "R4"},
		},
		{
			name:      "matching is case-insensitive",
			selection: Selection{dataset.DimBusinessUnit: {"TECH"}},
			expected:  []string{"R1", "R2", "R4"},
		},
		{
			name:      "stale value matches nothing without error",
			selection: Selection{dataset.DimLocation: {"Chennai"}},
			expected:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(records, tt.selection)
			assert.Equal(t, tt.expected, append([]string{}, ids(got)...))
		})
	}
}

func TestApplyPreservesOrder(t *testing.T) {
	records := []dataset.Record{
		rec("R1", "A", "", ""),
		rec("R2", "A", "", ""),
		rec("R3", "B", "", ""),
		rec("R4", "A", "", ""),
		rec("R5", "B", "", ""),
	}

	got := Apply(records, Selection{dataset.DimBusinessUnit: {"A"}})
	assert.Equal(t, []string{"R1", "R2", "R4"}, ids(got))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	records := []dataset.Record{
		rec("R1", "Tech", "Engineering", "Pune"),
		rec("R2", "Sales", "Field Sales", "Delhi"),
	}
	before := ids(records)

	Apply(records, Selection{dataset.DimBusinessUnit: {"Sales"}})
	assert.Equal(t, before, ids(records))
}

func TestApplyIdempotent(t *testing.T) {
	records := []dataset.Record{
		rec("R1", "Tech", "Engineering", "Pune"),
		rec("R2", "Tech", "QA", "Mumbai"),
		rec("R3", "Sales", "Field Sales", "Pune"),
	}
	sel := Selection{dataset.DimBusinessUnit: {"Tech"}}

	once := Apply(records, sel)
	twice := Apply(once, sel)
	assert.Equal(t, ids(once), ids(twice))
}

func TestValues(t *testing.T) {
	records := []dataset.Record{
		rec("R1", "Tech", "", ""),
		rec("R2", "Sales", "", ""),
		rec("R3", "Tech", "", ""),
		rec("R4", "", "", ""),
		rec("R5", "Ops", "", ""),
	}

	got := Values(records, dataset.DimBusinessUnit)
	assert.Equal(t, []string{"Tech", "Sales", "Ops"}, got)
}

func TestSelectionHash(t *testing.T) {
	t.Run("empty selection hashes to all", func(t *testing.T) {
		assert.Equal(t, "all", Selection{}.Hash())
		assert.Equal(t, "all", Selection{dataset.DimGender: {}}.Hash())
	})

	t.Run("order and case do not change the hash", func(t *testing.T) {
		a := Selection{
			dataset.DimBusinessUnit: {"Tech", "Sales"},
			dataset.DimLocation:     {"Pune"},
		}
		b := Selection{
			dataset.DimLocation:     {"pune"},
			dataset.DimBusinessUnit: {"sales", "TECH"},
		}
		assert.Equal(t, a.Hash(), b.Hash())
	})

	t.Run("different selections hash differently", func(t *testing.T) {
		a := Selection{dataset.DimBusinessUnit: {"Tech"}}
		b := Selection{dataset.DimBusinessUnit: {"Sales"}}
		assert.NotEqual(t, a.Hash(), b.Hash())
	})

	t.Run("value containing a comma does not collide with two values", func(t *testing.T) {
		a := Selection{dataset.DimLocation: {"Pune, Maharashtra"}}
		b := Selection{dataset.DimLocation: {"Pune", "Maharashtra"}}
		assert.NotEqual(t, a.Hash(), b.Hash())
	})

	t.Run("value containing separator bytes does not collide with another dimension", func(t *testing.T) {
		a := Selection{dataset.DimBusinessUnit: {"x&location=pune"}}
		b := Selection{
			dataset.DimBusinessUnit: {"x"},
			dataset.DimLocation:     {"pune"},
		}
		assert.NotEqual(t, a.Hash(), b.Hash())
	})
}
