// internal/export/csv.go

// Package export serializes filtered record subsets back to CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"recruitment-analytics/internal/dataset"
)

// Write serializes rows in the dataset's original column order, header row
// first. Missing cells serialize as empty. An empty subset yields only the
// header row.
func Write(w io.Writer, ds *dataset.Dataset, rows []dataset.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(ds.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	width := len(ds.Columns)
	for _, rec := range rows {
		raw := rec.Raw()
		line := make([]string, width)
		for i := 0; i < width && i < len(raw); i++ {
			line[i] = raw[i]
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
