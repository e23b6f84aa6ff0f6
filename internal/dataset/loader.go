// internal/dataset/loader.go
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	commonerrors "recruitment-analytics/internal/common/errors"
	"recruitment-analytics/internal/common/logger"
)

// Loader reads a spreadsheet into a Dataset. It has no side effects beyond
// reading the file; a missing or malformed file is a terminal error with no
// retry.
type Loader struct {
	schema Schema
	sheet  string
	logger logger.Logger
}

// NewLoader creates a Loader. An empty sheet name selects the workbook's
// first sheet.
func NewLoader(schema Schema, sheet string, log logger.Logger) *Loader {
	return &Loader{
		schema: schema,
		sheet:  sheet,
		logger: log.WithFields(map[string]interface{}{"component": "loader"}),
	}
}

// Load reads the file at path, dispatching on extension. Supported formats
// are .csv and .xlsx/.xlsm.
func (l *Loader) Load(path string) (*Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, commonerrors.NewFileMissingError(path)
		}
		return nil, commonerrors.NewFileUnreadableError(path, err)
	}
	if info.IsDir() {
		return nil, commonerrors.NewFileUnreadableError(path, fmt.Errorf("path is a directory"))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, commonerrors.NewFileUnreadableError(path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return l.LoadCSV(f, path)
	case ".xlsx", ".xlsm":
		return l.LoadXLSX(f, path)
	default:
		return nil, commonerrors.NewFileUnreadableError(path, fmt.Errorf("unsupported extension %q", filepath.Ext(path)))
	}
}

// LoadCSV parses CSV content into a Dataset.
func (l *Loader) LoadCSV(r io.Reader, source string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, commonerrors.NewFileUnreadableError(source, fmt.Errorf("read headers: %w", err))
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, commonerrors.NewFileUnreadableError(source, err)
		}
		rows = append(rows, row)
	}

	return l.build(headers, rows, source)
}

// LoadXLSX parses an Excel workbook into a Dataset.
func (l *Loader) LoadXLSX(r io.Reader, source string) (*Dataset, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, commonerrors.NewFileUnreadableError(source, err)
	}
	defer wb.Close()

	sheet := l.sheet
	if sheet == "" {
		sheet = wb.GetSheetName(0)
	}

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, commonerrors.NewFileUnreadableError(source, fmt.Errorf("sheet %q: %w", sheet, err))
	}
	if len(rows) == 0 {
		return nil, commonerrors.NewFileUnreadableError(source, fmt.Errorf("sheet %q is empty", sheet))
	}

	return l.build(rows[0], rows[1:], source)
}

// build validates the header row against the schema and coerces every data
// row into a typed Record.
func (l *Loader) build(headers []string, rows [][]string, source string) (*Dataset, error) {
	mapping, err := l.schema.MapHeaders(headers)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		Version:  uuid.NewString(),
		Source:   source,
		Columns:  headers,
		LoadedAt: time.Now().UTC(),
	}

	warnings := 0
	for _, row := range rows {
		rec, rowWarnings, ok := buildRecord(row, mapping, len(headers))
		if !ok {
			ds.Skipped++
			continue
		}
		warnings += rowWarnings
		ds.Records = append(ds.Records, rec)
	}

	l.logger.Info("dataset loaded", map[string]interface{}{
		"source":   source,
		"version":  ds.Version,
		"rows":     len(ds.Records),
		"skipped":  ds.Skipped,
		"warnings": warnings,
	})

	return ds, nil
}

// buildRecord coerces one raw row. A row without a requisition identifier is
// unusable and is skipped; unparseable optional cells become nil and count as
// warnings.
func buildRecord(row []string, mapping map[Field]int, width int) (Record, int, bool) {
	raw := make([]string, width)
	for i := 0; i < width && i < len(row); i++ {
		raw[i] = row[i]
	}

	warnings := 0
	rec := Record{raw: raw}

	rec.RequisitionID = cell(row, mapping[FieldColRequisitionID])
	if rec.RequisitionID == "" {
		return Record{}, 0, false
	}

	rec.BroadStatus = cell(row, mapping[FieldColBroadStatus])
	rec.BusinessUnit = cell(row, mapping[FieldColBusinessUnit])
	rec.Department = cell(row, mapping[FieldColDepartment])
	rec.Location = cell(row, mapping[FieldColLocation])
	rec.Gender = cell(row, mapping[FieldColGender])
	rec.CandidateSource = cell(row, mapping[FieldColCandidateSource])
	rec.RequisitionType = cell(row, mapping[FieldColRequisitionType])

	rec.ReqDate, warnings = parseDateCell(cell(row, mapping[FieldColReqDate]), warnings)
	rec.JoinDate, warnings = parseDateCell(cell(row, mapping[FieldColJoinDate]), warnings)
	rec.CurrentTAT, warnings = parseFloatCell(cell(row, mapping[FieldColCurrentTAT]), warnings)
	rec.JoiningTAT, warnings = parseFloatCell(cell(row, mapping[FieldColJoiningTAT]), warnings)
	rec.ProfilesShared, warnings = parseIntCell(cell(row, mapping[FieldColProfilesShared]), warnings)
	rec.Interviewed, warnings = parseIntCell(cell(row, mapping[FieldColInterviewed]), warnings)

	return rec, warnings, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// dateLayouts covers the formats seen in the original workbook plus common
// interchange forms.
var dateLayouts = []string{
	"02-Jan-06",
	"2-Jan-06",
	"02-Jan-2006",
	"2-Jan-2006",
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func parseDateCell(val string, warnings int) (*time.Time, int) {
	if val == "" {
		return nil, warnings
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, val); err == nil {
			return &t, warnings
		}
	}
	// Excel serial date: days since 1899-12-30.
	if serial, err := strconv.ParseFloat(val, 64); err == nil && serial > 59 && serial < 200000 {
		epoch := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
		t := epoch.Add(time.Duration(serial * 24 * float64(time.Hour)))
		t = t.Truncate(24 * time.Hour)
		return &t, warnings
	}
	return nil, warnings + 1
}

func parseFloatCell(val string, warnings int) (*float64, int) {
	if val == "" {
		return nil, warnings
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(val, ",", ""), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, warnings + 1
	}
	return &f, warnings
}

func parseIntCell(val string, warnings int) (*int, int) {
	if val == "" {
		return nil, warnings
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(val, ",", ""), 64)
	if err != nil {
		return nil, warnings + 1
	}
	n := int(f)
	return &n, warnings
}
