// internal/dataset/record.go

// Package dataset holds the typed in-memory table of recruitment records and
// the spreadsheet loader that produces it.
package dataset

import "time"

// Dimension is a categorical field usable for filtering and grouping.
type Dimension string

const (
	DimBusinessUnit    Dimension = "business_unit"
	DimDepartment      Dimension = "department"
	DimLocation        Dimension = "location"
	DimGender          Dimension = "gender"
	DimCandidateSource Dimension = "candidate_source"
	DimStatus          Dimension = "status"
	DimRequisitionType Dimension = "requisition_type"
)

// Dimensions lists every filterable dimension in presentation order.
var Dimensions = []Dimension{
	DimBusinessUnit,
	DimDepartment,
	DimLocation,
	DimGender,
	DimCandidateSource,
	DimStatus,
	DimRequisitionType,
}

// NumericField names a numeric measure on a Record.
type NumericField string

const (
	FieldCurrentTAT     NumericField = "current_tat"
	FieldJoiningTAT     NumericField = "joining_tat"
	FieldProfilesShared NumericField = "profiles_shared"
	FieldInterviewed    NumericField = "interviewed"
)

// DateField names a date attribute on a Record.
type DateField string

const (
	FieldReqDate  DateField = "req_date"
	FieldJoinDate DateField = "join_date"
)

// Record is one requisition row. Optional fields are nil pointers when the
// source cell is absent or unparseable; they are never coerced to zero.
type Record struct {
	RequisitionID   string `json:"requisitionId"`
	BroadStatus     string `json:"broadStatus"`
	BusinessUnit    string `json:"businessUnit"`
	Department      string `json:"department"`
	Location        string `json:"location"`
	Gender          string `json:"gender,omitempty"`
	CandidateSource string `json:"candidateSource,omitempty"`
	RequisitionType string `json:"requisitionType,omitempty"`

	ReqDate  *time.Time `json:"reqDate,omitempty"`
	JoinDate *time.Time `json:"joinDate,omitempty"`

	CurrentTAT     *float64 `json:"currentTat,omitempty"`
	JoiningTAT     *float64 `json:"joiningTat,omitempty"`
	ProfilesShared *int     `json:"profilesShared,omitempty"`
	Interviewed    *int     `json:"interviewed,omitempty"`

	// raw holds the original cells in source column order, kept for export.
	raw []string
}

// Dimension returns the record's value for a categorical dimension.
func (r Record) Dimension(dim Dimension) string {
	switch dim {
	case DimBusinessUnit:
		return r.BusinessUnit
	case DimDepartment:
		return r.Department
	case DimLocation:
		return r.Location
	case DimGender:
		return r.Gender
	case DimCandidateSource:
		return r.CandidateSource
	case DimStatus:
		return r.BroadStatus
	case DimRequisitionType:
		return r.RequisitionType
	}
	return ""
}

// Numeric returns the record's value for a numeric field and whether it is present.
func (r Record) Numeric(field NumericField) (float64, bool) {
	switch field {
	case FieldCurrentTAT:
		if r.CurrentTAT != nil {
			return *r.CurrentTAT, true
		}
	case FieldJoiningTAT:
		if r.JoiningTAT != nil {
			return *r.JoiningTAT, true
		}
	case FieldProfilesShared:
		if r.ProfilesShared != nil {
			return float64(*r.ProfilesShared), true
		}
	case FieldInterviewed:
		if r.Interviewed != nil {
			return float64(*r.Interviewed), true
		}
	}
	return 0, false
}

// Date returns the record's value for a date field and whether it is present.
func (r Record) Date(field DateField) (time.Time, bool) {
	switch field {
	case FieldReqDate:
		if r.ReqDate != nil {
			return *r.ReqDate, true
		}
	case FieldJoinDate:
		if r.JoinDate != nil {
			return *r.JoinDate, true
		}
	}
	return time.Time{}, false
}

// Raw returns the original source cells for the record, aligned with the
// dataset's Columns. The returned slice must not be mutated.
func (r Record) Raw() []string {
	return r.raw
}

// Dataset is an ordered, immutable sequence of Records loaded from one source
// file. A fresh Version is minted per load so cached derived results can never
// outlive the data they were computed from.
type Dataset struct {
	Version  string    `json:"version"`
	Source   string    `json:"source"`
	Columns  []string  `json:"columns"`
	Records  []Record  `json:"-"`
	Skipped  int       `json:"skipped"`
	LoadedAt time.Time `json:"loadedAt"`
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}
