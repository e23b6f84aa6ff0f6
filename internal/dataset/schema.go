// internal/dataset/schema.go
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	commonerrors "recruitment-analytics/internal/common/errors"
)

// Field names a semantic column of the recruitment schema.
type Field string

const (
	FieldColRequisitionID   Field = "requisition_id"
	FieldColBroadStatus     Field = "broad_status"
	FieldColBusinessUnit    Field = "business_unit"
	FieldColDepartment      Field = "department"
	FieldColLocation        Field = "location"
	FieldColGender          Field = "gender"
	FieldColCandidateSource Field = "candidate_source"
	FieldColRequisitionType Field = "requisition_type"
	FieldColReqDate         Field = "req_date"
	FieldColJoinDate        Field = "join_date"
	FieldColCurrentTAT      Field = "current_tat"
	FieldColJoiningTAT      Field = "joining_tat"
	FieldColProfilesShared  Field = "profiles_shared"
	FieldColInterviewed     Field = "interviewed"
)

// fieldSpec binds a semantic field to the spreadsheet headers it may appear
// under. Aliases are compared after normalizeHeader, so newlines and embedded
// format hints in the original headers do not matter.
type fieldSpec struct {
	field    Field
	required bool
	aliases  []string
}

// Header aliases follow the original workbook. Required columns mirror the
// fields every downstream aggregate depends on.
var defaultSpecs = []fieldSpec{
	{FieldColRequisitionID, true, []string{"requisition id", "req id", "requisition no", "req no"}},
	{FieldColBroadStatus, true, []string{"broad status", "status"}},
	{FieldColBusinessUnit, true, []string{"business unit", "bu"}},
	{FieldColDepartment, true, []string{"department", "dept"}},
	{FieldColLocation, true, []string{"location"}},
	{FieldColGender, false, []string{"gender"}},
	{FieldColCandidateSource, false, []string{"candidate source", "source"}},
	{FieldColRequisitionType, false, []string{"new/ replacement", "new/replacement", "requisition type"}},
	{FieldColReqDate, true, []string{"req date", "requisition date", "req date (dd-mmm-yy)"}},
	{FieldColJoinDate, false, []string{"doj", "doj (dd-mmm-yy)", "date of joining", "join date"}},
	{FieldColCurrentTAT, false, []string{"current tat", "current tat (days since req approved)", "tat"}},
	{FieldColJoiningTAT, false, []string{"joining tat", "joining tat (req assigned to joining)"}},
	{FieldColProfilesShared, false, []string{"total nos of profiles shared", "profiles shared"}},
	{FieldColInterviewed, false, []string{"interviewed", "candidates interviewed"}},
}

// Schema maps spreadsheet headers to semantic fields.
type Schema struct {
	specs []fieldSpec
}

// DefaultSchema returns the built-in header mapping.
func DefaultSchema() Schema {
	return Schema{specs: defaultSpecs}
}

// mappingDocumentSchema constrains the user-supplied column-mapping file: an
// object of known field keys, each an array of header strings.
const mappingDocumentSchema = `{
	"type": "object",
	"properties": {
		"fields": {
			"type": "object",
			"additionalProperties": {
				"type": "array",
				"items": {"type": "string", "minLength": 1},
				"minItems": 1
			}
		}
	},
	"required": ["fields"],
	"additionalProperties": false
}`

type mappingDocument struct {
	Fields map[string][]string `json:"fields"`
}

// SchemaFromMappingFile loads the default schema with per-field alias
// overrides read from a JSON file. The file is validated against a JSON
// Schema before it is trusted.
func SchemaFromMappingFile(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("read mapping file %s: %w", path, err)
	}

	schemaLoader := gojsonschema.NewStringLoader(mappingDocumentSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return Schema{}, fmt.Errorf("validate mapping file: %w", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return Schema{}, fmt.Errorf("invalid mapping file %s: %s", path, strings.Join(details, "; "))
	}

	var doc mappingDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return Schema{}, fmt.Errorf("parse mapping file %s: %w", path, err)
	}

	known := make(map[Field]bool, len(defaultSpecs))
	for _, spec := range defaultSpecs {
		known[spec.field] = true
	}
	for key := range doc.Fields {
		if !known[Field(key)] {
			return Schema{}, fmt.Errorf("mapping file %s names unknown field %q", path, key)
		}
	}

	specs := make([]fieldSpec, len(defaultSpecs))
	copy(specs, defaultSpecs)
	for i, spec := range specs {
		if extra, ok := doc.Fields[string(spec.field)]; ok {
			merged := make([]string, 0, len(spec.aliases)+len(extra))
			for _, a := range extra {
				merged = append(merged, normalizeHeader(a))
			}
			merged = append(merged, spec.aliases...)
			specs[i].aliases = merged
		}
	}

	return Schema{specs: specs}, nil
}

// MapHeaders resolves each header to a semantic field. Index -1 means the
// field was not found. A missing required field is a schema mismatch naming
// the first absent column.
func (s Schema) MapHeaders(headers []string) (map[Field]int, error) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}

	mapping := make(map[Field]int, len(s.specs))
	for _, spec := range s.specs {
		mapping[spec.field] = -1
		for _, alias := range spec.aliases {
			if idx := matchHeader(normalized, alias); idx >= 0 {
				mapping[spec.field] = idx
				break
			}
		}
		if mapping[spec.field] < 0 && spec.required {
			return nil, commonerrors.NewSchemaMismatchError(string(spec.field))
		}
	}

	return mapping, nil
}

func matchHeader(normalized []string, alias string) int {
	for i, h := range normalized {
		if h == alias {
			return i
		}
	}
	// Headers in the wild carry trailing format hints, e.g.
	// "req date (dd-mmm-yy)"; fall back to prefix matching.
	for i, h := range normalized {
		if strings.HasPrefix(h, alias+" ") || strings.HasPrefix(h, alias+"(") {
			return i
		}
	}
	return -1
}

// normalizeHeader lowercases a header and collapses all whitespace runs,
// including the embedded newlines the original workbook uses, to one space.
func normalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), " ")
}
