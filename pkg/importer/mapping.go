package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ecograph/backend/pkg/common"
	"github.com/ecograph/backend/pkg/schema"
)

// EntityRow is one data row of an entity CSV, mapped to a raw attribute
// submission. Line is the 1-based data row number used in error reports.
type EntityRow struct {
	Line  int
	Attrs map[string]any
}

// RelationshipRow is one data row of a relationship CSV: the two endpoint
// references resolved from the kind's reference columns plus the raw
// attribute map.
type RelationshipRow struct {
	Line   int
	Source common.EntityRef
	Target common.EntityRef
	Attrs  map[string]any
}

// refSpec describes how one endpoint reference is read from a row: the name
// column, an optional surname column appended to the name, and either a fixed
// entity kind or a column carrying it.
type refSpec struct {
	nameColumn    string
	surnameColumn string
	kindColumn    string
	kind          string
}

func (r refSpec) resolve(row []string, idx map[string]int) common.EntityRef {
	name := cell(row, colOf(idx, r.nameColumn))
	if r.surnameColumn != "" {
		if surname := cell(row, colOf(idx, r.surnameColumn)); surname != "" {
			name = name + " " + surname
		}
	}
	kind := r.kind
	if r.kindColumn != "" {
		kind = cell(row, colOf(idx, r.kindColumn))
	}
	return common.EntityRef{Kind: kind, Name: name}
}

func (r refSpec) columns() []string {
	cols := []string{r.nameColumn}
	if r.surnameColumn != "" {
		cols = append(cols, r.surnameColumn)
	}
	if r.kindColumn != "" {
		cols = append(cols, r.kindColumn)
	}
	return cols
}

// relationshipMapping binds a relationship kind to its CSV layout: the
// endpoint reference columns, the columns that must be present in the header,
// and column renames for attributes whose CSV name differs from the
// registered one.
type relationshipMapping struct {
	source   refSpec
	target   refSpec
	required []string
	renames  map[string]string
}

var relationshipMappings = map[string]relationshipMapping{
	schema.RelFounded: {
		source:   refSpec{nameColumn: "person_name", surnameColumn: "person_surname", kind: schema.KindPerson},
		target:   refSpec{nameColumn: "startup_name", kind: schema.KindStartup},
		required: []string{"person_name", "startup_name", "founding_date"},
	},
	schema.RelWorksAt: {
		source:   refSpec{nameColumn: "person_name", kind: schema.KindPerson},
		target:   refSpec{nameColumn: "org_name", kindColumn: "org_type"},
		required: []string{"person_name", "org_name", "org_type", "role"},
	},
	schema.RelAngelInvestsIn: {
		source:   refSpec{nameColumn: "person_name", kind: schema.KindPerson},
		target:   refSpec{nameColumn: "startup_name", kind: schema.KindStartup},
		required: []string{"person_name", "startup_name", "investment_date"},
	},
	schema.RelManages: {
		source:   refSpec{nameColumn: "firm_name", kind: schema.KindVCFirm},
		target:   refSpec{nameColumn: "fund_name", kind: schema.KindVCFund},
		required: []string{"firm_name", "fund_name", "start_date"},
	},
	schema.RelInvestsIn: {
		source:   refSpec{nameColumn: "investor_name", kindColumn: "investor_type"},
		target:   refSpec{nameColumn: "startup_name", kind: schema.KindStartup},
		required: []string{"investor_name", "investor_type", "startup_name"},
	},
	schema.RelParticipatedIn: {
		source:   refSpec{nameColumn: "investor_name", kindColumn: "investor_type"},
		target:   refSpec{nameColumn: "fund_name", kind: schema.KindVCFund},
		required: []string{"investor_name", "investor_type", "fund_name", "commitment_date"},
		renames:  map[string]string{"lp_category": "investor_type"},
	},
	schema.RelAcceleratedBy: {
		source:   refSpec{nameColumn: "startup_name", kind: schema.KindStartup},
		target:   refSpec{nameColumn: "institution_name", kind: schema.KindOtherInstitution},
		required: []string{"startup_name", "institution_name", "program_name", "start_date"},
	},
	schema.RelAcquired: {
		source:   refSpec{nameColumn: "corporate_name", kind: schema.KindCorporate},
		target:   refSpec{nameColumn: "startup_name", kind: schema.KindStartup},
		required: []string{"corporate_name", "startup_name", "acquisition_date"},
	},
	schema.RelPartnersWith: {
		source:   refSpec{nameColumn: "corporate_name", kind: schema.KindCorporate},
		target:   refSpec{nameColumn: "partner_name", kindColumn: "partner_type"},
		required: []string{"corporate_name", "partner_name", "partner_type", "start_date"},
	},
	schema.RelMentors: {
		source:   refSpec{nameColumn: "mentor_name", kind: schema.KindPerson},
		target:   refSpec{nameColumn: "mentee_name", kind: schema.KindPerson},
		required: []string{"mentor_name", "mentee_name", "start_date"},
	},
	schema.RelSpunOffFrom: {
		source:   refSpec{nameColumn: "startup_name", kind: schema.KindStartup},
		target:   refSpec{nameColumn: "parent_name", kindColumn: "parent_type"},
		required: []string{"startup_name", "parent_name", "parent_type", "spinoff_date"},
	},
}

// EntityRows maps an entity CSV to raw attribute submissions. Every non-blank
// cell is passed through under its column name; the validator decides what is
// known and well-typed. employee_count is the one column pre-processed here
// because scraped files carry ranges like "11-50" that coercion would reject.
func EntityRows(t *Table, kind string) ([]EntityRow, error) {
	if _, err := schema.LookupEntity(kind); err != nil {
		return nil, err
	}
	idx := t.columnIndex()
	if _, ok := idx["name"]; !ok {
		return nil, fmt.Errorf("missing required column %q", "name")
	}

	rows := make([]EntityRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		attrs := make(map[string]any, len(t.Header))
		for col, name := range t.Header {
			value := cell(row, col)
			if value == "" {
				continue
			}
			if name == "employee_count" {
				if n, ok := ParseEmployeeCount(value); ok {
					attrs[name] = n
					continue
				}
			}
			attrs[name] = value
		}
		rows = append(rows, EntityRow{Line: i + 1, Attrs: attrs})
	}
	return rows, nil
}

// RelationshipRows maps a relationship CSV to endpoint references plus raw
// attributes, using the kind's reference columns. The header must carry the
// kind's required columns; blank reference cells surface later as per-row
// validation failures, not here.
func RelationshipRows(t *Table, kind string) ([]RelationshipRow, error) {
	if _, err := schema.LookupRelationship(kind); err != nil {
		return nil, err
	}
	mapping := relationshipMappings[kind]

	idx := t.columnIndex()
	for _, col := range mapping.required {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	refColumns := make(map[string]bool)
	for _, col := range mapping.source.columns() {
		refColumns[col] = true
	}
	for _, col := range mapping.target.columns() {
		refColumns[col] = true
	}

	rows := make([]RelationshipRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		attrs := make(map[string]any, len(t.Header))
		for col, name := range t.Header {
			if refColumns[name] {
				continue
			}
			value := cell(row, col)
			if value == "" {
				continue
			}
			if renamed, ok := mapping.renames[name]; ok {
				name = renamed
			}
			attrs[name] = value
		}
		rows = append(rows, RelationshipRow{
			Line:   i + 1,
			Source: mapping.source.resolve(row, idx),
			Target: mapping.target.resolve(row, idx),
			Attrs:  attrs,
		})
	}
	return rows, nil
}

// ParseEmployeeCount reads an employee count cell. Ranges like "11-50" yield
// the midpoint; otherwise the first run of digits in the cell is used.
func ParseEmployeeCount(value string) (int64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	if low, high, ok := strings.Cut(value, "-"); ok {
		lo, errLow := strconv.ParseInt(strings.TrimSpace(low), 10, 64)
		hi, errHigh := strconv.ParseInt(strings.TrimSpace(high), 10, 64)
		if errLow == nil && errHigh == nil {
			return (lo + hi) / 2, true
		}
	}

	start := -1
	for i, r := range value {
		if r >= '0' && r <= '9' {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			n, err := strconv.ParseInt(value[start:i], 10, 64)
			return n, err == nil
		}
	}
	if start != -1 {
		n, err := strconv.ParseInt(value[start:], 10, 64)
		return n, err == nil
	}
	return 0, false
}

// EntityTemplate returns the CSV header for an entity kind in registry order.
func EntityTemplate(kind string) ([]string, error) {
	fields, err := schema.EntityFields(kind)
	if err != nil {
		return nil, err
	}
	cols := make([]string, 0, len(fields))
	for _, f := range fields {
		cols = append(cols, f.Name)
	}
	return cols, nil
}

// RelationshipTemplate returns the CSV header for a relationship kind: the
// reference columns followed by the kind's attributes under their CSV names.
func RelationshipTemplate(kind string) ([]string, error) {
	relSchema, err := schema.LookupRelationship(kind)
	if err != nil {
		return nil, err
	}
	mapping := relationshipMappings[kind]

	csvName := make(map[string]string, len(mapping.renames))
	for col, attr := range mapping.renames {
		csvName[attr] = col
	}

	cols := append(mapping.source.columns(), mapping.target.columns()...)
	for _, f := range relSchema.Fields {
		if name, ok := csvName[f.Name]; ok {
			cols = append(cols, name)
			continue
		}
		cols = append(cols, f.Name)
	}
	return cols, nil
}

func colOf(idx map[string]int, name string) int {
	if i, ok := idx[name]; ok {
		return i
	}
	return -1
}
