package validate

import (
	"errors"
	"testing"
	"time"

	"github.com/ecograph/backend/pkg/common"
	"github.com/ecograph/backend/pkg/schema"
)

func fixedClock() time.Time {
	return time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)
}

func testValidator() *Validator {
	return NewValidator(NewValidatorParams{Now: fixedClock})
}

func hasViolation(violations []Violation, field string, kind ViolationKind) bool {
	for _, v := range violations {
		if v.Field == field && v.Kind == kind {
			return true
		}
	}
	return false
}

func TestEntityCoercesAndNormalizes(t *testing.T) {
	t.Parallel()

	v := testValidator()
	res, err := v.Entity(schema.KindStartup, map[string]any{
		"name":              "  Banca  Futura  ",
		"founded_year":      "2019",
		"employee_count":    float64(42),
		"stage":             "series_a",
		"last_funding_date": "31/12/2021",
		"total_funding":     "1500000.50",
		"ignored_column":    "whatever",
	})
	if err != nil {
		t.Fatalf("Entity returned error: %v", err)
	}
	if !res.OK() {
		t.Fatalf("unexpected violations: %+v", res.Violations)
	}

	if got := res.Record["name"]; got != "Banca Futura" {
		t.Fatalf("got name %v, want %q", got, "Banca Futura")
	}
	if got := res.Record["founded_year"]; got != int64(2019) {
		t.Fatalf("got founded_year %v (%T), want int64 2019", got, got)
	}
	if got := res.Record["employee_count"]; got != int64(42) {
		t.Fatalf("got employee_count %v (%T), want int64 42", got, got)
	}
	if got := res.Record["last_funding_date"]; got != "2021-12-31" {
		t.Fatalf("got last_funding_date %v, want 2021-12-31", got)
	}
	if got := res.Record["total_funding"]; got != 1500000.50 {
		t.Fatalf("got total_funding %v, want 1500000.50", got)
	}
	if _, ok := res.Record["ignored_column"]; ok {
		t.Fatalf("unregistered attribute must not survive coercion")
	}
	if got := res.Defaults["status"]; got != "active" {
		t.Fatalf("got status default %v, want active", got)
	}
	if _, ok := res.Record["status"]; ok {
		t.Fatalf("default must not appear in the submitted record")
	}
}

func TestEntityViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		kind      string
		attrs     map[string]any
		wantField string
		wantKind  ViolationKind
	}{
		{
			name:      "missing_required_role_type",
			kind:      schema.KindPerson,
			attrs:     map[string]any{"name": "Giulia Bianchi"},
			wantField: "role_type",
			wantKind:  ViolationMissing,
		},
		{
			name:      "blank_required_name",
			kind:      schema.KindStartup,
			attrs:     map[string]any{"name": "   "},
			wantField: "name",
			wantKind:  ViolationMissing,
		},
		{
			name: "unknown_stage_value",
			kind: schema.KindStartup,
			attrs: map[string]any{
				"name":  "Foo",
				"stage": "series_z",
			},
			wantField: "stage",
			wantKind:  ViolationEnum,
		},
		{
			name: "birth_year_below_floor",
			kind: schema.KindPerson,
			attrs: map[string]any{
				"name":       "Giulia Bianchi",
				"role_type":  "founder",
				"birth_year": 1880,
			},
			wantField: "birth_year",
			wantKind:  ViolationRange,
		},
		{
			name: "founded_year_past_current_year",
			kind: schema.KindStartup,
			attrs: map[string]any{
				"name":         "Foo",
				"founded_year": 2031,
			},
			wantField: "founded_year",
			wantKind:  ViolationRange,
		},
		{
			name: "employee_count_not_numeric",
			kind: schema.KindStartup,
			attrs: map[string]any{
				"name":           "Foo",
				"employee_count": "a few",
			},
			wantField: "employee_count",
			wantKind:  ViolationType,
		},
		{
			name: "fractional_year_rejected",
			kind: schema.KindStartup,
			attrs: map[string]any{
				"name":         "Foo",
				"founded_year": 2019.5,
			},
			wantField: "founded_year",
			wantKind:  ViolationType,
		},
		{
			name: "close_dates_out_of_order",
			kind: schema.KindVCFund,
			attrs: map[string]any{
				"name":             "Fondo Uno",
				"first_close_date": "2024-06-01",
				"final_close_date": "2024-01-01",
			},
			wantField: "first_close_date",
			wantKind:  ViolationOrdering,
		},
		{
			name: "ticket_sizes_out_of_order",
			kind: schema.KindOtherInvestor,
			attrs: map[string]any{
				"name":            "Club Deal",
				"type":            "angel_syndicate",
				"ticket_size_min": 500000,
				"ticket_size_max": 100000,
			},
			wantField: "ticket_size_min",
			wantKind:  ViolationOrdering,
		},
	}

	v := testValidator()
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			res, err := v.Entity(tc.kind, tc.attrs)
			if err != nil {
				t.Fatalf("Entity returned error: %v", err)
			}
			if res.OK() {
				t.Fatalf("expected violations, got none")
			}
			if !hasViolation(res.Violations, tc.wantField, tc.wantKind) {
				t.Fatalf("missing %s/%s violation in %+v", tc.wantField, tc.wantKind, res.Violations)
			}
		})
	}
}

func TestEntityUnknownKind(t *testing.T) {
	t.Parallel()

	v := testValidator()
	if _, err := v.Entity("Rocket", map[string]any{"name": "X"}); !errors.Is(err, schema.ErrUnknownEntityKind) {
		t.Fatalf("got %v, want ErrUnknownEntityKind", err)
	}
}

func TestRelationshipWorksAtConditionals(t *testing.T) {
	t.Parallel()

	v := testValidator()
	person := common.EntityRef{Kind: schema.KindPerson, Name: "Giulia Bianchi"}
	firm := common.EntityRef{Kind: schema.KindVCFirm, Name: "Alpha Ventures"}

	tests := []struct {
		name      string
		attrs     map[string]any
		wantOK    bool
		wantField string
		wantKind  ViolationKind
	}{
		{
			name: "current_role_without_end_date",
			attrs: map[string]any{
				"role":       "Partner",
				"start_date": "2020-01-15",
				"is_current": true,
			},
			wantOK: true,
		},
		{
			name: "current_role_with_end_date",
			attrs: map[string]any{
				"role":       "Partner",
				"start_date": "2020-01-15",
				"end_date":   "2023-01-15",
				"is_current": true,
			},
			wantField: "end_date",
			wantKind:  ViolationConditional,
		},
		{
			name: "past_role_without_end_date",
			attrs: map[string]any{
				"role":       "Analyst",
				"start_date": "2018-01-15",
				"is_current": false,
			},
			wantField: "end_date",
			wantKind:  ViolationConditional,
		},
		{
			name: "default_flag_forbids_end_date",
			attrs: map[string]any{
				"role":       "Partner",
				"start_date": "2020-01-15",
				"end_date":   "2023-01-15",
			},
			wantField: "end_date",
			wantKind:  ViolationConditional,
		},
		{
			name: "end_date_before_start_date",
			attrs: map[string]any{
				"role":       "Analyst",
				"start_date": "2020-01-15",
				"end_date":   "2019-01-15",
				"is_current": false,
			},
			wantField: "start_date",
			wantKind:  ViolationOrdering,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			res, err := v.Relationship(schema.RelWorksAt, person, firm, tc.attrs)
			if err != nil {
				t.Fatalf("Relationship returned error: %v", err)
			}
			if tc.wantOK {
				if !res.OK() {
					t.Fatalf("unexpected violations: %+v", res.Violations)
				}
				return
			}
			if !hasViolation(res.Violations, tc.wantField, tc.wantKind) {
				t.Fatalf("missing %s/%s violation in %+v", tc.wantField, tc.wantKind, res.Violations)
			}
		})
	}
}

func TestRelationshipEndpointRules(t *testing.T) {
	t.Parallel()

	v := testValidator()

	res, err := v.Relationship(schema.RelWorksAt,
		common.EntityRef{Kind: schema.KindPerson, Name: "Giulia Bianchi"},
		common.EntityRef{Kind: schema.KindStartup, Name: "Banca Futura"},
		map[string]any{"role": "CTO", "start_date": "2020-01-01"})
	if err != nil {
		t.Fatalf("Relationship returned error: %v", err)
	}
	if !hasViolation(res.Violations, "endpoints", ViolationEndpoint) {
		t.Fatalf("expected endpoint violation, got %+v", res.Violations)
	}

	res, err = v.Relationship(schema.RelMentors,
		common.EntityRef{Kind: schema.KindPerson, Name: "Giulia  Bianchi"},
		common.EntityRef{Kind: schema.KindPerson, Name: "Giulia Bianchi"},
		map[string]any{"start_date": "2020-01-01", "relationship_type": "advisor"})
	if err != nil {
		t.Fatalf("Relationship returned error: %v", err)
	}
	if !hasViolation(res.Violations, "target", ViolationEndpoint) {
		t.Fatalf("expected self-loop violation, got %+v", res.Violations)
	}

	_, err = v.Relationship(schema.RelFounded,
		common.EntityRef{Kind: "Robot", Name: "R2"},
		common.EntityRef{Kind: schema.KindStartup, Name: "Banca Futura"},
		map[string]any{})
	if !errors.Is(err, schema.ErrUnknownEntityKind) {
		t.Fatalf("got %v, want ErrUnknownEntityKind", err)
	}
}

func TestRelationshipNumericBounds(t *testing.T) {
	t.Parallel()

	v := testValidator()
	firm := common.EntityRef{Kind: schema.KindVCFirm, Name: "Alpha Ventures"}
	fund := common.EntityRef{Kind: schema.KindVCFund, Name: "Alpha Fund I"}

	res, err := v.Relationship(schema.RelManages, firm, fund, map[string]any{
		"start_date":       "2021-03-01",
		"management_fee":   12.0,
		"carried_interest": 20.0,
	})
	if err != nil {
		t.Fatalf("Relationship returned error: %v", err)
	}
	if !hasViolation(res.Violations, "management_fee", ViolationRange) {
		t.Fatalf("expected management_fee range violation, got %+v", res.Violations)
	}

	res, err = v.Relationship(schema.RelParticipatedIn,
		common.EntityRef{Kind: schema.KindPerson, Name: "Giulia Bianchi"}, fund,
		map[string]any{
			"commitment_amount": 0,
			"commitment_date":   "2022-01-01",
			"investor_type":     "hnwi",
		})
	if err != nil {
		t.Fatalf("Relationship returned error: %v", err)
	}
	if !hasViolation(res.Violations, "commitment_amount", ViolationRange) {
		t.Fatalf("expected commitment_amount range violation, got %+v", res.Violations)
	}
}

func TestNormalizeDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		want  string
		valid bool
	}{
		{name: "iso", in: "2024-03-05", want: "2024-03-05", valid: true},
		{name: "day_first", in: "05/03/2024", want: "2024-03-05", valid: true},
		{name: "month_first_fallback", in: "03/15/2024", want: "2024-03-15", valid: true},
		{name: "timestamp", in: "2024-03-05 10:30:00", want: "2024-03-05", valid: true},
		{name: "bare_year", in: "2024", want: "2024-01-01", valid: true},
		{name: "padded", in: "  2024-03-05  ", want: "2024-03-05", valid: true},
		{name: "garbage", in: "soon", valid: false},
		{name: "empty", in: "", valid: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NormalizeDate(tc.in)
			if ok != tc.valid {
				t.Fatalf("got ok=%v, want %v", ok, tc.valid)
			}
			if ok && got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBoolWords(t *testing.T) {
	t.Parallel()

	v := testValidator()
	res, err := v.Entity(schema.KindCorporate, map[string]any{
		"name":                "Enel X",
		"has_cvc_arm":         "sì",
		"innovation_programs": "no",
	})
	if err != nil {
		t.Fatalf("Entity returned error: %v", err)
	}
	if !res.OK() {
		t.Fatalf("unexpected violations: %+v", res.Violations)
	}
	if got := res.Record["has_cvc_arm"]; got != true {
		t.Fatalf("got has_cvc_arm %v, want true", got)
	}
	if got := res.Record["innovation_programs"]; got != false {
		t.Fatalf("got innovation_programs %v, want false", got)
	}
}
