package importer

import (
	"errors"
	"strings"
	"testing"

	"github.com/ecograph/backend/pkg/schema"
)

func mustParse(t *testing.T, csv string) *Table {
	t.Helper()
	table, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return table
}

func TestEntityRows(t *testing.T) {
	t.Parallel()

	table := mustParse(t, strings.Join([]string{
		"name,founded_year,employee_count,sector",
		"Bending Spoons,2013,501-1000,consumer apps",
		"Satispay,2013,,fintech",
	}, "\n"))

	rows, err := EntityRows(table, schema.KindStartup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	first := rows[0]
	if first.Line != 1 {
		t.Fatalf("got line %d, want 1", first.Line)
	}
	if got := first.Attrs["name"]; got != "Bending Spoons" {
		t.Fatalf("got %v, want %q", got, "Bending Spoons")
	}
	if got := first.Attrs["employee_count"]; got != int64(750) {
		t.Fatalf("employee_count: got %v, want 750", got)
	}
	if got := first.Attrs["founded_year"]; got != "2013" {
		t.Fatalf("founded_year should stay raw: got %v", got)
	}

	if _, ok := rows[1].Attrs["employee_count"]; ok {
		t.Fatal("blank cell must not produce an attribute")
	}
}

func TestEntityRowsUnknownKind(t *testing.T) {
	t.Parallel()

	table := mustParse(t, "name\nA\n")
	if _, err := EntityRows(table, "Spaceship"); !errors.Is(err, schema.ErrUnknownEntityKind) {
		t.Fatalf("got %v, want ErrUnknownEntityKind", err)
	}
}

func TestEntityRowsMissingNameColumn(t *testing.T) {
	t.Parallel()

	table := mustParse(t, "description\nsomething\n")
	if _, err := EntityRows(table, schema.KindStartup); err == nil {
		t.Fatal("expected error for missing name column, got nil")
	}
}

func TestRelationshipRowsFoundedJoinsSurname(t *testing.T) {
	t.Parallel()

	table := mustParse(t, strings.Join([]string{
		"person_name,person_surname,startup_name,role,founding_date",
		"Luca,Ferrari,Bending Spoons,CEO,2013-01-10",
		"Giulia Bianchi,,Satispay,Founder,2013-03-01",
	}, "\n"))

	rows, err := RelationshipRows(table, schema.RelFounded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	if got := rows[0].Source.Name; got != "Luca Ferrari" {
		t.Fatalf("got %q, want %q", got, "Luca Ferrari")
	}
	if got := rows[0].Source.Kind; got != schema.KindPerson {
		t.Fatalf("got %q, want %q", got, schema.KindPerson)
	}
	if got := rows[1].Source.Name; got != "Giulia Bianchi" {
		t.Fatalf("got %q, want %q", got, "Giulia Bianchi")
	}
	if got := rows[0].Target.Kind; got != schema.KindStartup {
		t.Fatalf("got %q, want %q", got, schema.KindStartup)
	}

	if _, ok := rows[0].Attrs["person_name"]; ok {
		t.Fatal("reference columns must not leak into attributes")
	}
	if got := rows[0].Attrs["role"]; got != "CEO" {
		t.Fatalf("got %v, want %q", got, "CEO")
	}
	if got := rows[0].Attrs["founding_date"]; got != "2013-01-10" {
		t.Fatalf("got %v, want %q", got, "2013-01-10")
	}
}

func TestRelationshipRowsKindColumn(t *testing.T) {
	t.Parallel()

	table := mustParse(t, strings.Join([]string{
		"investor_name,investor_type,startup_name,round_stage,round_date,amount",
		"Primo Ventures Fund I,VC_Fund,Satispay,series_a,2018-06-01,10000000",
	}, "\n"))

	rows, err := RelationshipRows(table, schema.RelInvestsIn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rows[0].Source.Kind; got != schema.KindVCFund {
		t.Fatalf("got %q, want %q", got, schema.KindVCFund)
	}
	if got := rows[0].Source.Name; got != "Primo Ventures Fund I" {
		t.Fatalf("got %q, want %q", got, "Primo Ventures Fund I")
	}
	if _, ok := rows[0].Attrs["investor_type"]; ok {
		t.Fatal("the kind column must not become an attribute")
	}
}

func TestRelationshipRowsRenamesLPCategory(t *testing.T) {
	t.Parallel()

	table := mustParse(t, strings.Join([]string{
		"investor_name,investor_type,fund_name,commitment_amount,commitment_date,lp_category",
		"CDP Venture Capital,VC_Firm,Primo Fund II,5000000,2020-02-01,government",
	}, "\n"))

	rows, err := RelationshipRows(table, schema.RelParticipatedIn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rows[0].Attrs["investor_type"]; got != "government" {
		t.Fatalf("lp_category must map to investor_type: got %v", got)
	}
	if _, ok := rows[0].Attrs["lp_category"]; ok {
		t.Fatal("renamed column must not keep its CSV name")
	}
	if got := rows[0].Source.Kind; got != schema.KindVCFirm {
		t.Fatalf("got %q, want %q", got, schema.KindVCFirm)
	}
}

func TestRelationshipRowsMissingRequiredColumn(t *testing.T) {
	t.Parallel()

	table := mustParse(t, "person_name,startup_name\nA,B\n")
	_, err := RelationshipRows(table, schema.RelFounded)
	if err == nil {
		t.Fatal("expected error for missing founding_date column, got nil")
	}
	if !strings.Contains(err.Error(), "founding_date") {
		t.Fatalf("error should name the missing column: %v", err)
	}
}

func TestRelationshipRowsUnknownKind(t *testing.T) {
	t.Parallel()

	table := mustParse(t, "a,b\n1,2\n")
	if _, err := RelationshipRows(table, "SPONSORS"); !errors.Is(err, schema.ErrUnknownRelationshipKind) {
		t.Fatalf("got %v, want ErrUnknownRelationshipKind", err)
	}
}

func TestEntityTemplate(t *testing.T) {
	t.Parallel()

	cols, err := EntityTemplate(schema.KindPerson)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cols) == 0 || cols[0] != "name" {
		t.Fatalf("template must lead with name: %v", cols)
	}
}

func TestRelationshipTemplate(t *testing.T) {
	t.Parallel()

	cols, err := RelationshipTemplate(schema.RelParticipatedIn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	joined := strings.Join(cols, ",")
	for _, want := range []string{"investor_name", "investor_type", "fund_name", "commitment_amount", "commitment_date", "lp_category"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("template %v missing column %q", cols, want)
		}
	}

	// investor_type appears once: as the source kind column, not the attribute.
	count := 0
	for _, col := range cols {
		if col == "investor_type" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("investor_type should appear once, got %d in %v", count, cols)
	}
}

func TestRelationshipTemplatesCoverAllKinds(t *testing.T) {
	t.Parallel()

	for _, kind := range schema.RelationshipKinds() {
		kind := kind
		t.Run(kind, func(t *testing.T) {
			t.Parallel()
			cols, err := RelationshipTemplate(kind)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(cols) < 3 {
				t.Fatalf("suspiciously short template for %s: %v", kind, cols)
			}
		})
	}
}
