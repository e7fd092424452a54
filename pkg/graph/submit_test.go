package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ecograph/backend/pkg/common"
	"github.com/ecograph/backend/pkg/schema"
	"github.com/ecograph/backend/pkg/store"
	"github.com/ecograph/backend/pkg/store/memory"
	"github.com/ecograph/backend/pkg/validate"
)

func newTestCoordinator(t *testing.T) (*Coordinator, *memory.Store) {
	t.Helper()
	s := memory.New()
	c, err := NewCoordinator(NewCoordinatorParams{
		Store: s,
		Now: func() time.Time {
			return time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)
		},
	})
	if err != nil {
		t.Fatalf("NewCoordinator returned error: %v", err)
	}
	return c, s
}

func mustSubmitEntity(t *testing.T, c *Coordinator, kind string, attrs map[string]any) Outcome {
	t.Helper()
	out, err := c.SubmitEntity(context.Background(), kind, attrs)
	if err != nil {
		t.Fatalf("SubmitEntity(%s) returned error: %v", kind, err)
	}
	if out.Rejected() {
		t.Fatalf("SubmitEntity(%s) rejected: %+v", kind, out.Violations)
	}
	return out
}

func mustSubmitRelationship(t *testing.T, c *Coordinator, kind string, source, target common.EntityRef, attrs map[string]any) Outcome {
	t.Helper()
	out, err := c.SubmitRelationship(context.Background(), kind, source, target, attrs)
	if err != nil {
		t.Fatalf("SubmitRelationship(%s) returned error: %v", kind, err)
	}
	if out.Rejected() {
		t.Fatalf("SubmitRelationship(%s) rejected: %+v", kind, out.Violations)
	}
	return out
}

func readEntity(t *testing.T, s *memory.Store, kind, name string) *common.Entity {
	t.Helper()
	var entity *common.Entity
	err := s.WithTx(context.Background(), func(tx store.Tx) error {
		var err error
		entity, err = tx.GetEntity(context.Background(), kind, name)
		return err
	})
	if err != nil {
		t.Fatalf("reading %s %q: %v", kind, name, err)
	}
	return entity
}

func hasViolation(out Outcome, field string, kind validate.ViolationKind) bool {
	for _, v := range out.Violations {
		if v.Field == field && v.Kind == kind {
			return true
		}
	}
	return false
}

func startupRef(name string) common.EntityRef {
	return common.EntityRef{Kind: schema.KindStartup, Name: name}
}

func personRef(name string) common.EntityRef {
	return common.EntityRef{Kind: schema.KindPerson, Name: name}
}

func TestSubmitEntityCreateThenMerge(t *testing.T) {
	t.Parallel()

	c, s := newTestCoordinator(t)

	out := mustSubmitEntity(t, c, schema.KindStartup, map[string]any{
		"name":         "Banca  Futura",
		"founded_year": 2022,
		"stage":        "seed",
	})
	if out.Op != OpCreated || out.ID == "" {
		t.Fatalf("got %+v, want created with id", out)
	}

	created := readEntity(t, s, schema.KindStartup, "Banca Futura")
	if created.Attrs["status"] != "active" {
		t.Fatalf("create must apply the status default, got %+v", created.Attrs)
	}
	if created.Attrs["founded_year"] != int64(2022) {
		t.Fatalf("got founded_year %v (%T), want int64 2022", created.Attrs["founded_year"], created.Attrs["founded_year"])
	}

	// Resubmitting the same natural key merges instead of duplicating, and
	// leaves untouched attributes alone.
	out2 := mustSubmitEntity(t, c, schema.KindStartup, map[string]any{
		"name":   "Banca Futura",
		"sector": "fintech",
	})
	if out2.Op != OpUpdated {
		t.Fatalf("got op %q, want updated", out2.Op)
	}
	if out2.ID != out.ID {
		t.Fatalf("merge changed the id: %q vs %q", out2.ID, out.ID)
	}

	merged := readEntity(t, s, schema.KindStartup, "Banca Futura")
	if merged.Attrs["sector"] != "fintech" {
		t.Fatalf("merge did not write sector: %+v", merged.Attrs)
	}
	if merged.Attrs["stage"] != "seed" || merged.Attrs["founded_year"] != int64(2022) {
		t.Fatalf("merge nulled untouched attributes: %+v", merged.Attrs)
	}
	if !merged.UpdatedAt.After(merged.CreatedAt) && !merged.UpdatedAt.Equal(merged.CreatedAt) {
		t.Fatalf("merge must refresh updated_at")
	}
}

func TestSubmitEntityRejectionWritesNothing(t *testing.T) {
	t.Parallel()

	c, s := newTestCoordinator(t)

	out, err := c.SubmitEntity(context.Background(), schema.KindPerson, map[string]any{
		"name": "Giulia Bianchi",
		// role_type missing
	})
	if err != nil {
		t.Fatalf("SubmitEntity returned error: %v", err)
	}
	if !out.Rejected() || !hasViolation(out, "role_type", validate.ViolationMissing) {
		t.Fatalf("got %+v, want rejection with missing role_type", out)
	}

	err = s.WithTx(context.Background(), func(tx store.Tx) error {
		_, err := tx.GetEntity(context.Background(), schema.KindPerson, "Giulia Bianchi")
		return err
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("rejected submission must not write: %v", err)
	}
}

func TestSubmitEntityUnknownKind(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t)
	_, err := c.SubmitEntity(context.Background(), "Rocket", map[string]any{"name": "R1"})
	if !errors.Is(err, schema.ErrUnknownEntityKind) {
		t.Fatalf("got %v, want ErrUnknownEntityKind", err)
	}
}

func TestSubmitRelationshipEndpointsMustExist(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t)
	mustSubmitEntity(t, c, schema.KindPerson, map[string]any{"name": "Giulia Bianchi", "role_type": "founder"})

	out, err := c.SubmitRelationship(context.Background(), schema.RelFounded,
		personRef("Giulia Bianchi"), startupRef("Banca Futura"),
		map[string]any{"role": "CEO", "founding_date": "2022-06-01"})
	if err != nil {
		t.Fatalf("SubmitRelationship returned error: %v", err)
	}
	if !out.Rejected() || !hasViolation(out, "target", validate.ViolationEndpoint) {
		t.Fatalf("got %+v, want endpoint rejection on target", out)
	}
}

func TestSubmitRelationshipCardinality(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t)
	mustSubmitEntity(t, c, schema.KindPerson, map[string]any{"name": "Giulia Bianchi", "role_type": "angel_investor"})
	mustSubmitEntity(t, c, schema.KindStartup, map[string]any{"name": "Banca Futura", "founded_year": 2020})

	// Single cardinality: the second FOUNDED submission for the same pair
	// merges into the first edge.
	first := mustSubmitRelationship(t, c, schema.RelFounded,
		personRef("Giulia Bianchi"), startupRef("Banca Futura"),
		map[string]any{"role": "CEO", "founding_date": "2020-03-01"})
	if first.Op != OpCreated {
		t.Fatalf("got op %q, want created", first.Op)
	}
	second := mustSubmitRelationship(t, c, schema.RelFounded,
		personRef("Giulia Bianchi"), startupRef("Banca Futura"),
		map[string]any{"role": "CTO", "founding_date": "2020-03-01"})
	if second.Op != OpUpdated || second.ID != first.ID {
		t.Fatalf("got %+v, want update of %q", second, first.ID)
	}

	// Multiple cardinality: a different disambiguating date creates a second
	// edge, the same date merges.
	a := mustSubmitRelationship(t, c, schema.RelAngelInvestsIn,
		personRef("Giulia Bianchi"), startupRef("Banca Futura"),
		map[string]any{"investment_date": "2021-01-10", "round_stage": "pre_seed", "amount": 50000})
	b := mustSubmitRelationship(t, c, schema.RelAngelInvestsIn,
		personRef("Giulia Bianchi"), startupRef("Banca Futura"),
		map[string]any{"investment_date": "2022-02-20", "round_stage": "seed", "amount": 100000})
	if a.Op != OpCreated || b.Op != OpCreated || a.ID == b.ID {
		t.Fatalf("distinct investment dates must create distinct edges: %+v %+v", a, b)
	}
	again := mustSubmitRelationship(t, c, schema.RelAngelInvestsIn,
		personRef("Giulia Bianchi"), startupRef("Banca Futura"),
		map[string]any{"investment_date": "2022-02-20", "round_stage": "seed", "amount": 150000})
	if again.Op != OpUpdated || again.ID != b.ID {
		t.Fatalf("got %+v, want update of %q", again, b.ID)
	}
}

func TestStageProgression(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t)
	mustSubmitEntity(t, c, schema.KindVCFund, map[string]any{"name": "Alpha Fund I"})
	mustSubmitEntity(t, c, schema.KindStartup, map[string]any{"name": "Banca Futura", "founded_year": 2020})
	fund := common.EntityRef{Kind: schema.KindVCFund, Name: "Alpha Fund I"}

	mustSubmitRelationship(t, c, schema.RelInvestsIn, fund, startupRef("Banca Futura"),
		map[string]any{"round_stage": "series_a", "round_date": "2023-01-01", "amount": 2000000})

	// A later-dated round may not fall back to an earlier stage.
	out, err := c.SubmitRelationship(context.Background(), schema.RelInvestsIn, fund, startupRef("Banca Futura"),
		map[string]any{"round_stage": "seed", "round_date": "2024-01-01", "amount": 500000})
	if err != nil {
		t.Fatalf("SubmitRelationship returned error: %v", err)
	}
	if !out.Rejected() || !hasViolation(out, "round_stage", validate.ViolationStageRegression) {
		t.Fatalf("got %+v, want stage regression rejection", out)
	}

	// Backfilling an earlier-dated round at an earlier stage stays legal.
	mustSubmitRelationship(t, c, schema.RelInvestsIn, fund, startupRef("Banca Futura"),
		map[string]any{"round_stage": "seed", "round_date": "2022-06-01", "amount": 400000})

	// Resubmitting the offending round itself does not compete with its own
	// previous version.
	mustSubmitRelationship(t, c, schema.RelInvestsIn, fund, startupRef("Banca Futura"),
		map[string]any{"round_stage": "series_a", "round_date": "2023-01-01", "amount": 2500000})
}

func TestEquityBudget(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t)
	mustSubmitEntity(t, c, schema.KindPerson, map[string]any{"name": "Giulia Bianchi", "role_type": "founder"})
	mustSubmitEntity(t, c, schema.KindStartup, map[string]any{"name": "Banca Futura", "founded_year": 2020})
	mustSubmitEntity(t, c, schema.KindVCFund, map[string]any{"name": "Alpha Fund I"})
	fund := common.EntityRef{Kind: schema.KindVCFund, Name: "Alpha Fund I"}

	mustSubmitRelationship(t, c, schema.RelFounded,
		personRef("Giulia Bianchi"), startupRef("Banca Futura"),
		map[string]any{"role": "CEO", "founding_date": "2020-03-01", "equity_percentage": 60})

	out, err := c.SubmitRelationship(context.Background(), schema.RelInvestsIn, fund, startupRef("Banca Futura"),
		map[string]any{"round_stage": "seed", "round_date": "2021-05-01", "amount": 1000000, "equity_percentage": 50})
	if err != nil {
		t.Fatalf("SubmitRelationship returned error: %v", err)
	}
	if !out.Rejected() || !hasViolation(out, "equity_percentage", validate.ViolationEquityBudget) {
		t.Fatalf("got %+v, want equity budget rejection", out)
	}

	mustSubmitRelationship(t, c, schema.RelInvestsIn, fund, startupRef("Banca Futura"),
		map[string]any{"round_stage": "seed", "round_date": "2021-05-01", "amount": 1000000, "equity_percentage": 40})

	// Merging the FOUNDED edge with a new percentage replaces its own share
	// instead of double counting it: 30 + 40 stays within budget.
	mustSubmitRelationship(t, c, schema.RelFounded,
		personRef("Giulia Bianchi"), startupRef("Banca Futura"),
		map[string]any{"role": "CEO", "founding_date": "2020-03-01", "equity_percentage": 30})
}

func TestAcquiredStatusRequiresEdge(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t)
	mustSubmitEntity(t, c, schema.KindStartup, map[string]any{"name": "Banca Futura", "founded_year": 2020})
	mustSubmitEntity(t, c, schema.KindCorporate, map[string]any{"name": "Intesa Sanpaolo"})

	out, err := c.SubmitEntity(context.Background(), schema.KindStartup, map[string]any{
		"name":   "Banca Futura",
		"status": "acquired",
	})
	if err != nil {
		t.Fatalf("SubmitEntity returned error: %v", err)
	}
	if !out.Rejected() || !hasViolation(out, "status", validate.ViolationConditional) {
		t.Fatalf("got %+v, want conditional rejection on status", out)
	}

	mustSubmitRelationship(t, c, schema.RelAcquired,
		common.EntityRef{Kind: schema.KindCorporate, Name: "Intesa Sanpaolo"}, startupRef("Banca Futura"),
		map[string]any{"acquisition_date": "2025-11-01", "acquisition_type": "full_acquisition"})

	flipped := mustSubmitEntity(t, c, schema.KindStartup, map[string]any{
		"name":   "Banca Futura",
		"status": "acquired",
	})
	if flipped.Op != OpUpdated {
		t.Fatalf("got op %q, want updated", flipped.Op)
	}
}

func TestCrossEntityDates(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t)
	mustSubmitEntity(t, c, schema.KindPerson, map[string]any{"name": "Giulia Bianchi", "role_type": "founder"})
	mustSubmitEntity(t, c, schema.KindStartup, map[string]any{"name": "Banca Futura", "founded_year": 2022})

	out, err := c.SubmitRelationship(context.Background(), schema.RelFounded,
		personRef("Giulia Bianchi"), startupRef("Banca Futura"),
		map[string]any{"role": "CEO", "founding_date": "2021-01-01"})
	if err != nil {
		t.Fatalf("SubmitRelationship returned error: %v", err)
	}
	if !out.Rejected() || !hasViolation(out, "founding_date", validate.ViolationOrdering) {
		t.Fatalf("got %+v, want ordering rejection against founded_year", out)
	}

	// The coordinator clock is pinned to 2026-05-01.
	out, err = c.SubmitRelationship(context.Background(), schema.RelFounded,
		personRef("Giulia Bianchi"), startupRef("Banca Futura"),
		map[string]any{"role": "CEO", "founding_date": "2026-07-01"})
	if err != nil {
		t.Fatalf("SubmitRelationship returned error: %v", err)
	}
	if !out.Rejected() || !hasViolation(out, "founding_date", validate.ViolationOrdering) {
		t.Fatalf("got %+v, want future-date rejection", out)
	}

	mustSubmitRelationship(t, c, schema.RelFounded,
		personRef("Giulia Bianchi"), startupRef("Banca Futura"),
		map[string]any{"role": "CEO", "founding_date": "2022-06-01"})
}
