package graph

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ecograph/backend/pkg/common"
	"github.com/ecograph/backend/pkg/schema"
	"github.com/ecograph/backend/pkg/store"
	"github.com/ecograph/backend/pkg/validate"
)

// checkEntityState runs the entity checks that need accumulated graph state.
// A startup may only be marked acquired once an ACQUIRED edge targets it, so
// the edge has to be recorded before the status flips.
func (c *Coordinator) checkEntityState(ctx context.Context, tx store.Tx, kind string, existing *common.Entity, record map[string]any) ([]validate.Violation, error) {
	if kind != schema.KindStartup {
		return nil, nil
	}
	status, _ := record["status"].(string)
	if status != "acquired" {
		return nil, nil
	}

	if existing != nil {
		edges, err := tx.RelationshipsByTarget(ctx, schema.RelAcquired, existing.ID)
		if err != nil {
			return nil, err
		}
		if len(edges) > 0 {
			return nil, nil
		}
	}
	return []validate.Violation{{
		Field:   "status",
		Kind:    validate.ViolationConditional,
		Message: "requires an existing ACQUIRED relationship targeting this startup",
	}}, nil
}

// checkRelationshipState runs the relationship checks that need accumulated
// graph state: investment stage progression, the equity budget of the target
// startup, and cross-entity date ordering against the target's founding.
// The edge identity being merged is excluded from the aggregates so that
// resubmitting an edge never competes with itself.
func (c *Coordinator) checkRelationshipState(
	ctx context.Context,
	tx store.Tx,
	relSchema schema.RelationshipSchema,
	src, tgt *common.Entity,
	record map[string]any,
	disambiguator string,
) ([]validate.Violation, error) {
	var violations []validate.Violation

	if relSchema.Kind == schema.RelInvestsIn {
		v, err := c.checkStageProgression(ctx, tx, src, tgt, record, disambiguator)
		if err != nil {
			return nil, err
		}
		violations = append(violations, v...)
	}

	if relSchema.Kind == schema.RelFounded || relSchema.Kind == schema.RelInvestsIn {
		v, err := c.checkEquityBudget(ctx, tx, relSchema.Kind, src, tgt, record, disambiguator)
		if err != nil {
			return nil, err
		}
		violations = append(violations, v...)
	}

	violations = append(violations, c.checkDatesAgainstTarget(relSchema.Kind, tgt, record)...)
	return violations, nil
}

// checkStageProgression rejects an investment whose round stage precedes the
// stage of an existing investment into the same startup with an earlier
// round date.
func (c *Coordinator) checkStageProgression(ctx context.Context, tx store.Tx, src, tgt *common.Entity, record map[string]any, disambiguator string) ([]validate.Violation, error) {
	newStage, _ := record["round_stage"].(string)
	newDate, _ := record["round_date"].(string)
	newRank, ok := schema.StageOrder(newStage)
	if !ok || newDate == "" {
		return nil, nil
	}

	existing, err := tx.RelationshipsByTarget(ctx, schema.RelInvestsIn, tgt.ID)
	if err != nil {
		return nil, err
	}
	for _, r := range existing {
		if r.SourceID == src.ID && r.Disambiguator == disambiguator {
			continue
		}
		date, ok := attrString(r.Attrs, "round_date")
		if !ok || date >= newDate {
			continue
		}
		stage, ok := attrString(r.Attrs, "round_stage")
		if !ok {
			continue
		}
		if rank, ok := schema.StageOrder(stage); ok && rank > newRank {
			return []validate.Violation{{
				Field:   "round_stage",
				Kind:    validate.ViolationStageRegression,
				Message: fmt.Sprintf("%s precedes the %s round dated %s", newStage, stage, date),
			}}, nil
		}
	}
	return nil, nil
}

// checkEquityBudget keeps the sum of FOUNDED and INVESTS_IN equity
// percentages targeting one startup within 100.
func (c *Coordinator) checkEquityBudget(ctx context.Context, tx store.Tx, kind string, src, tgt *common.Entity, record map[string]any, disambiguator string) ([]validate.Violation, error) {
	submitted, ok := record["equity_percentage"].(float64)
	if !ok {
		return nil, nil
	}

	total := submitted
	for _, edgeKind := range []string{schema.RelFounded, schema.RelInvestsIn} {
		existing, err := tx.RelationshipsByTarget(ctx, edgeKind, tgt.ID)
		if err != nil {
			return nil, err
		}
		for _, r := range existing {
			if r.Kind == kind && r.SourceID == src.ID && r.Disambiguator == disambiguator {
				continue
			}
			if pct, ok := attrFloat(r.Attrs, "equity_percentage"); ok {
				total += pct
			}
		}
	}
	if total > 100 {
		return []validate.Violation{{
			Field:   "equity_percentage",
			Kind:    validate.ViolationEquityBudget,
			Message: fmt.Sprintf("%.4g%% would bring %s %q to %.4g%%, above 100%%", submitted, tgt.Kind, tgt.Name, total),
		}}, nil
	}
	return nil, nil
}

// investmentDateAttrs maps the relationship kinds anchored to a startup's
// founding onto the attribute carrying the relevant date.
var investmentDateAttrs = map[string]string{
	schema.RelFounded:        "founding_date",
	schema.RelInvestsIn:      "round_date",
	schema.RelAngelInvestsIn: "investment_date",
}

// checkDatesAgainstTarget rejects founding and investment dates that predate
// the target startup's founded_year or lie in the future.
func (c *Coordinator) checkDatesAgainstTarget(kind string, tgt *common.Entity, record map[string]any) []validate.Violation {
	attrName, ok := investmentDateAttrs[kind]
	if !ok {
		return nil
	}
	date, ok := record[attrName].(string)
	if !ok || len(date) < 4 {
		return nil
	}

	var violations []validate.Violation
	if foundedYear, ok := attrInt(tgt.Attrs, "founded_year"); ok {
		if year, err := strconv.Atoi(date[:4]); err == nil && int64(year) < foundedYear {
			violations = append(violations, validate.Violation{
				Field:   attrName,
				Kind:    validate.ViolationOrdering,
				Message: fmt.Sprintf("predates %q's founded_year %d", tgt.Name, foundedYear),
			})
		}
	}
	if today := c.now().Format("2006-01-02"); date > today {
		violations = append(violations, validate.Violation{
			Field:   attrName,
			Kind:    validate.ViolationOrdering,
			Message: "must not be in the future",
		})
	}
	return violations
}

func attrString(attrs map[string]any, key string) (string, bool) {
	s, ok := attrs[key].(string)
	return s, ok
}

// attrFloat reads a numeric attribute regardless of how the adapter decoded
// it; JSON round-trips hand back float64 where the validator wrote int64.
func attrFloat(attrs map[string]any, key string) (float64, bool) {
	switch v := attrs[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

func attrInt(attrs map[string]any, key string) (int64, bool) {
	switch v := attrs[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	}
	return 0, false
}
