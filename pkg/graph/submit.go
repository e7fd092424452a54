package graph

import (
	"context"
	"errors"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/ecograph/backend/internal/util"
	"github.com/ecograph/backend/pkg/common"
	"github.com/ecograph/backend/pkg/logger"
	"github.com/ecograph/backend/pkg/schema"
	"github.com/ecograph/backend/pkg/store"
	"github.com/ecograph/backend/pkg/validate"
)

// errRejected aborts the store transaction for a rejected submission without
// surfacing an error to the caller; the rejection travels in the Outcome.
var errRejected = errors.New("submission rejected")

// SubmitEntity validates an entity submission and upserts it by natural key
// (kind, name). The returned error is non-nil for unknown kinds and store
// failures only; rejections are reported through the Outcome.
func (c *Coordinator) SubmitEntity(ctx context.Context, kind string, attrs map[string]any) (Outcome, error) {
	res, err := c.validator.Entity(kind, attrs)
	if err != nil {
		return Outcome{}, err
	}
	if !res.OK() {
		logger.Debug("[Graph] Entity submission rejected", "kind", kind, "violations", len(res.Violations))
		return rejected(res.Violations), nil
	}

	name, _ := res.Record["name"].(string)
	var out Outcome
	err = c.store.WithTx(ctx, func(tx store.Tx) error {
		existing, err := tx.GetEntity(ctx, kind, name)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}

		violations, err := c.checkEntityState(ctx, tx, kind, existing, res.Record)
		if err != nil {
			return err
		}
		if len(violations) > 0 {
			out = rejected(violations)
			return errRejected
		}

		now := c.now()
		if existing != nil {
			if err := tx.UpdateEntity(ctx, kind, existing.ID, res.Record, now); err != nil {
				return err
			}
			out = Outcome{Op: OpUpdated, ID: existing.ID}
			return nil
		}

		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("generating entity id: %w", err)
		}
		entity := &common.Entity{
			ID:        id,
			Kind:      kind,
			Name:      name,
			Attrs:     overlayDefaults(res.Defaults, res.Record),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.CreateEntity(ctx, entity); err != nil {
			return err
		}
		out = Outcome{Op: OpCreated, ID: id}
		return nil
	})
	if err != nil && !errors.Is(err, errRejected) {
		return Outcome{}, err
	}
	if out.Rejected() {
		logger.Debug("[Graph] Entity submission rejected", "kind", kind, "name", name, "violations", len(out.Violations))
	}
	return out, nil
}

// SubmitRelationship validates a relationship submission, resolves both
// endpoint refs to existing entities, runs the graph-state checks, and
// upserts the edge by its identity: (kind, source, target) plus the kind's
// disambiguating attribute when repeated edges are allowed.
func (c *Coordinator) SubmitRelationship(ctx context.Context, kind string, source, target common.EntityRef, attrs map[string]any) (Outcome, error) {
	res, err := c.validator.Relationship(kind, source, target, attrs)
	if err != nil {
		return Outcome{}, err
	}
	if !res.OK() {
		logger.Debug("[Graph] Relationship submission rejected", "kind", kind, "violations", len(res.Violations))
		return rejected(res.Violations), nil
	}

	relSchema, err := schema.LookupRelationship(kind)
	if err != nil {
		return Outcome{}, err
	}
	disambiguator := ""
	if relSchema.Cardinality == schema.CardinalityMultiple {
		disambiguator, _ = res.Record[relSchema.Disambiguator].(string)
	}

	var out Outcome
	err = c.store.WithTx(ctx, func(tx store.Tx) error {
		src, violations, err := resolveRef(ctx, tx, "source", source)
		if err != nil {
			return err
		}
		tgt, more, err := resolveRef(ctx, tx, "target", target)
		if err != nil {
			return err
		}
		violations = append(violations, more...)
		if len(violations) > 0 {
			out = rejected(violations)
			return errRejected
		}

		violations, err = c.checkRelationshipState(ctx, tx, relSchema, src, tgt, res.Record, disambiguator)
		if err != nil {
			return err
		}
		if len(violations) > 0 {
			out = rejected(violations)
			return errRejected
		}

		now := c.now()
		existing, err := tx.GetRelationship(ctx, kind, src.ID, tgt.ID, disambiguator)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if existing != nil {
			if err := tx.UpdateRelationship(ctx, kind, existing.ID, res.Record, now); err != nil {
				return err
			}
			out = Outcome{Op: OpUpdated, ID: existing.ID}
			return nil
		}

		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("generating relationship id: %w", err)
		}
		rel := &common.Relationship{
			ID:            id,
			Kind:          kind,
			SourceID:      src.ID,
			TargetID:      tgt.ID,
			Disambiguator: disambiguator,
			Attrs:         overlayDefaults(res.Defaults, res.Record),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := tx.CreateRelationship(ctx, rel); err != nil {
			return err
		}
		out = Outcome{Op: OpCreated, ID: id}
		return nil
	})
	if err != nil && !errors.Is(err, errRejected) {
		return Outcome{}, err
	}
	if out.Rejected() {
		logger.Debug("[Graph] Relationship submission rejected", "kind", kind, "violations", len(out.Violations))
	}
	return out, nil
}

// resolveRef looks up one endpoint by natural key. A missing entity is an
// endpoint violation, not an error: the operator must create it first.
func resolveRef(ctx context.Context, tx store.Tx, field string, ref common.EntityRef) (*common.Entity, []validate.Violation, error) {
	name := util.NormalizeName(ref.Name)
	entity, err := tx.GetEntity(ctx, ref.Kind, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, []validate.Violation{{
			Field:   field,
			Kind:    validate.ViolationEndpoint,
			Message: fmt.Sprintf("%s %q does not exist", ref.Kind, name),
		}}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return entity, nil, nil
}

// overlayDefaults builds the attribute map written on create: the kind's
// defaults overlaid by what the submission actually set.
func overlayDefaults(defaults, record map[string]any) map[string]any {
	out := make(map[string]any, len(defaults)+len(record))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range record {
		out[k] = v
	}
	return out
}
