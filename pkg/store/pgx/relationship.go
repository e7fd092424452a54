package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/ecograph/backend/pkg/common"
	"github.com/ecograph/backend/pkg/store"
)

const relationshipColumns = "id, kind, source_id, target_id, disambiguator, attrs, created_at, updated_at"

func scanRelationship(row scanner) (*common.Relationship, error) {
	var r common.Relationship
	var attrs []byte
	if err := row.Scan(&r.ID, &r.Kind, &r.SourceID, &r.TargetID, &r.Disambiguator, &attrs, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(attrs, &r.Attrs); err != nil {
		return nil, fmt.Errorf("decoding relationship attrs: %w", err)
	}
	return &r, nil
}

func (t *pgTx) GetRelationship(ctx context.Context, kind, sourceID, targetID, disambiguator string) (*common.Relationship, error) {
	row := t.tx.QueryRow(ctx,
		"SELECT "+relationshipColumns+` FROM relationships
		 WHERE kind = $1 AND source_id = $2 AND target_id = $3 AND disambiguator = $4`,
		kind, sourceID, targetID, disambiguator)
	r, err := scanRelationship(row)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %s -> %s", store.ErrNotFound, kind, sourceID, targetID)
	}
	if err != nil {
		return nil, mapError(err)
	}
	return r, nil
}

func (t *pgTx) CreateRelationship(ctx context.Context, rel *common.Relationship) error {
	attrs, err := json.Marshal(rel.Attrs)
	if err != nil {
		return fmt.Errorf("encoding relationship attrs: %w", err)
	}
	_, err = t.tx.Exec(ctx,
		`INSERT INTO relationships (id, kind, source_id, target_id, disambiguator, attrs, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rel.ID, rel.Kind, rel.SourceID, rel.TargetID, rel.Disambiguator, attrs, rel.CreatedAt, rel.UpdatedAt)
	return mapError(err)
}

func (t *pgTx) UpdateRelationship(ctx context.Context, kind, id string, attrs map[string]any, now time.Time) error {
	encoded, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("encoding relationship attrs: %w", err)
	}
	tag, err := t.tx.Exec(ctx,
		"UPDATE relationships SET attrs = attrs || $1::jsonb, updated_at = $2 WHERE kind = $3 AND id = $4",
		encoded, now, kind, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s id %q", store.ErrNotFound, kind, id)
	}
	return nil
}

func (t *pgTx) RelationshipsByTarget(ctx context.Context, kind, targetID string) ([]common.Relationship, error) {
	rows, err := t.tx.Query(ctx,
		"SELECT "+relationshipColumns+" FROM relationships WHERE kind = $1 AND target_id = $2 ORDER BY id",
		kind, targetID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []common.Relationship
	for rows.Next() {
		r, err := scanRelationship(rows)
		if err != nil {
			return nil, mapError(err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}
