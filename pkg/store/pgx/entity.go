package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/ecograph/backend/pkg/common"
	"github.com/ecograph/backend/pkg/store"
)

const entityColumns = "id, kind, name, attrs, created_at, updated_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(row scanner) (*common.Entity, error) {
	var e common.Entity
	var attrs []byte
	if err := row.Scan(&e.ID, &e.Kind, &e.Name, &attrs, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(attrs, &e.Attrs); err != nil {
		return nil, fmt.Errorf("decoding entity attrs: %w", err)
	}
	return &e, nil
}

func (t *pgTx) GetEntity(ctx context.Context, kind, name string) (*common.Entity, error) {
	row := t.tx.QueryRow(ctx,
		"SELECT "+entityColumns+" FROM entities WHERE kind = $1 AND name = $2",
		kind, name)
	e, err := scanEntity(row)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %q", store.ErrNotFound, kind, name)
	}
	if err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

func (t *pgTx) CreateEntity(ctx context.Context, entity *common.Entity) error {
	attrs, err := json.Marshal(entity.Attrs)
	if err != nil {
		return fmt.Errorf("encoding entity attrs: %w", err)
	}
	_, err = t.tx.Exec(ctx,
		`INSERT INTO entities (id, kind, name, attrs, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entity.ID, entity.Kind, entity.Name, attrs, entity.CreatedAt, entity.UpdatedAt)
	return mapError(err)
}

func (t *pgTx) UpdateEntity(ctx context.Context, kind, id string, attrs map[string]any, now time.Time) error {
	encoded, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("encoding entity attrs: %w", err)
	}
	tag, err := t.tx.Exec(ctx,
		"UPDATE entities SET attrs = attrs || $1::jsonb, updated_at = $2 WHERE kind = $3 AND id = $4",
		encoded, now, kind, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s id %q", store.ErrNotFound, kind, id)
	}
	return nil
}

func (t *pgTx) ListEntities(ctx context.Context, kind string, limit, offset int) ([]common.Entity, error) {
	if offset < 0 {
		offset = 0
	}
	query := "SELECT " + entityColumns + " FROM entities WHERE kind = $1 ORDER BY name OFFSET $2"
	args := []any{kind, offset}
	if limit > 0 {
		query += " LIMIT $3"
		args = append(args, limit)
	}

	rows, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []common.Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, mapError(err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (t *pgTx) SearchEntities(ctx context.Context, query string, limit int) ([]common.Entity, error) {
	needle := strings.TrimSpace(query)
	if needle == "" {
		return nil, nil
	}

	sql := "SELECT " + entityColumns + " FROM entities WHERE name ILIKE $1 ORDER BY kind, name"
	args := []any{likePattern(needle)}
	if limit > 0 {
		sql += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := t.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []common.Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, mapError(err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(needle string) string {
	return "%" + likeEscaper.Replace(needle) + "%"
}
