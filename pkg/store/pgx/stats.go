package pgx

import (
	"context"

	"github.com/ecograph/backend/pkg/common"
)

func (t *pgTx) CountEntities(ctx context.Context) (map[string]int64, error) {
	return t.countByKind(ctx, "SELECT kind, count(*) FROM entities GROUP BY kind")
}

func (t *pgTx) CountRelationships(ctx context.Context) (map[string]int64, error) {
	return t.countByKind(ctx, "SELECT kind, count(*) FROM relationships GROUP BY kind")
}

func (t *pgTx) countByKind(ctx context.Context, query string) (map[string]int64, error) {
	rows, err := t.tx.Query(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var kind string
		var n int64
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, mapError(err)
		}
		counts[kind] = n
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return counts, nil
}

// GraphData returns a capped slice of the graph for visualization. Links are
// restricted to pairs whose both endpoints made the node cut, so the client
// never renders a dangling edge.
func (t *pgTx) GraphData(ctx context.Context, limit int) (*common.GraphData, error) {
	query := "SELECT id, kind, name FROM entities ORDER BY kind, name"
	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	data := &common.GraphData{}
	var ids []string
	for rows.Next() {
		var n common.GraphNode
		if err := rows.Scan(&n.ID, &n.Kind, &n.Name); err != nil {
			return nil, mapError(err)
		}
		data.Nodes = append(data.Nodes, n)
		ids = append(ids, n.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	if len(ids) == 0 {
		return data, nil
	}

	linkRows, err := t.tx.Query(ctx,
		`SELECT source_id, target_id, kind FROM relationships
		 WHERE source_id = ANY($1) AND target_id = ANY($1) ORDER BY id`,
		ids)
	if err != nil {
		return nil, mapError(err)
	}
	defer linkRows.Close()

	for linkRows.Next() {
		var l common.GraphLink
		if err := linkRows.Scan(&l.Source, &l.Target, &l.Kind); err != nil {
			return nil, mapError(err)
		}
		data.Links = append(data.Links, l)
	}
	if err := linkRows.Err(); err != nil {
		return nil, mapError(err)
	}
	return data, nil
}
