package neo4j

import (
	"context"
	"fmt"

	"github.com/ecograph/backend/pkg/common"
	"github.com/ecograph/backend/pkg/schema"
)

func (t *neoTx) CountEntities(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, len(schema.EntityKinds()))
	for _, kind := range schema.EntityKinds() {
		query := fmt.Sprintf("MATCH (n:%s) RETURN count(n) AS count", kind)
		result, err := t.run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		if result.Next(ctx) {
			out[kind] = int64FromRecord(result.Record(), "count")
		}
		if err := result.Err(); err != nil {
			return nil, mapError(err)
		}
	}
	return out, nil
}

func (t *neoTx) CountRelationships(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, len(schema.RelationshipKinds()))
	for _, kind := range schema.RelationshipKinds() {
		query := fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r) AS count", kind)
		result, err := t.run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		if result.Next(ctx) {
			out[kind] = int64FromRecord(result.Record(), "count")
		}
		if err := result.Err(); err != nil {
			return nil, mapError(err)
		}
	}
	return out, nil
}

// GraphData loads up to limit nodes and every edge whose endpoints both made
// the cut, the shape the frontend network view renders directly.
func (t *neoTx) GraphData(ctx context.Context, limit int) (*common.GraphData, error) {
	query := "MATCH (n) WHERE n.id IS NOT NULL RETURN n, labels(n) AS kinds ORDER BY labels(n)[0], n.name"
	params := map[string]any{}
	if limit > 0 {
		query += " LIMIT $limit"
		params["limit"] = limit
	}

	result, err := t.run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	data := &common.GraphData{}
	var ids []string
	for result.Next(ctx) {
		record := result.Record()
		kind := kindFromLabels(record, "kinds")
		node, ok := nodeFromRecord(record, "n")
		if kind == "" || !ok {
			continue
		}
		id, _ := node.Props[propID].(string)
		name, _ := node.Props["name"].(string)
		data.Nodes = append(data.Nodes, common.GraphNode{ID: id, Kind: kind, Name: name})
		ids = append(ids, id)
	}
	if err := result.Err(); err != nil {
		return nil, mapError(err)
	}
	if len(ids) == 0 {
		return data, nil
	}

	linkQuery := `MATCH (a)-[r]->(b)
		WHERE a.id IN $ids AND b.id IN $ids
		RETURN a.id AS source, b.id AS target, type(r) AS kind`
	linkResult, err := t.run(ctx, linkQuery, map[string]any{"ids": ids})
	if err != nil {
		return nil, err
	}
	for linkResult.Next(ctx) {
		record := linkResult.Record()
		data.Links = append(data.Links, common.GraphLink{
			Source: stringFromRecord(record, "source"),
			Target: stringFromRecord(record, "target"),
			Kind:   stringFromRecord(record, "kind"),
		})
	}
	if err := linkResult.Err(); err != nil {
		return nil, mapError(err)
	}
	return data, nil
}
