package neo4j

import (
	"time"

	neo4jv5 "github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/ecograph/backend/pkg/common"
)

// Store-maintained properties. Everything else on a node or edge is a
// submitted attribute.
const (
	propID            = "id"
	propDisambiguator = "disambiguator"
	propCreatedAt     = "created_at"
	propUpdatedAt     = "updated_at"
)

func entityProps(e *common.Entity) map[string]any {
	props := make(map[string]any, len(e.Attrs)+3)
	for k, v := range e.Attrs {
		props[k] = v
	}
	props["name"] = e.Name
	props[propID] = e.ID
	props[propCreatedAt] = e.CreatedAt.UTC().Format(time.RFC3339)
	props[propUpdatedAt] = e.UpdatedAt.UTC().Format(time.RFC3339)
	return props
}

func entityFromProps(kind string, props map[string]any) *common.Entity {
	e := &common.Entity{Kind: kind, Attrs: make(map[string]any, len(props))}
	for k, v := range props {
		switch k {
		case propID:
			e.ID, _ = v.(string)
		case propCreatedAt:
			e.CreatedAt = parseStoredTime(v)
		case propUpdatedAt:
			e.UpdatedAt = parseStoredTime(v)
		default:
			e.Attrs[k] = v
		}
	}
	e.Name, _ = e.Attrs["name"].(string)
	return e
}

func relationshipProps(r *common.Relationship) map[string]any {
	props := make(map[string]any, len(r.Attrs)+4)
	for k, v := range r.Attrs {
		props[k] = v
	}
	props[propID] = r.ID
	props[propDisambiguator] = r.Disambiguator
	props[propCreatedAt] = r.CreatedAt.UTC().Format(time.RFC3339)
	props[propUpdatedAt] = r.UpdatedAt.UTC().Format(time.RFC3339)
	return props
}

func relationshipFromProps(kind, sourceID, targetID string, props map[string]any) common.Relationship {
	r := common.Relationship{
		Kind:     kind,
		SourceID: sourceID,
		TargetID: targetID,
		Attrs:    make(map[string]any, len(props)),
	}
	for k, v := range props {
		switch k {
		case propID:
			r.ID, _ = v.(string)
		case propDisambiguator:
			r.Disambiguator, _ = v.(string)
		case propCreatedAt:
			r.CreatedAt = parseStoredTime(v)
		case propUpdatedAt:
			r.UpdatedAt = parseStoredTime(v)
		default:
			r.Attrs[k] = v
		}
	}
	return r
}

func parseStoredTime(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nodeFromRecord(record *neo4jv5.Record, key string) (neo4jv5.Node, bool) {
	raw, ok := record.Get(key)
	if !ok {
		return neo4jv5.Node{}, false
	}
	node, ok := raw.(neo4jv5.Node)
	return node, ok
}

func stringFromRecord(record *neo4jv5.Record, key string) string {
	raw, ok := record.Get(key)
	if !ok || raw == nil {
		return ""
	}
	s, _ := raw.(string)
	return s
}

func int64FromRecord(record *neo4jv5.Record, key string) int64 {
	raw, ok := record.Get(key)
	if !ok {
		return 0
	}
	n, _ := raw.(int64)
	return n
}

// kindFromLabels picks the node's kind label; nodes carry exactly one label
// in this schema.
func kindFromLabels(record *neo4jv5.Record, key string) string {
	raw, ok := record.Get(key)
	if !ok {
		return ""
	}
	labels, ok := raw.([]any)
	if !ok || len(labels) == 0 {
		return ""
	}
	s, _ := labels[0].(string)
	return s
}
