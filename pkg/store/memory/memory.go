// Package memory provides an in-memory GraphStore adapter backed by plain
// maps. It is used by tests and by local development with
// GRAPH_ADAPTER=memory; it implements the same transactional contract as the
// database adapters by restoring a snapshot when the callback fails.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ecograph/backend/pkg/common"
	"github.com/ecograph/backend/pkg/store"
)

type Store struct {
	mu sync.Mutex

	entities      map[string]map[string]*common.Entity // kind → name → entity
	entitiesByID  map[string]*common.Entity
	relationships map[string]*common.Relationship // id → relationship
}

func New() *Store {
	return &Store{
		entities:      map[string]map[string]*common.Entity{},
		entitiesByID:  map[string]*common.Entity{},
		relationships: map[string]*common.Relationship{},
	}
}

// WithTx serializes transactions behind the store mutex. The callback
// mutates the live maps; a deep snapshot taken up front is restored when the
// callback returns an error.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entities, byID, relationships := s.snapshot()
	if err := fn(&memTx{store: s}); err != nil {
		s.entities = entities
		s.entitiesByID = byID
		s.relationships = relationships
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return nil
}

func (s *Store) snapshot() (map[string]map[string]*common.Entity, map[string]*common.Entity, map[string]*common.Relationship) {
	entities := make(map[string]map[string]*common.Entity, len(s.entities))
	byID := make(map[string]*common.Entity, len(s.entitiesByID))
	for kind, byName := range s.entities {
		clone := make(map[string]*common.Entity, len(byName))
		for name, e := range byName {
			c := copyEntity(e)
			clone[name] = c
			byID[c.ID] = c
		}
		entities[kind] = clone
	}
	relationships := make(map[string]*common.Relationship, len(s.relationships))
	for id, r := range s.relationships {
		relationships[id] = copyRelationship(r)
	}
	return entities, byID, relationships
}

// memTx operates on the live maps; the store mutex is held by WithTx for the
// whole transaction.
type memTx struct {
	store *Store
}

func (t *memTx) GetEntity(ctx context.Context, kind, name string) (*common.Entity, error) {
	e, ok := t.store.entities[kind][name]
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", store.ErrNotFound, kind, name)
	}
	return copyEntity(e), nil
}

func (t *memTx) CreateEntity(ctx context.Context, entity *common.Entity) error {
	byName, ok := t.store.entities[entity.Kind]
	if !ok {
		byName = map[string]*common.Entity{}
		t.store.entities[entity.Kind] = byName
	}
	if _, exists := byName[entity.Name]; exists {
		return fmt.Errorf("%w: %s %q", store.ErrConstraintViolation, entity.Kind, entity.Name)
	}
	c := copyEntity(entity)
	byName[entity.Name] = c
	t.store.entitiesByID[entity.ID] = c
	return nil
}

func (t *memTx) UpdateEntity(ctx context.Context, kind, id string, attrs map[string]any, now time.Time) error {
	e, ok := t.store.entitiesByID[id]
	if !ok || e.Kind != kind {
		return fmt.Errorf("%w: %s id %q", store.ErrNotFound, kind, id)
	}
	if e.Attrs == nil {
		e.Attrs = map[string]any{}
	}
	for k, v := range attrs {
		e.Attrs[k] = v
	}
	e.UpdatedAt = now
	return nil
}

func (t *memTx) GetRelationship(ctx context.Context, kind, sourceID, targetID, disambiguator string) (*common.Relationship, error) {
	for _, r := range t.store.relationships {
		if r.Kind == kind && r.SourceID == sourceID && r.TargetID == targetID && r.Disambiguator == disambiguator {
			return copyRelationship(r), nil
		}
	}
	return nil, fmt.Errorf("%w: %s %s→%s", store.ErrNotFound, kind, sourceID, targetID)
}

func (t *memTx) CreateRelationship(ctx context.Context, rel *common.Relationship) error {
	for _, r := range t.store.relationships {
		if r.Kind == rel.Kind && r.SourceID == rel.SourceID && r.TargetID == rel.TargetID && r.Disambiguator == rel.Disambiguator {
			return fmt.Errorf("%w: %s %s→%s", store.ErrConstraintViolation, rel.Kind, rel.SourceID, rel.TargetID)
		}
	}
	t.store.relationships[rel.ID] = copyRelationship(rel)
	return nil
}

func (t *memTx) UpdateRelationship(ctx context.Context, kind, id string, attrs map[string]any, now time.Time) error {
	r, ok := t.store.relationships[id]
	if !ok || r.Kind != kind {
		return fmt.Errorf("%w: %s id %q", store.ErrNotFound, kind, id)
	}
	if r.Attrs == nil {
		r.Attrs = map[string]any{}
	}
	for k, v := range attrs {
		r.Attrs[k] = v
	}
	r.UpdatedAt = now
	return nil
}

func (t *memTx) RelationshipsByTarget(ctx context.Context, kind, targetID string) ([]common.Relationship, error) {
	var out []common.Relationship
	for _, r := range t.store.relationships {
		if r.Kind == kind && r.TargetID == targetID {
			out = append(out, *copyRelationship(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) ListEntities(ctx context.Context, kind string, limit, offset int) ([]common.Entity, error) {
	byName := t.store.entities[kind]
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	if offset < 0 {
		offset = 0
	}
	if offset >= len(names) {
		return nil, nil
	}
	names = names[offset:]
	if limit > 0 && limit < len(names) {
		names = names[:limit]
	}

	out := make([]common.Entity, 0, len(names))
	for _, name := range names {
		out = append(out, *copyEntity(byName[name]))
	}
	return out, nil
}

func (t *memTx) SearchEntities(ctx context.Context, query string, limit int) ([]common.Entity, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}

	var out []common.Entity
	for _, byName := range t.store.entities {
		for _, e := range byName {
			if strings.Contains(strings.ToLower(e.Name), needle) {
				out = append(out, *copyEntity(e))
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (t *memTx) CountEntities(ctx context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	for kind, byName := range t.store.entities {
		out[kind] = int64(len(byName))
	}
	return out, nil
}

func (t *memTx) CountRelationships(ctx context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	for _, r := range t.store.relationships {
		out[r.Kind]++
	}
	return out, nil
}

func (t *memTx) GraphData(ctx context.Context, limit int) (*common.GraphData, error) {
	var all []*common.Entity
	for _, byName := range t.store.entities {
		for _, e := range byName {
			all = append(all, e)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Kind != all[j].Kind {
			return all[i].Kind < all[j].Kind
		}
		return all[i].Name < all[j].Name
	})
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}

	data := &common.GraphData{}
	included := make(map[string]struct{}, len(all))
	for _, e := range all {
		included[e.ID] = struct{}{}
		data.Nodes = append(data.Nodes, common.GraphNode{ID: e.ID, Kind: e.Kind, Name: e.Name})
	}

	ids := make([]string, 0, len(t.store.relationships))
	for id := range t.store.relationships {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		r := t.store.relationships[id]
		if _, ok := included[r.SourceID]; !ok {
			continue
		}
		if _, ok := included[r.TargetID]; !ok {
			continue
		}
		data.Links = append(data.Links, common.GraphLink{Source: r.SourceID, Target: r.TargetID, Kind: r.Kind})
	}
	return data, nil
}

func copyEntity(e *common.Entity) *common.Entity {
	out := *e
	out.Attrs = maps.Clone(e.Attrs)
	return &out
}

func copyRelationship(r *common.Relationship) *common.Relationship {
	out := *r
	out.Attrs = maps.Clone(r.Attrs)
	return &out
}
