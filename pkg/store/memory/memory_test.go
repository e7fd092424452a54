package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ecograph/backend/pkg/common"
	"github.com/ecograph/backend/pkg/schema"
	"github.com/ecograph/backend/pkg/store"
)

func seedEntity(t *testing.T, s *Store, id, kind, name string, attrs map[string]any) {
	t.Helper()
	err := s.WithTx(context.Background(), func(tx store.Tx) error {
		return tx.CreateEntity(context.Background(), &common.Entity{
			ID:        id,
			Kind:      kind,
			Name:      name,
			Attrs:     attrs,
			CreatedAt: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		})
	})
	if err != nil {
		t.Fatalf("seeding %s %q: %v", kind, name, err)
	}
}

func TestEntityLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	seedEntity(t, s, "e1", schema.KindStartup, "Banca Futura", map[string]any{"stage": "seed"})

	err := s.WithTx(ctx, func(tx store.Tx) error {
		got, err := tx.GetEntity(ctx, schema.KindStartup, "Banca Futura")
		if err != nil {
			return err
		}
		if got.ID != "e1" || got.Attrs["stage"] != "seed" {
			t.Fatalf("got %+v, want id e1 with stage seed", got)
		}

		if _, err := tx.GetEntity(ctx, schema.KindStartup, "Nope"); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("got %v, want ErrNotFound", err)
		}

		err = tx.CreateEntity(ctx, &common.Entity{ID: "e2", Kind: schema.KindStartup, Name: "Banca Futura"})
		if !errors.Is(err, store.ErrConstraintViolation) {
			t.Fatalf("got %v, want ErrConstraintViolation", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx returned error: %v", err)
	}

	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	err = s.WithTx(ctx, func(tx store.Tx) error {
		return tx.UpdateEntity(ctx, schema.KindStartup, "e1", map[string]any{"stage": "series_a", "sector": "fintech"}, now)
	})
	if err != nil {
		t.Fatalf("WithTx returned error: %v", err)
	}

	err = s.WithTx(ctx, func(tx store.Tx) error {
		got, err := tx.GetEntity(ctx, schema.KindStartup, "Banca Futura")
		if err != nil {
			return err
		}
		if got.Attrs["stage"] != "series_a" || got.Attrs["sector"] != "fintech" {
			t.Fatalf("merge lost attributes: %+v", got.Attrs)
		}
		if !got.UpdatedAt.Equal(now) {
			t.Fatalf("got UpdatedAt %v, want %v", got.UpdatedAt, now)
		}
		if got.UpdatedAt.Equal(got.CreatedAt) {
			t.Fatalf("UpdatedAt must move past CreatedAt on merge")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx returned error: %v", err)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	seedEntity(t, s, "e1", schema.KindStartup, "Banca Futura", map[string]any{"stage": "seed"})

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.CreateEntity(ctx, &common.Entity{ID: "e2", Kind: schema.KindPerson, Name: "Giulia Bianchi"}); err != nil {
			return err
		}
		if err := tx.UpdateEntity(ctx, schema.KindStartup, "e1", map[string]any{"stage": "growth"}, time.Now()); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom", err)
	}

	err = s.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.GetEntity(ctx, schema.KindPerson, "Giulia Bianchi"); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("rolled-back create is still visible: %v", err)
		}
		got, err := tx.GetEntity(ctx, schema.KindStartup, "Banca Futura")
		if err != nil {
			return err
		}
		if got.Attrs["stage"] != "seed" {
			t.Fatalf("rolled-back update is still visible: %+v", got.Attrs)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx returned error: %v", err)
	}
}

func TestRelationshipIdentity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	seedEntity(t, s, "p1", schema.KindPerson, "Giulia Bianchi", nil)
	seedEntity(t, s, "s1", schema.KindStartup, "Banca Futura", nil)

	mk := func(id, disambiguator string) *common.Relationship {
		return &common.Relationship{
			ID:            id,
			Kind:          schema.RelAngelInvestsIn,
			SourceID:      "p1",
			TargetID:      "s1",
			Disambiguator: disambiguator,
			Attrs:         map[string]any{"amount": 50000.0},
		}
	}

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.CreateRelationship(ctx, mk("r1", "2024-01-01")); err != nil {
			return err
		}
		if err := tx.CreateRelationship(ctx, mk("r2", "2025-01-01")); err != nil {
			return err
		}
		err := tx.CreateRelationship(ctx, mk("r3", "2024-01-01"))
		if !errors.Is(err, store.ErrConstraintViolation) {
			t.Fatalf("got %v, want ErrConstraintViolation", err)
		}

		got, err := tx.GetRelationship(ctx, schema.RelAngelInvestsIn, "p1", "s1", "2024-01-01")
		if err != nil {
			return err
		}
		if got.ID != "r1" {
			t.Fatalf("got %q, want r1", got.ID)
		}
		if _, err := tx.GetRelationship(ctx, schema.RelAngelInvestsIn, "p1", "s1", "2023-01-01"); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("got %v, want ErrNotFound", err)
		}

		rels, err := tx.RelationshipsByTarget(ctx, schema.RelAngelInvestsIn, "s1")
		if err != nil {
			return err
		}
		if len(rels) != 2 {
			t.Fatalf("got %d relationships, want 2", len(rels))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx returned error: %v", err)
	}
}

func TestListSearchAndStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	seedEntity(t, s, "s1", schema.KindStartup, "Aria Health", nil)
	seedEntity(t, s, "s2", schema.KindStartup, "Banca Futura", nil)
	seedEntity(t, s, "s3", schema.KindStartup, "Futura Robotics", nil)
	seedEntity(t, s, "f1", schema.KindVCFirm, "Futura Capital", nil)

	err := s.WithTx(ctx, func(tx store.Tx) error {
		page, err := tx.ListEntities(ctx, schema.KindStartup, 2, 1)
		if err != nil {
			return err
		}
		if len(page) != 2 || page[0].Name != "Banca Futura" || page[1].Name != "Futura Robotics" {
			t.Fatalf("got page %+v", page)
		}

		hits, err := tx.SearchEntities(ctx, "futura", 10)
		if err != nil {
			return err
		}
		if len(hits) != 3 {
			t.Fatalf("got %d hits, want 3", len(hits))
		}
		if hits[0].Kind != schema.KindStartup || hits[2].Kind != schema.KindVCFirm {
			t.Fatalf("hits are not ordered by kind then name: %+v", hits)
		}

		counts, err := tx.CountEntities(ctx)
		if err != nil {
			return err
		}
		if counts[schema.KindStartup] != 3 || counts[schema.KindVCFirm] != 1 {
			t.Fatalf("got counts %v", counts)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx returned error: %v", err)
	}
}

func TestGraphData(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	seedEntity(t, s, "p1", schema.KindPerson, "Giulia Bianchi", nil)
	seedEntity(t, s, "s1", schema.KindStartup, "Banca Futura", nil)

	err := s.WithTx(ctx, func(tx store.Tx) error {
		return tx.CreateRelationship(ctx, &common.Relationship{
			ID:       "r1",
			Kind:     schema.RelFounded,
			SourceID: "p1",
			TargetID: "s1",
		})
	})
	if err != nil {
		t.Fatalf("WithTx returned error: %v", err)
	}

	err = s.WithTx(ctx, func(tx store.Tx) error {
		data, err := tx.GraphData(ctx, 10)
		if err != nil {
			return err
		}
		if len(data.Nodes) != 2 {
			t.Fatalf("got %d nodes, want 2", len(data.Nodes))
		}
		if len(data.Links) != 1 || data.Links[0].Kind != schema.RelFounded {
			t.Fatalf("got links %+v", data.Links)
		}

		// A limit of one node cannot include the edge.
		data, err = tx.GraphData(ctx, 1)
		if err != nil {
			return err
		}
		if len(data.Nodes) != 1 || len(data.Links) != 0 {
			t.Fatalf("got %d nodes and %d links, want 1 and 0", len(data.Nodes), len(data.Links))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx returned error: %v", err)
	}
}
