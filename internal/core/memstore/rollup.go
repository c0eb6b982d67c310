// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package memstore

import (
	"cmp"
	"context"
	"slices"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/rollup"
)

// # Rollup reader

func (store *Store) Countries(ctx context.Context, caliberCode string) ([]rollup.Edge, error) {
	var edges []rollup.Edge
	err := store.do(ctx, func(s *state) error {
		for id, country := range s.countries {
			if country.CaliberCode == caliberCode {
				edges = append(edges, rollup.Edge{ID: id, HasImage: country.HasImage()})
			}
		}
		return nil
	})
	slices.SortFunc(edges, byEdgeID)
	return edges, err
}

func (store *Store) Children(ctx context.Context, rel node.Relation, parentIDs []int64) ([]rollup.Edge, error) {
	var edges []rollup.Edge
	err := store.do(ctx, func(s *state) error {
		for id, parentID := range s.children(rel) {
			if !slices.Contains(parentIDs, parentID) {
				continue
			}
			child, _ := s.lookup(node.NewRef(rel.Child, id))
			edges = append(edges, rollup.Edge{ID: id, ParentID: parentID, HasImage: child.HasImage()})
		}
		return nil
	})
	slices.SortFunc(edges, byEdgeID)
	return edges, err
}

func (store *Store) BoxCounts(ctx context.Context, parents map[node.Kind][]int64) ([]rollup.BoxCount, error) {
	grouped := make(map[node.Ref]*rollup.BoxCount)
	err := store.do(ctx, func(s *state) error {
		for _, row := range s.boxes {
			if !slices.Contains(parents[row.ParentType], row.ParentID) {
				continue
			}
			count, ok := grouped[row.Parent()]
			if !ok {
				count = &rollup.BoxCount{Parent: row.Parent()}
				grouped[row.Parent()] = count
			}
			count.Count++
			if row.HasImage() {
				count.WithImage++
			}
		}
		return nil
	})

	counts := make([]rollup.BoxCount, 0, len(grouped))
	for _, count := range grouped {
		counts = append(counts, *count)
	}
	slices.SortFunc(counts, func(a, b rollup.BoxCount) int {
		return cmp.Or(cmp.Compare(a.Parent.Kind.Rank(), b.Parent.Kind.Rank()), cmp.Compare(a.Parent.ID, b.Parent.ID))
	})
	return counts, err
}

func byEdgeID(a, b rollup.Edge) int {
	return cmp.Compare(a.ID, b.ID)
}
