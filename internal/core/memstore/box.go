// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package memstore

import (
	"cmp"
	"context"
	"slices"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/box"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/source"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/apperr"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/dberr"
)

// # Boxes

func (store *Store) ListBoxes(ctx context.Context, parent node.Ref) ([]*box.Box, error) {
	return list(store, ctx, func(s *state) map[int64]box.Box { return s.boxes },
		func(b *box.Box) bool { return b.Parent() == parent },
		byBid,
	)
}

func (store *Store) GetBox(ctx context.Context, id int64) (*box.Box, error) {
	return get(store, ctx, func(s *state) map[int64]box.Box { return s.boxes }, id)
}

func (store *Store) FindBoxByBid(ctx context.Context, bid string) (*box.Box, error) {
	return find(store, ctx, func(s *state) map[int64]box.Box { return s.boxes },
		func(b *box.Box) bool { return b.Bid == bid },
	)
}

// CreateBox does not check that the parent row exists: the polymorphic pair
// carries no foreign key, exactly like the relational schema.
func (store *Store) CreateBox(ctx context.Context, created *box.Box) error {
	return store.do(ctx, func(s *state) error {
		if err := s.boxValid(created); err != nil {
			return err
		}
		created.ID = s.nextID("box")
		created.CreatedAt, created.UpdatedAt = store.now(), store.now()
		s.boxes[created.ID] = *created
		return nil
	})
}

func (store *Store) UpdateBox(ctx context.Context, updated *box.Box) error {
	return store.do(ctx, func(s *state) error {
		current, ok := s.boxes[updated.ID]
		if !ok {
			return dberr.ErrNotFound
		}
		if err := s.boxValid(updated); err != nil {
			return err
		}
		updated.CreatedAt, updated.UpdatedAt = current.CreatedAt, store.now()
		s.boxes[updated.ID] = *updated
		return nil
	})
}

func (store *Store) DeleteBox(ctx context.Context, id int64) error {
	return store.do(ctx, func(s *state) error {
		if _, ok := s.boxes[id]; !ok {
			return dberr.ErrNotFound
		}
		delete(s.boxes, id)
		s.dropLinks(string(source.TargetBox), id)
		return nil
	})
}

func (store *Store) LockBox(ctx context.Context, id int64) error {
	return store.do(ctx, func(s *state) error {
		if _, ok := s.boxes[id]; !ok {
			return dberr.ErrNotFound
		}
		return nil
	})
}

func (store *Store) ListDanglingBoxes(ctx context.Context) ([]*box.Box, error) {
	var dangling []*box.Box
	err := store.do(ctx, func(s *state) error {
		for _, row := range s.boxes {
			if !row.ParentType.Valid() || !s.exists(row.Parent()) {
				dangling = append(dangling, &row)
			}
		}
		return nil
	})
	slices.SortFunc(dangling, byBid)
	return dangling, err
}

// boxValid mirrors box_parenttype_check and the unique index on bid.
func (s *state) boxValid(candidate *box.Box) error {
	if !candidate.ParentType.Valid() {
		return apperr.InvalidParentState("Operation violates a record constraint (box_parenttype_check)")
	}
	for _, other := range s.boxes {
		if other.ID != candidate.ID && other.Bid == candidate.Bid {
			return apperr.UniquenessViolation(box.FieldBid, candidate.Bid)
		}
	}
	return nil
}

func byBid(a, b *box.Box) int {
	return cmp.Or(cmp.Compare(a.Bid, b.Bid), cmp.Compare(a.ID, b.ID))
}

