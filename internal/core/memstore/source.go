// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package memstore

import (
	"cmp"
	"context"
	"slices"
	"strconv"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/source"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/apperr"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/dberr"
)

// # Sources

func (store *Store) ListSources(ctx context.Context) ([]*source.Source, error) {
	return list(store, ctx, func(s *state) map[int64]source.Source { return s.sources },
		func(*source.Source) bool { return true },
		func(a, b *source.Source) int { return cmp.Compare(a.Name, b.Name) },
	)
}

func (store *Store) GetSource(ctx context.Context, id int64) (*source.Source, error) {
	return get(store, ctx, func(s *state) map[int64]source.Source { return s.sources }, id)
}

func (store *Store) FindSourceBySlug(ctx context.Context, slug string) (*source.Source, error) {
	return find(store, ctx, func(s *state) map[int64]source.Source { return s.sources },
		func(src *source.Source) bool { return src.Slug == slug },
	)
}

func (store *Store) CreateSource(ctx context.Context, created *source.Source) error {
	return store.do(ctx, func(s *state) error {
		if err := s.sourceUnique(created); err != nil {
			return err
		}
		created.ID = s.nextID("source")
		created.CreatedAt, created.UpdatedAt = store.now(), store.now()
		s.sources[created.ID] = *created
		return nil
	})
}

func (store *Store) UpdateSource(ctx context.Context, updated *source.Source) error {
	return store.do(ctx, func(s *state) error {
		current, ok := s.sources[updated.ID]
		if !ok {
			return dberr.ErrNotFound
		}
		if err := s.sourceUnique(updated); err != nil {
			return err
		}
		updated.CreatedAt, updated.UpdatedAt = current.CreatedAt, store.now()
		s.sources[updated.ID] = *updated
		return nil
	})
}

// DeleteSource refuses while links remain (ON DELETE RESTRICT).
func (store *Store) DeleteSource(ctx context.Context, id int64) error {
	return store.do(ctx, func(s *state) error {
		if _, ok := s.sources[id]; !ok {
			return dberr.ErrNotFound
		}
		for key := range s.links {
			if key.sourceID == id {
				return foreignKey(string(key.kind)+"_source", "source")
			}
		}
		delete(s.sources, id)
		return nil
	})
}

func (s *state) sourceUnique(candidate *source.Source) error {
	for _, other := range s.sources {
		if other.ID == candidate.ID {
			continue
		}
		if other.Name == candidate.Name {
			return apperr.UniquenessViolation(source.FieldName, candidate.Name)
		}
		if other.Slug == candidate.Slug {
			return apperr.UniquenessViolation(source.FieldSlug, candidate.Slug)
		}
	}
	return nil
}

// # Links

func (store *Store) CountLinks(ctx context.Context, sourceID int64) ([]catalog.Dependent, error) {
	var counts []catalog.Dependent
	err := store.do(ctx, func(s *state) error {
		for _, kind := range source.TargetKinds {
			count := 0
			for key := range s.links {
				if key.kind == kind && key.sourceID == sourceID {
					count++
				}
			}
			counts = append(counts, catalog.Dependent{Relation: string(kind), Count: count})
		}
		return nil
	})
	return counts, err
}

func (store *Store) GetLink(ctx context.Context, target source.Target, sourceID int64) (*source.Link, error) {
	var found *source.Link
	err := store.do(ctx, func(s *state) error {
		link, ok := s.links[linkKey{kind: target.Kind, entityID: target.ID, sourceID: sourceID}]
		if !ok {
			return dberr.ErrNotFound
		}
		found = &link
		return nil
	})
	return found, err
}

func (store *Store) CreateLink(ctx context.Context, link *source.Link) error {
	return store.do(ctx, func(s *state) error {
		if _, ok := s.sources[link.SourceID]; !ok {
			return foreignKey(string(link.Target.Kind)+"_source", "source")
		}
		if !s.targetExists(link.Target) {
			return foreignKey(string(link.Target.Kind)+"_source", string(link.Target.Kind))
		}

		key := linkKey{kind: link.Target.Kind, entityID: link.Target.ID, sourceID: link.SourceID}
		if _, ok := s.links[key]; ok {
			return apperr.UniquenessViolation("source_id", strconv.FormatInt(link.SourceID, 10))
		}
		s.links[key] = *link
		return nil
	})
}

func (store *Store) DeleteLink(ctx context.Context, target source.Target, sourceID int64) error {
	return store.do(ctx, func(s *state) error {
		key := linkKey{kind: target.Kind, entityID: target.ID, sourceID: sourceID}
		if _, ok := s.links[key]; !ok {
			return dberr.ErrNotFound
		}
		delete(s.links, key)
		return nil
	})
}

func (store *Store) ListLinks(ctx context.Context, target source.Target) ([]*source.LinkedSource, error) {
	var linked []*source.LinkedSource
	err := store.do(ctx, func(s *state) error {
		for key, link := range s.links {
			if key.kind != target.Kind || key.entityID != target.ID {
				continue
			}
			src := s.sources[key.sourceID]
			linked = append(linked, &source.LinkedSource{Source: &src, DateSourced: link.DateSourced, Note: link.Note})
		}
		return nil
	})
	slices.SortFunc(linked, func(a, b *source.LinkedSource) int {
		return cmp.Or(cmp.Compare(a.Source.Name, b.Source.Name), cmp.Compare(a.Source.ID, b.Source.ID))
	})
	return linked, err
}

func (s *state) targetExists(target source.Target) bool {
	if target.Kind == source.TargetBox {
		_, ok := s.boxes[target.ID]
		return ok
	}
	return s.exists(node.NewRef(node.Kind(target.Kind), target.ID))
}

// dropLinks cascades the deletion of a linked record to its links.
func (s *state) dropLinks(kind string, entityID int64) {
	for key := range s.links {
		if string(key.kind) == kind && key.entityID == entityID {
			delete(s.links, key)
		}
	}
}
