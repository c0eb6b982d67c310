// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package memstore

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/apperr"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/dberr"
)

// # Calibers

func (store *Store) ListCalibers(ctx context.Context) ([]*catalog.Caliber, error) {
	var calibers []*catalog.Caliber
	err := store.do(ctx, func(s *state) error {
		for _, caliber := range s.calibers {
			calibers = append(calibers, &caliber)
		}
		return nil
	})
	slices.SortFunc(calibers, func(a, b *catalog.Caliber) int {
		return cmp.Or(cmp.Compare(a.SortOrder, b.SortOrder), cmp.Compare(a.Code, b.Code))
	})
	return calibers, err
}

func (store *Store) GetCaliber(ctx context.Context, code string) (*catalog.Caliber, error) {
	var found *catalog.Caliber
	err := store.do(ctx, func(s *state) error {
		caliber, ok := s.calibers[code]
		if !ok {
			return dberr.ErrNotFound
		}
		found = &caliber
		return nil
	})
	return found, err
}

// # Countries

func (store *Store) ListCountries(ctx context.Context, caliberCode string) ([]*catalog.Country, error) {
	return list(store, ctx, func(s *state) map[int64]catalog.Country { return s.countries },
		func(c *catalog.Country) bool { return c.CaliberCode == caliberCode },
		func(a, b *catalog.Country) int { return cmp.Compare(a.Name, b.Name) },
	)
}

func (store *Store) GetCountry(ctx context.Context, id int64) (*catalog.Country, error) {
	return get(store, ctx, func(s *state) map[int64]catalog.Country { return s.countries }, id)
}

func (store *Store) FindCountryByName(ctx context.Context, caliberCode, name string) (*catalog.Country, error) {
	return find(store, ctx, func(s *state) map[int64]catalog.Country { return s.countries },
		func(c *catalog.Country) bool { return c.CaliberCode == caliberCode && c.Name == name },
	)
}

func (store *Store) CreateCountry(ctx context.Context, country *catalog.Country) error {
	return store.do(ctx, func(s *state) error {
		if _, ok := s.calibers[country.CaliberCode]; !ok {
			return foreignKey("country", "caliber")
		}
		if err := s.countryUnique(country); err != nil {
			return err
		}
		country.ID = s.nextID("country")
		country.CreatedAt, country.UpdatedAt = store.now(), store.now()
		s.countries[country.ID] = *country
		return nil
	})
}

func (store *Store) UpdateCountry(ctx context.Context, country *catalog.Country) error {
	return store.do(ctx, func(s *state) error {
		current, ok := s.countries[country.ID]
		if !ok {
			return dberr.ErrNotFound
		}
		if err := s.countryUnique(country); err != nil {
			return err
		}
		country.CaliberCode, country.CreatedAt, country.UpdatedAt = current.CaliberCode, current.CreatedAt, store.now()
		s.countries[country.ID] = *country
		return nil
	})
}

func (s *state) countryUnique(country *catalog.Country) error {
	for _, other := range s.countries {
		if other.ID != country.ID && other.CaliberCode == country.CaliberCode && other.Name == country.Name {
			return apperr.UniquenessViolation(catalog.FieldName, country.Name)
		}
	}
	return nil
}

// # Manufacturers

func (store *Store) ListManufacturers(ctx context.Context, countryID int64) ([]*catalog.Manufacturer, error) {
	return list(store, ctx, func(s *state) map[int64]catalog.Manufacturer { return s.manufacturers },
		func(m *catalog.Manufacturer) bool { return m.CountryID == countryID },
		func(a, b *catalog.Manufacturer) int { return cmp.Compare(a.Code, b.Code) },
	)
}

func (store *Store) GetManufacturer(ctx context.Context, id int64) (*catalog.Manufacturer, error) {
	return get(store, ctx, func(s *state) map[int64]catalog.Manufacturer { return s.manufacturers }, id)
}

func (store *Store) FindManufacturerByCode(ctx context.Context, countryID int64, code string) (*catalog.Manufacturer, error) {
	return find(store, ctx, func(s *state) map[int64]catalog.Manufacturer { return s.manufacturers },
		func(m *catalog.Manufacturer) bool { return m.CountryID == countryID && m.Code == code },
	)
}

func (store *Store) CreateManufacturer(ctx context.Context, manufacturer *catalog.Manufacturer) error {
	return store.do(ctx, func(s *state) error {
		if err := s.manufacturerValid(manufacturer); err != nil {
			return err
		}
		manufacturer.ID = s.nextID("manufacturer")
		manufacturer.CreatedAt, manufacturer.UpdatedAt = store.now(), store.now()
		s.manufacturers[manufacturer.ID] = *manufacturer
		return nil
	})
}

func (store *Store) UpdateManufacturer(ctx context.Context, manufacturer *catalog.Manufacturer) error {
	return store.do(ctx, func(s *state) error {
		current, ok := s.manufacturers[manufacturer.ID]
		if !ok {
			return dberr.ErrNotFound
		}
		if err := s.manufacturerValid(manufacturer); err != nil {
			return err
		}
		manufacturer.CreatedAt, manufacturer.UpdatedAt = current.CreatedAt, store.now()
		s.manufacturers[manufacturer.ID] = *manufacturer
		return nil
	})
}

func (s *state) manufacturerValid(manufacturer *catalog.Manufacturer) error {
	if _, ok := s.countries[manufacturer.CountryID]; !ok {
		return foreignKey("manufacturer", "country")
	}
	for _, other := range s.manufacturers {
		if other.ID != manufacturer.ID && other.CountryID == manufacturer.CountryID && other.Code == manufacturer.Code {
			return apperr.UniquenessViolation(catalog.FieldCode, manufacturer.Code)
		}
	}
	return nil
}

// # Headstamps

func (store *Store) ListHeadstamps(ctx context.Context, manufacturerID int64) ([]*catalog.Headstamp, error) {
	return list(store, ctx, func(s *state) map[int64]catalog.Headstamp { return s.headstamps },
		func(h *catalog.Headstamp) bool { return h.ManufacturerID == manufacturerID },
		func(a, b *catalog.Headstamp) int { return cmp.Compare(a.Code, b.Code) },
	)
}

func (store *Store) GetHeadstamp(ctx context.Context, id int64) (*catalog.Headstamp, error) {
	return get(store, ctx, func(s *state) map[int64]catalog.Headstamp { return s.headstamps }, id)
}

func (store *Store) FindHeadstampByCode(ctx context.Context, manufacturerID int64, code string) (*catalog.Headstamp, error) {
	return find(store, ctx, func(s *state) map[int64]catalog.Headstamp { return s.headstamps },
		func(h *catalog.Headstamp) bool { return h.ManufacturerID == manufacturerID && h.Code == code },
	)
}

func (store *Store) CreateHeadstamp(ctx context.Context, headstamp *catalog.Headstamp) error {
	return store.do(ctx, func(s *state) error {
		if err := s.headstampValid(headstamp); err != nil {
			return err
		}
		headstamp.ID = s.nextID("headstamp")
		headstamp.CreatedAt, headstamp.UpdatedAt = store.now(), store.now()
		s.headstamps[headstamp.ID] = *headstamp
		return nil
	})
}

func (store *Store) UpdateHeadstamp(ctx context.Context, headstamp *catalog.Headstamp) error {
	return store.do(ctx, func(s *state) error {
		current, ok := s.headstamps[headstamp.ID]
		if !ok {
			return dberr.ErrNotFound
		}
		if err := s.headstampValid(headstamp); err != nil {
			return err
		}
		headstamp.CreatedAt, headstamp.UpdatedAt = current.CreatedAt, store.now()
		s.headstamps[headstamp.ID] = *headstamp
		return nil
	})
}

func (s *state) headstampValid(headstamp *catalog.Headstamp) error {
	if _, ok := s.manufacturers[headstamp.ManufacturerID]; !ok {
		return foreignKey("headstamp", "manufacturer")
	}
	if id := headstamp.PrimaryManufacturerID; id != nil {
		if _, ok := s.manufacturers[*id]; !ok {
			return foreignKey("headstamp", "primary manufacturer")
		}
	}
	for _, other := range s.headstamps {
		if other.ID != headstamp.ID && other.ManufacturerID == headstamp.ManufacturerID && other.Code == headstamp.Code {
			return apperr.UniquenessViolation(catalog.FieldCode, headstamp.Code)
		}
	}
	return nil
}

// # Loads

func (store *Store) ListLoads(ctx context.Context, headstampID int64) ([]*catalog.Load, error) {
	return list(store, ctx, func(s *state) map[int64]catalog.Load { return s.loads },
		func(l *catalog.Load) bool { return l.HeadstampID == headstampID },
		func(a, b *catalog.Load) int { return cmp.Compare(a.CartID, b.CartID) },
	)
}

func (store *Store) GetLoad(ctx context.Context, id int64) (*catalog.Load, error) {
	return get(store, ctx, func(s *state) map[int64]catalog.Load { return s.loads }, id)
}

func (store *Store) FindLoadByCartID(ctx context.Context, cartID string) (*catalog.Load, error) {
	return find(store, ctx, func(s *state) map[int64]catalog.Load { return s.loads },
		func(l *catalog.Load) bool { return l.CartID == cartID },
	)
}

func (store *Store) CreateLoad(ctx context.Context, load *catalog.Load) error {
	return store.do(ctx, func(s *state) error {
		if err := s.loadValid(load); err != nil {
			return err
		}
		load.ID = s.nextID("load")
		load.CreatedAt, load.UpdatedAt = store.now(), store.now()
		s.loads[load.ID] = *load
		return nil
	})
}

func (store *Store) UpdateLoad(ctx context.Context, load *catalog.Load) error {
	return store.do(ctx, func(s *state) error {
		current, ok := s.loads[load.ID]
		if !ok {
			return dberr.ErrNotFound
		}
		if err := s.loadValid(load); err != nil {
			return err
		}
		load.CreatedAt, load.UpdatedAt = current.CreatedAt, store.now()
		s.loads[load.ID] = *load
		return nil
	})
}

func (s *state) loadValid(load *catalog.Load) error {
	if _, ok := s.headstamps[load.HeadstampID]; !ok {
		return foreignKey("load", "headstamp")
	}
	for _, other := range s.loads {
		if other.ID != load.ID && other.CartID == load.CartID {
			return apperr.UniquenessViolation(catalog.FieldCartID, load.CartID)
		}
	}
	return nil
}

// # Dates

func (store *Store) ListDates(ctx context.Context, loadID int64) ([]*catalog.Date, error) {
	return list(store, ctx, func(s *state) map[int64]catalog.Date { return s.dates },
		func(d *catalog.Date) bool { return d.LoadID == loadID },
		func(a, b *catalog.Date) int { return cmp.Compare(a.CartID, b.CartID) },
	)
}

func (store *Store) GetDate(ctx context.Context, id int64) (*catalog.Date, error) {
	return get(store, ctx, func(s *state) map[int64]catalog.Date { return s.dates }, id)
}

func (store *Store) FindDateByCartID(ctx context.Context, cartID string) (*catalog.Date, error) {
	return find(store, ctx, func(s *state) map[int64]catalog.Date { return s.dates },
		func(d *catalog.Date) bool { return d.CartID == cartID },
	)
}

func (store *Store) CreateDate(ctx context.Context, date *catalog.Date) error {
	return store.do(ctx, func(s *state) error {
		if err := s.dateValid(date); err != nil {
			return err
		}
		date.ID = s.nextID("date")
		date.CreatedAt, date.UpdatedAt = store.now(), store.now()
		s.dates[date.ID] = *date
		return nil
	})
}

func (store *Store) UpdateDate(ctx context.Context, date *catalog.Date) error {
	return store.do(ctx, func(s *state) error {
		current, ok := s.dates[date.ID]
		if !ok {
			return dberr.ErrNotFound
		}
		if err := s.dateValid(date); err != nil {
			return err
		}
		date.CreatedAt, date.UpdatedAt = current.CreatedAt, store.now()
		s.dates[date.ID] = *date
		return nil
	})
}

func (s *state) dateValid(date *catalog.Date) error {
	if _, ok := s.loads[date.LoadID]; !ok {
		return foreignKey("date", "load")
	}
	for _, other := range s.dates {
		if other.ID != date.ID && other.CartID == date.CartID {
			return apperr.UniquenessViolation(catalog.FieldCartID, date.CartID)
		}
	}
	return nil
}

// # Variations

func (store *Store) ListVariations(ctx context.Context, parent node.Ref) ([]*catalog.Variation, error) {
	return list(store, ctx, func(s *state) map[int64]catalog.Variation { return s.variations },
		func(v *catalog.Variation) bool {
			anchor, ok := v.ParentRef()
			return ok && anchor == parent
		},
		func(a, b *catalog.Variation) int { return cmp.Compare(a.CartID, b.CartID) },
	)
}

func (store *Store) GetVariation(ctx context.Context, id int64) (*catalog.Variation, error) {
	return get(store, ctx, func(s *state) map[int64]catalog.Variation { return s.variations }, id)
}

func (store *Store) FindVariationByCartID(ctx context.Context, cartID string, anchor node.Kind) (*catalog.Variation, error) {
	return find(store, ctx, func(s *state) map[int64]catalog.Variation { return s.variations },
		func(v *catalog.Variation) bool { return v.CartID == cartID && anchorKind(v) == anchor },
	)
}

func (store *Store) CreateVariation(ctx context.Context, variation *catalog.Variation) error {
	return store.do(ctx, func(s *state) error {
		if err := s.variationValid(variation); err != nil {
			return err
		}
		variation.ID = s.nextID("variation")
		variation.CreatedAt, variation.UpdatedAt = store.now(), store.now()
		s.variations[variation.ID] = *variation
		return nil
	})
}

func (store *Store) UpdateVariation(ctx context.Context, variation *catalog.Variation) error {
	return store.do(ctx, func(s *state) error {
		current, ok := s.variations[variation.ID]
		if !ok {
			return dberr.ErrNotFound
		}
		if err := s.variationValid(variation); err != nil {
			return err
		}
		variation.CreatedAt, variation.UpdatedAt = current.CreatedAt, store.now()
		s.variations[variation.ID] = *variation
		return nil
	})
}

// variationValid mirrors variation_parent_xor, the parent foreign keys and
// the two partial unique indexes on cartid.
func (s *state) variationValid(variation *catalog.Variation) error {
	anchor, ok := variation.ParentRef()
	if !ok {
		return apperr.InvalidParentState("Operation violates a record constraint (variation_parent_xor)")
	}
	if !s.exists(anchor) {
		return foreignKey("variation", string(anchor.Kind))
	}
	for _, other := range s.variations {
		if other.ID != variation.ID && other.CartID == variation.CartID && anchorKind(&other) == anchor.Kind {
			return apperr.UniquenessViolation(catalog.FieldCartID, variation.CartID)
		}
	}
	return nil
}

// anchorKind returns the namespace a variation's cart id lives in.
func anchorKind(variation *catalog.Variation) node.Kind {
	if anchor, ok := variation.ParentRef(); ok {
		return anchor.Kind
	}
	return ""
}

// # Generic node operations

func (store *Store) GetNode(ctx context.Context, ref node.Ref) (catalog.Node, error) {
	var found catalog.Node
	err := store.do(ctx, func(s *state) error {
		loaded, ok := s.lookup(ref)
		if !ok {
			return dberr.ErrNotFound
		}
		found = loaded
		return nil
	})
	return found, err
}

// LockNode only checks existence; the store mutex already serializes writers.
func (store *Store) LockNode(ctx context.Context, ref node.Ref, exclusive bool) error {
	return store.do(ctx, func(s *state) error {
		if !s.exists(ref) {
			return dberr.ErrNotFound
		}
		return nil
	})
}

func (store *Store) CountDependents(ctx context.Context, ref node.Ref) ([]catalog.Dependent, error) {
	var dependents []catalog.Dependent
	err := store.do(ctx, func(s *state) error {
		for _, rel := range node.Relations {
			if rel.Parent == ref.Kind {
				dependents = append(dependents, catalog.Dependent{Relation: string(rel.Child), Count: s.countChildren(rel, ref.ID)})
			}
		}
		dependents = append(dependents, catalog.Dependent{Relation: catalog.RelationBox, Count: s.countBoxes(ref)})
		return nil
	})
	return dependents, err
}

// DeleteNode enforces ON DELETE RESTRICT for children, SET NULL for primary
// manufacturer references and CASCADE for source links.
func (store *Store) DeleteNode(ctx context.Context, ref node.Ref) error {
	return store.do(ctx, func(s *state) error {
		if !s.exists(ref) {
			return dberr.ErrNotFound
		}
		for _, rel := range node.Relations {
			if rel.Parent == ref.Kind && s.countChildren(rel, ref.ID) > 0 {
				return foreignKey(string(rel.Child), string(ref.Kind))
			}
		}

		switch ref.Kind {
		case node.KindCountry:
			delete(s.countries, ref.ID)
		case node.KindManufacturer:
			delete(s.manufacturers, ref.ID)
			for id, headstamp := range s.headstamps {
				if headstamp.PrimaryManufacturerID != nil && *headstamp.PrimaryManufacturerID == ref.ID {
					headstamp.PrimaryManufacturerID = nil
					s.headstamps[id] = headstamp
				}
			}
		case node.KindHeadstamp:
			delete(s.headstamps, ref.ID)
		case node.KindLoad:
			delete(s.loads, ref.ID)
		case node.KindDate:
			delete(s.dates, ref.ID)
		case node.KindVariation:
			delete(s.variations, ref.ID)
		}

		s.dropLinks(string(ref.Kind), ref.ID)
		return nil
	})
}

// # State helpers

func (s *state) lookup(ref node.Ref) (catalog.Node, bool) {
	switch ref.Kind {
	case node.KindCountry:
		row, ok := s.countries[ref.ID]
		return &row, ok
	case node.KindManufacturer:
		row, ok := s.manufacturers[ref.ID]
		return &row, ok
	case node.KindHeadstamp:
		row, ok := s.headstamps[ref.ID]
		return &row, ok
	case node.KindLoad:
		row, ok := s.loads[ref.ID]
		return &row, ok
	case node.KindDate:
		row, ok := s.dates[ref.ID]
		return &row, ok
	case node.KindVariation:
		row, ok := s.variations[ref.ID]
		return &row, ok
	}
	return nil, false
}

func (s *state) exists(ref node.Ref) bool {
	_, ok := s.lookup(ref)
	return ok
}

// children maps each child row of rel to its parent id.
func (s *state) children(rel node.Relation) map[int64]int64 {
	edges := make(map[int64]int64)
	switch rel.Child {
	case node.KindManufacturer:
		for id, row := range s.manufacturers {
			edges[id] = row.CountryID
		}
	case node.KindHeadstamp:
		for id, row := range s.headstamps {
			edges[id] = row.ManufacturerID
		}
	case node.KindLoad:
		for id, row := range s.loads {
			edges[id] = row.HeadstampID
		}
	case node.KindDate:
		for id, row := range s.dates {
			edges[id] = row.LoadID
		}
	case node.KindVariation:
		for id, row := range s.variations {
			if anchor, ok := row.ParentRef(); ok && anchor.Kind == rel.Parent {
				edges[id] = anchor.ID
			}
		}
	}
	return edges
}

func (s *state) countChildren(rel node.Relation, parentID int64) int {
	count := 0
	for _, parent := range s.children(rel) {
		if parent == parentID {
			count++
		}
	}
	return count
}

func (s *state) countBoxes(ref node.Ref) int {
	count := 0
	for _, row := range s.boxes {
		if row.Parent() == ref {
			count++
		}
	}
	return count
}

// foreignKey is the error a violated parent reference produces in PostgreSQL.
func foreignKey(child, parent string) error {
	return apperr.Conflict(fmt.Sprintf("Operation violates a parent/child reference (%s -> %s)", child, parent))
}

// # Generic table access

func get[T any](store *Store, ctx context.Context, table func(*state) map[int64]T, id int64) (*T, error) {
	var found *T
	err := store.do(ctx, func(s *state) error {
		row, ok := table(s)[id]
		if !ok {
			return dberr.ErrNotFound
		}
		found = &row
		return nil
	})
	return found, err
}

func find[T any](store *Store, ctx context.Context, table func(*state) map[int64]T, match func(*T) bool) (*T, error) {
	var found *T
	err := store.do(ctx, func(s *state) error {
		for _, row := range table(s) {
			if match(&row) {
				found = &row
				return nil
			}
		}
		return dberr.ErrNotFound
	})
	return found, err
}

func list[T any](store *Store, ctx context.Context, table func(*state) map[int64]T, match func(*T) bool, order func(a, b *T) int) ([]*T, error) {
	var rows []*T
	err := store.do(ctx, func(s *state) error {
		for _, row := range table(s) {
			if match(&row) {
				rows = append(rows, &row)
			}
		}
		return nil
	})
	slices.SortFunc(rows, order)
	return rows, err
}
