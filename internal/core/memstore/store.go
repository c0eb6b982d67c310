// Copyright (c) 2026 Cartridge Collection. All rights reserved.

/*
Package memstore is an in-memory implementation of every catalog repository.
Package and API tests run the real services on top of it.

It mirrors the relational guards of the PostgreSQL schema: unique indexes,
foreign keys with RESTRICT / CASCADE / SET NULL, and the variation and box
check constraints. Violations surface as the same typed errors the database
adapter produces.

Transactions hold the store mutex for their whole duration and restore a
snapshot when the callback fails.
*/
package memstore

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/box"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/rollup"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/source"
)

// Compile-time contract assertions.
var (
	_ catalog.Repository = (*Store)(nil)
	_ catalog.Transactor = (*Store)(nil)
	_ box.Repository     = (*Store)(nil)
	_ source.Repository  = (*Store)(nil)
	_ rollup.Reader      = (*Store)(nil)
	_ rollup.Dangling    = (*Store)(nil)
)

// linkKey identifies one source link row.
type linkKey struct {
	kind     source.TargetKind
	entityID int64
	sourceID int64
}

type state struct {
	calibers      map[string]catalog.Caliber
	countries     map[int64]catalog.Country
	manufacturers map[int64]catalog.Manufacturer
	headstamps    map[int64]catalog.Headstamp
	loads         map[int64]catalog.Load
	dates         map[int64]catalog.Date
	variations    map[int64]catalog.Variation
	boxes         map[int64]box.Box
	sources       map[int64]source.Source
	links         map[linkKey]source.Link
	sequences     map[string]int64
}

func newState() state {
	return state{
		calibers:      make(map[string]catalog.Caliber),
		countries:     make(map[int64]catalog.Country),
		manufacturers: make(map[int64]catalog.Manufacturer),
		headstamps:    make(map[int64]catalog.Headstamp),
		loads:         make(map[int64]catalog.Load),
		dates:         make(map[int64]catalog.Date),
		variations:    make(map[int64]catalog.Variation),
		boxes:         make(map[int64]box.Box),
		sources:       make(map[int64]source.Source),
		links:         make(map[linkKey]source.Link),
		sequences:     make(map[string]int64),
	}
}

// clone copies every table. Rows are values, so a shallow map copy is a
// full snapshot as long as optional text fields are replaced, never mutated.
func (s state) clone() state {
	return state{
		calibers:      maps.Clone(s.calibers),
		countries:     maps.Clone(s.countries),
		manufacturers: maps.Clone(s.manufacturers),
		headstamps:    maps.Clone(s.headstamps),
		loads:         maps.Clone(s.loads),
		dates:         maps.Clone(s.dates),
		variations:    maps.Clone(s.variations),
		boxes:         maps.Clone(s.boxes),
		sources:       maps.Clone(s.sources),
		links:         maps.Clone(s.links),
		sequences:     maps.Clone(s.sequences),
	}
}

// nextID hands out the next id of table. Each table owns its sequence, so
// rows of different tables routinely share an id.
func (s *state) nextID(table string) int64 {
	s.sequences[table]++
	return s.sequences[table]
}

// Store is the in-memory catalog.
type Store struct {
	mu    sync.Mutex
	state state
	now   func() time.Time
}

// txKey marks a context whose goroutine already holds the store mutex.
type txKey struct{}

// New creates an empty store.
func New() *Store {
	return &Store{
		state: newState(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the source of CreatedAt and UpdatedAt stamps.
func (store *Store) SetClock(now func() time.Time) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.now = now
}

// AddCaliber seeds a caliber partition, as the seed migration does.
func (store *Store) AddCaliber(code, name string, sortOrder int) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.state.calibers[code] = catalog.Caliber{Code: code, Name: name, SortOrder: sortOrder}
}

/*
WithinTx runs fn with the store locked. If fn fails, every change it made is
discarded. A nested call joins the outer transaction.
*/
func (store *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if store.inTx(ctx) {
		return fn(ctx)
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	snapshot := store.state.clone()
	if err := fn(context.WithValue(ctx, txKey{}, store)); err != nil {
		store.state = snapshot
		return err
	}
	return nil
}

func (store *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == store
}

// do runs fn against the state, taking the mutex unless ctx already holds it.
func (store *Store) do(ctx context.Context, fn func(s *state) error) error {
	if store.inTx(ctx) {
		return fn(&store.state)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	return fn(&store.state)
}
