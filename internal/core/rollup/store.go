// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package rollup

import (
	"context"
	"time"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/box"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
)

// Edge is one child row of a set-oriented fetch.
type Edge struct {
	ID       int64
	ParentID int64
	HasImage bool
}

// BoxCount is the number of boxes attached to one node.
type BoxCount struct {
	Parent    node.Ref
	Count     int
	WithImage int
}

// Reader is the read side the aggregator needs. Every method is one query.
type Reader interface {
	// Countries returns the countries of a caliber. ParentID is zero.
	Countries(context context.Context, caliberCode string) ([]Edge, error)
	// Children returns the rel.Child rows whose parent is in parentIDs.
	Children(context context.Context, rel node.Relation, parentIDs []int64) ([]Edge, error)
	// BoxCounts groups the boxes attached to any of the given nodes.
	BoxCounts(context context.Context, parents map[node.Kind][]int64) ([]BoxCount, error)
}

// Hierarchy resolves the root of a single-node rollup. [catalog.Repository]
// satisfies it.
type Hierarchy interface {
	catalog.NodeReader
	GetCaliber(context context.Context, code string) (*catalog.Caliber, error)
}

// Dangling lists boxes whose parent is missing. [box.Repository] satisfies it.
type Dangling interface {
	ListDanglingBoxes(context context.Context) ([]*box.Box, error)
}

// Cache stores finished results. Lookup returns the generation the result
// must be stored under, so a write racing the computation is never hidden.
type Cache interface {
	Lookup(context context.Context, caliberCode, root string) (*Result, int64, error)
	Store(context context.Context, caliberCode, root string, generation int64, result *Result) error
}

// Observer receives rollup telemetry.
type Observer interface {
	ObserveRollup(rootKind string, elapsed time.Duration)
	CacheResult(result string)
	SetDanglingBoxes(count int)
}
