// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package box

import (
	"context"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
)

// Repository is the persistence contract for boxes.
//
// Bids are globally unique; Create and Update report a clash as
// UNIQUENESS_VIOLATION.
type Repository interface {
	ListBoxes(context context.Context, parent node.Ref) ([]*Box, error)
	GetBox(context context.Context, id int64) (*Box, error)
	FindBoxByBid(context context.Context, bid string) (*Box, error)
	CreateBox(context context.Context, box *Box) error
	// UpdateBox writes every column, including the parent pair.
	UpdateBox(context context.Context, box *Box) error
	DeleteBox(context context.Context, id int64) error

	// LockBox takes an exclusive row lock. NOT_FOUND if missing.
	LockBox(context context.Context, id int64) error

	// ListDanglingBoxes returns every box whose parent row does not exist.
	ListDanglingBoxes(context context.Context) ([]*Box, error)
}

// Nodes is the part of the hierarchy store boxes depend on.
// [catalog.Repository] satisfies it.
type Nodes interface {
	catalog.NodeReader
	LockNode(context context.Context, ref node.Ref, exclusive bool) error
}

// Transactor runs fn inside one transaction bound to the derived context.
type Transactor interface {
	WithinTx(context context.Context, fn func(context context.Context) error) error
}

// Invalidator is notified after every committed write of a caliber.
type Invalidator interface {
	Invalidate(context context.Context, caliberCode string) error
}
