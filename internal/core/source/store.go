// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package source

import (
	"context"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/box"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
)

// Repository is the persistence contract for sources and their links.
type Repository interface {
	ListSources(context context.Context) ([]*Source, error)
	GetSource(context context.Context, id int64) (*Source, error)
	FindSourceBySlug(context context.Context, slug string) (*Source, error)
	CreateSource(context context.Context, source *Source) error
	UpdateSource(context context.Context, source *Source) error
	DeleteSource(context context.Context, id int64) error

	// CountLinks counts the links of a source per target kind.
	CountLinks(context context.Context, sourceID int64) ([]catalog.Dependent, error)

	GetLink(context context.Context, target Target, sourceID int64) (*Link, error)
	CreateLink(context context.Context, link *Link) error
	DeleteLink(context context.Context, target Target, sourceID int64) error
	ListLinks(context context.Context, target Target) ([]*LinkedSource, error)
}

// Boxes resolves a box inside a caliber. [*box.Service] satisfies it.
type Boxes interface {
	GetBox(ctx context.Context, caliberCode string, id int64) (*box.Box, error)
}

// Transactor runs fn inside one transaction bound to the derived context.
type Transactor interface {
	WithinTx(context context.Context, fn func(context context.Context) error) error
}
