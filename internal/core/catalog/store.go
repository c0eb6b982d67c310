// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package catalog

import (
	"context"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
)

// Dependent is the number of rows in one relation that reference a node.
// Relation is a child kind name or "box".
type Dependent struct {
	Relation string
	Count    int
}

// RelationBox names directly attached boxes in a [Dependent] list.
const RelationBox = "box"

// NodeReader loads any ranked node by reference.
type NodeReader interface {
	GetNode(context context.Context, ref node.Ref) (Node, error)
}

// Repository is the persistence contract of the hierarchy store.
//
// Every method honours a transaction carried in context. Create and Update
// must enforce the uniqueness rules themselves (unique index or equivalent)
// and report violations as UNIQUENESS_VIOLATION.
type Repository interface {
	NodeReader

	ListCalibers(context context.Context) ([]*Caliber, error)
	GetCaliber(context context.Context, code string) (*Caliber, error)

	ListCountries(context context.Context, caliberCode string) ([]*Country, error)
	GetCountry(context context.Context, id int64) (*Country, error)
	FindCountryByName(context context.Context, caliberCode, name string) (*Country, error)
	CreateCountry(context context.Context, country *Country) error
	UpdateCountry(context context.Context, country *Country) error

	ListManufacturers(context context.Context, countryID int64) ([]*Manufacturer, error)
	GetManufacturer(context context.Context, id int64) (*Manufacturer, error)
	FindManufacturerByCode(context context.Context, countryID int64, code string) (*Manufacturer, error)
	CreateManufacturer(context context.Context, manufacturer *Manufacturer) error
	UpdateManufacturer(context context.Context, manufacturer *Manufacturer) error

	ListHeadstamps(context context.Context, manufacturerID int64) ([]*Headstamp, error)
	GetHeadstamp(context context.Context, id int64) (*Headstamp, error)
	FindHeadstampByCode(context context.Context, manufacturerID int64, code string) (*Headstamp, error)
	CreateHeadstamp(context context.Context, headstamp *Headstamp) error
	UpdateHeadstamp(context context.Context, headstamp *Headstamp) error

	ListLoads(context context.Context, headstampID int64) ([]*Load, error)
	GetLoad(context context.Context, id int64) (*Load, error)
	FindLoadByCartID(context context.Context, cartID string) (*Load, error)
	CreateLoad(context context.Context, load *Load) error
	UpdateLoad(context context.Context, load *Load) error

	ListDates(context context.Context, loadID int64) ([]*Date, error)
	GetDate(context context.Context, id int64) (*Date, error)
	FindDateByCartID(context context.Context, cartID string) (*Date, error)
	CreateDate(context context.Context, date *Date) error
	UpdateDate(context context.Context, date *Date) error

	// ListVariations lists the variations anchored on parent (a load or a date).
	ListVariations(context context.Context, parent node.Ref) ([]*Variation, error)
	GetVariation(context context.Context, id int64) (*Variation, error)
	// FindVariationByCartID searches one namespace: load-anchored or date-anchored.
	FindVariationByCartID(context context.Context, cartID string, anchor node.Kind) (*Variation, error)
	CreateVariation(context context.Context, variation *Variation) error
	UpdateVariation(context context.Context, variation *Variation) error

	// LockNode takes a row lock on ref (exclusive for writes to the node itself,
	// shared when the node is only used as a parent). NOT_FOUND if missing.
	LockNode(context context.Context, ref node.Ref, exclusive bool) error
	// CountDependents counts every child relation of ref plus attached boxes.
	CountDependents(context context.Context, ref node.Ref) ([]Dependent, error)
	// DeleteNode removes ref together with its source links.
	DeleteNode(context context.Context, ref node.Ref) error
}

// Transactor runs fn inside one transaction bound to the derived context.
type Transactor interface {
	WithinTx(context context.Context, fn func(context context.Context) error) error
}

// Invalidator is notified after every committed write of a caliber.
type Invalidator interface {
	Invalidate(context context.Context, caliberCode string) error
}
