// Copyright (c) 2026 Cartridge Collection. All rights reserved.

/*
Package catalog is the entity hierarchy store.

It owns the six ranked entities below a Caliber (Country, Manufacturer,
Headstamp, Load, Date, Variation) and the hierarchy-aware rules around them:
parent-scoped uniqueness, deletion guards, moves between parents of the same
caliber and the explicit walk from any node up to its caliber.
*/
package catalog

import (
	"fmt"
	"time"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
)

// Node is implemented by every ranked entity.
type Node interface {
	// Ref identifies the node.
	Ref() node.Ref
	// ParentRef returns the ranked parent. A Country reports false: its parent
	// is the caliber partition.
	ParentRef() (node.Ref, bool)
	// Label is the deterministic short display label.
	Label() string
	// HasImage reports a non-empty image reference.
	HasImage() bool
}

// Caliber is the top-level partition of the catalog.
type Caliber struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

// Country groups manufacturers within a caliber.
type Country struct {
	ID          int64     `json:"id"`
	CaliberCode string    `json:"caliber_code"`
	Name        string    `json:"name"`
	FullName    *string   `json:"full_name"`
	Note        *string   `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Manufacturer is a maker of cartridges, identified by a code unique per country.
type Manufacturer struct {
	ID        int64     `json:"id"`
	CountryID int64     `json:"country_id"`
	Code      string    `json:"code"`
	Name      *string   `json:"name"`
	Note      *string   `json:"note"`
	Image     *string   `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Headstamp is a base marking, identified by a code unique per manufacturer.
type Headstamp struct {
	ID                    int64     `json:"id"`
	ManufacturerID        int64     `json:"manufacturer_id"`
	Code                  string    `json:"code"`
	Name                  *string   `json:"name"`
	PrimaryManufacturerID *int64    `json:"primary_manufacturer_id"`
	Note                  *string   `json:"note"`
	Image                 *string   `json:"image"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// Load is a specific loading of a headstamp, addressed by a global "L" cart id.
type Load struct {
	ID          int64     `json:"id"`
	HeadstampID int64     `json:"headstamp_id"`
	CartID      string    `json:"cart_id"`
	Description *string   `json:"description"`
	Note        *string   `json:"note"`
	Image       *string   `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Date is a production date or lot of a load, addressed by a global "D" cart id.
type Date struct {
	ID          int64     `json:"id"`
	LoadID      int64     `json:"load_id"`
	CartID      string    `json:"cart_id"`
	Year        *int      `json:"year"`
	LotMonth    *string   `json:"lot_month"`
	Description *string   `json:"description"`
	Note        *string   `json:"note"`
	Image       *string   `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Variation is a minor variant hanging off exactly one of a Load or a Date.
type Variation struct {
	ID          int64     `json:"id"`
	LoadID      *int64    `json:"load_id"`
	DateID      *int64    `json:"date_id"`
	CartID      string    `json:"cart_id"`
	Description *string   `json:"description"`
	Note        *string   `json:"note"`
	Image       *string   `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Field names used in validation errors.
const (
	FieldName                = "name"
	FieldCode                = "code"
	FieldCartID              = "cart_id"
	FieldYear                = "year"
	FieldImage               = "image"
	FieldPrimaryManufacturer = "primary_manufacturer_id"
	FieldParent              = "parent"
)

// # Node implementations

func (c *Country) Ref() node.Ref               { return node.NewRef(node.KindCountry, c.ID) }
func (c *Country) ParentRef() (node.Ref, bool) { return node.Ref{}, false }
func (c *Country) Label() string               { return c.Name }
func (c *Country) HasImage() bool              { return false }

func (m *Manufacturer) Ref() node.Ref { return node.NewRef(node.KindManufacturer, m.ID) }
func (m *Manufacturer) ParentRef() (node.Ref, bool) {
	return node.NewRef(node.KindCountry, m.CountryID), true
}
func (m *Manufacturer) Label() string  { return labelOf(m.Code, m.Name) }
func (m *Manufacturer) HasImage() bool { return imagePresent(m.Image) }

func (h *Headstamp) Ref() node.Ref { return node.NewRef(node.KindHeadstamp, h.ID) }
func (h *Headstamp) ParentRef() (node.Ref, bool) {
	return node.NewRef(node.KindManufacturer, h.ManufacturerID), true
}
func (h *Headstamp) Label() string  { return labelOf(h.Code, h.Name) }
func (h *Headstamp) HasImage() bool { return imagePresent(h.Image) }

func (l *Load) Ref() node.Ref { return node.NewRef(node.KindLoad, l.ID) }
func (l *Load) ParentRef() (node.Ref, bool) {
	return node.NewRef(node.KindHeadstamp, l.HeadstampID), true
}
func (l *Load) Label() string  { return labelOf(l.CartID, l.Description) }
func (l *Load) HasImage() bool { return imagePresent(l.Image) }

func (d *Date) Ref() node.Ref { return node.NewRef(node.KindDate, d.ID) }
func (d *Date) ParentRef() (node.Ref, bool) {
	return node.NewRef(node.KindLoad, d.LoadID), true
}

// Label prefers the production year over the free-text description.
func (d *Date) Label() string {
	if d.Year != nil {
		year := fmt.Sprintf("%d", *d.Year)
		if d.LotMonth != nil && *d.LotMonth != "" {
			year = *d.LotMonth + " " + year
		}
		return labelOf(d.CartID, &year)
	}
	return labelOf(d.CartID, d.Description)
}
func (d *Date) HasImage() bool { return imagePresent(d.Image) }

func (v *Variation) Ref() node.Ref { return node.NewRef(node.KindVariation, v.ID) }

// ParentRef follows whichever of LoadID or DateID is set. A row with neither
// reports false and is treated as a broken chain by the walker.
func (v *Variation) ParentRef() (node.Ref, bool) {
	switch {
	case v.LoadID != nil && v.DateID == nil:
		return node.NewRef(node.KindLoad, *v.LoadID), true
	case v.DateID != nil && v.LoadID == nil:
		return node.NewRef(node.KindDate, *v.DateID), true
	default:
		return node.Ref{}, false
	}
}
func (v *Variation) Label() string  { return labelOf(v.CartID, v.Description) }
func (v *Variation) HasImage() bool { return imagePresent(v.Image) }

// # Helpers

// labelOf renders "CODE - detail", or just the code when detail is blank.
func labelOf(code string, detail *string) string {
	if detail == nil || *detail == "" {
		return code
	}
	return code + " - " + *detail
}

// imagePresent treats NULL and empty string alike.
func imagePresent(image *string) bool {
	return image != nil && *image != ""
}

// ImagePresent is the exported form of the image rule, shared by boxes.
func ImagePresent(image *string) bool {
	return imagePresent(image)
}
