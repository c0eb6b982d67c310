// Copyright (c) 2026 Cartridge Collection. All rights reserved.

/*
Package node defines the closed set of ranked catalog kinds and the
polymorphic reference used by boxes, sources and rollups.

Rank order, from the root down:

	Country > Manufacturer > Headstamp > Load > Date > Variation

A Caliber sits above Country but is a partition, not a ranked kind: boxes
cannot attach to it. A Variation hangs off exactly one of Load or Date.
*/
package node

import (
	"fmt"
	"strings"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/apperr"
)

// Kind is one of the six ranked entity kinds.
type Kind string

const (
	KindCountry      Kind = "country"
	KindManufacturer Kind = "manufacturer"
	KindHeadstamp    Kind = "headstamp"
	KindLoad         Kind = "load"
	KindDate         Kind = "date"
	KindVariation    Kind = "variation"
)

// Kinds lists every kind in rank order, root first.
var Kinds = []Kind{KindCountry, KindManufacturer, KindHeadstamp, KindLoad, KindDate, KindVariation}

// ParseKind converts boundary input (URL segment, DB column, CLI flag) into a
// [Kind]. Anything outside the closed set is a validation error.
func ParseKind(raw string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(raw)))
	if !kind.Valid() {
		return "", apperr.ValidationError("Unknown node kind", apperr.FieldError{
			Field:   "kind",
			Message: fmt.Sprintf("%q is not one of country, manufacturer, headstamp, load, date, variation", raw),
		})
	}
	return kind, nil
}

// Valid reports whether k is one of the six ranked kinds.
func (k Kind) Valid() bool {
	return k.Rank() >= 0
}

// Rank is the depth of k below the caliber (country = 0), or -1 if unknown.
func (k Kind) Rank() int {
	for i, candidate := range Kinds {
		if candidate == k {
			return i
		}
	}
	return -1
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}

// # Relations

// Relation is one parent→child edge type of the hierarchy.
type Relation struct {
	Parent Kind
	Child  Kind
}

// Relations lists every parent→child edge type. Variation appears twice
// because it may hang off a Load or a Date.
var Relations = []Relation{
	{Parent: KindCountry, Child: KindManufacturer},
	{Parent: KindManufacturer, Child: KindHeadstamp},
	{Parent: KindHeadstamp, Child: KindLoad},
	{Parent: KindLoad, Child: KindDate},
	{Parent: KindLoad, Child: KindVariation},
	{Parent: KindDate, Child: KindVariation},
}

// ChildKinds returns the kinds that can hang directly off k.
func (k Kind) ChildKinds() []Kind {
	var children []Kind
	for _, relation := range Relations {
		if relation.Parent == k {
			children = append(children, relation.Child)
		}
	}
	return children
}

// ParentKinds returns the kinds that can be k's direct parent. A Country has
// none (its parent is the caliber).
func (k Kind) ParentKinds() []Kind {
	var parents []Kind
	for _, relation := range Relations {
		if relation.Child == k {
			parents = append(parents, relation.Parent)
		}
	}
	return parents
}

// Descendants returns every kind strictly below k, in rank order.
func (k Kind) Descendants() []Kind {
	rank := k.Rank()
	if rank < 0 {
		return nil
	}

	reachable := map[Kind]bool{k: true}
	var out []Kind
	for _, candidate := range Kinds[rank+1:] {
		for _, parent := range candidate.ParentKinds() {
			if reachable[parent] {
				reachable[candidate] = true
				out = append(out, candidate)
				break
			}
		}
	}
	return out
}

// # References

// Ref identifies one ranked node.
type Ref struct {
	Kind Kind  `json:"kind"`
	ID   int64 `json:"id"`
}

// NewRef is shorthand for Ref{Kind: kind, ID: id}.
func NewRef(kind Kind, id int64) Ref {
	return Ref{Kind: kind, ID: id}
}

// String renders r as "kind:id".
func (r Ref) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// IsZero reports whether r is unset.
func (r Ref) IsZero() bool {
	return r.Kind == "" && r.ID == 0
}
