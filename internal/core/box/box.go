// Copyright (c) 2026 Cartridge Collection. All rights reserved.

/*
Package box is the polymorphic attachment resolver.

A Box hangs off any ranked node through a (parent_type, parent_id) pair. The
pair is not a foreign key, so every read that needs the parent goes through
[Resolver], which turns a missing row into a DANGLING_REFERENCE error and
derives the owning caliber by walking the hierarchy.
*/
package box

import (
	"time"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
)

// Box is a physical storage container attached to one catalog node.
type Box struct {
	ID          int64     `json:"id"`
	Bid         string    `json:"bid"`
	ParentType  node.Kind `json:"parent_type"`
	ParentID    int64     `json:"parent_id"`
	Description *string   `json:"description"`
	Location    *string   `json:"location"`
	Note        *string   `json:"note"`
	Image       *string   `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Parent returns the polymorphic parent reference.
func (b *Box) Parent() node.Ref {
	return node.NewRef(b.ParentType, b.ParentID)
}

// Label renders "BID - description".
func (b *Box) Label() string {
	if b.Description == nil || *b.Description == "" {
		return b.Bid
	}
	return b.Bid + " - " + *b.Description
}

func (b *Box) HasImage() bool {
	return catalog.ImagePresent(b.Image)
}

// Field names used in validation errors.
const (
	FieldBid    = "bid"
	FieldParent = "parent"
)

// MoveResult reports the box after a move and whether its parent changed.
type MoveResult struct {
	Box   *Box `json:"box"`
	Moved bool `json:"moved"`
}

// Attachment is a box together with its resolved parent.
type Attachment struct {
	Box         *Box            `json:"box"`
	Parent      catalog.Crumb   `json:"parent"`
	CaliberCode string          `json:"caliber_code"`
	Chain       []catalog.Crumb `json:"chain"`
}
