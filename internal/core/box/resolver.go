// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package box

import (
	"context"
	"fmt"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/apperr"
)

// Resolver turns a box's (parent_type, parent_id) pair into a catalog node
// and its caliber. It shares the walker's memo and is request-scoped.
type Resolver struct {
	walker *catalog.Walker
}

// NewResolver creates a resolver over walker.
func NewResolver(walker *catalog.Walker) *Resolver {
	return &Resolver{walker: walker}
}

/*
ResolveParent loads the node a box is attached to.

The parent type is checked against the closed kind set first, so an unknown
discriminator never reaches storage.

Returns:
  - catalog.Node: the parent (Country, Manufacturer, ... or Variation)
  - error: DANGLING_REFERENCE when the parent row does not exist
*/
func (resolver *Resolver) ResolveParent(ctx context.Context, box *Box) (catalog.Node, error) {
	if !box.ParentType.Valid() {
		return nil, apperr.DanglingReference(fmt.Sprintf("Box %s has unknown parent type %q", box.Bid, box.ParentType))
	}

	parent, err := resolver.walker.Get(ctx, box.Parent())
	if apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, apperr.DanglingReference(fmt.Sprintf("Box %s references missing %s", box.Bid, box.Parent()))
	}
	return parent, err
}

// ResolveCaliber returns the caliber owning box, walking up from its parent.
// A Variation parent follows whichever of its Load or Date is set.
func (resolver *Resolver) ResolveCaliber(ctx context.Context, box *Box) (string, error) {
	parent, err := resolver.ResolveParent(ctx, box)
	if err != nil {
		return "", err
	}
	return resolver.walker.CaliberOf(ctx, parent.Ref())
}

// Attachment resolves the parent and the full breadcrumb chain of box.
func (resolver *Resolver) Attachment(ctx context.Context, box *Box) (*Attachment, error) {
	parent, err := resolver.ResolveParent(ctx, box)
	if err != nil {
		return nil, err
	}

	ancestry, err := resolver.walker.Ancestry(ctx, parent.Ref())
	if err != nil {
		return nil, err
	}

	return &Attachment{
		Box:         box,
		Parent:      catalog.Crumb{Ref: parent.Ref(), Label: DisplayLabel(parent)},
		CaliberCode: ancestry.CaliberCode,
		Chain:       ancestry.Chain,
	}, nil
}

// ResolveTarget loads a prospective parent and its caliber.
func (resolver *Resolver) ResolveTarget(ctx context.Context, target node.Ref) (catalog.Node, string, error) {
	parent, err := resolver.walker.Get(ctx, target)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, "", apperr.NotFound(catalog.KindTitle(target.Kind))
		}
		return nil, "", err
	}

	caliberCode, err := resolver.walker.CaliberOf(ctx, target)
	if err != nil {
		return nil, "", err
	}
	return parent, caliberCode, nil
}

// DisplayLabel is the short label shown for a box's parent.
func DisplayLabel(parent catalog.Node) string {
	return parent.Label()
}
