// Copyright (c) 2026 Cartridge Collection. All rights reserved.

/*
Package search resolves an external display id ("L001", "d17", "B002") to the
record it names inside the active caliber.

The first letter routes the lookup: L to loads, D to dates, V to variations
and B to boxes. Variation ids live in two namespaces; the load-anchored one is
searched first, then the date-anchored one.
*/
package search

import (
	"context"
	"log/slog"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/box"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/apperr"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/validate"
)

// FieldQuery is the query parameter carrying the display id.
const FieldQuery = "q"

// Hit is the record a display id resolved to.
type Hit struct {
	DisplayID string          `json:"display_id"`
	Target    node.Target     `json:"target"`
	Node      catalog.Node    `json:"node,omitempty"`
	Box       *box.Box        `json:"box,omitempty"`
	Chain     []catalog.Crumb `json:"chain"`
}

// Finder looks records up by external id. [catalog.Repository] satisfies it.
type Finder interface {
	catalog.NodeReader
	FindLoadByCartID(context context.Context, cartID string) (*catalog.Load, error)
	FindDateByCartID(context context.Context, cartID string) (*catalog.Date, error)
	FindVariationByCartID(context context.Context, cartID string, anchor node.Kind) (*catalog.Variation, error)
}

// Boxes resolves boxes inside a caliber. [*box.Service] satisfies it.
type Boxes interface {
	GetBoxByBid(ctx context.Context, caliberCode, bid string) (*box.Box, error)
	Attachment(ctx context.Context, caliberCode string, id int64) (*box.Attachment, error)
}

type Service struct {
	finder Finder
	boxes  Boxes
	logger *slog.Logger
}

func NewService(finder Finder, boxes Boxes, logger *slog.Logger) *Service {
	return &Service{finder: finder, boxes: boxes, logger: logger}
}

/*
Lookup resolves raw inside caliberCode.

Returns:
  - *Hit: the record and its breadcrumb chain
  - error: VALIDATION_ERROR for an unknown prefix, NOT_FOUND when nothing
    matches in this caliber (a match in another caliber counts as nothing)
*/
func (service *Service) Lookup(ctx context.Context, caliberCode, raw string) (*Hit, error) {
	displayID, target, ok := node.RouteDisplayID(raw)
	if !ok {
		return nil, validate.RequiredError(FieldQuery, "Must start with L, D, V or B followed by an identifier")
	}

	hit := &Hit{DisplayID: displayID, Target: target}

	if target == node.TargetBox {
		found, err := service.boxes.GetBoxByBid(ctx, caliberCode, displayID)
		if err != nil {
			return nil, err
		}
		attachment, err := service.boxes.Attachment(ctx, caliberCode, found.ID)
		if err != nil {
			return nil, err
		}
		hit.Box = found
		hit.Chain = attachment.Chain
		return hit, nil
	}

	walker := catalog.NewWalker(service.finder)
	found, err := service.findNode(ctx, walker, caliberCode, target, displayID)
	if err != nil {
		service.logger.DebugContext(ctx, "search_miss", slog.String("caliber", caliberCode), slog.String("display_id", displayID))
		return nil, err
	}

	ancestry, err := walker.Ancestry(ctx, found.Ref())
	if err != nil {
		return nil, err
	}
	hit.Node = found
	hit.Chain = ancestry.Chain
	return hit, nil
}

func (service *Service) findNode(ctx context.Context, walker *catalog.Walker, caliberCode string, target node.Target, displayID string) (catalog.Node, error) {
	switch target {
	case node.TargetLoad:
		found, err := nodeOf(service.finder.FindLoadByCartID(ctx, displayID))
		return inCaliber(ctx, walker, caliberCode, "Load", found, err)
	case node.TargetDate:
		found, err := nodeOf(service.finder.FindDateByCartID(ctx, displayID))
		return inCaliber(ctx, walker, caliberCode, "Date", found, err)
	}

	for _, anchor := range []node.Kind{node.KindLoad, node.KindDate} {
		candidate, err := nodeOf(service.finder.FindVariationByCartID(ctx, displayID, anchor))
		found, err := inCaliber(ctx, walker, caliberCode, "Variation", candidate, err)
		if err == nil {
			return found, nil
		}
		if !apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, err
		}
	}
	return nil, apperr.NotFound("Variation")
}

// inCaliber keeps a finder hit only if it belongs to caliberCode.
func inCaliber(ctx context.Context, walker *catalog.Walker, caliberCode, resource string, found catalog.Node, err error) (catalog.Node, error) {
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.NotFound(resource)
		}
		return nil, err
	}

	walker.Remember(found)
	if _, err := walker.InCaliber(ctx, caliberCode, found.Ref()); err != nil {
		return nil, err
	}
	return found, nil
}

func nodeOf[T catalog.Node](item T, err error) (catalog.Node, error) {
	if err != nil {
		return nil, err
	}
	return item, nil
}
