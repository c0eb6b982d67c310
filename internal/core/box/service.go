// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package box

import (
	"context"
	"log/slog"
	"strings"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/apperr"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/ctxutil"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/validate"
	"github.com/spaulcurtis/cartridge-collection-sub000/pkg/pointer"
)

// Service implements box attachment rules.
type Service struct {
	repo        Repository
	nodes       Nodes
	tx          Transactor
	invalidator Invalidator
	logger      *slog.Logger
}

// NewService wires the box service. invalidator may be nil.
func NewService(repo Repository, nodes Nodes, tx Transactor, invalidator Invalidator, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		nodes:       nodes,
		tx:          tx,
		invalidator: invalidator,
		logger:      logger,
	}
}

func (service *Service) resolver() *Resolver {
	return NewResolver(catalog.NewWalker(service.nodes))
}

// # Reads

// ListBoxes lists the boxes attached directly to parent.
func (service *Service) ListBoxes(ctx context.Context, caliberCode string, parent node.Ref) ([]*Box, error) {
	if _, err := catalog.NewWalker(service.nodes).InCaliber(ctx, caliberCode, parent); err != nil {
		return nil, err
	}
	return service.repo.ListBoxes(ctx, parent)
}

// GetBox returns a box of caliberCode.
func (service *Service) GetBox(ctx context.Context, caliberCode string, id int64) (*Box, error) {
	box, err := service.repo.GetBox(ctx, id)
	if err != nil {
		return nil, notFoundAsBox(err)
	}
	return box, service.checkOwned(ctx, service.resolver(), caliberCode, box)
}

// GetBoxByBid returns a box of caliberCode by its external id.
func (service *Service) GetBoxByBid(ctx context.Context, caliberCode, bid string) (*Box, error) {
	box, err := service.repo.FindBoxByBid(ctx, normalizeBid(bid))
	if err != nil {
		return nil, notFoundAsBox(err)
	}
	return box, service.checkOwned(ctx, service.resolver(), caliberCode, box)
}

// Attachment resolves the parent and breadcrumb chain of a box.
func (service *Service) Attachment(ctx context.Context, caliberCode string, id int64) (*Attachment, error) {
	box, err := service.repo.GetBox(ctx, id)
	if err != nil {
		return nil, notFoundAsBox(err)
	}

	attachment, err := service.resolver().Attachment(ctx, box)
	if err != nil {
		return nil, err
	}
	if attachment.CaliberCode != caliberCode {
		return nil, apperr.NotFound("Box")
	}
	return attachment, nil
}

// Dangling lists every box whose parent row is missing, across all calibers.
func (service *Service) Dangling(ctx context.Context) ([]*Box, error) {
	return service.repo.ListDanglingBoxes(ctx)
}

// # Writes

// CreateBox attaches a new box to parent, which must belong to caliberCode.
func (service *Service) CreateBox(ctx context.Context, caliberCode string, parent node.Ref, box *Box) error {
	normalizeBox(box)
	if err := validateBox(box); err != nil {
		return err
	}

	err := service.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := service.nodes.LockNode(ctx, parent, false); err != nil {
			return notFoundAs(err, catalog.KindTitle(parent.Kind))
		}
		if _, err := catalog.NewWalker(service.nodes).InCaliber(ctx, caliberCode, parent); err != nil {
			return err
		}

		if err := service.checkBidFree(ctx, box.Bid, 0); err != nil {
			return err
		}

		box.ParentType = parent.Kind
		box.ParentID = parent.ID
		return service.repo.CreateBox(ctx, box)
	})
	if err != nil {
		return err
	}

	service.committed(ctx, caliberCode, "box_created",
		slog.Int64("box_id", box.ID), slog.String("bid", box.Bid), slog.String("parent", parent.String()))
	return nil
}

// UpdateBox replaces the editable fields. The parent changes only through [Service.Move].
func (service *Service) UpdateBox(ctx context.Context, caliberCode string, id int64, box *Box) error {
	normalizeBox(box)
	if err := validateBox(box); err != nil {
		return err
	}

	err := service.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := service.lockOwned(ctx, caliberCode, id)
		if err != nil {
			return err
		}

		if box.Bid != current.Bid {
			if err := service.checkBidFree(ctx, box.Bid, id); err != nil {
				return err
			}
		}

		box.ID = id
		box.ParentType = current.ParentType
		box.ParentID = current.ParentID
		box.CreatedAt = current.CreatedAt
		return service.repo.UpdateBox(ctx, box)
	})
	if err != nil {
		return err
	}

	service.committed(ctx, caliberCode, "box_updated", slog.Int64("box_id", id))
	return nil
}

// DeleteBox removes a box and its source links.
func (service *Service) DeleteBox(ctx context.Context, caliberCode string, id int64) error {
	var bid string
	err := service.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := service.lockOwned(ctx, caliberCode, id)
		if err != nil {
			return err
		}
		bid = current.Bid
		return service.repo.DeleteBox(ctx, id)
	})
	if err != nil {
		return err
	}

	service.committed(ctx, caliberCode, "box_deleted", slog.Int64("box_id", id), slog.String("bid", bid))
	return nil
}

/*
Move re-attaches a box to target.

Inside one transaction the box is locked, the target resolved and both
calibers compared. Moving onto the current parent is reported as already
attached and writes nothing. A box whose current parent is missing may be
re-attached to any node of caliberCode.

Returns:
  - *MoveResult: the box and whether its parent changed
  - error: CROSS_PARTITION_MOVE when target lives in another caliber
*/
func (service *Service) Move(ctx context.Context, caliberCode string, id int64, target node.Ref) (*MoveResult, error) {
	result := &MoveResult{}
	var from node.Ref

	err := service.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := service.repo.LockBox(ctx, id); err != nil {
			return notFoundAsBox(err)
		}
		box, err := service.repo.GetBox(ctx, id)
		if err != nil {
			return notFoundAsBox(err)
		}
		result.Box = box
		from = box.Parent()

		resolver := service.resolver()
		sourceCaliber, err := resolver.ResolveCaliber(ctx, box)
		switch {
		case apperr.HasCode(err, apperr.CodeDanglingReference):
			sourceCaliber = caliberCode
		case err != nil:
			return err
		case sourceCaliber != caliberCode:
			return apperr.NotFound("Box")
		}

		if from == target {
			return nil
		}

		if err := service.nodes.LockNode(ctx, target, false); err != nil {
			return notFoundAs(err, catalog.KindTitle(target.Kind))
		}
		_, targetCaliber, err := resolver.ResolveTarget(ctx, target)
		if err != nil {
			return err
		}
		if targetCaliber != sourceCaliber {
			return apperr.CrossPartitionMove(sourceCaliber, targetCaliber)
		}

		box.ParentType = target.Kind
		box.ParentID = target.ID
		if err := service.repo.UpdateBox(ctx, box); err != nil {
			return err
		}
		result.Moved = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.Moved {
		service.logger.DebugContext(ctx, "box_already_attached",
			slog.Int64("box_id", id), slog.String("parent", target.String()))
		return result, nil
	}

	service.committed(ctx, caliberCode, "box_moved",
		slog.Int64("box_id", id), slog.String("from", from.String()), slog.String("to", target.String()))
	return result, nil
}

// # Internal helpers

// lockOwned locks box id and verifies it belongs to caliberCode.
func (service *Service) lockOwned(ctx context.Context, caliberCode string, id int64) (*Box, error) {
	if err := service.repo.LockBox(ctx, id); err != nil {
		return nil, notFoundAsBox(err)
	}
	box, err := service.repo.GetBox(ctx, id)
	if err != nil {
		return nil, notFoundAsBox(err)
	}
	return box, service.checkOwned(ctx, service.resolver(), caliberCode, box)
}

// checkOwned hides boxes of other calibers behind NOT_FOUND.
func (service *Service) checkOwned(ctx context.Context, resolver *Resolver, caliberCode string, box *Box) error {
	owner, err := resolver.ResolveCaliber(ctx, box)
	if err != nil {
		return err
	}
	if owner != caliberCode {
		return apperr.NotFound("Box")
	}
	return nil
}

func (service *Service) checkBidFree(ctx context.Context, bid string, self int64) error {
	found, err := service.repo.FindBoxByBid(ctx, bid)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil
		}
		return err
	}
	if found.ID == self {
		return nil
	}
	return apperr.UniquenessViolation(FieldBid, bid)
}

func (service *Service) committed(ctx context.Context, caliberCode, event string, attributes ...any) {
	if service.invalidator != nil {
		if err := service.invalidator.Invalidate(ctx, caliberCode); err != nil {
			service.logger.Warn("rollup_invalidation_failed", slog.String("caliber", caliberCode), slog.Any("error", err))
		}
	}
	attributes = append(attributes, slog.String("caliber", caliberCode), slog.String("request_id", ctxutil.GetRequestID(ctx)))
	service.logger.InfoContext(ctx, event, attributes...)
}

func notFoundAs(err error, resource string) error {
	if apperr.HasCode(err, apperr.CodeNotFound) {
		return apperr.NotFound(resource)
	}
	return err
}

func notFoundAsBox(err error) error {
	return notFoundAs(err, "Box")
}

// # Normalization & validation

func normalizeBid(bid string) string {
	return strings.ToUpper(strings.TrimSpace(bid))
}

func normalizeBox(box *Box) {
	box.Bid = normalizeBid(box.Bid)
	box.Description = pointer.NilIfBlank(box.Description)
	box.Location = pointer.NilIfBlank(box.Location)
	box.Note = pointer.NilIfBlank(box.Note)
	box.Image = pointer.NilIfBlank(box.Image)
}

func validateBox(box *Box) error {
	validator := &validate.Validator{}
	validator.CartID(FieldBid, box.Bid, 'B').MaxLen(FieldBid, box.Bid, 32)
	return validator.Err()
}
