// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/apperr"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/validate"
	"github.com/spaulcurtis/cartridge-collection-sub000/pkg/pointer"
)

// # Manufacturers

// CreateManufacturer adds a manufacturer under countryID. Codes are unique per country.
func (service *Service) CreateManufacturer(ctx context.Context, caliberCode string, countryID int64, manufacturer *Manufacturer) error {
	normalizeManufacturer(manufacturer)
	if err := validateManufacturer(manufacturer); err != nil {
		return err
	}

	err := service.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := service.lockParent(ctx, NewWalker(service.repo), caliberCode, node.NewRef(node.KindCountry, countryID)); err != nil {
			return err
		}

		found, err := service.repo.FindManufacturerByCode(ctx, countryID, manufacturer.Code)
		if err := checkFree(found, err, node.Ref{}, FieldCode, manufacturer.Code); err != nil {
			return err
		}

		manufacturer.CountryID = countryID
		return service.repo.CreateManufacturer(ctx, manufacturer)
	})
	if err != nil {
		return err
	}

	service.committed(ctx, slog.LevelInfo, caliberCode, "manufacturer_created",
		slog.Int64("manufacturer_id", manufacturer.ID), slog.String("code", manufacturer.Code))
	return nil
}

// UpdateManufacturer replaces the editable fields. The parent is changed only through [Service.Move].
func (service *Service) UpdateManufacturer(ctx context.Context, caliberCode string, id int64, manufacturer *Manufacturer) error {
	normalizeManufacturer(manufacturer)
	if err := validateManufacturer(manufacturer); err != nil {
		return err
	}

	err := service.tx.WithinTx(ctx, func(ctx context.Context) error {
		ref := node.NewRef(node.KindManufacturer, id)
		loaded, err := service.lockOwned(ctx, NewWalker(service.repo), caliberCode, ref)
		if err != nil {
			return err
		}
		current := loaded.(*Manufacturer)

		if manufacturer.Code != current.Code {
			found, err := service.repo.FindManufacturerByCode(ctx, current.CountryID, manufacturer.Code)
			if err := checkFree(found, err, ref, FieldCode, manufacturer.Code); err != nil {
				return err
			}
		}

		manufacturer.ID = id
		manufacturer.CountryID = current.CountryID
		manufacturer.CreatedAt = current.CreatedAt
		return service.repo.UpdateManufacturer(ctx, manufacturer)
	})
	if err != nil {
		return err
	}

	service.committed(ctx, slog.LevelInfo, caliberCode, "manufacturer_updated", slog.Int64("manufacturer_id", id))
	return nil
}

// # Headstamps

// CreateHeadstamp adds a headstamp under manufacturerID. Codes are unique per manufacturer.
func (service *Service) CreateHeadstamp(ctx context.Context, caliberCode string, manufacturerID int64, headstamp *Headstamp) error {
	normalizeHeadstamp(headstamp)
	if err := validateHeadstamp(headstamp); err != nil {
		return err
	}

	err := service.tx.WithinTx(ctx, func(ctx context.Context) error {
		walker := NewWalker(service.repo)
		if _, err := service.lockParent(ctx, walker, caliberCode, node.NewRef(node.KindManufacturer, manufacturerID)); err != nil {
			return err
		}

		if err := service.checkPrimaryManufacturer(ctx, walker, caliberCode, headstamp.PrimaryManufacturerID); err != nil {
			return err
		}

		found, err := service.repo.FindHeadstampByCode(ctx, manufacturerID, headstamp.Code)
		if err := checkFree(found, err, node.Ref{}, FieldCode, headstamp.Code); err != nil {
			return err
		}

		headstamp.ManufacturerID = manufacturerID
		return service.repo.CreateHeadstamp(ctx, headstamp)
	})
	if err != nil {
		return err
	}

	service.committed(ctx, slog.LevelInfo, caliberCode, "headstamp_created",
		slog.Int64("headstamp_id", headstamp.ID), slog.String("code", headstamp.Code))
	return nil
}

// UpdateHeadstamp replaces the editable fields, including the primary manufacturer.
func (service *Service) UpdateHeadstamp(ctx context.Context, caliberCode string, id int64, headstamp *Headstamp) error {
	normalizeHeadstamp(headstamp)
	if err := validateHeadstamp(headstamp); err != nil {
		return err
	}

	err := service.tx.WithinTx(ctx, func(ctx context.Context) error {
		walker := NewWalker(service.repo)
		ref := node.NewRef(node.KindHeadstamp, id)
		loaded, err := service.lockOwned(ctx, walker, caliberCode, ref)
		if err != nil {
			return err
		}
		current := loaded.(*Headstamp)

		if err := service.checkPrimaryManufacturer(ctx, walker, caliberCode, headstamp.PrimaryManufacturerID); err != nil {
			return err
		}

		if headstamp.Code != current.Code {
			found, err := service.repo.FindHeadstampByCode(ctx, current.ManufacturerID, headstamp.Code)
			if err := checkFree(found, err, ref, FieldCode, headstamp.Code); err != nil {
				return err
			}
		}

		headstamp.ID = id
		headstamp.ManufacturerID = current.ManufacturerID
		headstamp.CreatedAt = current.CreatedAt
		return service.repo.UpdateHeadstamp(ctx, headstamp)
	})
	if err != nil {
		return err
	}

	service.committed(ctx, slog.LevelInfo, caliberCode, "headstamp_updated", slog.Int64("headstamp_id", id))
	return nil
}

// checkPrimaryManufacturer requires the optional cross-reference to name a
// manufacturer of the same caliber.
func (service *Service) checkPrimaryManufacturer(ctx context.Context, walker *Walker, caliberCode string, id *int64) error {
	if id == nil {
		return nil
	}

	_, err := walker.InCaliber(ctx, caliberCode, node.NewRef(node.KindManufacturer, *id))
	if apperr.HasCode(err, apperr.CodeNotFound) {
		return validate.RequiredError(FieldPrimaryManufacturer,
			fmt.Sprintf("Must reference a manufacturer of caliber %q", caliberCode))
	}
	return err
}

// # Loads

// CreateLoad adds a load under headstampID. Cart ids are unique across all loads.
func (service *Service) CreateLoad(ctx context.Context, caliberCode string, headstampID int64, load *Load) error {
	normalizeLoad(load)
	if err := validateLoad(load); err != nil {
		return err
	}

	err := service.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := service.lockParent(ctx, NewWalker(service.repo), caliberCode, node.NewRef(node.KindHeadstamp, headstampID)); err != nil {
			return err
		}

		found, err := service.repo.FindLoadByCartID(ctx, load.CartID)
		if err := checkFree(found, err, node.Ref{}, FieldCartID, load.CartID); err != nil {
			return err
		}

		load.HeadstampID = headstampID
		return service.repo.CreateLoad(ctx, load)
	})
	if err != nil {
		return err
	}

	service.committed(ctx, slog.LevelInfo, caliberCode, "load_created",
		slog.Int64("load_id", load.ID), slog.String("cart_id", load.CartID))
	return nil
}

func (service *Service) UpdateLoad(ctx context.Context, caliberCode string, id int64, load *Load) error {
	normalizeLoad(load)
	if err := validateLoad(load); err != nil {
		return err
	}

	err := service.tx.WithinTx(ctx, func(ctx context.Context) error {
		ref := node.NewRef(node.KindLoad, id)
		loaded, err := service.lockOwned(ctx, NewWalker(service.repo), caliberCode, ref)
		if err != nil {
			return err
		}
		current := loaded.(*Load)

		if load.CartID != current.CartID {
			found, err := service.repo.FindLoadByCartID(ctx, load.CartID)
			if err := checkFree(found, err, ref, FieldCartID, load.CartID); err != nil {
				return err
			}
		}

		load.ID = id
		load.HeadstampID = current.HeadstampID
		load.CreatedAt = current.CreatedAt
		return service.repo.UpdateLoad(ctx, load)
	})
	if err != nil {
		return err
	}

	service.committed(ctx, slog.LevelInfo, caliberCode, "load_updated", slog.Int64("load_id", id))
	return nil
}

// # Dates

// CreateDate adds a date under loadID. Cart ids are unique across all dates.
func (service *Service) CreateDate(ctx context.Context, caliberCode string, loadID int64, date *Date) error {
	normalizeDate(date)
	if err := validateDate(date); err != nil {
		return err
	}

	err := service.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := service.lockParent(ctx, NewWalker(service.repo), caliberCode, node.NewRef(node.KindLoad, loadID)); err != nil {
			return err
		}

		found, err := service.repo.FindDateByCartID(ctx, date.CartID)
		if err := checkFree(found, err, node.Ref{}, FieldCartID, date.CartID); err != nil {
			return err
		}

		date.LoadID = loadID
		return service.repo.CreateDate(ctx, date)
	})
	if err != nil {
		return err
	}

	service.committed(ctx, slog.LevelInfo, caliberCode, "date_created",
		slog.Int64("date_id", date.ID), slog.String("cart_id", date.CartID))
	return nil
}

func (service *Service) UpdateDate(ctx context.Context, caliberCode string, id int64, date *Date) error {
	normalizeDate(date)
	if err := validateDate(date); err != nil {
		return err
	}

	err := service.tx.WithinTx(ctx, func(ctx context.Context) error {
		ref := node.NewRef(node.KindDate, id)
		loaded, err := service.lockOwned(ctx, NewWalker(service.repo), caliberCode, ref)
		if err != nil {
			return err
		}
		current := loaded.(*Date)

		if date.CartID != current.CartID {
			found, err := service.repo.FindDateByCartID(ctx, date.CartID)
			if err := checkFree(found, err, ref, FieldCartID, date.CartID); err != nil {
				return err
			}
		}

		date.ID = id
		date.LoadID = current.LoadID
		date.CreatedAt = current.CreatedAt
		return service.repo.UpdateDate(ctx, date)
	})
	if err != nil {
		return err
	}

	service.committed(ctx, slog.LevelInfo, caliberCode, "date_updated", slog.Int64("date_id", id))
	return nil
}

// # Variations

/*
CreateVariation adds a variation under exactly one of variation.LoadID or
variation.DateID.

Cart ids are unique within the load-anchored namespace and within the
date-anchored namespace, independently.

Returns:
  - error: INVALID_PARENT_STATE when both or neither parent is set
*/
func (service *Service) CreateVariation(ctx context.Context, caliberCode string, variation *Variation) error {
	normalizeVariation(variation)
	if err := validateVariation(variation); err != nil {
		return err
	}

	parent, ok := variation.ParentRef()
	if !ok {
		return apperr.InvalidParentState("A variation needs exactly one of load_id or date_id")
	}

	err := service.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := service.lockParent(ctx, NewWalker(service.repo), caliberCode, parent); err != nil {
			return err
		}

		found, err := service.repo.FindVariationByCartID(ctx, variation.CartID, parent.Kind)
		if err := checkFree(found, err, node.Ref{}, FieldCartID, variation.CartID); err != nil {
			return err
		}

		return service.repo.CreateVariation(ctx, variation)
	})
	if err != nil {
		return err
	}

	service.committed(ctx, slog.LevelInfo, caliberCode, "variation_created",
		slog.Int64("variation_id", variation.ID), slog.String("parent", parent.String()))
	return nil
}

// UpdateVariation replaces the editable fields. The anchor (load or date) is kept.
func (service *Service) UpdateVariation(ctx context.Context, caliberCode string, id int64, variation *Variation) error {
	normalizeVariation(variation)
	if err := validateVariation(variation); err != nil {
		return err
	}

	err := service.tx.WithinTx(ctx, func(ctx context.Context) error {
		ref := node.NewRef(node.KindVariation, id)
		loaded, err := service.lockOwned(ctx, NewWalker(service.repo), caliberCode, ref)
		if err != nil {
			return err
		}
		current := loaded.(*Variation)

		anchor, ok := current.ParentRef()
		if !ok {
			return apperr.InvalidParentState(fmt.Sprintf("%s has an invalid parent state", ref))
		}

		if variation.CartID != current.CartID {
			found, err := service.repo.FindVariationByCartID(ctx, variation.CartID, anchor.Kind)
			if err := checkFree(found, err, ref, FieldCartID, variation.CartID); err != nil {
				return err
			}
		}

		variation.ID = id
		variation.LoadID = current.LoadID
		variation.DateID = current.DateID
		variation.CreatedAt = current.CreatedAt
		return service.repo.UpdateVariation(ctx, variation)
	})
	if err != nil {
		return err
	}

	service.committed(ctx, slog.LevelInfo, caliberCode, "variation_updated", slog.Int64("variation_id", id))
	return nil
}

// # Moves

// MoveResult reports the node after a move and whether anything changed.
type MoveResult struct {
	Node  Node `json:"node"`
	Moved bool `json:"moved"`
}

/*
Move re-parents a Manufacturer (to a Country), a Headstamp (to a Manufacturer)
or a Load (to a Headstamp).

The new parent must belong to the same caliber, and the node's code is
re-checked for uniqueness under the new parent. Moving onto the current
parent changes nothing.

Returns:
  - *MoveResult: the node and whether it moved
  - error: CROSS_PARTITION_MOVE when the target lives in another caliber
*/
func (service *Service) Move(ctx context.Context, caliberCode string, ref node.Ref, newParentID int64) (*MoveResult, error) {
	var targetKind node.Kind
	switch ref.Kind {
	case node.KindManufacturer:
		targetKind = node.KindCountry
	case node.KindHeadstamp:
		targetKind = node.KindManufacturer
	case node.KindLoad:
		targetKind = node.KindHeadstamp
	default:
		return nil, apperr.ValidationError(fmt.Sprintf("A %s cannot be moved", ref.Kind))
	}
	target := node.NewRef(targetKind, newParentID)

	result := &MoveResult{}
	err := service.tx.WithinTx(ctx, func(ctx context.Context) error {
		walker := NewWalker(service.repo)
		current, err := service.lockOwned(ctx, walker, caliberCode, ref)
		if err != nil {
			return err
		}
		result.Node = current

		if parent, _ := current.ParentRef(); parent == target {
			return nil
		}

		if err := service.repo.LockNode(ctx, target, false); err != nil {
			return notFoundAs(err, kindTitle(target.Kind))
		}
		targetCaliber, err := walker.CaliberOf(ctx, target)
		if err != nil {
			return err
		}
		if targetCaliber != caliberCode {
			return apperr.CrossPartitionMove(caliberCode, targetCaliber)
		}

		switch moving := current.(type) {
		case *Manufacturer:
			found, err := service.repo.FindManufacturerByCode(ctx, newParentID, moving.Code)
			if err := checkFree(found, err, ref, FieldCode, moving.Code); err != nil {
				return err
			}
			moving.CountryID = newParentID
			if err := service.repo.UpdateManufacturer(ctx, moving); err != nil {
				return err
			}
		case *Headstamp:
			found, err := service.repo.FindHeadstampByCode(ctx, newParentID, moving.Code)
			if err := checkFree(found, err, ref, FieldCode, moving.Code); err != nil {
				return err
			}
			moving.ManufacturerID = newParentID
			if err := service.repo.UpdateHeadstamp(ctx, moving); err != nil {
				return err
			}
		case *Load:
			moving.HeadstampID = newParentID
			if err := service.repo.UpdateLoad(ctx, moving); err != nil {
				return err
			}
		}

		result.Moved = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Moved {
		service.committed(ctx, slog.LevelInfo, caliberCode, "node_moved",
			slog.String("node", ref.String()), slog.String("new_parent", target.String()))
	}
	return result, nil
}

// # Normalization & validation

// normalizeCartID trims and upper-cases an external display id.
func normalizeCartID(cartID string) string {
	return strings.ToUpper(strings.TrimSpace(cartID))
}

func normalizeManufacturer(manufacturer *Manufacturer) {
	manufacturer.Code = strings.TrimSpace(manufacturer.Code)
	manufacturer.Name = pointer.NilIfBlank(manufacturer.Name)
	manufacturer.Note = pointer.NilIfBlank(manufacturer.Note)
	manufacturer.Image = pointer.NilIfBlank(manufacturer.Image)
}

func validateManufacturer(manufacturer *Manufacturer) error {
	validator := &validate.Validator{}
	validator.Required(FieldCode, manufacturer.Code).MaxLen(FieldCode, manufacturer.Code, 32)
	return validator.Err()
}

func normalizeHeadstamp(headstamp *Headstamp) {
	headstamp.Code = strings.TrimSpace(headstamp.Code)
	headstamp.Name = pointer.NilIfBlank(headstamp.Name)
	headstamp.Note = pointer.NilIfBlank(headstamp.Note)
	headstamp.Image = pointer.NilIfBlank(headstamp.Image)
}

func validateHeadstamp(headstamp *Headstamp) error {
	validator := &validate.Validator{}
	validator.Required(FieldCode, headstamp.Code).MaxLen(FieldCode, headstamp.Code, 64)
	return validator.Err()
}

func normalizeLoad(load *Load) {
	load.CartID = normalizeCartID(load.CartID)
	load.Description = pointer.NilIfBlank(load.Description)
	load.Note = pointer.NilIfBlank(load.Note)
	load.Image = pointer.NilIfBlank(load.Image)
}

func validateLoad(load *Load) error {
	validator := &validate.Validator{}
	validator.CartID(FieldCartID, load.CartID, 'L').MaxLen(FieldCartID, load.CartID, 32)
	return validator.Err()
}

func normalizeDate(date *Date) {
	date.CartID = normalizeCartID(date.CartID)
	date.LotMonth = pointer.NilIfBlank(date.LotMonth)
	date.Description = pointer.NilIfBlank(date.Description)
	date.Note = pointer.NilIfBlank(date.Note)
	date.Image = pointer.NilIfBlank(date.Image)
}

func validateDate(date *Date) error {
	validator := &validate.Validator{}
	validator.CartID(FieldCartID, date.CartID, 'D').MaxLen(FieldCartID, date.CartID, 32)
	if date.Year != nil {
		validator.Range(FieldYear, *date.Year, 1800, 2100)
	}
	return validator.Err()
}

func normalizeVariation(variation *Variation) {
	variation.CartID = normalizeCartID(variation.CartID)
	variation.Description = pointer.NilIfBlank(variation.Description)
	variation.Note = pointer.NilIfBlank(variation.Note)
	variation.Image = pointer.NilIfBlank(variation.Image)
}

func validateVariation(variation *Variation) error {
	validator := &validate.Validator{}
	validator.CartID(FieldCartID, variation.CartID, 'V').MaxLen(FieldCartID, variation.CartID, 32)
	return validator.Err()
}
