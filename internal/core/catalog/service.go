// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/apperr"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/ctxutil"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/validate"
	"github.com/spaulcurtis/cartridge-collection-sub000/pkg/pointer"
)

// Service implements the hierarchy rules on top of a [Repository].
type Service struct {
	repo        Repository
	tx          Transactor
	invalidator Invalidator
	logger      *slog.Logger
}

// NewService wires the hierarchy service. invalidator may be nil.
func NewService(repo Repository, tx Transactor, invalidator Invalidator, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		tx:          tx,
		invalidator: invalidator,
		logger:      logger,
	}
}

// Repository exposes the underlying store to sibling packages (box, rollup).
func (service *Service) Repository() Repository {
	return service.repo
}

// # Calibers & Countries

func (service *Service) ListCalibers(ctx context.Context) ([]*Caliber, error) {
	return service.repo.ListCalibers(ctx)
}

func (service *Service) GetCaliber(ctx context.Context, code string) (*Caliber, error) {
	caliber, err := service.repo.GetCaliber(ctx, code)
	if err != nil {
		return nil, notFoundAs(err, "Caliber")
	}
	return caliber, nil
}

func (service *Service) ListCountries(ctx context.Context, caliberCode string) ([]*Country, error) {
	if _, err := service.GetCaliber(ctx, caliberCode); err != nil {
		return nil, err
	}
	return service.repo.ListCountries(ctx, caliberCode)
}

// CreateCountry adds a country to caliberCode. Names are unique per caliber.
func (service *Service) CreateCountry(ctx context.Context, caliberCode string, country *Country) error {
	normalizeCountry(country)
	if err := validateCountry(country); err != nil {
		return err
	}

	err := service.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := service.GetCaliber(ctx, caliberCode); err != nil {
			return err
		}

		found, err := service.repo.FindCountryByName(ctx, caliberCode, country.Name)
		if err := checkFree(found, err, node.Ref{}, FieldName, country.Name); err != nil {
			return err
		}

		country.CaliberCode = caliberCode
		return service.repo.CreateCountry(ctx, country)
	})
	if err != nil {
		return err
	}

	service.committed(ctx, slog.LevelInfo, caliberCode, "country_created", slog.Int64("country_id", country.ID), slog.String("name", country.Name))
	return nil
}

// UpdateCountry replaces the editable fields of a country.
func (service *Service) UpdateCountry(ctx context.Context, caliberCode string, id int64, country *Country) error {
	normalizeCountry(country)
	if err := validateCountry(country); err != nil {
		return err
	}

	err := service.tx.WithinTx(ctx, func(ctx context.Context) error {
		ref := node.NewRef(node.KindCountry, id)
		loaded, err := service.lockOwned(ctx, NewWalker(service.repo), caliberCode, ref)
		if err != nil {
			return err
		}
		current := loaded.(*Country)

		if country.Name != current.Name {
			found, err := service.repo.FindCountryByName(ctx, caliberCode, country.Name)
			if err := checkFree(found, err, ref, FieldName, country.Name); err != nil {
				return err
			}
		}

		country.ID = id
		country.CaliberCode = current.CaliberCode
		country.CreatedAt = current.CreatedAt
		return service.repo.UpdateCountry(ctx, country)
	})
	if err != nil {
		return err
	}

	service.committed(ctx, slog.LevelInfo, caliberCode, "country_updated", slog.Int64("country_id", id))
	return nil
}

// # Generic node operations

// GetNode returns ref if it belongs to caliberCode.
func (service *Service) GetNode(ctx context.Context, caliberCode string, ref node.Ref) (Node, error) {
	return NewWalker(service.repo).InCaliber(ctx, caliberCode, ref)
}

// Ancestry returns the breadcrumb chain of ref within caliberCode.
func (service *Service) Ancestry(ctx context.Context, caliberCode string, ref node.Ref) (*Ancestry, error) {
	walker := NewWalker(service.repo)
	if _, err := walker.InCaliber(ctx, caliberCode, ref); err != nil {
		return nil, err
	}
	return walker.Ancestry(ctx, ref)
}

// ListChildren lists the direct children of parent of the given kind.
func (service *Service) ListChildren(ctx context.Context, caliberCode string, parent node.Ref, childKind node.Kind) ([]Node, error) {
	if !slices.Contains(parent.Kind.ChildKinds(), childKind) {
		return nil, apperr.ValidationError(fmt.Sprintf("A %s has no %s children", parent.Kind, childKind))
	}

	if _, err := service.GetNode(ctx, caliberCode, parent); err != nil {
		return nil, err
	}

	switch childKind {
	case node.KindManufacturer:
		return asNodes(service.repo.ListManufacturers(ctx, parent.ID))
	case node.KindHeadstamp:
		return asNodes(service.repo.ListHeadstamps(ctx, parent.ID))
	case node.KindLoad:
		return asNodes(service.repo.ListLoads(ctx, parent.ID))
	case node.KindDate:
		return asNodes(service.repo.ListDates(ctx, parent.ID))
	default:
		return asNodes(service.repo.ListVariations(ctx, parent))
	}
}

/*
Delete removes ref after verifying nothing depends on it.

Inside one transaction the node is locked, every child relation and the
directly attached boxes are counted, and any non-zero count aborts the delete.

Returns:
  - error: DEPENDENT_RECORDS_EXIST listing each blocking relation and its count
*/
func (service *Service) Delete(ctx context.Context, caliberCode string, ref node.Ref) error {
	err := service.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := service.lockOwned(ctx, NewWalker(service.repo), caliberCode, ref); err != nil {
			return err
		}

		dependents, err := service.repo.CountDependents(ctx, ref)
		if err != nil {
			return err
		}

		var blockers []apperr.FieldError
		for _, dependent := range dependents {
			if dependent.Count > 0 {
				blockers = append(blockers, apperr.FieldError{
					Field:   dependent.Relation,
					Message: fmt.Sprintf("%d %s record(s) attached", dependent.Count, dependent.Relation),
					Count:   dependent.Count,
				})
			}
		}
		if len(blockers) > 0 {
			return apperr.DependentRecordsExist(kindTitle(ref.Kind), blockers...)
		}

		return service.repo.DeleteNode(ctx, ref)
	})
	if err != nil {
		return err
	}

	service.committed(ctx, slog.LevelWarn, caliberCode, "node_deleted", slog.String("node", ref.String()))
	return nil
}

// # Internal helpers

// lockOwned locks ref (exclusive) and verifies it belongs to caliberCode.
func (service *Service) lockOwned(ctx context.Context, walker *Walker, caliberCode string, ref node.Ref) (Node, error) {
	if err := service.repo.LockNode(ctx, ref, true); err != nil {
		return nil, notFoundAs(err, kindTitle(ref.Kind))
	}
	return walker.InCaliber(ctx, caliberCode, ref)
}

// lockParent share-locks a prospective parent and verifies its caliber.
func (service *Service) lockParent(ctx context.Context, walker *Walker, caliberCode string, ref node.Ref) (Node, error) {
	if err := service.repo.LockNode(ctx, ref, false); err != nil {
		return nil, notFoundAs(err, kindTitle(ref.Kind))
	}
	return walker.InCaliber(ctx, caliberCode, ref)
}

// committed runs after a successful transaction: cache invalidation plus the audit log line.
func (service *Service) committed(ctx context.Context, level slog.Level, caliberCode, event string, attributes ...any) {
	if service.invalidator != nil {
		if err := service.invalidator.Invalidate(ctx, caliberCode); err != nil {
			service.logger.Warn("rollup_invalidation_failed", slog.String("caliber", caliberCode), slog.Any("error", err))
		}
	}
	attributes = append(attributes, slog.String("request_id", ctxutil.GetRequestID(ctx)))
	service.logger.Log(ctx, level, event, append([]any{slog.String("caliber", caliberCode)}, attributes...)...)
}

// checkFree turns a successful finder lookup into a uniqueness violation,
// unless the match is self.
func checkFree(found Node, err error, self node.Ref, field, value string) error {
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil
		}
		return err
	}
	if !self.IsZero() && found.Ref() == self {
		return nil
	}
	return apperr.UniquenessViolation(field, value)
}

// notFoundAs renames a generic NOT_FOUND after resource.
func notFoundAs(err error, resource string) error {
	if apperr.HasCode(err, apperr.CodeNotFound) {
		return apperr.NotFound(resource)
	}
	return err
}

func asNodes[T Node](items []T, err error) ([]Node, error) {
	if err != nil {
		return nil, err
	}
	nodes := make([]Node, len(items))
	for i, item := range items {
		nodes[i] = item
	}
	return nodes, nil
}

// # Normalization & validation

func normalizeCountry(country *Country) {
	country.Name = strings.TrimSpace(country.Name)
	country.FullName = pointer.NilIfBlank(country.FullName)
	country.Note = pointer.NilIfBlank(country.Note)
}

func validateCountry(country *Country) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, country.Name).MaxLen(FieldName, country.Name, 100)
	return validator.Err()
}
