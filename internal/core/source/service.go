// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/apperr"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/ctxutil"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/validate"
	"github.com/spaulcurtis/cartridge-collection-sub000/pkg/pointer"
	"github.com/spaulcurtis/cartridge-collection-sub000/pkg/slice"
	"github.com/spaulcurtis/cartridge-collection-sub000/pkg/slug"
)

type Service struct {
	repo   Repository
	nodes  catalog.NodeReader
	boxes  Boxes
	tx     Transactor
	logger *slog.Logger
}

func NewService(repo Repository, nodes catalog.NodeReader, boxes Boxes, tx Transactor, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		nodes:  nodes,
		boxes:  boxes,
		tx:     tx,
		logger: logger,
	}
}

// # Sources

func (service *Service) ListSources(ctx context.Context) ([]*Source, error) {
	return service.repo.ListSources(ctx)
}

func (service *Service) GetSource(ctx context.Context, id int64) (*Source, error) {
	source, err := service.repo.GetSource(ctx, id)
	if err != nil {
		return nil, notFoundAsSource(err)
	}
	return source, nil
}

// CreateSource stores a new source. The slug is derived from the name when
// left empty and must be unique.
func (service *Service) CreateSource(ctx context.Context, source *Source) error {
	normalizeSource(source)
	if err := validateSource(source); err != nil {
		return err
	}

	err := service.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := service.checkSlugFree(ctx, source.Slug, 0); err != nil {
			return err
		}
		return service.repo.CreateSource(ctx, source)
	})
	if err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "source_created",
		slog.Int64("source_id", source.ID),
		slog.String("slug", source.Slug),
		slog.String("request_id", ctxutil.GetRequestID(ctx)),
	)
	return nil
}

func (service *Service) UpdateSource(ctx context.Context, id int64, source *Source) error {
	normalizeSource(source)
	if err := validateSource(source); err != nil {
		return err
	}

	err := service.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := service.repo.GetSource(ctx, id)
		if err != nil {
			return notFoundAsSource(err)
		}

		if source.Slug != current.Slug {
			if err := service.checkSlugFree(ctx, source.Slug, id); err != nil {
				return err
			}
		}

		source.ID = id
		source.CreatedAt = current.CreatedAt
		return service.repo.UpdateSource(ctx, source)
	})
	if err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "source_updated", slog.Int64("source_id", id), slog.String("request_id", ctxutil.GetRequestID(ctx)))
	return nil
}

/*
DeleteSource removes a source that no record references.

Returns:
  - error: DEPENDENT_RECORDS_EXIST listing the link count per record type
*/
func (service *Service) DeleteSource(ctx context.Context, id int64) error {
	err := service.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := service.repo.GetSource(ctx, id); err != nil {
			return notFoundAsSource(err)
		}

		counts, err := service.repo.CountLinks(ctx, id)
		if err != nil {
			return err
		}

		blockers := slice.Map(slice.Filter(counts, func(dependent catalog.Dependent) bool {
			return dependent.Count > 0
		}), func(dependent catalog.Dependent) apperr.FieldError {
			return apperr.FieldError{
				Field:   dependent.Relation,
				Message: fmt.Sprintf("%d %s link(s)", dependent.Count, dependent.Relation),
				Count:   dependent.Count,
			}
		})
		if len(blockers) > 0 {
			return apperr.DependentRecordsExist("Source", blockers...)
		}

		return service.repo.DeleteSource(ctx, id)
	})
	if err != nil {
		return err
	}

	service.logger.WarnContext(ctx, "source_deleted", slog.Int64("source_id", id), slog.String("request_id", ctxutil.GetRequestID(ctx)))
	return nil
}

// # Links

// ListLinks lists the sources linked to target, which must belong to caliberCode.
func (service *Service) ListLinks(ctx context.Context, caliberCode string, target Target) ([]*LinkedSource, error) {
	if err := service.checkTarget(ctx, caliberCode, target); err != nil {
		return nil, err
	}
	return service.repo.ListLinks(ctx, target)
}

// Link attaches a source to target. Linking the same pair twice is a uniqueness violation.
func (service *Service) Link(ctx context.Context, caliberCode string, link *Link) error {
	link.Note = pointer.NilIfBlank(link.Note)

	err := service.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := service.checkTarget(ctx, caliberCode, link.Target); err != nil {
			return err
		}
		if _, err := service.repo.GetSource(ctx, link.SourceID); err != nil {
			return notFoundAsSource(err)
		}

		_, err := service.repo.GetLink(ctx, link.Target, link.SourceID)
		switch {
		case err == nil:
			return apperr.UniquenessViolation("source_id", fmt.Sprintf("%d", link.SourceID))
		case !apperr.HasCode(err, apperr.CodeNotFound):
			return err
		}

		return service.repo.CreateLink(ctx, link)
	})
	if err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "source_linked",
		slog.Int64("source_id", link.SourceID),
		slog.String("target", link.Target.String()),
		slog.String("caliber", caliberCode),
	)
	return nil
}

func (service *Service) Unlink(ctx context.Context, caliberCode string, target Target, sourceID int64) error {
	err := service.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := service.checkTarget(ctx, caliberCode, target); err != nil {
			return err
		}
		if err := service.repo.DeleteLink(ctx, target, sourceID); err != nil {
			return notFoundAs(err, "Source link")
		}
		return nil
	})
	if err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "source_unlinked",
		slog.Int64("source_id", sourceID),
		slog.String("target", target.String()),
		slog.String("caliber", caliberCode),
	)
	return nil
}

// checkTarget verifies the linked record exists inside caliberCode.
func (service *Service) checkTarget(ctx context.Context, caliberCode string, target Target) error {
	if target.Kind == TargetBox {
		_, err := service.boxes.GetBox(ctx, caliberCode, target.ID)
		return err
	}

	kind, err := node.ParseKind(string(target.Kind))
	if err != nil {
		return err
	}
	_, err = catalog.NewWalker(service.nodes).InCaliber(ctx, caliberCode, node.NewRef(kind, target.ID))
	return err
}

func (service *Service) checkSlugFree(ctx context.Context, slugValue string, self int64) error {
	found, err := service.repo.FindSourceBySlug(ctx, slugValue)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil
		}
		return err
	}
	if found.ID == self {
		return nil
	}
	return apperr.UniquenessViolation(FieldSlug, slugValue)
}

func notFoundAs(err error, resource string) error {
	if apperr.HasCode(err, apperr.CodeNotFound) {
		return apperr.NotFound(resource)
	}
	return err
}

func notFoundAsSource(err error) error {
	return notFoundAs(err, "Source")
}

// # Normalization & validation

func normalizeSource(source *Source) {
	source.Name = strings.TrimSpace(source.Name)
	source.Slug = strings.TrimSpace(source.Slug)
	if source.Slug == "" {
		source.Slug = slug.From(source.Name)
	}
	source.Description = pointer.NilIfBlank(source.Description)
	source.URL = pointer.NilIfBlank(source.URL)
}

func validateSource(source *Source) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, source.Name).MaxLen(FieldName, source.Name, 200)
	validator.Slug(FieldSlug, source.Slug).MaxLen(FieldSlug, source.Slug, 200)
	validator.URL(FieldURL, pointer.Val(source.URL))
	return validator.Err()
}
