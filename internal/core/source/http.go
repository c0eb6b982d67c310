// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package source

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
	requestutil "github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/request"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/respond"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/validate"
)

// dateLayout is the wire format of date_sourced.
const dateLayout = "2006-01-02"

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the global source index on /sources.
func (handler *Handler) RegisterRoutes(router chi.Router, requireEditor func(http.Handler) http.Handler) {
	// Public
	router.Get("/", handler.listSources)
	router.Get("/{id}", handler.getSource)

	// Editors
	router.Group(func(editorRoute chi.Router) {
		editorRoute.Use(requireEditor)

		editorRoute.Post("/", handler.createSource)
		editorRoute.Patch("/{id}", handler.updateSource)
		editorRoute.Delete("/{id}", handler.deleteSource)
	})
}

// RegisterLinkRoutes mounts the per-record link routes on a /calibers/{caliber} sub-router.
func (handler *Handler) RegisterLinkRoutes(router chi.Router, requireEditor func(http.Handler) http.Handler) {
	router.Get("/nodes/{kind}/{id}/sources", handler.listLinks)

	router.Group(func(editorRoute chi.Router) {
		editorRoute.Use(requireEditor)

		editorRoute.Post("/nodes/{kind}/{id}/sources", handler.link)
		editorRoute.Delete("/nodes/{kind}/{id}/sources/{sourceID}", handler.unlink)
	})
}

func (handler *Handler) listSources(writer http.ResponseWriter, request *http.Request) {
	sources, err := handler.service.ListSources(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, sources)
}

func (handler *Handler) getSource(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	source, err := handler.service.GetSource(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, source)
}

func (handler *Handler) createSource(writer http.ResponseWriter, request *http.Request) {
	var input Source
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateSource(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, input)
}

func (handler *Handler) updateSource(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Source
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UpdateSource(request.Context(), id, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, input)
}

func (handler *Handler) deleteSource(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteSource(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// targetOf reads the {kind} and {id} URL parameters as a link target.
func targetOf(request *http.Request) (Target, error) {
	kind, err := ParseTargetKind(requestutil.Param(request, "kind"))
	if err != nil {
		return Target{}, err
	}

	id, err := requestutil.ID(request, "id")
	if err != nil {
		return Target{}, err
	}
	return Target{Kind: kind, ID: id}, nil
}

func (handler *Handler) listLinks(writer http.ResponseWriter, request *http.Request) {
	target, err := targetOf(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	linked, err := handler.service.ListLinks(request.Context(), catalog.CaliberCode(request), target)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, linked)
}

// linkInput is the body of a link request.
type linkInput struct {
	SourceID    int64   `json:"source_id"`
	DateSourced string  `json:"date_sourced"`
	Note        *string `json:"note"`
}

func (handler *Handler) link(writer http.ResponseWriter, request *http.Request) {
	target, err := targetOf(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input linkInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	link := &Link{SourceID: input.SourceID, Target: target, Note: input.Note}
	if input.DateSourced != "" {
		sourced, err := time.Parse(dateLayout, input.DateSourced)
		if err != nil {
			respond.Error(writer, request, validate.RequiredError("date_sourced", "Must be a date formatted YYYY-MM-DD"))
			return
		}
		link.DateSourced = &sourced
	}

	if err := handler.service.Link(request.Context(), catalog.CaliberCode(request), link); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, link)
}

func (handler *Handler) unlink(writer http.ResponseWriter, request *http.Request) {
	target, err := targetOf(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sourceID, err := requestutil.ID(request, "sourceID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Unlink(request.Context(), catalog.CaliberCode(request), target, sourceID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
