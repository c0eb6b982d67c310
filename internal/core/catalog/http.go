// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package catalog

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
	requestutil "github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/request"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/respond"
	"github.com/spaulcurtis/cartridge-collection-sub000/pkg/pagination"
)

// ParamCaliber is the URL parameter carrying the active caliber code.
const ParamCaliber = "caliber"

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterCaliberRoutes mounts the caliber index on /calibers.
func (handler *Handler) RegisterCaliberRoutes(router chi.Router) {
	router.Get("/", handler.listCalibers)
}

// RegisterRoutes mounts the hierarchy on a /calibers/{caliber} sub-router.
// requireEditor guards every mutating route.
func (handler *Handler) RegisterRoutes(router chi.Router, requireEditor func(http.Handler) http.Handler) {
	// Public
	router.Get("/", handler.getCaliber)
	router.Get("/countries", handler.listCountries)
	router.Get("/countries/{id}", handler.getNode(node.KindCountry))
	router.Get("/countries/{id}/manufacturers", handler.listChildren(node.KindCountry, node.KindManufacturer))
	router.Get("/manufacturers/{id}", handler.getNode(node.KindManufacturer))
	router.Get("/manufacturers/{id}/headstamps", handler.listChildren(node.KindManufacturer, node.KindHeadstamp))
	router.Get("/headstamps/{id}", handler.getNode(node.KindHeadstamp))
	router.Get("/headstamps/{id}/loads", handler.listChildren(node.KindHeadstamp, node.KindLoad))
	router.Get("/loads/{id}", handler.getNode(node.KindLoad))
	router.Get("/loads/{id}/dates", handler.listChildren(node.KindLoad, node.KindDate))
	router.Get("/loads/{id}/variations", handler.listChildren(node.KindLoad, node.KindVariation))
	router.Get("/dates/{id}", handler.getNode(node.KindDate))
	router.Get("/dates/{id}/variations", handler.listChildren(node.KindDate, node.KindVariation))
	router.Get("/variations/{id}", handler.getNode(node.KindVariation))
	router.Get("/nodes/{kind}/{id}", handler.getAnyNode)
	router.Get("/nodes/{kind}/{id}/ancestry", handler.ancestry)

	// Editors
	router.Group(func(editorRoute chi.Router) {
		editorRoute.Use(requireEditor)

		editorRoute.Post("/countries", handler.createCountry)
		editorRoute.Patch("/countries/{id}", updateHandler(handler.service.UpdateCountry))
		editorRoute.Delete("/countries/{id}", handler.deleteNode(node.KindCountry))

		editorRoute.Post("/countries/{id}/manufacturers", createHandler(handler.service.CreateManufacturer))
		editorRoute.Patch("/manufacturers/{id}", updateHandler(handler.service.UpdateManufacturer))
		editorRoute.Delete("/manufacturers/{id}", handler.deleteNode(node.KindManufacturer))
		editorRoute.Post("/manufacturers/{id}/move", handler.move(node.KindManufacturer))

		editorRoute.Post("/manufacturers/{id}/headstamps", createHandler(handler.service.CreateHeadstamp))
		editorRoute.Patch("/headstamps/{id}", updateHandler(handler.service.UpdateHeadstamp))
		editorRoute.Delete("/headstamps/{id}", handler.deleteNode(node.KindHeadstamp))
		editorRoute.Post("/headstamps/{id}/move", handler.move(node.KindHeadstamp))

		editorRoute.Post("/headstamps/{id}/loads", createHandler(handler.service.CreateLoad))
		editorRoute.Patch("/loads/{id}", updateHandler(handler.service.UpdateLoad))
		editorRoute.Delete("/loads/{id}", handler.deleteNode(node.KindLoad))
		editorRoute.Post("/loads/{id}/move", handler.move(node.KindLoad))

		editorRoute.Post("/loads/{id}/dates", createHandler(handler.service.CreateDate))
		editorRoute.Patch("/dates/{id}", updateHandler(handler.service.UpdateDate))
		editorRoute.Delete("/dates/{id}", handler.deleteNode(node.KindDate))

		editorRoute.Post("/loads/{id}/variations", handler.createVariation(node.KindLoad))
		editorRoute.Post("/dates/{id}/variations", handler.createVariation(node.KindDate))
		editorRoute.Patch("/variations/{id}", updateHandler(handler.service.UpdateVariation))
		editorRoute.Delete("/variations/{id}", handler.deleteNode(node.KindVariation))
	})
}

// NodeRef reads the {kind} and {id} URL parameters.
func NodeRef(request *http.Request) (node.Ref, error) {
	kind, err := node.ParseKind(requestutil.Param(request, "kind"))
	if err != nil {
		return node.Ref{}, err
	}

	id, err := requestutil.ID(request, "id")
	if err != nil {
		return node.Ref{}, err
	}
	return node.NewRef(kind, id), nil
}

// CaliberCode reads the {caliber} URL parameter.
func CaliberCode(request *http.Request) string {
	return requestutil.Param(request, ParamCaliber)
}

func (handler *Handler) listCalibers(writer http.ResponseWriter, request *http.Request) {
	calibers, err := handler.service.ListCalibers(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, calibers)
}

func (handler *Handler) getCaliber(writer http.ResponseWriter, request *http.Request) {
	caliber, err := handler.service.GetCaliber(request.Context(), CaliberCode(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, caliber)
}

func (handler *Handler) listCountries(writer http.ResponseWriter, request *http.Request) {
	countries, err := handler.service.ListCountries(request.Context(), CaliberCode(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, countries)
}

func (handler *Handler) createCountry(writer http.ResponseWriter, request *http.Request) {
	var input Country
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateCountry(request.Context(), CaliberCode(request), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, input)
}

func (handler *Handler) getNode(kind node.Kind) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, err := requestutil.ID(request, "id")
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		found, err := handler.service.GetNode(request.Context(), CaliberCode(request), node.NewRef(kind, id))
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, found)
	}
}

func (handler *Handler) getAnyNode(writer http.ResponseWriter, request *http.Request) {
	ref, err := NodeRef(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	found, err := handler.service.GetNode(request.Context(), CaliberCode(request), ref)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, found)
}

func (handler *Handler) listChildren(parentKind, childKind node.Kind) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, err := requestutil.ID(request, "id")
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		children, err := handler.service.ListChildren(request.Context(), CaliberCode(request), node.NewRef(parentKind, id), childKind)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		paginationParams := pagination.FromRequest(request)
		start, end := paginationParams.Window(len(children))
		respond.Paginated(writer, children[start:end], pagination.NewMeta(paginationParams.Page, paginationParams.Limit, len(children)))
	}
}

func (handler *Handler) ancestry(writer http.ResponseWriter, request *http.Request) {
	ref, err := NodeRef(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	chain, err := handler.service.Ancestry(request.Context(), CaliberCode(request), ref)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, chain)
}

func (handler *Handler) createVariation(anchor node.Kind) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, err := requestutil.ID(request, "id")
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		var input Variation
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			respond.Error(writer, request, err)
			return
		}

		// The path names one anchor. A body naming the other one is left in
		// place so the parent rule rejects it.
		if anchor == node.KindLoad {
			input.LoadID = &id
		} else {
			input.DateID = &id
		}

		if err := handler.service.CreateVariation(request.Context(), CaliberCode(request), &input); err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.Created(writer, input)
	}
}

// moveInput is the body of a move request.
type moveInput struct {
	ParentID int64 `json:"parent_id"`
}

func (handler *Handler) move(kind node.Kind) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, err := requestutil.ID(request, "id")
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		var input moveInput
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			respond.Error(writer, request, err)
			return
		}

		result, err := handler.service.Move(request.Context(), CaliberCode(request), node.NewRef(kind, id), input.ParentID)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, result)
	}
}

func (handler *Handler) deleteNode(kind node.Kind) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, err := requestutil.ID(request, "id")
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		if err := handler.service.Delete(request.Context(), CaliberCode(request), node.NewRef(kind, id)); err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.NoContent(writer)
	}
}

// # Generic body handlers

// createHandler decodes a T and creates it under the {id} parent.
func createHandler[T any](create func(ctx context.Context, caliberCode string, parentID int64, input *T) error) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		parentID, err := requestutil.ID(request, "id")
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		var input T
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			respond.Error(writer, request, err)
			return
		}

		if err := create(request.Context(), CaliberCode(request), parentID, &input); err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.Created(writer, &input)
	}
}

// updateHandler decodes a T and applies it to the {id} node.
func updateHandler[T any](update func(ctx context.Context, caliberCode string, id int64, input *T) error) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, err := requestutil.ID(request, "id")
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		var input T
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			respond.Error(writer, request, err)
			return
		}

		if err := update(request.Context(), CaliberCode(request), id, &input); err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, &input)
	}
}
