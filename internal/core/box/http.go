// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package box

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
	requestutil "github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/request"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/respond"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts box routes on a /calibers/{caliber} sub-router.
func (handler *Handler) RegisterRoutes(router chi.Router, requireEditor func(http.Handler) http.Handler) {
	// Public
	router.Get("/nodes/{kind}/{id}/boxes", handler.listBoxes)
	router.Get("/boxes/{id}", handler.getBox)
	router.Get("/boxes/{id}/parent", handler.getParent)

	// Editors
	router.Group(func(editorRoute chi.Router) {
		editorRoute.Use(requireEditor)

		editorRoute.Post("/nodes/{kind}/{id}/boxes", handler.createBox)
		editorRoute.Patch("/boxes/{id}", handler.updateBox)
		editorRoute.Delete("/boxes/{id}", handler.deleteBox)
		editorRoute.Post("/boxes/{id}/move", handler.moveBox)
	})
}

// RegisterAdminRoutes mounts the cross-caliber integrity report.
func (handler *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/integrity", handler.integrity)
}

func (handler *Handler) listBoxes(writer http.ResponseWriter, request *http.Request) {
	parent, err := catalog.NodeRef(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	boxes, err := handler.service.ListBoxes(request.Context(), catalog.CaliberCode(request), parent)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, boxes)
}

func (handler *Handler) getBox(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	box, err := handler.service.GetBox(request.Context(), catalog.CaliberCode(request), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, box)
}

func (handler *Handler) getParent(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	attachment, err := handler.service.Attachment(request.Context(), catalog.CaliberCode(request), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, attachment)
}

func (handler *Handler) createBox(writer http.ResponseWriter, request *http.Request) {
	parent, err := catalog.NodeRef(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Box
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateBox(request.Context(), catalog.CaliberCode(request), parent, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, input)
}

func (handler *Handler) updateBox(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Box
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UpdateBox(request.Context(), catalog.CaliberCode(request), id, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, input)
}

func (handler *Handler) deleteBox(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteBox(request.Context(), catalog.CaliberCode(request), id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// moveInput names the new parent of a box.
type moveInput struct {
	ParentType string `json:"parent_type"`
	ParentID   int64  `json:"parent_id"`
}

func (handler *Handler) moveBox(writer http.ResponseWriter, request *http.Request) {
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

	kind, err := node.ParseKind(input.ParentType)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Move(request.Context(), catalog.CaliberCode(request), id, node.NewRef(kind, input.ParentID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

func (handler *Handler) integrity(writer http.ResponseWriter, request *http.Request) {
	dangling, err := handler.service.Dangling(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]any{"dangling_boxes": dangling, "count": len(dangling)})
}
