// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package rollup

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/respond"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts rollups on a /calibers/{caliber} sub-router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/rollup", handler.caliberRollup)
	router.Get("/nodes/{kind}/{id}/rollup", handler.nodeRollup)
}

func (handler *Handler) caliberRollup(writer http.ResponseWriter, request *http.Request) {
	result, err := handler.service.Caliber(request.Context(), catalog.CaliberCode(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

func (handler *Handler) nodeRollup(writer http.ResponseWriter, request *http.Request) {
	root, err := catalog.NodeRef(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Node(request.Context(), catalog.CaliberCode(request), root)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}
