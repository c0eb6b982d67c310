// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package search

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
	requestutil "github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/request"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/respond"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the display-id lookup on a /calibers/{caliber} sub-router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/search", handler.lookup)
}

func (handler *Handler) lookup(writer http.ResponseWriter, request *http.Request) {
	hit, err := handler.service.Lookup(request.Context(), catalog.CaliberCode(request), requestutil.Query(request, FieldQuery))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, hit)
}
