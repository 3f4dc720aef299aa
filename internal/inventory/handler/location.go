package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inelac/inventory-backend/internal/inventory/repository"
	"github.com/inelac/inventory-backend/internal/inventory/service"
	"github.com/inelac/inventory-backend/pkg/httputil"
	"github.com/inelac/inventory-backend/pkg/logger"
)

// LocationHandler handles warehouse location endpoints
type LocationHandler struct {
	locations *service.LocationService
	logger    *logger.Logger
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(locations *service.LocationService, log *logger.Logger) *LocationHandler {
	return &LocationHandler{locations: locations, logger: log}
}

// LocationRequest represents a location create/update request
type LocationRequest struct {
	Warehouse string `json:"warehouse" validate:"required"`
	Rack      string `json:"rack" validate:"required"`
	Position  string `json:"position" validate:"required"`
	RowLabel  string `json:"row_label" validate:"required"`
	IsActive  *bool  `json:"is_active,omitempty"`
}

// List lists all locations
func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	locations, err := h.locations.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, locations)
}

// Get gets a location by ID
func (h *LocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	loc, err := h.locations.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, loc)
}

// Create creates a new location
func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req LocationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	loc := &repository.Location{
		Warehouse: req.Warehouse,
		Rack:      req.Rack,
		Position:  req.Position,
		RowLabel:  req.RowLabel,
		IsActive:  true,
	}
	if req.IsActive != nil {
		loc.IsActive = *req.IsActive
	}

	if err := h.locations.Create(r.Context(), loc); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, loc)
}

// Update updates a location
func (h *LocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req LocationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	loc, err := h.locations.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	loc.Warehouse = req.Warehouse
	loc.Rack = req.Rack
	loc.Position = req.Position
	loc.RowLabel = req.RowLabel
	if req.IsActive != nil {
		loc.IsActive = *req.IsActive
	}

	if err := h.locations.Update(r.Context(), loc); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, loc)
}

// Delete removes a location
func (h *LocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.locations.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
