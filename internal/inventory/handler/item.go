package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inelac/inventory-backend/internal/inventory/repository"
	"github.com/inelac/inventory-backend/internal/inventory/service"
	"github.com/inelac/inventory-backend/pkg/actor"
	"github.com/inelac/inventory-backend/pkg/httputil"
	"github.com/inelac/inventory-backend/pkg/logger"
)

// ItemHandler handles inventory item endpoints
type ItemHandler struct {
	items     *service.ItemService
	reconcile *service.ReconciliationService
	dashboard *service.DashboardService
	logger    *logger.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(items *service.ItemService, reconcile *service.ReconciliationService, dashboard *service.DashboardService, log *logger.Logger) *ItemHandler {
	return &ItemHandler{
		items:     items,
		reconcile: reconcile,
		dashboard: dashboard,
		logger:    log,
	}
}

// List lists inventory items
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	itemType := r.URL.Query().Get("type")

	items, total, err := h.items.List(r.Context(), itemType, page, perPage)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}

	httputil.JSONWithMeta(w, http.StatusOK, items, &httputil.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

// Get gets an item by ID
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := h.items.GetByID(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, item)
}

// CreateItemRequest represents an item creation request
type CreateItemRequest struct {
	ItemType          string     `json:"item_type" validate:"required,oneof=chemical spare_part"`
	Code              int        `json:"code" validate:"required,gt=0"`
	Lot               string     `json:"lot,omitempty"`
	Description       string     `json:"description" validate:"required"`
	Unit              string     `json:"unit" validate:"required"`
	PhysicalExistence int        `json:"physical_existence" validate:"gte=0"`
	SystemExistence   int        `json:"system_existence" validate:"gte=0"`
	Retained          int        `json:"retained" validate:"gte=0"`
	Liberated         bool       `json:"liberated"`
	ExpiryDate        *time.Time `json:"expiry_date,omitempty"`
	IngestDate        *time.Time `json:"ingest_date,omitempty"`
	LocationID        *string    `json:"location_id,omitempty" validate:"omitempty,uuid"`
	WarehouseLabel    string     `json:"warehouse_label,omitempty"`
}

// Create registers a new inventory item
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	a := actor.MustFromContext(r.Context())

	item, err := h.reconcile.CreateItem(r.Context(), a.ID, service.NewItemInput{
		ItemType:          req.ItemType,
		Code:              req.Code,
		Lot:               req.Lot,
		Description:       req.Description,
		Unit:              req.Unit,
		PhysicalExistence: req.PhysicalExistence,
		SystemExistence:   req.SystemExistence,
		Retained:          req.Retained,
		Liberated:         req.Liberated,
		ExpiryDate:        req.ExpiryDate,
		IngestDate:        req.IngestDate,
		LocationID:        req.LocationID,
		WarehouseLabel:    req.WarehouseLabel,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	h.dashboard.InvalidateCache(r.Context())
	httputil.Created(w, item)
}

// UpdateItemRequest represents an item edit request
type UpdateItemRequest struct {
	Description       *string    `json:"description,omitempty"`
	Unit              *string    `json:"unit,omitempty"`
	Liberated         *bool      `json:"liberated,omitempty"`
	ExpiryDate        *time.Time `json:"expiry_date,omitempty"`
	IngestDate        *time.Time `json:"ingest_date,omitempty"`
	LocationID        *string    `json:"location_id,omitempty" validate:"omitempty,uuid"`
	WarehouseLabel    *string    `json:"warehouse_label,omitempty"`
	PhysicalExistence *int       `json:"physical_existence,omitempty" validate:"omitempty,gte=0"`
	SystemExistence   *int       `json:"system_existence,omitempty" validate:"omitempty,gte=0"`
}

// Update edits an item's fields and records the edit in the ledger
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateItemRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	key, err := h.resolveKey(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	a := actor.MustFromContext(r.Context())

	item, err := h.reconcile.EditItem(r.Context(), a.ID, key, service.EditItemInput{
		Description:       req.Description,
		Unit:              req.Unit,
		Liberated:         req.Liberated,
		ExpiryDate:        req.ExpiryDate,
		IngestDate:        req.IngestDate,
		LocationID:        req.LocationID,
		WarehouseLabel:    req.WarehouseLabel,
		PhysicalExistence: req.PhysicalExistence,
		SystemExistence:   req.SystemExistence,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	h.dashboard.InvalidateCache(r.Context())
	httputil.JSON(w, http.StatusOK, item)
}

// Delete removes an item after writing its final ledger entry
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key, err := h.resolveKey(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	a := actor.MustFromContext(r.Context())

	if err := h.reconcile.DeleteItem(r.Context(), a.ID, key); err != nil {
		httputil.Error(w, err)
		return
	}

	h.dashboard.InvalidateCache(r.Context())
	httputil.NoContent(w)
}

// MovementRequest represents an inbound or outbound stock movement
type MovementRequest struct {
	Kind     string `json:"kind" validate:"required,oneof=INBOUND OUTBOUND"`
	Quantity int    `json:"quantity" validate:"required"`
}

// ApplyMovement applies a stock movement to an item
func (h *ItemHandler) ApplyMovement(w http.ResponseWriter, r *http.Request) {
	var req MovementRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	key, err := h.resolveKey(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	a := actor.MustFromContext(r.Context())

	item, err := h.reconcile.ApplyMovement(r.Context(), a.ID, key, req.Kind, req.Quantity)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	h.dashboard.InvalidateCache(r.Context())
	httputil.JSON(w, http.StatusOK, item)
}

// RetainedDispositionRequest represents a retained stock disposition
type RetainedDispositionRequest struct {
	ReturnToStock int `json:"return_to_stock" validate:"gte=0"`
	PermanentExit int `json:"permanent_exit" validate:"gte=0"`
}

// DisposeRetained processes retained stock of a chemical lot
func (h *ItemHandler) DisposeRetained(w http.ResponseWriter, r *http.Request) {
	var req RetainedDispositionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	key, err := h.resolveKey(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	a := actor.MustFromContext(r.Context())

	item, err := h.reconcile.DisposeRetained(r.Context(), a.ID, key, req.ReturnToStock, req.PermanentExit)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	h.dashboard.InvalidateCache(r.Context())
	httputil.JSON(w, http.StatusOK, item)
}

// resolveKey loads the item addressed by the URL and returns its
// identifying key. Keys are immutable, so the lookup is race-free with
// respect to the locked mutation that follows.
func (h *ItemHandler) resolveKey(r *http.Request) (repository.ItemKey, error) {
	item, err := h.items.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return repository.ItemKey{}, err
	}
	return item.Key(), nil
}
