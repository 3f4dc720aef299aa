package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/inelac/inventory-backend/internal/inventory/repository"
	"github.com/inelac/inventory-backend/internal/inventory/service"
	"github.com/inelac/inventory-backend/pkg/errors"
	"github.com/inelac/inventory-backend/pkg/httputil"
	"github.com/inelac/inventory-backend/pkg/logger"
)

// LedgerHandler handles movement ledger endpoints
type LedgerHandler struct {
	ledger *repository.LedgerRepository
	export *service.ExportService
	logger *logger.Logger
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledger *repository.LedgerRepository, export *service.ExportService, log *logger.Logger) *LedgerHandler {
	return &LedgerHandler{
		ledger: ledger,
		export: export,
		logger: log,
	}
}

// List lists ledger entries, newest first
func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	entries, total, err := h.ledger.List(r.Context(), page, perPage)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}

	httputil.JSONWithMeta(w, http.StatusOK, entries, &httputil.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

// Export streams the ledger entries of a date range as CSV
func (h *LedgerHandler) Export(w http.ResponseWriter, r *http.Request) {
	start, err := parseDateParam(r, "start")
	if err != nil {
		httputil.Error(w, err)
		return
	}
	end, err := parseDateParam(r, "end")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	data, err := h.export.LedgerCSV(r.Context(), start, end)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	filename := "movements_" + start.Format("2006-01-02") + "_" + end.Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func parseDateParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, errors.BadRequest(name + " query parameter is required")
	}

	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, errors.BadRequest(name + " must be a date in YYYY-MM-DD format")
	}
	return t, nil
}
