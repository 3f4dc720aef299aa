package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/inelac/inventory-backend/internal/inventory/service"
	"github.com/inelac/inventory-backend/pkg/httputil"
	"github.com/inelac/inventory-backend/pkg/logger"
)

// NotificationHandler handles stock-depletion notification endpoints
type NotificationHandler struct {
	notifications *service.NotificationService
	logger        *logger.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications *service.NotificationService, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: log}
}

// ListRecent lists notifications logged within the window (hours, default 24)
func (h *NotificationHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	hours, _ := strconv.Atoi(r.URL.Query().Get("hours"))

	notifications, err := h.notifications.ListRecent(r.Context(), time.Duration(hours)*time.Hour)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, notifications)
}

// ListDepleted lists the items currently at zero physical existence
func (h *NotificationHandler) ListDepleted(w http.ResponseWriter, r *http.Request) {
	items, err := h.notifications.ListCurrentlyDepleted(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, items)
}
