package handler

import (
	"net/http"

	"github.com/efreitasn/brokercore/internal/service"
)

// AdminHandler exposes operational triggers.
type AdminHandler struct {
	orderSvc *service.OrderService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(orderSvc *service.OrderService) *AdminHandler {
	return &AdminHandler{orderSvc: orderSvc}
}

// expireResponse is the JSON response for the expiration trigger.
type expireResponse struct {
	ExpiredCount int `json:"expired_count"`
}

// ExpireDayOrders handles POST /admin/expire-day-orders: a manual trigger
// for the session-close sweep.
func (h *AdminHandler) ExpireDayOrders(w http.ResponseWriter, r *http.Request) {
	count, err := h.orderSvc.ExpireDayOrders()
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, expireResponse{ExpiredCount: count})
}
