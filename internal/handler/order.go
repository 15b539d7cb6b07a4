package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/efreitasn/brokercore/internal/domain"
	"github.com/efreitasn/brokercore/internal/service"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	orderSvc *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// createOrderRequest is the JSON request body for POST /orders.
type createOrderRequest struct {
	AccountID      int64            `json:"account_id"`
	IdempotencyKey string           `json:"idempotency_key"`
	Symbol         string           `json:"symbol"`
	Side           string           `json:"side"`
	OrderType      string           `json:"order_type"`
	TimeInForce    *string          `json:"time_in_force"`
	LimitPrice     *decimal.Decimal `json:"limit_price"`
	Quantity       decimal.Decimal  `json:"quantity"`
}

// amendOrderRequest is the JSON request body for PATCH /orders/{order_id}.
type amendOrderRequest struct {
	AccountID         int64            `json:"account_id"`
	LimitPrice        *decimal.Decimal `json:"limit_price"`
	RemainingQuantity *decimal.Decimal `json:"remaining_quantity"`
}

// orderResponse is the JSON projection of an order and its fills.
type orderResponse struct {
	OrderID           string           `json:"order_id"`
	AccountID         int64            `json:"account_id"`
	IdempotencyKey    string           `json:"idempotency_key"`
	Symbol            string           `json:"symbol"`
	Side              string           `json:"side"`
	OrderType         string           `json:"order_type"`
	TimeInForce       string           `json:"time_in_force"`
	LimitPrice        *decimal.Decimal `json:"limit_price"`
	Quantity          decimal.Decimal  `json:"quantity"`
	FilledQuantity    decimal.Decimal  `json:"filled_quantity"`
	RemainingQuantity decimal.Decimal  `json:"remaining_quantity"`
	Status            string           `json:"status"`
	RejectReason      *string          `json:"reject_reason"`
	CreatedAt         string           `json:"created_at"`
	UpdatedAt         string           `json:"updated_at"`
	Fills             []fillResponse   `json:"fills"`
}

// fillResponse is a single execution in the order response.
type fillResponse struct {
	ExecutionID  string          `json:"execution_id"`
	FillPrice    decimal.Decimal `json:"fill_price"`
	FillQuantity decimal.Decimal `json:"fill_quantity"`
	FeeAmount    decimal.Decimal `json:"fee_amount"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	FilledAt     string          `json:"filled_at"`
}

func buildOrderResponse(detail *service.OrderDetail) orderResponse {
	o := detail.Order

	fills := make([]fillResponse, 0, len(detail.Fills))
	for _, f := range detail.Fills {
		fills = append(fills, fillResponse{
			ExecutionID:  f.ExecutionID,
			FillPrice:    f.FillPrice,
			FillQuantity: f.FillQuantity,
			FeeAmount:    f.FeeAmount,
			TaxAmount:    f.TaxAmount,
			FilledAt:     f.FilledAt.Format(time.RFC3339Nano),
		})
	}

	var rejectReason *string
	if o.RejectReason != "" {
		rejectReason = &o.RejectReason
	}

	return orderResponse{
		OrderID:           o.ID,
		AccountID:         o.AccountID,
		IdempotencyKey:    o.IdempotencyKey,
		Symbol:            o.Symbol,
		Side:              string(o.Side),
		OrderType:         string(o.OrderType),
		TimeInForce:       string(o.TimeInForce),
		LimitPrice:        o.LimitPrice,
		Quantity:          o.Quantity,
		FilledQuantity:    o.FilledQuantity,
		RemainingQuantity: o.RemainingQty,
		Status:            string(o.Status),
		RejectReason:      rejectReason,
		CreatedAt:         o.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:         o.UpdatedAt.Format(time.RFC3339Nano),
		Fills:             fills,
	}
}

// CreateOrder handles POST /orders.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var tif *domain.TimeInForce
	if req.TimeInForce != nil {
		t := domain.TimeInForce(*req.TimeInForce)
		tif = &t
	}

	detail, err := h.orderSvc.CreateOrder(service.CreateOrderRequest{
		AccountID:      req.AccountID,
		IdempotencyKey: req.IdempotencyKey,
		Symbol:         req.Symbol,
		Side:           domain.OrderSide(req.Side),
		OrderType:      domain.OrderType(req.OrderType),
		TimeInForce:    tif,
		LimitPrice:     req.LimitPrice,
		Quantity:       req.Quantity,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, buildOrderResponse(detail))
}

// GetOrder handles GET /orders/{order_id}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseAccountIDQuery(w, r)
	if !ok {
		return
	}

	detail, err := h.orderSvc.GetOrder(chi.URLParam(r, "order_id"), accountID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildOrderResponse(detail))
}

// AmendOrder handles PATCH /orders/{order_id}.
func (h *OrderHandler) AmendOrder(w http.ResponseWriter, r *http.Request) {
	var req amendOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	detail, err := h.orderSvc.AmendOrder(chi.URLParam(r, "order_id"), service.AmendOrderRequest{
		AccountID:         req.AccountID,
		LimitPrice:        req.LimitPrice,
		RemainingQuantity: req.RemainingQuantity,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildOrderResponse(detail))
}

// CancelOrder handles DELETE /orders/{order_id}.
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseAccountIDQuery(w, r)
	if !ok {
		return
	}

	detail, err := h.orderSvc.CancelOrder(chi.URLParam(r, "order_id"), accountID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildOrderResponse(detail))
}

// parseAccountIDQuery reads the account_id query parameter, writing a 400
// response when it is absent or malformed.
func parseAccountIDQuery(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("account_id")
	accountID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || accountID <= 0 {
		WriteError(w, http.StatusBadRequest, "validation_error", "account_id must be a positive integer")
		return 0, false
	}
	return accountID, true
}
