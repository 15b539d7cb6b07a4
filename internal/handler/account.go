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

// AccountHandler handles HTTP requests for account ledger seeding and
// reads.
type AccountHandler struct {
	accountSvc *service.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountSvc *service.AccountService) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc}
}

// upsertCashRequest is the JSON request body for
// PUT /accounts/{account_id}/cash.
type upsertCashRequest struct {
	AvailableCash decimal.Decimal `json:"available_cash"`
}

// upsertPositionRequest is the JSON request body for
// PUT /accounts/{account_id}/positions/{symbol}.
type upsertPositionRequest struct {
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	AveragePrice      decimal.Decimal `json:"average_price"`
}

// cashResponse is the JSON projection of a cash balance.
type cashResponse struct {
	AccountID     int64           `json:"account_id"`
	AvailableCash decimal.Decimal `json:"available_cash"`
	HeldCash      decimal.Decimal `json:"held_cash"`
	UpdatedAt     string          `json:"updated_at"`
}

// positionResponse is the JSON projection of a position.
type positionResponse struct {
	AccountID         int64           `json:"account_id"`
	Symbol            string          `json:"symbol"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	HeldQuantity      decimal.Decimal `json:"held_quantity"`
	AveragePrice      decimal.Decimal `json:"average_price"`
	UpdatedAt         string          `json:"updated_at"`
}

func buildCashResponse(c *domain.CashBalance) cashResponse {
	return cashResponse{
		AccountID:     c.AccountID,
		AvailableCash: c.AvailableCash,
		HeldCash:      c.HeldCash,
		UpdatedAt:     c.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func buildPositionResponse(p *domain.Position) positionResponse {
	return positionResponse{
		AccountID:         p.AccountID,
		Symbol:            p.Symbol,
		AvailableQuantity: p.AvailableQty,
		HeldQuantity:      p.HeldQty,
		AveragePrice:      p.AveragePrice,
		UpdatedAt:         p.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// UpsertCash handles PUT /accounts/{account_id}/cash.
func (h *AccountHandler) UpsertCash(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseAccountIDParam(w, r)
	if !ok {
		return
	}

	var req upsertCashRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	cash, err := h.accountSvc.UpsertCash(accountID, req.AvailableCash)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildCashResponse(cash))
}

// GetCash handles GET /accounts/{account_id}/cash.
func (h *AccountHandler) GetCash(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseAccountIDParam(w, r)
	if !ok {
		return
	}

	cash, err := h.accountSvc.GetCash(accountID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildCashResponse(cash))
}

// UpsertPosition handles PUT /accounts/{account_id}/positions/{symbol}.
func (h *AccountHandler) UpsertPosition(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseAccountIDParam(w, r)
	if !ok {
		return
	}

	var req upsertPositionRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	position, err := h.accountSvc.UpsertPosition(accountID, chi.URLParam(r, "symbol"), req.AvailableQuantity, req.AveragePrice)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildPositionResponse(position))
}

// GetPosition handles GET /accounts/{account_id}/positions/{symbol}.
func (h *AccountHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseAccountIDParam(w, r)
	if !ok {
		return
	}

	position, err := h.accountSvc.GetPosition(accountID, chi.URLParam(r, "symbol"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildPositionResponse(position))
}

// parseAccountIDParam reads the account_id URL parameter, writing a 400
// response when it is malformed.
func parseAccountIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "account_id"), 10, 64)
	if err != nil || accountID <= 0 {
		WriteError(w, http.StatusBadRequest, "validation_error", "account_id must be a positive integer")
		return 0, false
	}
	return accountID, true
}
