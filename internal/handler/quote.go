package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/efreitasn/brokercore/internal/domain"
	"github.com/efreitasn/brokercore/internal/service"
)

// QuoteHandler handles HTTP requests for quote endpoints.
type QuoteHandler struct {
	quoteSvc *service.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(quoteSvc *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteSvc: quoteSvc}
}

// upsertQuoteRequest is the JSON request body for PUT /quotes/{symbol}.
type upsertQuoteRequest struct {
	Price             decimal.Decimal `json:"price"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
}

// quoteResponse is the JSON projection of a quote.
type quoteResponse struct {
	Symbol            string          `json:"symbol"`
	Price             decimal.Decimal `json:"price"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	UpdatedAt         string          `json:"updated_at"`
}

func buildQuoteResponse(q *domain.Quote) quoteResponse {
	return quoteResponse{
		Symbol:            q.Symbol,
		Price:             q.Price,
		AvailableQuantity: q.AvailableQty,
		UpdatedAt:         q.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// UpsertQuote handles PUT /quotes/{symbol}. Open DAY orders on the symbol
// are rematched before the response is written.
func (h *QuoteHandler) UpsertQuote(w http.ResponseWriter, r *http.Request) {
	var req upsertQuoteRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	quote, err := h.quoteSvc.UpsertQuote(chi.URLParam(r, "symbol"), req.Price, req.AvailableQuantity)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildQuoteResponse(quote))
}

// GetQuote handles GET /quotes/{symbol}.
func (h *QuoteHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.quoteSvc.GetQuote(chi.URLParam(r, "symbol"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildQuoteResponse(quote))
}
