package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/efreitasn/brokercore/internal/service"
)

// NewRouter creates a chi router with all routes registered, request
// logging, and Content-Type validation middleware.
func NewRouter(
	orderSvc *service.OrderService,
	quoteSvc *service.QuoteService,
	accountSvc *service.AccountService,
	logger *slog.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(requestLogging(logger))
	r.Use(contentTypeJSON)

	orderH := NewOrderHandler(orderSvc)
	quoteH := NewQuoteHandler(quoteSvc)
	accountH := NewAccountHandler(accountSvc)
	adminH := NewAdminHandler(orderSvc)

	// Health check.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Order routes.
	r.Post("/orders", orderH.CreateOrder)
	r.Get("/orders/{order_id}", orderH.GetOrder)
	r.Patch("/orders/{order_id}", orderH.AmendOrder)
	r.Delete("/orders/{order_id}", orderH.CancelOrder)

	// Quote routes (upserts trigger a rematch for the symbol).
	r.Put("/quotes/{symbol}", quoteH.UpsertQuote)
	r.Get("/quotes/{symbol}", quoteH.GetQuote)

	// Account seeding routes.
	r.Put("/accounts/{account_id}/cash", accountH.UpsertCash)
	r.Get("/accounts/{account_id}/cash", accountH.GetCash)
	r.Put("/accounts/{account_id}/positions/{symbol}", accountH.UpsertPosition)
	r.Get("/accounts/{account_id}/positions/{symbol}", accountH.GetPosition)

	// Admin routes.
	r.Post("/admin/expire-day-orders", adminH.ExpireDayOrders)

	return r
}

// requestLogging returns middleware that logs each request's method, path,
// status code, and duration using slog.
func requestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// contentTypeJSON is middleware that validates Content-Type for POST, PUT,
// and PATCH requests before the handler runs.
func contentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasBody := r.ContentLength != 0
		if hasBody && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
			ct := r.Header.Get("Content-Type")
			if ct == "" || !strings.HasPrefix(ct, "application/json") {
				WriteError(w, http.StatusBadRequest, "invalid_request",
					"Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
