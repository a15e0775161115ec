package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rl1809/stock-service/internal/core/domain"
	"github.com/rl1809/stock-service/internal/core/service"
)

type HTTPHandler struct {
	stockService *service.StockService
}

func NewHTTPHandler(stockService *service.StockService) *HTTPHandler {
	return &HTTPHandler{stockService: stockService}
}

func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("POST /api/stocks", h.CreateStock)
	mux.HandleFunc("GET /api/stocks/{skuID}", h.GetStock)
	mux.HandleFunc("PUT /api/stocks/{skuID}", h.UpdateStock)
	mux.HandleFunc("DELETE /api/stocks/{skuID}", h.DeleteStock)
	mux.HandleFunc("POST /api/stocks/{skuID}/increase", h.IncreaseStock)
	mux.HandleFunc("POST /api/stocks/{skuID}/decrease", h.DecreaseStock)
}

type StockResponse struct {
	ID         string    `json:"id,omitempty"`
	SKUID      string    `json:"sku_id"`
	Quantity   int       `json:"quantity"`
	Version    int       `json:"version"`
	CreatedAt  time.Time `json:"created_at,omitzero"`
	ModifiedAt time.Time `json:"modified_at,omitzero"`
}

type CreateStockRequest struct {
	SKUID    string `json:"sku_id"`
	Quantity int    `json:"quantity"`
}

type AdjustStockRequest struct {
	Quantity int `json:"quantity"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func (h *HTTPHandler) CreateStock(w http.ResponseWriter, r *http.Request) {
	var req CreateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}
	if req.SKUID == "" || req.Quantity < 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "missing required fields"})
		return
	}

	rec, err := h.stockService.CreateStock(r.Context(), &domain.StockRecord{
		SKUID:    req.SKUID,
		Quantity: req.Quantity,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(rec))
}

func (h *HTTPHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	rec, err := h.stockService.GetStockBySKU(r.Context(), r.PathValue("skuID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(rec))
}

func (h *HTTPHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	var req AdjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	rec, err := h.stockService.UpdateStock(r.Context(), &domain.StockRecord{
		SKUID:    r.PathValue("skuID"),
		Quantity: req.Quantity,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(rec))
}

func (h *HTTPHandler) DeleteStock(w http.ResponseWriter, r *http.Request) {
	if _, err := h.stockService.DeleteStock(r.Context(), r.PathValue("skuID")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) IncreaseStock(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.stockService.IncreaseStock)
}

func (h *HTTPHandler) DecreaseStock(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.stockService.DecreaseStock)
}

func (h *HTTPHandler) adjust(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, skuID string, quantity int) (*domain.StockRecord, error)) {
	var req AdjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	rec, err := op(r.Context(), r.PathValue("skuID"), req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(rec))
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func toResponse(rec *domain.StockRecord) StockResponse {
	return StockResponse{
		ID:         rec.ID,
		SKUID:      rec.SKUID,
		Quantity:   rec.Quantity,
		Version:    rec.Version,
		CreatedAt:  rec.CreatedAt,
		ModifiedAt: rec.ModifiedAt,
	}
}

// writeError maps the domain error taxonomy to HTTP statuses; the status
// lives here at the boundary, not on the error types.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrStockNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Message: "stock not found"})
	case errors.Is(err, domain.ErrInsufficientStock):
		writeJSON(w, http.StatusConflict, ErrorResponse{Message: "insufficient stock"})
	case errors.Is(err, domain.ErrVersionConflict):
		writeJSON(w, http.StatusConflict, ErrorResponse{Message: "concurrent modification, retry"})
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "quantity must be positive"})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
