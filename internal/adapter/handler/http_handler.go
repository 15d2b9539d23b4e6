package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rl1809/cloth-store/internal/core/domain"
	"github.com/rl1809/cloth-store/internal/core/service"
	"github.com/rl1809/cloth-store/internal/port"
)

type HTTPHandler struct {
	store    *service.StoreService
	purchase purchaseFlow
	logger   *zap.Logger
}

func NewHTTPHandler(store *service.StoreService, idempotency port.IdempotencyStore, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		store:    store,
		purchase: purchaseFlow{store: store, idempotency: idempotency, logger: logger},
		logger:   logger,
	}
}

func (h *HTTPHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, MessageResponse{Message: "missing required fields"})
		return
	}

	item := h.store.AddItem(service.NewItem{
		Name:     req.Name,
		Category: req.Category,
		Size:     req.Size,
		Color:    req.Color,
		Price:    req.Price,
		Stock:    req.Stock,
	})
	writeJSON(w, http.StatusCreated, toItemResponse(item))
}

func (h *HTTPHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toItemList(h.store.Inventory()))
}

func (h *HTTPHandler) SearchItems(w http.ResponseWriter, r *http.Request) {
	field, err := domain.ParseSearchField(r.URL.Query().Get("field"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toItemList(h.store.Search(r.URL.Query().Get("q"), field)))
}

func (h *HTTPHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, MessageResponse{Message: "invalid item id"})
		return
	}

	var req UpdateStockRequest
	if !h.decode(w, r, &req) {
		return
	}

	update, err := h.store.UpdateStock(itemID, req.Delta)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStockResponse(update))
}

func (h *HTTPHandler) AddCustomer(w http.ResponseWriter, r *http.Request) {
	var req AddCustomerRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, MessageResponse{Message: "missing required fields"})
		return
	}

	writeJSON(w, http.StatusCreated, toCustomerResponse(h.store.AddCustomer(req.Name, req.Contact)))
}

func (h *HTTPHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toCustomerList(h.store.Customers()))
}

func (h *HTTPHandler) RecordPurchase(w http.ResponseWriter, r *http.Request) {
	var req RecordPurchaseRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.purchase.record(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	status := http.StatusOK
	if resp.Recorded {
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}

func (h *HTTPHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	purchases := h.store.Purchases()

	resp := PurchaseListResponse{Purchases: make([]PurchaseResponse, 0, len(purchases)), Empty: len(purchases) == 0}
	for _, p := range purchases {
		resp.Purchases = append(resp.Purchases, toPurchaseResponse(p, h.store.Total(p)))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "items.quantity" {
			h.writeError(w, fmt.Errorf("quantity %s: %w", typeErr.Value, service.ErrInvalidQuantity))
			return false
		}
		writeJSON(w, http.StatusBadRequest, MessageResponse{Message: "invalid request body"})
		return false
	}
	return true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, service.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrInsufficientStock):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, ErrDuplicateRequest):
		status, message = http.StatusConflict, "duplicate request"
	case errors.Is(err, service.ErrInvalidQuantity):
		status, message = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrInvalidSearchField):
		status, message = http.StatusBadRequest, err.Error()
	default:
		h.logger.Error("request failed", zap.Error(err))
	}

	writeJSON(w, status, MessageResponse{Success: false, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
