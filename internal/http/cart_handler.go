package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/slhealing/storefront/internal/cart"
	"github.com/slhealing/storefront/internal/checkout"
)

// CartHandler exposes the session cart and the checkout submission.
type CartHandler struct {
	sessions *cart.SessionStore
	checkout *checkout.Service
	logger   *zap.Logger
}

func NewCartHandler(sessions *cart.SessionStore, checkoutSvc *checkout.Service, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		checkout: checkoutSvc,
		logger:   logger,
	}
}

type AddItemRequestDTO struct {
	Product   string          `json:"product"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type CheckoutRequestDTO struct {
	checkout.Form
	PaymentMethod string `json:"payment_method"`
}

type CartView struct {
	SessionID string          `json:"session_id"`
	Items     []cart.LineItem `json:"items"`
	Total     string          `json:"total"`
	Notice    *cart.Notice    `json:"notice,omitempty"`
}

// CreateSession opens a new cart session.
func (h *CartHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id := h.sessions.Create()
	h.respondCart(w, http.StatusCreated, id, nil)
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session_id")
	h.respondCart(w, http.StatusOK, id, nil)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session_id")

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid input data")
		return
	}
	if req.Product == "" {
		respondError(w, http.StatusBadRequest, "Missing required field: product")
		return
	}
	if req.UnitPrice.IsNegative() {
		respondError(w, http.StatusBadRequest, "unit_price must not be negative")
		return
	}

	notice, err := h.sessions.AddItem(id, req.Product, req.UnitPrice)
	if err != nil {
		h.respondSessionError(w, err)
		return
	}

	h.respondCart(w, http.StatusOK, id, &notice)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session_id")

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "index must be an integer")
		return
	}

	// out of range indices are a silent no-op
	notice, removed, err := h.sessions.RemoveItem(id, index)
	if err != nil {
		h.respondSessionError(w, err)
		return
	}

	if removed {
		h.respondCart(w, http.StatusOK, id, &notice)
		return
	}
	h.respondCart(w, http.StatusOK, id, nil)
}

// Checkout runs the submit flow for the session's cart.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session_id")

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid input data")
		return
	}

	confirmation, err := h.checkout.Submit(r.Context(), id, req.Form, req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrSessionNotFound):
			respondError(w, http.StatusNotFound, "Cart session not found")
		case errors.Is(err, cart.ErrSubmissionInFlight):
			respondError(w, http.StatusConflict, "Order submission already in progress")
		case errors.Is(err, checkout.ErrEmptyCart):
			respondError(w, http.StatusBadRequest, "Your cart is empty!")
		default:
			respondError(w, http.StatusBadGateway, "Error: "+err.Error())
		}
		return
	}

	respondJSON(w, http.StatusOK, confirmation)
}

func (h *CartHandler) respondCart(w http.ResponseWriter, status int, id string, notice *cart.Notice) {
	view, err := h.sessions.View(id)
	if err != nil {
		h.respondSessionError(w, err)
		return
	}

	respondJSON(w, status, CartView{
		SessionID: id,
		Items:     view.Items(),
		Total:     view.FormattedTotal(),
		Notice:    notice,
	})
}

func (h *CartHandler) respondSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, cart.ErrSessionNotFound) {
		respondError(w, http.StatusNotFound, "Cart session not found")
		return
	}
	h.logger.Error("cart session operation failed", zap.Error(err))
	respondError(w, http.StatusInternalServerError, "Internal server error")
}
