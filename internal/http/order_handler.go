package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/slhealing/storefront/internal/notify"
)

type SuccessResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	OrderRef string `json:"order_ref"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// OrderHandler exposes the order notification pipeline as a single POST
// endpoint.
type OrderHandler struct {
	notifier *notify.Notifier
	maxBody  int64
	logger   *zap.Logger
}

func NewOrderHandler(notifier *notify.Notifier, maxBody int64, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		notifier: notifier,
		maxBody:  maxBody,
		logger:   logger,
	}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, h.maxBody)

	result, err := h.notifier.Process(r.Context(), body)
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{
		Success:  true,
		Message:  result.Message,
		OrderRef: result.OrderRef,
	})
}

// respondPipelineError maps the pipeline taxonomy onto the wire contract.
func (h *OrderHandler) respondPipelineError(w http.ResponseWriter, err error) {
	var missing *notify.MissingFieldError

	switch {
	case errors.Is(err, notify.ErrMalformedInput):
		respondError(w, http.StatusBadRequest, "Invalid input data")
	case errors.As(err, &missing):
		respondError(w, http.StatusBadRequest, "Missing required field: "+missing.Field)
	case errors.Is(err, notify.ErrInvalidCustomerEmail):
		respondError(w, http.StatusBadRequest, "Invalid customer email")
	case errors.Is(err, notify.ErrInvalidOrderEmail):
		respondError(w, http.StatusBadRequest, "Invalid customer email in order data")
	case errors.Is(err, notify.ErrDeliveryFailure):
		respondError(w, http.StatusInternalServerError,
			"Failed to send one or more emails. Please check your server configuration.")
	default:
		h.logger.Error("order notification failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}
