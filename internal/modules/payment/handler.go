package payment

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Handler exposes payment HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

// RegisterRoutes wires the payment endpoints. The callback endpoint carries no
// auth middleware — the provider signs nothing and retries on non-2xx, so it is
// reconciled purely against the transaction store. Dashboard reads sit behind
// the staff guard supplied by main.
func (h *Handler) RegisterRoutes(r *chi.Mux, staffOnly func(http.Handler) http.Handler) {
	r.Route("/api/v1/payments", func(r chi.Router) {
		r.Post("/stkpush", h.initiate)
		r.Post("/callback", h.callback)
		r.Post("/status", h.status)
		r.With(staffOnly).Get("/", h.list)
		r.With(staffOnly).Get("/{checkoutRequestId}", h.get)
	})
}

func (h *Handler) initiate(w http.ResponseWriter, r *http.Request) {
	var req InitiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	res, err := h.service.Initiate(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, res)
}

// callback always acknowledges with {ResultCode: 0}: the provider retries on
// anything else and retry storms would hand us duplicate notifications.
// Internal failures are logged, never surfaced.
func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	var envelope CallbackEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		log.Printf("payment: undecodable callback payload: %v", err)
		respond(w, http.StatusOK, ackBody{ResultCode: 0, ResultDesc: "Accepted"})
		return
	}
	if err := h.service.HandleCallback(r.Context(), envelope.Body.StkCallback); err != nil {
		log.Printf("payment: callback processing failed for %s: %v",
			envelope.Body.StkCallback.CheckoutRequestID, err)
	}
	respond(w, http.StatusOK, ackBody{ResultCode: 0, ResultDesc: "Accepted"})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CheckoutRequestID string `json:"checkout_request_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.CheckoutRequestID == "" {
		respond(w, http.StatusBadRequest, map[string]string{"error": "checkout_request_id is required"})
		return
	}

	res, err := h.service.QueryStatus(r.Context(), req.CheckoutRequestID)
	if err != nil {
		respondError(w, err)
		return
	}

	switch res.Status {
	case TxCompleted:
		respond(w, http.StatusOK, map[string]interface{}{
			"success":        true,
			"transaction_id": res.ReceiptNumber,
		})
	default:
		// FAILED and still-PENDING are both non-success here; the orchestrator
		// decides whether to poll again based on the status field.
		respond(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"status":  res.Status,
			"message": res.ResultDescription,
		})
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "checkoutRequestId")
	tx, err := h.service.GetTransaction(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, tx)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	txs, err := h.service.ListTransactions(r.Context(), status, limit, offset)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, txs)
}

// ── Error mapping ─────────────────────────────────────────────────────────────

// respondError maps the typed taxonomy onto HTTP statuses. The short message
// never carries credentials or raw provider payloads.
func respondError(w http.ResponseWriter, err error) {
	var (
		validation *ValidationError
		auth       *AuthError
		transport  *TransportError
		rejection  *Rejection
	)
	switch {
	case errors.As(err, &validation):
		respond(w, http.StatusBadRequest, map[string]string{"error": validation.Error()})
	case errors.As(err, &auth):
		respond(w, http.StatusBadGateway, map[string]string{
			"error":      "payment gateway configuration issue",
			"error_type": "auth",
		})
	case errors.As(err, &transport):
		respond(w, http.StatusServiceUnavailable, map[string]string{
			"error":      "payment gateway unreachable, try again",
			"error_type": "transport",
		})
	case errors.As(err, &rejection):
		respond(w, http.StatusUnprocessableEntity, map[string]string{
			"error":      rejection.Description,
			"error_type": "rejection",
		})
	case errors.Is(err, ErrTransactionNotFound):
		respond(w, http.StatusNotFound, map[string]string{"error": "transaction not found"})
	default:
		respond(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
