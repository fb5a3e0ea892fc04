package table

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Handler exposes table HTTP endpoints. QR resolution is public (the customer
// scans before any auth exists); management is staff-only.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux, staffOnly func(http.Handler) http.Handler) {
	r.Route("/api/v1/tables", func(r chi.Router) {
		r.Get("/qr/{slug}", h.resolveQR) // GET /api/v1/tables/qr/{slug}
		r.With(staffOnly).Get("/", h.listTables)
		r.With(staffOnly).Post("/", h.createTable)
		r.With(staffOnly).Patch("/{id}/active", h.setActive)
	})
}

func (h *Handler) resolveQR(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.ResolveQRSlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respond(w, http.StatusNotFound, map[string]string{"error": "unknown table code"})
		return
	}
	respond(w, http.StatusOK, map[string]string{"table_number": t.Number})
}

func (h *Handler) listTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.service.ListTables(r.Context())
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, tables)
}

func (h *Handler) createTable(w http.ResponseWriter, r *http.Request) {
	var req CreateTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	t, err := h.service.CreateTable(r.Context(), req)
	if err != nil {
		code := http.StatusInternalServerError
		if strings.Contains(err.Error(), "required") || strings.Contains(err.Error(), "greater than") {
			code = http.StatusBadRequest
		} else if strings.Contains(err.Error(), "already exists") {
			code = http.StatusConflict
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusCreated, t)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.service.SetActive(r.Context(), chi.URLParam(r, "id"), req.IsActive); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, ErrTableNotFound) {
			code = http.StatusNotFound
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, map[string]bool{"is_active": req.IsActive})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
