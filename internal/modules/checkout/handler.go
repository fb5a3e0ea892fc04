package checkout

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the customer-facing checkout endpoints. Sessions are
// identified by an opaque token the client keeps in the X-Session-Token header.
type Handler struct{ manager *Manager }

func NewHandler(manager *Manager) *Handler { return &Handler{manager: manager} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Get("/cart", h.withSession(h.getCart))
		r.Post("/table", h.withSession(h.setTable))
		r.Post("/cart/items", h.withSession(h.addItem))
		r.Delete("/cart/items/{menuItemId}", h.withSession(h.removeItem))
		r.Post("/pay", h.withSession(h.pay))
		r.Post("/status", h.withSession(h.status))
		r.Post("/cancel", h.withSession(h.cancel))
		r.Post("/reset", h.withSession(h.reset))
	})
}

func (h *Handler) withSession(next func(w http.ResponseWriter, r *http.Request, s *Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Session-Token")
		if token == "" {
			respond(w, http.StatusBadRequest, map[string]string{"error": "X-Session-Token header is required"})
			return
		}
		next(w, r, h.manager.Session(token))
	}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request, s *Session) {
	respond(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) setTable(w http.ResponseWriter, r *http.Request, s *Session) {
	var req struct {
		TableNumber string `json:"table_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TableNumber == "" {
		respond(w, http.StatusBadRequest, map[string]string{"error": "table_number is required"})
		return
	}
	s.SetTable(req.TableNumber)
	respond(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request, s *Session) {
	var item CartItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid cart item"})
		return
	}
	if item.MenuItemID == "" || item.Quantity <= 0 {
		respond(w, http.StatusBadRequest, map[string]string{"error": "menu_item_id and a positive quantity are required"})
		return
	}
	s.AddItem(item)
	respond(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request, s *Session) {
	s.RemoveItem(chi.URLParam(r, "menuItemId"))
	respond(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request, s *Session) {
	var req struct {
		PhoneNumber string `json:"phone_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	ok := s.InitiatePayment(r.Context(), req.PhoneNumber)
	view := s.Snapshot()
	status := http.StatusOK
	if !ok {
		status = http.StatusUnprocessableEntity
	}
	respond(w, status, map[string]interface{}{"prompt_sent": ok, "session": view})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request, s *Session) {
	confirmed := s.CheckStatus(r.Context())
	respond(w, http.StatusOK, map[string]interface{}{"confirmed": confirmed, "session": s.Snapshot()})
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request, s *Session) {
	s.CancelPayment()
	respond(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request, s *Session) {
	s.ResetTransaction()
	respond(w, http.StatusOK, s.Snapshot())
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
