package customer

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/emicollect/internal/customer"
	"github.com/MrJamesThe3rd/emicollect/internal/loan"
	"github.com/MrJamesThe3rd/emicollect/internal/ranking"
)

type Handler struct {
	svc   *customer.Service
	loans *loan.Service
}

func NewHandler(svc *customer.Service, loans *loan.Service) *Handler {
	return &Handler{svc: svc, loans: loans}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/loans", h.listLoans)
}

type createCustomerRequest struct {
	Name      string             `json:"name"`
	Phone     string             `json:"phone"`
	Address   string             `json:"address"`
	Frequency customer.Frequency `json:"frequency"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.Create(r.Context(), customer.CreateParams{
		Name:      req.Name,
		Phone:     req.Phone,
		Address:   req.Address,
		Frequency: req.Frequency,
	})
	if err != nil {
		if errors.Is(err, customer.ErrInvalid) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(c)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// list returns the worklist: every customer joined with their open-loan
// aggregates, ordered by sort= or filtered by q=. The two are exclusive; a
// query always comes back name-ordered.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	strategy, ok := ranking.ParseStrategy(r.URL.Query().Get("sort"))
	if !ok {
		http.Error(w, "unknown sort", http.StatusBadRequest)
		return
	}

	customers, err := h.svc.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	open, err := h.loans.ListOpen(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var statuses []ranking.DebtStatus
	if q := r.URL.Query().Get("q"); q != "" {
		statuses = ranking.Search(q, customers, open)
	} else {
		statuses = ranking.Rank(strategy, customers, open)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toStatusResponseList(statuses)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			http.Error(w, "customer not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(c)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateCustomerRequest struct {
	Name      *string             `json:"name,omitempty"`
	Phone     *string             `json:"phone,omitempty"`
	Address   *string             `json:"address,omitempty"`
	Frequency *customer.Frequency `json:"frequency,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			http.Error(w, "customer not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	if req.Name != nil {
		c.Name = *req.Name
	}

	if req.Phone != nil {
		c.Phone = *req.Phone
	}

	if req.Address != nil {
		c.Address = *req.Address
	}

	if req.Frequency != nil {
		c.Frequency = *req.Frequency
	}

	if err := h.svc.Update(r.Context(), c); err != nil {
		if errors.Is(err, customer.ErrInvalid) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(c)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			http.Error(w, "customer not found", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listLoans(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if _, err := h.svc.Get(r.Context(), id); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			http.Error(w, "customer not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	loans, err := h.loans.ListForCustomer(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(loansToResponseList(loans)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
