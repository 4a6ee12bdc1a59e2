package loan

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/emicollect/internal/customer"
	"github.com/MrJamesThe3rd/emicollect/internal/loan"
	"github.com/MrJamesThe3rd/emicollect/internal/receipt"
)

type Handler struct {
	svc       *loan.Service
	customers *customer.Service
}

func NewHandler(svc *loan.Service, customers *customer.Service) *Handler {
	return &Handler{svc: svc, customers: customers}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/payments", h.applyPayment)
	r.Get("/{id}/payments", h.listPayments)
}

type createLoanRequest struct {
	CustomerID     int64           `json:"customer_id"`
	ItemName       string          `json:"item_name"`
	TotalPrincipal decimal.Decimal `json:"total_principal"`
	DownPayment    decimal.Decimal `json:"down_payment"`
	Frequency      loan.Frequency  `json:"frequency"`
	NextDueDate    time.Time       `json:"next_due_date"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The loan must hang off an existing customer; the store would reject
	// the insert anyway, but a 404 is the useful answer.
	if _, err := h.customers.Get(r.Context(), req.CustomerID); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			http.Error(w, "customer not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	l, err := h.svc.Create(r.Context(), loan.CreateParams{
		CustomerID:     req.CustomerID,
		ItemName:       req.ItemName,
		TotalPrincipal: req.TotalPrincipal,
		DownPayment:    req.DownPayment,
		Frequency:      req.Frequency,
		NextDueDate:    req.NextDueDate,
	})
	if err != nil {
		if errors.Is(err, loan.ErrInvalidLoan) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(l)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	l, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, loan.ErrNotFound) {
			http.Error(w, "loan not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(l)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateLoanRequest struct {
	ItemName       *string          `json:"item_name,omitempty"`
	TotalPrincipal *decimal.Decimal `json:"total_principal,omitempty"`
	DownPayment    *decimal.Decimal `json:"down_payment,omitempty"`
	CurrentBalance *decimal.Decimal `json:"current_balance,omitempty"`
	Frequency      *loan.Frequency  `json:"frequency,omitempty"`
	NextDueDate    *time.Time       `json:"next_due_date,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	l, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, loan.ErrNotFound) {
			http.Error(w, "loan not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	if req.ItemName != nil {
		l.ItemName = *req.ItemName
	}

	if req.TotalPrincipal != nil {
		l.TotalPrincipal = *req.TotalPrincipal
	}

	if req.DownPayment != nil {
		l.DownPayment = *req.DownPayment
	}

	if req.CurrentBalance != nil {
		l.CurrentBalance = *req.CurrentBalance
	}

	if req.Frequency != nil {
		l.Frequency = *req.Frequency
	}

	if req.NextDueDate != nil {
		l.NextDueDate = *req.NextDueDate
	}

	if err := h.svc.Update(r.Context(), l); err != nil {
		if errors.Is(err, loan.ErrInvalidLoan) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(l)); err != nil {
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
		if errors.Is(err, loan.ErrNotFound) {
			http.Error(w, "loan not found", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type applyPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) applyPayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req applyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	l, p, err := h.svc.ApplyPayment(r.Context(), id, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, loan.ErrNotFound):
			http.Error(w, "loan not found", http.StatusNotFound)
		case errors.Is(err, loan.ErrInvalidAmount):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}

		return
	}

	resp := settlementResponse{
		Payment: toPaymentResponse(p),
		Loan:    toResponse(l),
	}

	// Best effort; the settlement already committed, so a missing customer
	// just means no share text.
	if c, err := h.customers.Get(r.Context(), l.CustomerID); err == nil {
		resp.Receipt = receipt.Message(c.Name, p.AmountPaid, l.ItemName, l.CurrentBalance)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if _, err := h.svc.Get(r.Context(), id); err != nil {
		if errors.Is(err, loan.ErrNotFound) {
			http.Error(w, "loan not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	payments, err := h.svc.Payments(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toPaymentResponseList(payments)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
