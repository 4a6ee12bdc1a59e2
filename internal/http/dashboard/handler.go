package dashboard

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/emicollect/internal/loan"
)

type Handler struct {
	loans *loan.Service
}

func NewHandler(loans *loan.Service) *Handler {
	return &Handler{loans: loans}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.stats)
}

type statsResponse struct {
	TotalCollected decimal.Decimal `json:"total_collected"`
	CollectedToday decimal.Decimal `json:"collected_today"`
	OverdueCount   int             `json:"overdue_count"`
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.loans.Stats(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(statsResponse{
		TotalCollected: stats.TotalCollected,
		CollectedToday: stats.CollectedToday,
		OverdueCount:   stats.OverdueCount,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
