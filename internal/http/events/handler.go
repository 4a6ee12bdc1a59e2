package events

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/emicollect/internal/database"
)

// Handler streams store change notices over server-sent events. Clients
// re-fetch the worklist on every "change" message rather than diffing, so
// the events carry no payload.
type Handler struct {
	hub *database.Hub
}

func NewHandler(hub *database.Hub) *Handler {
	return &Handler{hub: hub}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.stream)
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	notices, cancel := h.hub.Subscribe()
	defer cancel()

	// Opening comment so proxies and clients see bytes immediately.
	if _, err := w.Write([]byte(": connected\n\n")); err != nil {
		return
	}

	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-notices:
			if _, err := w.Write([]byte("event: change\ndata: {}\n\n")); err != nil {
				return
			}

			flusher.Flush()
		}
	}
}
