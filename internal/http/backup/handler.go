package backup

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/emicollect/internal/backup"
	"github.com/MrJamesThe3rd/emicollect/internal/cloud"
)

type Handler struct {
	svc *backup.Service
}

func NewHandler(svc *backup.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
	r.Post("/restore", h.restore)
	r.Post("/cloud-sync", h.cloudSync)
	r.Post("/cloud-restore", h.cloudRestore)
}

// download streams the full backup document so the collector can keep a
// copy anywhere they like.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.CreateBackup(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+cloud.BackupFilename+`"`)

	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write backup", "error", err)
	}
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.RestoreBackup(r.Context(), data); err != nil {
		if errors.Is(err, backup.ErrMalformedBackup) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type cloudSyncResponse struct {
	Path    string `json:"path"`
	Warning string `json:"warning,omitempty"`
}

// cloudSync writes the dated file into the backup directory and pushes a
// copy to the cloud. A failed push still returns 201 with a warning; the
// local file is the source of truth.
func (h *Handler) cloudSync(w http.ResponseWriter, r *http.Request) {
	path, warning, err := h.svc.BackupToFile(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(cloudSyncResponse{Path: path, Warning: warning}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) cloudRestore(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RestoreFromCloud(r.Context()); err != nil {
		switch {
		case errors.Is(err, cloud.ErrNotFound):
			http.Error(w, "no cloud backup found", http.StatusNotFound)
		case errors.Is(err, backup.ErrMalformedBackup):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
