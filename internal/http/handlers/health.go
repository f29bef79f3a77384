package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hongminglow/bilingual-site/internal/http/respond"
	"github.com/hongminglow/bilingual-site/internal/storage"
)

const healthProbeTimeout = 2 * time.Second

// HealthHandler reports uptime and whether the user store answers.
type HealthHandler struct {
	startedAt time.Time
	store     storage.UserStore
	logger    *slog.Logger
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time, store storage.UserStore, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, store: store, logger: logger}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startedAt).Truncate(time.Second).String()

	ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
	defer cancel()
	if _, err := h.store.CountUsers(ctx); err != nil {
		h.logger.WarnContext(r.Context(), "health probe failed", "error", err)
		respond.JSON(w, http.StatusServiceUnavailable, "degraded", map[string]string{
			"status": "degraded",
			"store":  "unavailable",
			"uptime": uptime,
		})
		return
	}

	respond.JSON(w, http.StatusOK, "ok", map[string]string{
		"status": "ok",
		"store":  "ok",
		"uptime": uptime,
	})
}
