package api

import (
	"context"
	"net/http"
	"time"

	"github.com/IvanChernomyrdin/go-oralvis/internal/shared/models"
)

// healthTimeout - сколько ждём ответа базы в /healthz.
const healthTimeout = 2 * time.Second

// Root godoc
// @Summary      Liveness message
// @Tags         system
// @Produce      json
// @Success      200 {object} models.MessageResponse
// @Router       / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "OralVis API working!"})
}

// Healthz проверяет доступность базы.
//
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} models.StatusResponse
// @Failure      503 {object} models.StatusResponse
// @Router       /healthz [get]
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.Health.Ping(ctx); err != nil {
		h.Log.Sugar().Warnw("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, models.StatusResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, models.StatusResponse{Status: "ok"})
}
