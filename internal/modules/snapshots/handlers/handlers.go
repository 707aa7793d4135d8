// Package handlers provides HTTP handlers for portfolio growth history.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/finai/folio/internal/modules/snapshots"
)

// Handler handles snapshot HTTP requests
type Handler struct {
	service *snapshots.Service
	log     zerolog.Logger
}

// NewHandler creates a new snapshots handler
func NewHandler(service *snapshots.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "snapshots").Logger(),
	}
}

// HandleGrowth returns the owner's portfolio growth series
func (h *Handler) HandleGrowth(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "userID")
	if _, err := uuid.Parse(owner); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Invalid or missing userId",
		})
		return
	}

	series, err := h.service.Growth(owner)
	if err != nil {
		h.log.Error().Err(err).Str("owner", owner).Msg("Failed to load growth series")
		h.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Error fetching growth data",
			"error":   err.Error(),
		})
		return
	}

	message := "Growth data fetched successfully"
	if len(series.Points) == 0 {
		message = "No growth history available"
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": message,
		"data":    series,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
