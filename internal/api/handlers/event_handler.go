package handlers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/jmduarte/taskhub-be/internal/auth"
	"github.com/jmduarte/taskhub-be/internal/services"
)

// EventHandler exposes the activity log to superusers.
type EventHandler struct {
	events services.EventServiceProvider
	users  services.UserServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(events services.EventServiceProvider, users services.UserServiceProvider) *EventHandler {
	return &EventHandler{events: events, users: users}
}

// GetRecent returns recent activity. Non-superusers get 404 so the admin
// surface does not reveal its existence.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	user, err := h.users.GetUserByID(claims.UserID)
	if err != nil || !user.IsActive {
		writeError(w, http.StatusUnauthorized, "invalid auth token")
		return
	}
	if !user.IsSuperuser {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	events, err := h.events.GetRecentEvents(limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve events")
		writeError(w, http.StatusInternalServerError, "failed to retrieve events")
		return
	}

	writeJSON(w, http.StatusOK, events)
}
