// Package analytics serves organizer dashboard aggregates.
package analytics

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tsunagu-app/backend/internal/applications"
	"github.com/tsunagu-app/backend/internal/events"
	"github.com/tsunagu-app/backend/internal/middleware"
	"github.com/tsunagu-app/backend/pkg/response"
)

// Handler handles analytics HTTP endpoints.
type Handler struct {
	eventRepo *events.Repository
	appRepo   *applications.Repository
}

// NewHandler creates an analytics handler.
func NewHandler(eventRepo *events.Repository, appRepo *applications.Repository) *Handler {
	return &Handler{eventRepo: eventRepo, appRepo: appRepo}
}

// EventStats handles GET /events/:id/stats (organizer only). Returns
// per-status application totals for the event.
func (h *Handler) EventStats(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	uid := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	event, err := h.eventRepo.GetByID(c.Request.Context(), eventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if event.OrganizerID != uid {
		response.Forbidden(c, "only the event organizer can view stats")
		return
	}

	counts, err := h.appRepo.CountByEvent(c.Request.Context(), eventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"event_id": eventID, "applications": counts})
}
