package views

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tsunagu-app/backend/internal/middleware"
	"github.com/tsunagu-app/backend/pkg/response"
)

// Handler serves the assembled read models.
type Handler struct {
	assembler *Assembler
}

// NewHandler creates a views handler.
func NewHandler(assembler *Assembler) *Handler {
	return &Handler{assembler: assembler}
}

// MyApplications handles GET /applications.
func (h *Handler) MyApplications(c *gin.Context) {
	uid := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	rows, err := h.assembler.MyApplications(c.Request.Context(), uid)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rows)
}

// OrganizerApplications handles GET /organizer/applications.
func (h *Handler) OrganizerApplications(c *gin.Context) {
	uid := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	rows, err := h.assembler.OrganizerApplications(c.Request.Context(), uid)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rows)
}

// EventStatus handles GET /events/:id/my-status.
func (h *Handler) EventStatus(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	uid := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	view, err := h.assembler.EventWithStatus(c.Request.Context(), eventID, uid)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}
