package emaillogs

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tsunagu-app/backend/internal/applications"
	"github.com/tsunagu-app/backend/internal/middleware"
	"github.com/tsunagu-app/backend/pkg/response"
)

// Handler handles email log HTTP endpoints.
type Handler struct {
	repo    *Repository
	appRepo *applications.Repository
}

// NewHandler creates an email logs handler.
func NewHandler(repo *Repository, appRepo *applications.Repository) *Handler {
	return &Handler{repo: repo, appRepo: appRepo}
}

// ListByApplication handles GET /applications/:id/emails. Visible to
// the application's organizer and applicant.
func (h *Handler) ListByApplication(c *gin.Context) {
	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid application id")
		return
	}
	uid := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	app, err := h.appRepo.GetByID(c.Request.Context(), applicationID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if app.OrganizerID != uid && app.ApplicantID != uid {
		response.Forbidden(c, "not a party to this application")
		return
	}

	list, err := h.repo.ListByApplication(c.Request.Context(), applicationID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}
