package applications

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tsunagu-app/backend/internal/auth"
	"github.com/tsunagu-app/backend/internal/events"
	"github.com/tsunagu-app/backend/internal/middleware"
	"github.com/tsunagu-app/backend/internal/models"
	"github.com/tsunagu-app/backend/pkg/queue"
	"github.com/tsunagu-app/backend/pkg/response"
)

// ApplyRequest is the body for POST /events/:id/apply.
type ApplyRequest struct {
	Message string `json:"message"`
}

// SetStatusRequest is the body for PATCH /applications/:id/status.
type SetStatusRequest struct {
	Status               string `json:"status" binding:"required"`
	OrganizationResponse string `json:"organization_response"`
}

// Handler handles application HTTP endpoints. Ownership checks happen
// here, before calls reach the lifecycle service. Notification jobs are
// enqueued best-effort after a successful mutation; a queue failure is
// logged, never surfaced.
type Handler struct {
	svc       *Service
	eventRepo *events.Repository
	userRepo  *auth.Repository
	jobs      *queue.Queue
	logger    *zap.Logger
}

// NewHandler creates an applications handler.
func NewHandler(svc *Service, eventRepo *events.Repository, userRepo *auth.Repository, jobs *queue.Queue, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, eventRepo: eventRepo, userRepo: userRepo, jobs: jobs, logger: logger}
}

// Apply handles POST /events/:id/apply.
func (h *Handler) Apply(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	uid := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	a, err := h.svc.Apply(c.Request.Context(), eventID, uid, req.Message)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.notify(c.Request.Context(), queue.NotificationApplicationReceived, a, a.OrganizerID)
	response.Created(c, a)
}

// SetStatus handles PATCH /applications/:id/status (organizer only).
func (h *Handler) SetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid application id")
		return
	}
	uid := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	current, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if current.OrganizerID != uid {
		response.Forbidden(c, "only the event organizer can decide this application")
		return
	}

	a, err := h.svc.SetStatus(c.Request.Context(), id, models.ApplicationStatus(req.Status), req.OrganizationResponse)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.notify(c.Request.Context(), queue.NotificationStatusChanged, a, a.ApplicantID)
	response.OK(c, a)
}

// Cancel handles POST /applications/:id/cancel (applicant only).
func (h *Handler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid application id")
		return
	}
	uid := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	current, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if current.ApplicantID != uid {
		response.Forbidden(c, "only the applicant can cancel this application")
		return
	}

	a, err := h.svc.Cancel(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.notify(c.Request.Context(), queue.NotificationCancelled, a, a.OrganizerID)
	response.OK(c, a)
}

// ListByEvent handles GET /events/:id/applications (organizer only).
func (h *Handler) ListByEvent(c *gin.Context) {
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
		response.Forbidden(c, "only the event organizer can list applications")
		return
	}

	list, err := h.svc.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

func (h *Handler) notify(ctx context.Context, kind queue.NotificationKind, a *models.EventApplication, recipientID uuid.UUID) {
	if h.jobs == nil {
		return
	}
	recipient, err := h.userRepo.GetByID(ctx, recipientID)
	if err != nil {
		h.logger.Warn("notification recipient lookup failed", zap.Error(err), zap.String("user_id", recipientID.String()))
		return
	}
	eventTitle := ""
	if event, err := h.eventRepo.GetByID(ctx, a.EventID); err == nil {
		eventTitle = event.Title
	}
	payload := queue.NotificationPayload{
		Kind:          kind,
		ApplicationID: a.ID,
		EventID:       a.EventID,
		EventTitle:    eventTitle,
		ApplicantName: a.ApplicantName,
		Recipient:     recipient.Email,
		Status:        string(a.Status),
		Message:       a.Message,
		Response:      a.OrganizationResponse,
	}
	if err := h.jobs.EnqueueNotification(ctx, payload); err != nil {
		h.logger.Warn("enqueue notification failed", zap.Error(err), zap.String("application_id", a.ID.String()))
	}
}
