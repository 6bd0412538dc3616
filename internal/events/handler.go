package events

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tsunagu-app/backend/internal/apperror"
	"github.com/tsunagu-app/backend/internal/middleware"
	"github.com/tsunagu-app/backend/internal/models"
	"github.com/tsunagu-app/backend/internal/profiles"
	"github.com/tsunagu-app/backend/pkg/response"
)

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// CreateRequest is the body for POST /events.
type CreateRequest struct {
	Title           string      `json:"title" binding:"required"`
	Description     string      `json:"description"`
	Area            models.Area `json:"area"`
	TargetGender    string      `json:"target_gender"`
	TargetAgeGroups []string    `json:"target_age_groups"`
	ITLevel         string      `json:"it_level"`
	RequiredSkills  []string    `json:"required_skills"`
	EventDate       string      `json:"event_date" binding:"required"`
	EventEndDate    *string     `json:"event_end_date"`
}

// UpdateRequest is the body for PATCH /events/:id.
type UpdateRequest struct {
	Title           *string      `json:"title,omitempty"`
	Description     *string      `json:"description,omitempty"`
	Area            *models.Area `json:"area,omitempty"`
	TargetGender    *string      `json:"target_gender,omitempty"`
	TargetAgeGroups *[]string    `json:"target_age_groups,omitempty"`
	ITLevel         *string      `json:"it_level,omitempty"`
	RequiredSkills  *[]string    `json:"required_skills,omitempty"`
	EventDate       *string      `json:"event_date,omitempty"`
	EventEndDate    *string      `json:"event_end_date,omitempty"`
	IsActive        *bool        `json:"is_active,omitempty"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	repo         *Repository
	profileRepo  *profiles.Repository
	cache        *ListingCache
	defaultLimit int
	logger       *zap.Logger
}

// NewHandler creates an events handler.
func NewHandler(repo *Repository, profileRepo *profiles.Repository, cache *ListingCache, defaultLimit int, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, profileRepo: profileRepo, cache: cache, defaultLimit: defaultLimit, logger: logger}
}

// Create handles POST /events. The organizer's display name and role
// are snapshotted onto the event at creation time.
func (h *Handler) Create(c *gin.Context) {
	uid := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	profile, err := h.profileRepo.GetByUID(c.Request.Context(), uid)
	if err != nil {
		response.Error(c, apperror.ProfileMissing(uid.String()))
		return
	}

	eventDate, err := parseTime(req.EventDate)
	if err != nil {
		response.BadRequest(c, "invalid event_date")
		return
	}
	var eventEndDate *time.Time
	if req.EventEndDate != nil {
		t, err := parseTime(*req.EventEndDate)
		if err != nil {
			response.BadRequest(c, "invalid event_end_date")
			return
		}
		eventEndDate = &t
	}

	gender := models.GenderAny
	if req.TargetGender != "" {
		if !validGender(req.TargetGender) {
			response.BadRequest(c, "invalid target_gender")
			return
		}
		gender = models.Gender(req.TargetGender)
	}
	itLevel := models.ITLevelAny
	if req.ITLevel != "" {
		if !validITLevel(req.ITLevel) {
			response.BadRequest(c, "invalid it_level")
			return
		}
		itLevel = models.ITLevel(req.ITLevel)
	}
	ageGroups, ok := parseAgeGroups(req.TargetAgeGroups)
	if !ok {
		response.BadRequest(c, "invalid target_age_groups")
		return
	}

	e := &models.EventPost{
		OrganizerID:      uid,
		OrganizationName: profile.DisplayName(),
		Title:            req.Title,
		Description:      req.Description,
		Area:             req.Area,
		TargetGender:     gender,
		TargetAgeGroups:  ageGroups,
		ITLevel:          itLevel,
		RequiredSkills:   req.RequiredSkills,
		EventDate:        eventDate,
		EventEndDate:     eventEndDate,
		IsActive:         true,
		CreatedByRole:    profile.Role,
	}
	if err := h.repo.Create(c.Request.Context(), e); err != nil {
		h.logger.Error("create event failed", zap.Error(err))
		response.Internal(c, "failed to create event")
		return
	}
	h.cache.Invalidate(c.Request.Context())
	response.Created(c, e)
}

// List handles GET /events: the public active-events listing, soonest
// first. The default listing is served from cache when possible.
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()

	limitStr := c.Query("limit")
	if limitStr == "" {
		if list, ok := h.cache.Get(ctx); ok {
			response.OK(c, list)
			return
		}
		list, err := h.repo.ListActive(ctx, h.defaultLimit)
		if err != nil {
			response.Error(c, err)
			return
		}
		h.cache.Set(ctx, list)
		response.OK(c, list)
		return
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		response.BadRequest(c, "invalid limit")
		return
	}
	list, err := h.repo.ListActive(ctx, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Mine handles GET /me/events: events owned by the caller, newest
// first, including deactivated ones.
func (h *Handler) Mine(c *gin.Context) {
	uid := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.repo.ListByOrganizer(c.Request.Context(), uid)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Get handles GET /events/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, e)
}

// Update handles PATCH /events/:id (organizer only).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	uid := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	current, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if current.OrganizerID != uid {
		response.Forbidden(c, "only the organizer can update this event")
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	upd := Update{
		Title:          req.Title,
		Description:    req.Description,
		Area:           req.Area,
		RequiredSkills: req.RequiredSkills,
		IsActive:       req.IsActive,
	}
	if req.TargetGender != nil {
		if !validGender(*req.TargetGender) {
			response.BadRequest(c, "invalid target_gender")
			return
		}
		g := models.Gender(*req.TargetGender)
		upd.TargetGender = &g
	}
	if req.ITLevel != nil {
		if !validITLevel(*req.ITLevel) {
			response.BadRequest(c, "invalid it_level")
			return
		}
		l := models.ITLevel(*req.ITLevel)
		upd.ITLevel = &l
	}
	if req.TargetAgeGroups != nil {
		groups, ok := parseAgeGroups(*req.TargetAgeGroups)
		if !ok {
			response.BadRequest(c, "invalid target_age_groups")
			return
		}
		upd.TargetAgeGroups = &groups
	}
	if req.EventDate != nil {
		t, err := parseTime(*req.EventDate)
		if err != nil {
			response.BadRequest(c, "invalid event_date")
			return
		}
		upd.EventDate = &t
	}
	if req.EventEndDate != nil {
		t, err := parseTime(*req.EventEndDate)
		if err != nil {
			response.BadRequest(c, "invalid event_end_date")
			return
		}
		upd.EventEndDate = &t
	}

	updated, err := h.repo.Update(c.Request.Context(), id, upd)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.cache.Invalidate(c.Request.Context())
	response.OK(c, updated)
}

// Deactivate handles DELETE /events/:id (organizer only). Events are
// never hard-deleted; this hides the event from public listings.
func (h *Handler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	uid := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	current, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if current.OrganizerID != uid {
		response.Forbidden(c, "only the organizer can deactivate this event")
		return
	}
	if err := h.repo.Deactivate(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	h.cache.Invalidate(c.Request.Context())
	response.NoContent(c)
}

func validGender(s string) bool {
	switch models.Gender(s) {
	case models.GenderMale, models.GenderFemale, models.GenderOther, models.GenderNoAnswer, models.GenderAny:
		return true
	}
	return false
}

func validITLevel(s string) bool {
	switch models.ITLevel(s) {
	case models.ITLevelBeginner, models.ITLevelBasic, models.ITLevelIntermediate, models.ITLevelAdvanced, models.ITLevelAny:
		return true
	}
	return false
}

func parseAgeGroups(ss []string) ([]models.AgeGroup, bool) {
	out := make([]models.AgeGroup, 0, len(ss))
	for _, s := range ss {
		switch g := models.AgeGroup(s); g {
		case models.AgeGroup50s, models.AgeGroup60s, models.AgeGroup70s, models.AgeGroup80sPlus:
			out = append(out, g)
		default:
			return nil, false
		}
	}
	return out, true
}
