package profiles

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tsunagu-app/backend/internal/apperror"
	"github.com/tsunagu-app/backend/internal/middleware"
	"github.com/tsunagu-app/backend/internal/models"
	"github.com/tsunagu-app/backend/pkg/response"
)

// CreateRequest is the body for POST /profiles. Exactly one sub-profile
// must be present, matching the caller's account role.
type CreateRequest struct {
	Area          models.Area           `json:"area"`
	Bio           string                `json:"bio"`
	PhotoURL      string                `json:"photo_url"`
	SeniorProfile *models.SeniorProfile `json:"senior_profile,omitempty"`
	OrgProfile    *models.OrgProfile    `json:"org_profile,omitempty"`
}

// UpdateRequest is the body for PATCH /profiles/me. Absent fields are
// left unchanged.
type UpdateRequest struct {
	Name          *string               `json:"name,omitempty"`
	Area          *models.Area          `json:"area,omitempty"`
	Bio           *string               `json:"bio,omitempty"`
	PhotoURL      *string               `json:"photo_url,omitempty"`
	SeniorProfile *models.SeniorProfile `json:"senior_profile,omitempty"`
	OrgProfile    *models.OrgProfile    `json:"org_profile,omitempty"`
}

// Handler handles profile HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a profiles handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Create handles POST /profiles. Completes onboarding for the caller.
func (h *Handler) Create(c *gin.Context) {
	uid := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role := models.Role(c.MustGet(middleware.ContextUserRole).(string))

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	p := &models.Profile{
		UID:           uid,
		Role:          role,
		Area:          req.Area,
		Bio:           req.Bio,
		PhotoURL:      req.PhotoURL,
		SeniorProfile: req.SeniorProfile,
		OrgProfile:    req.OrgProfile,
	}
	p.Name = p.DisplayName()

	if err := h.repo.Create(c.Request.Context(), p); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, p)
}

// Me handles GET /me. Returns session identity plus onboarding status;
// the profile field is null until onboarding completes.
func (h *Handler) Me(c *gin.Context) {
	uid := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role := c.MustGet(middleware.ContextUserRole).(string)
	email := c.MustGet(middleware.ContextUserEmail).(string)

	p, err := h.repo.GetByUID(c.Request.Context(), uid)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{
		"uid":             uid,
		"email":           email,
		"role":            role,
		"onboarding_done": p != nil,
		"profile":         p,
	})
}

// Get handles GET /profiles/:uid.
func (h *Handler) Get(c *gin.Context) {
	uid, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		response.BadRequest(c, "invalid profile id")
		return
	}
	p, err := h.repo.GetByUID(c.Request.Context(), uid)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, p)
}

// Update handles PATCH /profiles/me.
func (h *Handler) Update(c *gin.Context) {
	uid := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	upd := Update{
		Name:          req.Name,
		Area:          req.Area,
		Bio:           req.Bio,
		PhotoURL:      req.PhotoURL,
		SeniorProfile: req.SeniorProfile,
		OrgProfile:    req.OrgProfile,
	}
	p, err := h.repo.Update(c.Request.Context(), uid, upd)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, p)
}

// List handles GET /profiles?pref=&city=&role= (directory search).
func (h *Handler) List(c *gin.Context) {
	pref := c.Query("pref")
	city := c.Query("city")
	roleStr := c.Query("role")
	if roleStr != "" && !models.ValidRole(roleStr) {
		response.BadRequest(c, "role must be senior or org")
		return
	}

	var (
		list []models.Profile
		err  error
	)
	switch {
	case pref != "":
		list, err = h.repo.ListByArea(c.Request.Context(), pref, city)
	case roleStr != "":
		list, err = h.repo.ListByRole(c.Request.Context(), models.Role(roleStr))
	default:
		response.BadRequest(c, "pref or role query is required")
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	if roleStr != "" && pref != "" {
		filtered := list[:0]
		for _, p := range list {
			if string(p.Role) == roleStr {
				filtered = append(filtered, p)
			}
		}
		list = filtered
	}
	response.OK(c, list)
}
