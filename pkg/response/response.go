package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tsunagu-app/backend/internal/apperror"
)

// Body is the standard API response envelope.
type Body struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// NoContent sends 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, Body{Success: false, Error: err})
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, err string) {
	c.JSON(http.StatusUnauthorized, Body{Success: false, Error: err})
}

// Forbidden sends 403.
func Forbidden(c *gin.Context, err string) {
	c.JSON(http.StatusForbidden, Body{Success: false, Error: err})
}

// NotFound sends 404.
func NotFound(c *gin.Context, err string) {
	c.JSON(http.StatusNotFound, Body{Success: false, Error: err})
}

// Conflict sends 409 with error message.
func Conflict(c *gin.Context, err string) {
	c.JSON(http.StatusConflict, Body{Success: false, Error: err})
}

// ServiceUnavailable sends 503.
func ServiceUnavailable(c *gin.Context, err string) {
	c.JSON(http.StatusServiceUnavailable, Body{Success: false, Error: err})
}

// Internal sends 500.
func Internal(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, Body{Success: false, Error: err})
}

// Error maps a domain error to the matching HTTP status. Unrecognized
// errors become 500 with a generic message so internals never leak.
func Error(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, apperror.ErrAlreadyExists):
		Conflict(c, err.Error())
	case errors.Is(err, apperror.ErrInvalidTransition),
		errors.Is(err, apperror.ErrSelfApplication),
		errors.Is(err, apperror.ErrProfileMissing),
		errors.Is(err, apperror.ErrEventInactive),
		errors.Is(err, apperror.ErrValidation):
		BadRequest(c, err.Error())
	case errors.Is(err, apperror.ErrForbidden):
		Forbidden(c, err.Error())
	case errors.Is(err, apperror.ErrUnavailable):
		ServiceUnavailable(c, err.Error())
	default:
		Internal(c, "internal error")
	}
}
