// Package apperror defines the domain error taxonomy. Every error kind
// is a sentinel matchable with errors.Is, wrapped in an AppError that
// carries the human-readable detail.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: profile, event or application absent. Never retried.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists: duplicate profile creation or duplicate application.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidTransition: illegal application status change.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrSelfApplication: organizer applying to their own event.
	ErrSelfApplication = errors.New("self application not allowed")
	// ErrProfileMissing: applicant has no profile yet.
	ErrProfileMissing = errors.New("applicant profile missing")
	// ErrEventInactive: the event exists but is no longer accepting applications.
	ErrEventInactive = errors.New("event inactive")
	// ErrMalformedRecord: a stored document failed deserialization or validation.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrValidation: caller input failed validation.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden: caller is not the owner of the target entity.
	ErrForbidden = errors.New("forbidden")
	// ErrUnavailable: transient store failure. The only kind eligible
	// for local retry before surfacing.
	ErrUnavailable = errors.New("store unavailable")
)

// AppError pairs a machine-readable kind (the wrapped sentinel) with
// human-readable detail.
type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Err }

// NotFound returns an ErrNotFound for the given resource and id.
func NotFound(resource, id string) *AppError {
	return &AppError{Err: ErrNotFound, Message: fmt.Sprintf("%s %s not found", resource, id)}
}

// AlreadyExists returns an ErrAlreadyExists with detail.
func AlreadyExists(message string) *AppError {
	return &AppError{Err: ErrAlreadyExists, Message: message}
}

// InvalidTransition returns an ErrInvalidTransition describing the
// attempted status change.
func InvalidTransition(from, to string) *AppError {
	return &AppError{Err: ErrInvalidTransition, Message: fmt.Sprintf("cannot transition application from %s to %s", from, to)}
}

// SelfApplication returns an ErrSelfApplication.
func SelfApplication() *AppError {
	return &AppError{Err: ErrSelfApplication, Message: "organizers cannot apply to their own events"}
}

// ProfileMissing returns an ErrProfileMissing for the given user.
func ProfileMissing(uid string) *AppError {
	return &AppError{Err: ErrProfileMissing, Message: fmt.Sprintf("no profile found for user %s", uid)}
}

// EventInactive returns an ErrEventInactive for the given event.
func EventInactive(id string) *AppError {
	return &AppError{Err: ErrEventInactive, Message: fmt.Sprintf("event %s is not accepting applications", id)}
}

// MalformedRecord returns an ErrMalformedRecord for a stored document
// that failed deserialization.
func MalformedRecord(resource, id string, cause error) *AppError {
	return &AppError{Err: ErrMalformedRecord, Message: fmt.Sprintf("%s %s is malformed: %v", resource, id, cause)}
}

// Validation returns an ErrValidation with detail.
func Validation(message string) *AppError {
	return &AppError{Err: ErrValidation, Message: message}
}

// Forbidden returns an ErrForbidden with detail.
func Forbidden(message string) *AppError {
	return &AppError{Err: ErrForbidden, Message: message}
}

// Unavailable wraps a transient store failure.
func Unavailable(cause error) *AppError {
	return &AppError{Err: ErrUnavailable, Message: fmt.Sprintf("store unavailable: %v", cause)}
}
