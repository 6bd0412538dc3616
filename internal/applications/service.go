// Package applications implements the event-application lifecycle: who
// may apply, which status transitions are legal, and the denormalized
// snapshots written alongside each application.
package applications

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tsunagu-app/backend/internal/apperror"
	"github.com/tsunagu-app/backend/internal/models"
)

// Store is the application persistence the service depends on.
// *Repository implements it against Postgres; tests supply in-memory
// fakes.
type Store interface {
	Create(ctx context.Context, a *models.EventApplication) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.EventApplication, error)
	GetLive(ctx context.Context, eventID, applicantID uuid.UUID) (*models.EventApplication, error)
	TransitionFromPending(ctx context.Context, id uuid.UUID, newStatus models.ApplicationStatus, organizationResponse string) (*models.EventApplication, error)
	ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]models.EventApplication, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EventApplication, error)
	ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]models.EventApplication, error)
}

// EventGetter resolves events for apply-time checks and snapshots.
type EventGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.EventPost, error)
}

// ProfileGetter resolves applicant profiles for the name snapshot.
type ProfileGetter interface {
	GetByUID(ctx context.Context, uid uuid.UUID) (*models.Profile, error)
}

// Service enforces the application lifecycle rules. Caller identity is
// taken as explicit parameters; ownership of the target entity is
// verified by the HTTP layer before mutating calls reach the service.
type Service struct {
	store    Store
	events   EventGetter
	profiles ProfileGetter
	logger   *zap.Logger
}

// NewService creates an application lifecycle service.
func NewService(store Store, events EventGetter, profiles ProfileGetter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, events: events, profiles: profiles, logger: logger}
}

// Apply creates a pending application for the event. It fails when the
// event is absent or inactive, the applicant has no profile, a live
// application already exists, or the applicant organizes the event.
// The applicant's display name and the event's organizer ID are
// snapshotted onto the application.
func (s *Service) Apply(ctx context.Context, eventID, applicantID uuid.UUID, message string) (*models.EventApplication, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.IsActive {
		return nil, apperror.EventInactive(eventID.String())
	}

	profile, err := s.profiles.GetByUID(ctx, applicantID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ProfileMissing(applicantID.String())
		}
		return nil, err
	}

	if _, err := s.store.GetLive(ctx, eventID, applicantID); err == nil {
		return nil, apperror.AlreadyExists("an application for this event already exists")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	if applicantID == event.OrganizerID {
		return nil, apperror.SelfApplication()
	}

	a := &models.EventApplication{
		EventID:       eventID,
		ApplicantID:   applicantID,
		ApplicantName: profile.DisplayName(),
		OrganizerID:   event.OrganizerID,
		Status:        models.StatusPending,
		Message:       message,
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Info("application created",
		zap.String("application_id", a.ID.String()),
		zap.String("event_id", eventID.String()),
		zap.String("applicant_id", applicantID.String()))
	return a, nil
}

// SetStatus moves a pending application to approved or rejected. Any
// other target status, or a non-pending current status, is an invalid
// transition and leaves the application unchanged.
func (s *Service) SetStatus(ctx context.Context, applicationID uuid.UUID, newStatus models.ApplicationStatus, organizationResponse string) (*models.EventApplication, error) {
	if newStatus != models.StatusApproved && newStatus != models.StatusRejected {
		current, err := s.store.GetByID(ctx, applicationID)
		if err != nil {
			return nil, err
		}
		return nil, apperror.InvalidTransition(string(current.Status), string(newStatus))
	}
	a, err := s.store.TransitionFromPending(ctx, applicationID, newStatus, organizationResponse)
	if err != nil {
		return nil, err
	}
	s.logger.Info("application status changed",
		zap.String("application_id", applicationID.String()),
		zap.String("status", string(newStatus)))
	return a, nil
}

// Cancel withdraws a pending application. Cancelled applications no
// longer occupy the one-per-event slot, so the applicant may apply
// again later.
func (s *Service) Cancel(ctx context.Context, applicationID uuid.UUID) (*models.EventApplication, error) {
	a, err := s.store.TransitionFromPending(ctx, applicationID, models.StatusCancelled, "")
	if err != nil {
		return nil, err
	}
	s.logger.Info("application cancelled", zap.String("application_id", applicationID.String()))
	return a, nil
}

// Get returns an application by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.EventApplication, error) {
	return s.store.GetByID(ctx, id)
}

// StatusFor returns the viewer's live application for an event, or nil
// when the viewer has none.
func (s *Service) StatusFor(ctx context.Context, eventID, viewerID uuid.UUID) (*models.EventApplication, error) {
	a, err := s.store.GetLive(ctx, eventID, viewerID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// ListByApplicant returns the applicant's applications, newest first.
func (s *Service) ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]models.EventApplication, error) {
	return s.store.ListByApplicant(ctx, applicantID)
}

// ListByEvent returns the event's applications, newest first.
func (s *Service) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EventApplication, error) {
	return s.store.ListByEvent(ctx, eventID)
}

// ListByOrganizer returns applications across the organizer's events,
// newest first.
func (s *Service) ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]models.EventApplication, error) {
	return s.store.ListByOrganizer(ctx, organizerID)
}
