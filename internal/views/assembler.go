// Package views assembles composite read models for screens that need
// cross-entity data, so the presentation layer never orchestrates
// multi-repository joins itself.
package views

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tsunagu-app/backend/internal/models"
)

// ApplicationLister is the slice of the application service the
// assembler needs.
type ApplicationLister interface {
	ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]models.EventApplication, error)
	ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]models.EventApplication, error)
	StatusFor(ctx context.Context, eventID, viewerID uuid.UUID) (*models.EventApplication, error)
}

// EventGetter resolves events for join fields.
type EventGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.EventPost, error)
}

// ProfileGetter resolves applicant profiles for join fields.
type ProfileGetter interface {
	GetByUID(ctx context.Context, uid uuid.UUID) (*models.Profile, error)
}

// MyApplicationRow is an application enriched with display fields from
// its event. Event fields are nil when the event can no longer be
// resolved; the application's own fields always survive.
type MyApplicationRow struct {
	models.EventApplication
	EventTitle       *string      `json:"event_title,omitempty"`
	EventDate        *time.Time   `json:"event_date,omitempty"`
	EventLocation    *models.Area `json:"event_location,omitempty"`
	OrganizationName *string      `json:"organization_name,omitempty"`
}

// OrganizerApplicationRow is an application enriched with its event
// title and applicant profile attributes.
type OrganizerApplicationRow struct {
	models.EventApplication
	EventTitle       *string         `json:"event_title,omitempty"`
	ApplicantRole    *models.Role    `json:"applicant_role,omitempty"`
	ApplicantOrgType *models.OrgType `json:"applicant_org_type,omitempty"`
}

// EventStatusView is an event plus the viewer's own application status,
// nil when the viewer has not applied.
type EventStatusView struct {
	Event             models.EventPost          `json:"event"`
	ApplicationID     *uuid.UUID                `json:"application_id,omitempty"`
	ApplicationStatus *models.ApplicationStatus `json:"application_status,omitempty"`
}

// Assembler builds the composite views. Joins are best-effort per row:
// a missing event or profile degrades that row instead of failing the
// batch. Lookups are memoized per call since one organizer or applicant
// tends to repeat across rows.
type Assembler struct {
	apps     ApplicationLister
	events   EventGetter
	profiles ProfileGetter
	logger   *zap.Logger
}

// NewAssembler creates a view assembler.
func NewAssembler(apps ApplicationLister, events EventGetter, profiles ProfileGetter, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{apps: apps, events: events, profiles: profiles, logger: logger}
}

// MyApplications returns the applicant's applications with event
// display fields, newest first.
func (a *Assembler) MyApplications(ctx context.Context, applicantID uuid.UUID) ([]MyApplicationRow, error) {
	apps, err := a.apps.ListByApplicant(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	eventCache := make(map[uuid.UUID]*models.EventPost)
	rows := make([]MyApplicationRow, 0, len(apps))
	for _, app := range apps {
		row := MyApplicationRow{EventApplication: app}
		if event := a.lookupEvent(ctx, eventCache, app.EventID); event != nil {
			row.EventTitle = &event.Title
			row.EventDate = &event.EventDate
			row.EventLocation = &event.Area
			row.OrganizationName = &event.OrganizationName
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// OrganizerApplications returns applications across the organizer's
// events with event titles and applicant profile attributes, newest
// first.
func (a *Assembler) OrganizerApplications(ctx context.Context, organizerID uuid.UUID) ([]OrganizerApplicationRow, error) {
	apps, err := a.apps.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, err
	}

	eventCache := make(map[uuid.UUID]*models.EventPost)
	profileCache := make(map[uuid.UUID]*models.Profile)
	rows := make([]OrganizerApplicationRow, 0, len(apps))
	for _, app := range apps {
		row := OrganizerApplicationRow{EventApplication: app}
		if event := a.lookupEvent(ctx, eventCache, app.EventID); event != nil {
			row.EventTitle = &event.Title
		}
		if profile := a.lookupProfile(ctx, profileCache, app.ApplicantID); profile != nil {
			role := profile.Role
			row.ApplicantRole = &role
			if profile.OrgProfile != nil {
				orgType := profile.OrgProfile.OrganizationType
				row.ApplicantOrgType = &orgType
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// EventWithStatus returns the event together with the viewer's own
// application status, for the detail screen's apply-or-badge decision.
func (a *Assembler) EventWithStatus(ctx context.Context, eventID, viewerID uuid.UUID) (*EventStatusView, error) {
	event, err := a.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	view := &EventStatusView{Event: *event}

	app, err := a.apps.StatusFor(ctx, eventID, viewerID)
	if err != nil {
		return nil, err
	}
	if app != nil {
		id := app.ID
		status := app.Status
		view.ApplicationID = &id
		view.ApplicationStatus = &status
	}
	return view, nil
}

func (a *Assembler) lookupEvent(ctx context.Context, cache map[uuid.UUID]*models.EventPost, id uuid.UUID) *models.EventPost {
	if event, ok := cache[id]; ok {
		return event
	}
	event, err := a.events.GetByID(ctx, id)
	if err != nil {
		a.logger.Debug("event join skipped", zap.String("event_id", id.String()), zap.Error(err))
		cache[id] = nil
		return nil
	}
	cache[id] = event
	return event
}

func (a *Assembler) lookupProfile(ctx context.Context, cache map[uuid.UUID]*models.Profile, uid uuid.UUID) *models.Profile {
	if profile, ok := cache[uid]; ok {
		return profile
	}
	profile, err := a.profiles.GetByUID(ctx, uid)
	if err != nil {
		a.logger.Debug("profile join skipped", zap.String("uid", uid.String()), zap.Error(err))
		cache[uid] = nil
		return nil
	}
	cache[uid] = profile
	return profile
}
