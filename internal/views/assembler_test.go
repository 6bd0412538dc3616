package views

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tsunagu-app/backend/internal/apperror"
	"github.com/tsunagu-app/backend/internal/models"
)

type fakeApps struct {
	byApplicant map[uuid.UUID][]models.EventApplication
	byOrganizer map[uuid.UUID][]models.EventApplication
	status      map[uuid.UUID]*models.EventApplication // keyed by event ID
}

func (f *fakeApps) ListByApplicant(_ context.Context, applicantID uuid.UUID) ([]models.EventApplication, error) {
	return f.byApplicant[applicantID], nil
}

func (f *fakeApps) ListByOrganizer(_ context.Context, organizerID uuid.UUID) ([]models.EventApplication, error) {
	return f.byOrganizer[organizerID], nil
}

func (f *fakeApps) StatusFor(_ context.Context, eventID, _ uuid.UUID) (*models.EventApplication, error) {
	return f.status[eventID], nil
}

type fakeEvents struct {
	events map[uuid.UUID]*models.EventPost
	calls  int
}

func (f *fakeEvents) GetByID(_ context.Context, id uuid.UUID) (*models.EventPost, error) {
	f.calls++
	e, ok := f.events[id]
	if !ok {
		return nil, apperror.NotFound("event", id.String())
	}
	return e, nil
}

type fakeProfiles struct {
	profiles map[uuid.UUID]*models.Profile
}

func (f *fakeProfiles) GetByUID(_ context.Context, uid uuid.UUID) (*models.Profile, error) {
	p, ok := f.profiles[uid]
	if !ok {
		return nil, apperror.NotFound("profile", uid.String())
	}
	return p, nil
}

func TestMyApplicationsSurvivesDeletedEvent(t *testing.T) {
	applicantID := uuid.New()
	liveEventID := uuid.New()
	goneEventID := uuid.New()

	appLive := models.EventApplication{
		ID:          uuid.New(),
		EventID:     liveEventID,
		ApplicantID: applicantID,
		Status:      models.StatusApproved,
		AppliedAt:   time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC),
	}
	appGone := models.EventApplication{
		ID:          uuid.New(),
		EventID:     goneEventID,
		ApplicantID: applicantID,
		Status:      models.StatusPending,
		AppliedAt:   time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	}

	events := &fakeEvents{events: map[uuid.UUID]*models.EventPost{
		liveEventID: {
			ID:               liveEventID,
			Title:            "Smartphone basics",
			OrganizationName: "Sakura NPO",
			Area:             models.Area{Pref: "東京都", City: "世田谷区"},
			EventDate:        time.Date(2026, 5, 10, 10, 0, 0, 0, time.UTC),
		},
	}}
	asm := NewAssembler(
		&fakeApps{byApplicant: map[uuid.UUID][]models.EventApplication{applicantID: {appLive, appGone}}},
		events,
		&fakeProfiles{profiles: map[uuid.UUID]*models.Profile{}},
		nil,
	)

	rows, err := asm.MyApplications(context.Background(), applicantID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, appLive.ID, rows[0].ID)
	require.NotNil(t, rows[0].EventTitle)
	require.Equal(t, "Smartphone basics", *rows[0].EventTitle)
	require.NotNil(t, rows[0].OrganizationName)
	require.Equal(t, "Sakura NPO", *rows[0].OrganizationName)
	require.NotNil(t, rows[0].EventLocation)
	require.Equal(t, "東京都", rows[0].EventLocation.Pref)

	// The row for the vanished event keeps its own fields and degrades
	// the join fields to nil rather than dropping out.
	require.Equal(t, appGone.ID, rows[1].ID)
	require.Equal(t, models.StatusPending, rows[1].Status)
	require.Equal(t, appGone.AppliedAt, rows[1].AppliedAt)
	require.Nil(t, rows[1].EventTitle)
	require.Nil(t, rows[1].EventDate)
	require.Nil(t, rows[1].EventLocation)
	require.Nil(t, rows[1].OrganizationName)
}

func TestOrganizerApplicationsJoinsProfiles(t *testing.T) {
	organizerID := uuid.New()
	eventID := uuid.New()
	seniorID := uuid.New()
	orgApplicantID := uuid.New()
	goneApplicantID := uuid.New()

	apps := []models.EventApplication{
		{ID: uuid.New(), EventID: eventID, ApplicantID: seniorID, OrganizerID: organizerID, Status: models.StatusPending},
		{ID: uuid.New(), EventID: eventID, ApplicantID: orgApplicantID, OrganizerID: organizerID, Status: models.StatusPending},
		{ID: uuid.New(), EventID: eventID, ApplicantID: goneApplicantID, OrganizerID: organizerID, Status: models.StatusPending},
	}

	events := &fakeEvents{events: map[uuid.UUID]*models.EventPost{
		eventID: {ID: eventID, Title: "Tablet photo class"},
	}}
	profiles := &fakeProfiles{profiles: map[uuid.UUID]*models.Profile{
		seniorID: {UID: seniorID, Role: models.RoleSenior, Name: "Taro",
			SeniorProfile: &models.SeniorProfile{Nickname: "Taro"}},
		orgApplicantID: {UID: orgApplicantID, Role: models.RoleOrg, Name: "City Hall",
			OrgProfile: &models.OrgProfile{OrganizationName: "City Hall", OrganizationType: models.OrgTypeGovernment}},
	}}
	asm := NewAssembler(
		&fakeApps{byOrganizer: map[uuid.UUID][]models.EventApplication{organizerID: apps}},
		events,
		profiles,
		nil,
	)

	rows, err := asm.OrganizerApplications(context.Background(), organizerID)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.NotNil(t, rows[0].EventTitle)
	require.Equal(t, "Tablet photo class", *rows[0].EventTitle)
	require.NotNil(t, rows[0].ApplicantRole)
	require.Equal(t, models.RoleSenior, *rows[0].ApplicantRole)
	require.Nil(t, rows[0].ApplicantOrgType)

	require.NotNil(t, rows[1].ApplicantOrgType)
	require.Equal(t, models.OrgTypeGovernment, *rows[1].ApplicantOrgType)

	require.Nil(t, rows[2].ApplicantRole)
	require.Nil(t, rows[2].ApplicantOrgType)

	// Three rows share one event; the lookup is memoized per call.
	require.Equal(t, 1, events.calls)
}

func TestEventWithStatus(t *testing.T) {
	eventID := uuid.New()
	viewerID := uuid.New()
	event := &models.EventPost{ID: eventID, Title: "Smartphone basics", IsActive: true}
	events := &fakeEvents{events: map[uuid.UUID]*models.EventPost{eventID: event}}

	asm := NewAssembler(&fakeApps{status: map[uuid.UUID]*models.EventApplication{}}, events, &fakeProfiles{}, nil)
	view, err := asm.EventWithStatus(context.Background(), eventID, viewerID)
	require.NoError(t, err)
	require.Equal(t, "Smartphone basics", view.Event.Title)
	require.Nil(t, view.ApplicationID)
	require.Nil(t, view.ApplicationStatus)

	app := &models.EventApplication{ID: uuid.New(), EventID: eventID, ApplicantID: viewerID, Status: models.StatusPending}
	asm = NewAssembler(&fakeApps{status: map[uuid.UUID]*models.EventApplication{eventID: app}}, events, &fakeProfiles{}, nil)
	view, err = asm.EventWithStatus(context.Background(), eventID, viewerID)
	require.NoError(t, err)
	require.NotNil(t, view.ApplicationID)
	require.Equal(t, app.ID, *view.ApplicationID)
	require.NotNil(t, view.ApplicationStatus)
	require.Equal(t, models.StatusPending, *view.ApplicationStatus)
}

func TestEventWithStatusMissingEvent(t *testing.T) {
	asm := NewAssembler(&fakeApps{}, &fakeEvents{events: map[uuid.UUID]*models.EventPost{}}, &fakeProfiles{}, nil)

	_, err := asm.EventWithStatus(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, apperror.ErrNotFound)
}
