package applications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tsunagu-app/backend/internal/apperror"
	"github.com/tsunagu-app/backend/internal/models"
)

type memoryStore struct {
	apps map[uuid.UUID]*models.EventApplication
	now  time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		apps: make(map[uuid.UUID]*models.EventApplication),
		now:  time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	}
}

// tick advances the fake clock so AppliedAt ordering is deterministic.
func (m *memoryStore) tick() time.Time {
	m.now = m.now.Add(time.Minute)
	return m.now
}

func (m *memoryStore) Create(_ context.Context, a *models.EventApplication) error {
	for _, existing := range m.apps {
		if existing.EventID == a.EventID && existing.ApplicantID == a.ApplicantID && existing.Status != models.StatusCancelled {
			return apperror.AlreadyExists("an application for this event already exists")
		}
	}
	a.ID = uuid.New()
	a.AppliedAt = m.tick()
	a.UpdatedAt = a.AppliedAt
	cp := *a
	m.apps[a.ID] = &cp
	return nil
}

func (m *memoryStore) GetByID(_ context.Context, id uuid.UUID) (*models.EventApplication, error) {
	a, ok := m.apps[id]
	if !ok {
		return nil, apperror.NotFound("application", id.String())
	}
	cp := *a
	return &cp, nil
}

func (m *memoryStore) GetLive(_ context.Context, eventID, applicantID uuid.UUID) (*models.EventApplication, error) {
	for _, a := range m.apps {
		if a.EventID == eventID && a.ApplicantID == applicantID && a.Status != models.StatusCancelled {
			cp := *a
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("application", eventID.String())
}

func (m *memoryStore) TransitionFromPending(_ context.Context, id uuid.UUID, newStatus models.ApplicationStatus, organizationResponse string) (*models.EventApplication, error) {
	a, ok := m.apps[id]
	if !ok {
		return nil, apperror.NotFound("application", id.String())
	}
	if a.Status != models.StatusPending {
		return nil, apperror.InvalidTransition(string(a.Status), string(newStatus))
	}
	a.Status = newStatus
	if organizationResponse != "" {
		a.OrganizationResponse = organizationResponse
	}
	a.UpdatedAt = m.tick()
	cp := *a
	return &cp, nil
}

func (m *memoryStore) ListByApplicant(_ context.Context, applicantID uuid.UUID) ([]models.EventApplication, error) {
	return m.list(func(a *models.EventApplication) bool { return a.ApplicantID == applicantID }), nil
}

func (m *memoryStore) ListByEvent(_ context.Context, eventID uuid.UUID) ([]models.EventApplication, error) {
	return m.list(func(a *models.EventApplication) bool { return a.EventID == eventID }), nil
}

func (m *memoryStore) ListByOrganizer(_ context.Context, organizerID uuid.UUID) ([]models.EventApplication, error) {
	return m.list(func(a *models.EventApplication) bool { return a.OrganizerID == organizerID }), nil
}

// list returns matches sorted by AppliedAt descending, like the SQL
// repository does.
func (m *memoryStore) list(match func(*models.EventApplication) bool) []models.EventApplication {
	var out []models.EventApplication
	for _, a := range m.apps {
		if match(a) {
			out = append(out, *a)
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].AppliedAt.After(out[i].AppliedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

type memoryEvents struct {
	events map[uuid.UUID]*models.EventPost
}

func (m *memoryEvents) GetByID(_ context.Context, id uuid.UUID) (*models.EventPost, error) {
	e, ok := m.events[id]
	if !ok {
		return nil, apperror.NotFound("event", id.String())
	}
	cp := *e
	return &cp, nil
}

type memoryProfiles struct {
	profiles map[uuid.UUID]*models.Profile
}

func (m *memoryProfiles) GetByUID(_ context.Context, uid uuid.UUID) (*models.Profile, error) {
	p, ok := m.profiles[uid]
	if !ok {
		return nil, apperror.NotFound("profile", uid.String())
	}
	cp := *p
	return &cp, nil
}

type fixture struct {
	store    *memoryStore
	events   *memoryEvents
	profiles *memoryProfiles
	svc      *Service

	organizerID uuid.UUID
	seniorID    uuid.UUID
	eventID     uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:       newMemoryStore(),
		events:      &memoryEvents{events: make(map[uuid.UUID]*models.EventPost)},
		profiles:    &memoryProfiles{profiles: make(map[uuid.UUID]*models.Profile)},
		organizerID: uuid.New(),
		seniorID:    uuid.New(),
		eventID:     uuid.New(),
	}
	f.svc = NewService(f.store, f.events, f.profiles, nil)

	f.profiles.profiles[f.organizerID] = &models.Profile{
		UID:  f.organizerID,
		Role: models.RoleOrg,
		Name: "Sakura NPO",
		OrgProfile: &models.OrgProfile{
			OrganizationName: "Sakura NPO",
			OrganizationType: models.OrgTypeNPO,
			ContactEmail:     "info@sakura.example",
		},
	}
	f.profiles.profiles[f.seniorID] = &models.Profile{
		UID:  f.seniorID,
		Role: models.RoleSenior,
		Name: "Taro",
		SeniorProfile: &models.SeniorProfile{
			Nickname: "Taro",
			Gender:   models.GenderMale,
		},
	}
	f.events.events[f.eventID] = &models.EventPost{
		ID:               f.eventID,
		OrganizerID:      f.organizerID,
		OrganizationName: "Sakura NPO",
		Title:            "Smartphone basics",
		Area:             models.Area{Pref: "東京都", City: "世田谷区"},
		TargetGender:     models.GenderAny,
		ITLevel:          models.ITLevelAny,
		EventDate:        time.Date(2026, 5, 10, 10, 0, 0, 0, time.UTC),
		IsActive:         true,
	}
	return f
}

func TestApplyCreatesPendingWithSnapshots(t *testing.T) {
	f := newFixture(t)

	a, err := f.svc.Apply(context.Background(), f.eventID, f.seniorID, "よろしくお願いします")
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, a.Status)
	require.Equal(t, "Taro", a.ApplicantName)
	require.Equal(t, f.organizerID, a.OrganizerID)
	require.Equal(t, "よろしくお願いします", a.Message)
	require.NotEqual(t, uuid.Nil, a.ID)
}

func TestApplyTwiceFails(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.Apply(context.Background(), f.eventID, f.seniorID, "")
	require.NoError(t, err)

	_, err = f.svc.Apply(context.Background(), f.eventID, f.seniorID, "second try")
	require.ErrorIs(t, err, apperror.ErrAlreadyExists)

	list, err := f.svc.ListByEvent(context.Background(), f.eventID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, first.ID, list[0].ID)
	require.Equal(t, models.StatusPending, list[0].Status)
}

func TestApplyToOwnEventFails(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Apply(context.Background(), f.eventID, f.organizerID, "")
	require.ErrorIs(t, err, apperror.ErrSelfApplication)

	list, err := f.svc.ListByEvent(context.Background(), f.eventID)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestApplyWithoutProfileFails(t *testing.T) {
	f := newFixture(t)
	stranger := uuid.New()

	_, err := f.svc.Apply(context.Background(), f.eventID, stranger, "")
	require.ErrorIs(t, err, apperror.ErrProfileMissing)
}

func TestApplyToInactiveEventFails(t *testing.T) {
	f := newFixture(t)
	f.events.events[f.eventID].IsActive = false

	_, err := f.svc.Apply(context.Background(), f.eventID, f.seniorID, "")
	require.ErrorIs(t, err, apperror.ErrEventInactive)
}

func TestApplyToMissingEventFails(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Apply(context.Background(), uuid.New(), f.seniorID, "")
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSetStatusApproveAndReject(t *testing.T) {
	f := newFixture(t)

	a, err := f.svc.Apply(context.Background(), f.eventID, f.seniorID, "")
	require.NoError(t, err)

	approved, err := f.svc.SetStatus(context.Background(), a.ID, models.StatusApproved, "Welcome!")
	require.NoError(t, err)
	require.Equal(t, models.StatusApproved, approved.Status)
	require.Equal(t, "Welcome!", approved.OrganizationResponse)

	// Decided applications cannot be decided again.
	_, err = f.svc.SetStatus(context.Background(), a.ID, models.StatusRejected, "")
	require.ErrorIs(t, err, apperror.ErrInvalidTransition)

	got, err := f.svc.Get(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusApproved, got.Status)
	require.Equal(t, "Welcome!", got.OrganizationResponse)
}

func TestSetStatusRejectsInvalidTargets(t *testing.T) {
	f := newFixture(t)

	a, err := f.svc.Apply(context.Background(), f.eventID, f.seniorID, "")
	require.NoError(t, err)

	for _, target := range []models.ApplicationStatus{models.StatusPending, models.StatusCancelled, "frobnicated"} {
		_, err := f.svc.SetStatus(context.Background(), a.ID, target, "")
		require.ErrorIs(t, err, apperror.ErrInvalidTransition)
	}

	got, err := f.svc.Get(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, got.Status)
}

func TestSetStatusMissingApplication(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SetStatus(context.Background(), uuid.New(), models.StatusApproved, "")
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCancelFreesTheSlot(t *testing.T) {
	f := newFixture(t)

	a, err := f.svc.Apply(context.Background(), f.eventID, f.seniorID, "")
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusCancelled, cancelled.Status)

	// A cancelled application no longer blocks re-applying.
	second, err := f.svc.Apply(context.Background(), f.eventID, f.seniorID, "second chance")
	require.NoError(t, err)
	require.NotEqual(t, a.ID, second.ID)
	require.Equal(t, models.StatusPending, second.Status)
}

func TestCancelAfterDecisionFails(t *testing.T) {
	f := newFixture(t)

	a, err := f.svc.Apply(context.Background(), f.eventID, f.seniorID, "")
	require.NoError(t, err)
	_, err = f.svc.SetStatus(context.Background(), a.ID, models.StatusRejected, "")
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), a.ID)
	require.ErrorIs(t, err, apperror.ErrInvalidTransition)
}

func TestListByApplicantNewestFirst(t *testing.T) {
	f := newFixture(t)

	secondEvent := uuid.New()
	f.events.events[secondEvent] = &models.EventPost{
		ID:          secondEvent,
		OrganizerID: f.organizerID,
		Title:       "Tablet photo class",
		IsActive:    true,
	}

	first, err := f.svc.Apply(context.Background(), f.eventID, f.seniorID, "")
	require.NoError(t, err)
	second, err := f.svc.Apply(context.Background(), secondEvent, f.seniorID, "")
	require.NoError(t, err)

	list, err := f.svc.ListByApplicant(context.Background(), f.seniorID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID)
	require.Equal(t, first.ID, list[1].ID)
	require.True(t, !list[0].AppliedAt.Before(list[1].AppliedAt))
}

func TestStatusFor(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.StatusFor(context.Background(), f.eventID, f.seniorID)
	require.NoError(t, err)
	require.Nil(t, got)

	a, err := f.svc.Apply(context.Background(), f.eventID, f.seniorID, "")
	require.NoError(t, err)

	got, err = f.svc.StatusFor(context.Background(), f.eventID, f.seniorID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, a.ID, got.ID)
	require.Equal(t, models.StatusPending, got.Status)
}

// Walks the happy path end to end: an organizer posts an event, a
// senior applies with a message, the organizer sees the pending
// application and approves it with a response, and the senior sees the
// decision in their list.
func TestApplicationLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Apply(ctx, f.eventID, f.seniorID, "参加したいです")
	require.NoError(t, err)

	pending, err := f.svc.ListByEvent(ctx, f.eventID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, models.StatusPending, pending[0].Status)
	require.Equal(t, "参加したいです", pending[0].Message)
	require.Equal(t, "Taro", pending[0].ApplicantName)

	_, err = f.svc.SetStatus(ctx, a.ID, models.StatusApproved, "Welcome!")
	require.NoError(t, err)

	mine, err := f.svc.ListByApplicant(ctx, f.seniorID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, models.StatusApproved, mine[0].Status)
	require.Equal(t, "Welcome!", mine[0].OrganizationResponse)

	byOrganizer, err := f.svc.ListByOrganizer(ctx, f.organizerID)
	require.NoError(t, err)
	require.Len(t, byOrganizer, 1)
	require.Equal(t, a.ID, byOrganizer[0].ID)
}
