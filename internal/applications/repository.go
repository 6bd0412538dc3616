package applications

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tsunagu-app/backend/internal/apperror"
	"github.com/tsunagu-app/backend/internal/models"
	"github.com/tsunagu-app/backend/pkg/database"
)

const applicationColumns = `id, event_id, applicant_id, applicant_name, organizer_id, status,
	COALESCE(message, ''), COALESCE(organization_response, ''), applied_at, updated_at`

// Repository handles application persistence. A partial unique index
// on (event_id, applicant_id) for non-cancelled rows backs the
// one-live-application invariant, so a duplicate insert racing past the
// service's pre-check still fails deterministically.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an applications repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a pending application and stamps both timestamps.
func (r *Repository) Create(ctx context.Context, a *models.EventApplication) error {
	const q = `INSERT INTO applications (event_id, applicant_id, applicant_name, organizer_id, status, message)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		RETURNING id, applied_at, updated_at`
	err := r.pool.QueryRow(ctx, q, a.EventID, a.ApplicantID, a.ApplicantName, a.OrganizerID, string(a.Status), a.Message).
		Scan(&a.ID, &a.AppliedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.AlreadyExists("an application for this event already exists")
		}
		return database.Classify(err)
	}
	return nil
}

// GetByID returns an application by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.EventApplication, error) {
	const q = `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	var a *models.EventApplication
	err := database.Retry(ctx, func() error {
		var scanErr error
		a, scanErr = scanApplication(r.pool.QueryRow(ctx, q, id))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("application", id.String())
		}
		return nil, err
	}
	return a, nil
}

// GetLive returns the non-cancelled application for an event and
// applicant, or a not-found error.
func (r *Repository) GetLive(ctx context.Context, eventID, applicantID uuid.UUID) (*models.EventApplication, error) {
	const q = `SELECT ` + applicationColumns + ` FROM applications
		WHERE event_id = $1 AND applicant_id = $2 AND status <> 'cancelled'`
	var a *models.EventApplication
	err := database.Retry(ctx, func() error {
		var scanErr error
		a, scanErr = scanApplication(r.pool.QueryRow(ctx, q, eventID, applicantID))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("application", eventID.String()+"/"+applicantID.String())
		}
		return nil, err
	}
	return a, nil
}

// TransitionFromPending atomically moves a pending application to
// newStatus. The status predicate is part of the write, so two racing
// transitions resolve to exactly one winner; the loser sees an
// invalid-transition error.
func (r *Repository) TransitionFromPending(ctx context.Context, id uuid.UUID, newStatus models.ApplicationStatus, organizationResponse string) (*models.EventApplication, error) {
	const q = `UPDATE applications
		SET status = $2,
			organization_response = COALESCE(NULLIF($3, ''), organization_response),
			updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + applicationColumns
	a, err := scanApplication(r.pool.QueryRow(ctx, q, id, string(newStatus), organizationResponse))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			current, getErr := r.GetByID(ctx, id)
			if getErr != nil {
				return nil, getErr
			}
			return nil, apperror.InvalidTransition(string(current.Status), string(newStatus))
		}
		return nil, database.Classify(err)
	}
	return a, nil
}

// ListByApplicant returns the applicant's applications, newest first.
func (r *Repository) ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]models.EventApplication, error) {
	const q = `SELECT ` + applicationColumns + ` FROM applications WHERE applicant_id = $1 ORDER BY applied_at DESC`
	return r.list(ctx, q, applicantID)
}

// ListByEvent returns the event's applications, newest first.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EventApplication, error) {
	const q = `SELECT ` + applicationColumns + ` FROM applications WHERE event_id = $1 ORDER BY applied_at DESC`
	return r.list(ctx, q, eventID)
}

// ListByOrganizer returns applications across all the organizer's
// events, newest first. organizer_id is denormalized onto applications
// at apply time precisely so this query needs no join.
func (r *Repository) ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]models.EventApplication, error) {
	const q = `SELECT ` + applicationColumns + ` FROM applications WHERE organizer_id = $1 ORDER BY applied_at DESC`
	return r.list(ctx, q, organizerID)
}

// StatusCounts holds per-status application totals for an event.
type StatusCounts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Cancelled int `json:"cancelled"`
}

// CountByEvent returns per-status application totals for an event.
func (r *Repository) CountByEvent(ctx context.Context, eventID uuid.UUID) (StatusCounts, error) {
	const q = `SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'rejected'),
			COUNT(*) FILTER (WHERE status = 'cancelled')
		FROM applications WHERE event_id = $1`
	var s StatusCounts
	err := database.Retry(ctx, func() error {
		return r.pool.QueryRow(ctx, q, eventID).Scan(&s.Total, &s.Pending, &s.Approved, &s.Rejected, &s.Cancelled)
	})
	return s, err
}

func (r *Repository) list(ctx context.Context, q string, arg interface{}) ([]models.EventApplication, error) {
	var list []models.EventApplication
	err := database.Retry(ctx, func() error {
		rows, err := r.pool.Query(ctx, q, arg)
		if err != nil {
			return err
		}
		defer rows.Close()
		list = list[:0]
		for rows.Next() {
			a, err := scanApplication(rows)
			if err != nil {
				return err
			}
			list = append(list, *a)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func scanApplication(row pgx.Row) (*models.EventApplication, error) {
	var a models.EventApplication
	var status string
	err := row.Scan(&a.ID, &a.EventID, &a.ApplicantID, &a.ApplicantName, &a.OrganizerID, &status,
		&a.Message, &a.OrganizationResponse, &a.AppliedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Status = models.ApplicationStatus(status)
	return &a, nil
}
