// Package events implements event posting persistence and the public
// active-events listing.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tsunagu-app/backend/internal/apperror"
	"github.com/tsunagu-app/backend/internal/models"
	"github.com/tsunagu-app/backend/pkg/database"
)

const eventColumns = `id, organizer_id, organization_name, title, description, area_pref, area_city,
	target_gender, target_age_groups, it_level, required_skills, event_date, event_end_date,
	is_active, created_by_role, created_at, updated_at`

// Update holds the mutable event fields for a partial update. Nil
// fields are left unchanged. OrganizerID, OrganizationName and
// CreatedByRole are creation-time snapshots and never updatable.
type Update struct {
	Title           *string
	Description     *string
	Area            *models.Area
	TargetGender    *models.Gender
	TargetAgeGroups *[]models.AgeGroup
	ITLevel         *models.ITLevel
	RequiredSkills  *[]string
	EventDate       *time.Time
	EventEndDate    *time.Time
	IsActive        *bool
}

// Repository handles event persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new event and stamps both timestamps.
func (r *Repository) Create(ctx context.Context, e *models.EventPost) error {
	const q = `INSERT INTO events (organizer_id, organization_name, title, description, area_pref, area_city,
			target_gender, target_age_groups, it_level, required_skills, event_date, event_end_date, is_active, created_by_role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q,
		e.OrganizerID, e.OrganizationName, e.Title, e.Description, e.Area.Pref, e.Area.City,
		string(e.TargetGender), ageGroupsToStrings(e.TargetAgeGroups), string(e.ITLevel), e.RequiredSkills,
		e.EventDate, e.EventEndDate, e.IsActive, string(e.CreatedByRole)).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	return database.Classify(err)
}

// GetByID returns an event by ID, active or not.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.EventPost, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	var e *models.EventPost
	err := database.Retry(ctx, func() error {
		var scanErr error
		e, scanErr = scanEvent(r.pool.QueryRow(ctx, q, id))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("event", id.String())
		}
		return nil, err
	}
	return e, nil
}

// ListByOrganizer returns all events owned by the organizer, newest
// first, including inactive ones.
func (r *Repository) ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]models.EventPost, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE organizer_id = $1 ORDER BY created_at DESC`
	var list []models.EventPost
	err := database.Retry(ctx, func() error {
		rows, err := r.pool.Query(ctx, q, organizerID)
		if err != nil {
			return err
		}
		defer rows.Close()
		list, err = collectEvents(rows)
		return err
	})
	return list, err
}

// ListActive returns active events sorted by event date ascending.
// limit <= 0 means no cap.
func (r *Repository) ListActive(ctx context.Context, limit int) ([]models.EventPost, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE is_active ORDER BY event_date ASC`
	var args []interface{}
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}
	var list []models.EventPost
	err := database.Retry(ctx, func() error {
		rows, err := r.pool.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		list, err = collectEvents(rows)
		return err
	})
	return list, err
}

// Update merges upd into the existing event and stamps updated_at.
// Denormalized copies elsewhere (application applicant names, the
// event's own organization name) are not touched: they are write-time
// snapshots.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, upd Update) (*models.EventPost, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := *current
	if upd.Title != nil {
		merged.Title = *upd.Title
	}
	if upd.Description != nil {
		merged.Description = *upd.Description
	}
	if upd.Area != nil {
		merged.Area = *upd.Area
	}
	if upd.TargetGender != nil {
		merged.TargetGender = *upd.TargetGender
	}
	if upd.TargetAgeGroups != nil {
		merged.TargetAgeGroups = *upd.TargetAgeGroups
	}
	if upd.ITLevel != nil {
		merged.ITLevel = *upd.ITLevel
	}
	if upd.RequiredSkills != nil {
		merged.RequiredSkills = *upd.RequiredSkills
	}
	if upd.EventDate != nil {
		merged.EventDate = *upd.EventDate
	}
	if upd.EventEndDate != nil {
		merged.EventEndDate = upd.EventEndDate
	}
	if upd.IsActive != nil {
		merged.IsActive = *upd.IsActive
	}

	const q = `UPDATE events
		SET title = $2, description = $3, area_pref = $4, area_city = $5, target_gender = $6,
			target_age_groups = $7, it_level = $8, required_skills = $9, event_date = $10,
			event_end_date = $11, is_active = $12, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err = r.pool.QueryRow(ctx, q, id, merged.Title, merged.Description, merged.Area.Pref, merged.Area.City,
		string(merged.TargetGender), ageGroupsToStrings(merged.TargetAgeGroups), string(merged.ITLevel),
		merged.RequiredSkills, merged.EventDate, merged.EventEndDate, merged.IsActive).
		Scan(&merged.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("event", id.String())
		}
		return nil, database.Classify(err)
	}
	return &merged, nil
}

// Deactivate soft-deletes an event. There is no hard delete.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE events SET is_active = FALSE, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return database.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("event", id.String())
	}
	return nil
}

func ageGroupsToStrings(groups []models.AgeGroup) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = string(g)
	}
	return out
}

func stringsToAgeGroups(ss []string) []models.AgeGroup {
	out := make([]models.AgeGroup, len(ss))
	for i, s := range ss {
		out[i] = models.AgeGroup(s)
	}
	return out
}

func scanEvent(row pgx.Row) (*models.EventPost, error) {
	var e models.EventPost
	var gender, itLevel, createdByRole string
	var ageGroups []string
	err := row.Scan(&e.ID, &e.OrganizerID, &e.OrganizationName, &e.Title, &e.Description,
		&e.Area.Pref, &e.Area.City, &gender, &ageGroups, &itLevel, &e.RequiredSkills,
		&e.EventDate, &e.EventEndDate, &e.IsActive, &createdByRole, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.TargetGender = models.Gender(gender)
	e.TargetAgeGroups = stringsToAgeGroups(ageGroups)
	e.ITLevel = models.ITLevel(itLevel)
	e.CreatedByRole = models.Role(createdByRole)
	return &e, nil
}

func collectEvents(rows pgx.Rows) ([]models.EventPost, error) {
	var list []models.EventPost
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}
