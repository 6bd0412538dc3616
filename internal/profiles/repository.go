package profiles

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tsunagu-app/backend/internal/apperror"
	"github.com/tsunagu-app/backend/internal/models"
	"github.com/tsunagu-app/backend/pkg/database"
)

const profileColumns = `uid, role, name, area_pref, area_city, bio, photo_url, senior_profile, org_profile, version, created_at, updated_at`

// Repository handles profile persistence. Sub-profiles are stored as
// JSONB documents and validated on read; a row whose stored shape no
// longer deserializes surfaces as a malformed-record error instead of
// propagating zero values.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a profiles repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByUID returns the profile for a user.
func (r *Repository) GetByUID(ctx context.Context, uid uuid.UUID) (*models.Profile, error) {
	const q = `SELECT ` + profileColumns + ` FROM profiles WHERE uid = $1`
	var p *models.Profile
	err := database.Retry(ctx, func() error {
		var scanErr error
		p, scanErr = scanProfile(r.pool.QueryRow(ctx, q, uid))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("profile", uid.String())
		}
		return nil, err
	}
	return p, nil
}

// Create inserts a profile with version 1. Fails with an
// already-exists error when the user has a profile, so an existing
// record is never silently clobbered.
func (r *Repository) Create(ctx context.Context, p *models.Profile) error {
	if err := Validate(p); err != nil {
		return err
	}
	seniorJSON, orgJSON, err := marshalSubProfiles(p)
	if err != nil {
		return err
	}
	const q = `INSERT INTO profiles (uid, role, name, area_pref, area_city, bio, photo_url, senior_profile, org_profile, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1)
		RETURNING version, created_at, updated_at`
	err = r.pool.QueryRow(ctx, q, p.UID, string(p.Role), p.Name, p.Area.Pref, p.Area.City, p.Bio, p.PhotoURL, seniorJSON, orgJSON).
		Scan(&p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.AlreadyExists("profile already exists for user " + p.UID.String())
		}
		return database.Classify(err)
	}
	return nil
}

// Update merges upd into the existing profile and writes it back with
// version bumped by one from the value just read. Last-write-wins:
// concurrent updaters are not detected.
func (r *Repository) Update(ctx context.Context, uid uuid.UUID, upd Update) (*models.Profile, error) {
	current, err := r.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	merged, err := Merge(*current, upd)
	if err != nil {
		return nil, err
	}
	seniorJSON, orgJSON, err := marshalSubProfiles(&merged)
	if err != nil {
		return nil, err
	}
	const q = `UPDATE profiles
		SET name = $2, area_pref = $3, area_city = $4, bio = $5, photo_url = $6,
			senior_profile = $7, org_profile = $8, version = $9, updated_at = NOW()
		WHERE uid = $1
		RETURNING version, updated_at`
	err = r.pool.QueryRow(ctx, q, uid, merged.Name, merged.Area.Pref, merged.Area.City, merged.Bio, merged.PhotoURL,
		seniorJSON, orgJSON, current.Version+1).
		Scan(&merged.Version, &merged.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("profile", uid.String())
		}
		return nil, database.Classify(err)
	}
	return &merged, nil
}

// ListByArea returns profiles in a prefecture, optionally narrowed to a
// city. Result sets are unbounded; read volumes in this domain are
// small.
func (r *Repository) ListByArea(ctx context.Context, pref, city string) ([]models.Profile, error) {
	q := `SELECT ` + profileColumns + ` FROM profiles WHERE area_pref = $1`
	args := []interface{}{pref}
	if city != "" {
		q += ` AND area_city = $2`
		args = append(args, city)
	}
	var list []models.Profile
	err := database.Retry(ctx, func() error {
		rows, err := r.pool.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		list, err = collectProfiles(rows)
		return err
	})
	return list, err
}

// ListByRole returns all profiles with the given role.
func (r *Repository) ListByRole(ctx context.Context, role models.Role) ([]models.Profile, error) {
	const q = `SELECT ` + profileColumns + ` FROM profiles WHERE role = $1`
	var list []models.Profile
	err := database.Retry(ctx, func() error {
		rows, err := r.pool.Query(ctx, q, string(role))
		if err != nil {
			return err
		}
		defer rows.Close()
		list, err = collectProfiles(rows)
		return err
	})
	return list, err
}

func marshalSubProfiles(p *models.Profile) ([]byte, []byte, error) {
	var seniorJSON, orgJSON []byte
	var err error
	if p.SeniorProfile != nil {
		if seniorJSON, err = json.Marshal(p.SeniorProfile); err != nil {
			return nil, nil, err
		}
	}
	if p.OrgProfile != nil {
		if orgJSON, err = json.Marshal(p.OrgProfile); err != nil {
			return nil, nil, err
		}
	}
	return seniorJSON, orgJSON, nil
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	var role string
	var seniorJSON, orgJSON []byte
	err := row.Scan(&p.UID, &role, &p.Name, &p.Area.Pref, &p.Area.City, &p.Bio, &p.PhotoURL,
		&seniorJSON, &orgJSON, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Role = models.Role(role)
	if len(seniorJSON) > 0 {
		var sp models.SeniorProfile
		if err := json.Unmarshal(seniorJSON, &sp); err != nil {
			return nil, apperror.MalformedRecord("profile", p.UID.String(), err)
		}
		p.SeniorProfile = &sp
	}
	if len(orgJSON) > 0 {
		var op models.OrgProfile
		if err := json.Unmarshal(orgJSON, &op); err != nil {
			return nil, apperror.MalformedRecord("profile", p.UID.String(), err)
		}
		p.OrgProfile = &op
	}
	if err := Validate(&p); err != nil {
		return nil, apperror.MalformedRecord("profile", p.UID.String(), err)
	}
	return &p, nil
}

func collectProfiles(rows pgx.Rows) ([]models.Profile, error) {
	var list []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}
