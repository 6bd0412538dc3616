// Package emaillogs records notifications rendered for application
// activity. The worker writes them; organizers and applicants can audit
// what was sent for their applications.
package emaillogs

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tsunagu-app/backend/internal/models"
	"github.com/tsunagu-app/backend/pkg/database"
)

// Repository handles email log persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email logs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an email log entry.
func (r *Repository) Create(ctx context.Context, e *models.EmailLog) error {
	const q = `INSERT INTO email_logs (application_id, recipient, kind, subject, body)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, q, e.ApplicationID, e.Recipient, e.Kind, e.Subject, e.Body).
		Scan(&e.ID, &e.CreatedAt)
	return database.Classify(err)
}

// ListByApplication returns log entries for an application, newest first.
func (r *Repository) ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]models.EmailLog, error) {
	const q = `SELECT id, application_id, recipient, kind, subject, body, created_at
		FROM email_logs WHERE application_id = $1 ORDER BY created_at DESC`
	var list []models.EmailLog
	err := database.Retry(ctx, func() error {
		rows, err := r.pool.Query(ctx, q, applicationID)
		if err != nil {
			return err
		}
		defer rows.Close()
		list = list[:0]
		for rows.Next() {
			var e models.EmailLog
			if err := rows.Scan(&e.ID, &e.ApplicationID, &e.Recipient, &e.Kind, &e.Subject, &e.Body, &e.CreatedAt); err != nil {
				return err
			}
			list = append(list, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}
