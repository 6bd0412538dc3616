package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailLog records a notification rendered for an application event
// (received, approved, rejected, cancelled). Delivery is handled
// outside this service; the log is the system of record for what was
// sent to whom.
type EmailLog struct {
	ID            uuid.UUID `json:"id"`
	ApplicationID uuid.UUID `json:"application_id"`
	Recipient     string    `json:"recipient"`
	Kind          string    `json:"kind"`
	Subject       string    `json:"subject"`
	Body          string    `json:"body"`
	CreatedAt     time.Time `json:"created_at"`
}
