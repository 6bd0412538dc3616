package models

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus is the state of an event application.
type ApplicationStatus string

const (
	StatusPending   ApplicationStatus = "pending"
	StatusApproved  ApplicationStatus = "approved"
	StatusRejected  ApplicationStatus = "rejected"
	StatusCancelled ApplicationStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed from s.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// EventApplication is an applicant's request to join an EventPost.
// ApplicantName and OrganizerID are snapshots taken at apply time:
// ApplicantName from the applicant's profile, OrganizerID from the
// event, so organizer-side queries need no join.
type EventApplication struct {
	ID            uuid.UUID         `json:"id"`
	EventID       uuid.UUID         `json:"event_id"`
	ApplicantID   uuid.UUID         `json:"applicant_id"`
	ApplicantName string            `json:"applicant_name"`
	OrganizerID   uuid.UUID         `json:"organizer_id"`
	Status        ApplicationStatus `json:"status"`

	Message              string `json:"message,omitempty"`
	OrganizationResponse string `json:"organization_response,omitempty"`

	AppliedAt time.Time `json:"applied_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
