package models

import (
	"time"

	"github.com/google/uuid"
)

// EventPost is an organizer-authored activity posting open for
// applications. OrganizationName and CreatedByRole are snapshots taken
// at creation time and are not kept in sync with later profile edits.
type EventPost struct {
	ID               uuid.UUID `json:"id"`
	OrganizerID      uuid.UUID `json:"organizer_id"`
	OrganizationName string    `json:"organization_name"`

	Title       string `json:"title"`
	Description string `json:"description"`
	Area        Area   `json:"area"`

	TargetGender    Gender     `json:"target_gender"`
	TargetAgeGroups []AgeGroup `json:"target_age_groups"`
	ITLevel         ITLevel    `json:"it_level"`
	RequiredSkills  []string   `json:"required_skills"`

	EventDate    time.Time  `json:"event_date"`
	EventEndDate *time.Time `json:"event_end_date,omitempty"`

	// IsActive is a soft-delete/visibility flag. Inactive events are
	// excluded from public listings but remain readable by their
	// organizer.
	IsActive      bool      `json:"is_active"`
	CreatedByRole Role      `json:"created_by_role"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
