// Package profiles implements profile persistence and the onboarding
// profile rules: one profile per user, a role-matching sub-profile, and
// a version counter bumped on every update.
package profiles

import (
	"fmt"

	"github.com/tsunagu-app/backend/internal/apperror"
	"github.com/tsunagu-app/backend/internal/models"
)

// Update holds the mutable profile fields for a partial update. Nil
// fields are left unchanged. UID, Role, Version and CreatedAt are never
// updatable.
type Update struct {
	Name          *string
	Area          *models.Area
	Bio           *string
	PhotoURL      *string
	SeniorProfile *models.SeniorProfile
	OrgProfile    *models.OrgProfile
}

// Validate checks the profile invariant: exactly one sub-profile is
// populated and it matches the role.
func Validate(p *models.Profile) error {
	switch p.Role {
	case models.RoleSenior:
		if p.SeniorProfile == nil || p.OrgProfile != nil {
			return apperror.Validation("senior profiles must carry a senior sub-profile only")
		}
	case models.RoleOrg:
		if p.OrgProfile == nil || p.SeniorProfile != nil {
			return apperror.Validation("org profiles must carry an org sub-profile only")
		}
	default:
		return apperror.Validation(fmt.Sprintf("unknown role %q", p.Role))
	}
	if p.Name == "" {
		return apperror.Validation("profile name is required")
	}
	return nil
}

// Merge applies upd on top of current and returns the merged profile.
// The sub-profile may only be replaced by one matching the role; the
// display name is re-derived when the sub-profile changes and no
// explicit name was supplied.
func Merge(current models.Profile, upd Update) (models.Profile, error) {
	merged := current

	if upd.SeniorProfile != nil {
		if current.Role != models.RoleSenior {
			return models.Profile{}, apperror.Validation("cannot set a senior sub-profile on an org profile")
		}
		sp := *upd.SeniorProfile
		merged.SeniorProfile = &sp
	}
	if upd.OrgProfile != nil {
		if current.Role != models.RoleOrg {
			return models.Profile{}, apperror.Validation("cannot set an org sub-profile on a senior profile")
		}
		op := *upd.OrgProfile
		merged.OrgProfile = &op
	}
	if upd.Area != nil {
		merged.Area = *upd.Area
	}
	if upd.Bio != nil {
		merged.Bio = *upd.Bio
	}
	if upd.PhotoURL != nil {
		merged.PhotoURL = *upd.PhotoURL
	}
	switch {
	case upd.Name != nil:
		merged.Name = *upd.Name
	case upd.SeniorProfile != nil || upd.OrgProfile != nil:
		merged.Name = merged.DisplayName()
	}

	if err := Validate(&merged); err != nil {
		return models.Profile{}, err
	}
	return merged, nil
}
