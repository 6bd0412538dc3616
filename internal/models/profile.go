package models

import (
	"time"

	"github.com/google/uuid"
)

// Gender of a senior user, or the gender an event targets.
type Gender string

const (
	GenderMale     Gender = "male"
	GenderFemale   Gender = "female"
	GenderOther    Gender = "other"
	GenderNoAnswer Gender = "no_answer"
	GenderAny      Gender = "any"
)

// OrgType classifies an organization.
type OrgType string

const (
	OrgTypeEducation  OrgType = "education"
	OrgTypeGovernment OrgType = "government"
	OrgTypeNPO        OrgType = "npo"
	OrgTypeCompany    OrgType = "company"
)

// AgeGroup is a target age bracket for events. Values follow the
// product's Japanese display labels.
type AgeGroup string

const (
	AgeGroup50s     AgeGroup = "50代"
	AgeGroup60s     AgeGroup = "60代"
	AgeGroup70s     AgeGroup = "70代"
	AgeGroup80sPlus AgeGroup = "80代以上"
)

// ITLevel is the IT proficiency an event expects from participants.
type ITLevel string

const (
	ITLevelBeginner     ITLevel = "初心者"
	ITLevelBasic        ITLevel = "基礎レベル"
	ITLevelIntermediate ITLevel = "中級レベル"
	ITLevelAdvanced     ITLevel = "上級レベル"
	ITLevelAny          ITLevel = "不問"
)

// Area is a prefecture/city pair. Free text, not validated against a
// canonical list.
type Area struct {
	Pref string `json:"pref"`
	City string `json:"city"`
}

// SeniorProfile holds senior-specific profile fields.
type SeniorProfile struct {
	Nickname  string   `json:"nickname"`
	Gender    Gender   `json:"gender"`
	BirthDate string   `json:"birth_date"`
	Hobbies   []string `json:"hobbies"`
	Skills    []string `json:"skills"`
}

// OrgProfile holds organization-specific profile fields.
type OrgProfile struct {
	OrganizationName string   `json:"organization_name"`
	OrganizationType OrgType  `json:"organization_type"`
	EstablishedYear  *int     `json:"established_year,omitempty"`
	WebsiteURL       *string  `json:"website_url,omitempty"`
	ContactEmail     string   `json:"contact_email"`
	ContactPhone     *string  `json:"contact_phone,omitempty"`
	Services         []string `json:"services"`
	TargetAudience   []string `json:"target_audience"`
}

// Profile is the persisted identity record for a senior or organization
// user, keyed by the auth user ID. Exactly one of SeniorProfile or
// OrgProfile is populated, matching Role.
type Profile struct {
	UID      uuid.UUID `json:"uid"`
	Role     Role      `json:"role"`
	Name     string    `json:"name"` // nickname for seniors, organization name for orgs
	Area     Area      `json:"area"`
	Bio      string    `json:"bio,omitempty"`
	PhotoURL string    `json:"photo_url,omitempty"`

	SeniorProfile *SeniorProfile `json:"senior_profile,omitempty"`
	OrgProfile    *OrgProfile    `json:"org_profile,omitempty"`

	// Version is bumped on every update. Last-write-wins; it is an
	// audit marker, not a concurrency guard.
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns the name shown to other users: the organization
// name for orgs, otherwise the nickname, falling back to Name.
func (p *Profile) DisplayName() string {
	if p.Role == RoleOrg && p.OrgProfile != nil && p.OrgProfile.OrganizationName != "" {
		return p.OrgProfile.OrganizationName
	}
	if p.SeniorProfile != nil && p.SeniorProfile.Nickname != "" {
		return p.SeniorProfile.Nickname
	}
	return p.Name
}
