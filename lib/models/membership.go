package models

import (
	"database/sql"
	"time"
)

// Membership represents the binding of an auth user to a company, based on
// the iam.company_users table. A membership is only authoritative while
// Active is true; inactive rows grant no access anywhere.
type Membership struct {
	ID             int64          `json:"id"`
	CompanyID      int64          `json:"company_id"`
	AuthUserID     string         `json:"auth_user_id"` // Cognito sub UUID
	Username       string         `json:"username"`
	Role           string         `json:"role"`                 // ARCHON, EPISTATES or POLITES (stored uppercase)
	Department     sql.NullString `json:"department,omitempty"` // nullable: a member may have no department
	Active         bool           `json:"active"`
	CanCreateForms bool           `json:"can_create_forms"` // relevant only for EPISTATES

	Phone          sql.NullString `json:"phone,omitempty"`
	AvatarURL      sql.NullString `json:"avatar_url,omitempty"`
	PhoneUpdatedAt *time.Time     `json:"phone_updated_at,omitempty"`
	WelcomeSentAt  *time.Time     `json:"welcome_sent_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DepartmentOrEmpty returns the department as a plain string, empty when the
// member has none.
func (m *Membership) DepartmentOrEmpty() string {
	if m.Department.Valid {
		return m.Department.String
	}
	return ""
}

// UpdateProfileRequest represents the request payload for PATCH /account/profile.
// Pointers distinguish "not sent" from "clear this value".
type UpdateProfileRequest struct {
	Phone     *string `json:"phone,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// ProfileResponse represents the response after a profile update
type ProfileResponse struct {
	OK         bool        `json:"ok"`
	Membership *Membership `json:"membership"`
}

// MeResponse represents the authenticated bootstrap payload for /account/me
type MeResponse struct {
	OK              bool          `json:"ok"`
	User            *AuthUserInfo `json:"user"`
	Membership      *Membership   `json:"membership"`
	Company         *Company      `json:"company"`
	NeedsOnboarding bool          `json:"needs_onboarding,omitempty"`
}

// AuthUserInfo is the slice of the auth identity exposed to the client
type AuthUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
