package models

import "time"

// Roles recognized by the access layer.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// Profile is the identity record for a registered supporter.
type Profile struct {
	SubjectKey string    `db:"subject_key" json:"subject_key"`
	Nickname   string    `db:"nickname" json:"nickname"`
	Role       string    `db:"role" json:"role"`
	AvatarURL  *string   `db:"avatar_url" json:"avatar_url"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the profile carries an administrative role.
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin || p.Role == RoleSuperAdmin
}
