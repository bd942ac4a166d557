// Package models contains the persisted domain types of the KBO mate community.
package models

import "time"

// Role is a coarse access level gating the admin area.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

// IsStaff reports whether the role may enter the admin area.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleModerator
}

// Auth providers recorded on a user row.
const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

// User is a community member. Password is empty for OAuth-only accounts.
type User struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Email           string     `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Password        string     `gorm:"size:255" json:"-"`
	Nickname        string     `gorm:"size:40" json:"nickname"`
	Role            Role       `gorm:"type:varchar(20);not null;default:'user';index" json:"role"`
	FavoriteTeamID  *uint      `gorm:"index" json:"favorite_team_id"`
	FavoriteTeam    *Team      `gorm:"foreignKey:FavoriteTeamID" json:"favorite_team,omitempty"`
	Provider        string     `gorm:"size:20;not null;default:'email'" json:"provider"`
	ProviderSubject string     `gorm:"size:255" json:"-"`
	LastSignInAt    *time.Time `json:"last_sign_in_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// PostCount is computed in admin listings.
	PostCount int64 `gorm:"->;-:migration" json:"post_count,omitempty"`
}
