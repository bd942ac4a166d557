package models

import "time"

// BannerLocation is where a banner slot is rendered.
type BannerLocation string

const (
	BannerHome BannerLocation = "home"
	BannerTeam BannerLocation = "team"
)

// Banner is a promotional slot managed from the admin panel.
type Banner struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"size:200;not null" json:"title"`
	Content   string         `gorm:"type:text" json:"content"`
	ImageURL  string         `json:"image_url"`
	LinkURL   string         `json:"link_url"`
	Location  BannerLocation `gorm:"type:varchar(10);not null;default:'home';index" json:"location"`
	Target    *string        `gorm:"size:255" json:"target"`
	StartDate *time.Time     `json:"start_date"`
	EndDate   *time.Time     `json:"end_date"`
	Priority  int            `gorm:"not null;default:1" json:"priority"`
	IsActive  *bool          `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ActiveAt reports whether the banner is enabled and inside its window.
func (b *Banner) ActiveAt(t time.Time) bool {
	return b.Enabled() && withinWindow(b.StartDate, b.EndDate, t)
}

// Enabled reads IsActive; an unset flag counts as enabled.
func (b *Banner) Enabled() bool {
	return b.IsActive == nil || *b.IsActive
}
