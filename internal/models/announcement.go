package models

import "time"

// AnnouncementType selects which pages an announcement is shown on.
type AnnouncementType string

const (
	AnnouncementAll  AnnouncementType = "all"
	AnnouncementTeam AnnouncementType = "team"
	AnnouncementPath AnnouncementType = "path"
)

// Announcement is an admin-authored notice. Lower Priority sorts first.
type Announcement struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	Title     string           `gorm:"size:200;not null" json:"title"`
	Content   string           `gorm:"type:text" json:"content"`
	Type      AnnouncementType `gorm:"type:varchar(10);not null;default:'all'" json:"type"`
	Target    *string          `gorm:"size:255" json:"target"`
	StartDate *time.Time       `json:"start_date"`
	EndDate   *time.Time       `json:"end_date"`
	Priority  int              `gorm:"not null;default:1;index" json:"priority"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// ActiveAt reports whether t falls inside the optional start/end window.
func (a *Announcement) ActiveAt(t time.Time) bool {
	return withinWindow(a.StartDate, a.EndDate, t)
}

func withinWindow(start, end *time.Time, t time.Time) bool {
	if start != nil && t.Before(*start) {
		return false
	}
	if end != nil && t.After(*end) {
		return false
	}
	return true
}
