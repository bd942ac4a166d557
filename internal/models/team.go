package models

import "time"

// Team is a KBO club. Slug is derived from Name and used in URLs.
type Team struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:80;not null" json:"name"`
	Slug        string    `gorm:"size:80;uniqueIndex;not null" json:"slug"`
	LogoURL     *string   `json:"logo_url"`
	StadiumCity string    `gorm:"size:40" json:"stadium_city"`
	CreatedAt   time.Time `json:"created_at"`
}
