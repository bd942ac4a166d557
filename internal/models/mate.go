package models

import "time"

// MatePost is a bulletin-board entry looking for companions to attend a game.
// CurrentParticipants starts at 1 (the author) and nothing increments it.
type MatePost struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	UserID              uint      `gorm:"not null;index" json:"user_id"`
	User                *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TeamID              uint      `gorm:"not null;index" json:"team_id"`
	Team                *Team     `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	GameDate            time.Time `gorm:"not null" json:"game_date"`
	Title               string    `gorm:"size:200;not null" json:"title"`
	Content             string    `gorm:"type:text;not null" json:"content"`
	MaxParticipants     int       `gorm:"not null;default:2" json:"max_participants"`
	CurrentParticipants int       `gorm:"not null;default:1" json:"current_participants"`
	ImageURL            *string   `json:"image_url"`
	Location            string    `gorm:"size:200" json:"location"`
	IsDeleted           bool      `gorm:"not null;default:false;index" json:"is_deleted"`
	CreatedAt           time.Time `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// MateComment is a reply on a mate post.
type MateComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	IsDeleted bool      `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
