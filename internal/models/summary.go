package models

import "time"

// Summary sources.
const (
	SummarySourceComments = "comments"
	SummarySourceYouTube  = "youtube"
)

// Summary stores an LLM-generated digest of mate comments or a video transcript.
type Summary struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MateID    *uint     `gorm:"index" json:"mate_id"`
	Source    string    `gorm:"size:20;not null" json:"source"`
	SourceRef string    `gorm:"size:500" json:"source_ref"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
