package models

import "time"

// DefaultBanReason is recorded when an admin bans without giving a reason.
const DefaultBanReason = "관리자 정지"

// UserBan suspends a user between StartAt and EndAt.
type UserBan struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	StartAt   time.Time `gorm:"not null" json:"start_at"`
	EndAt     time.Time `gorm:"not null;index" json:"end_at"`
	Reason    string    `gorm:"size:255;not null" json:"reason"`
	CreatedBy *uint     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// ActiveAt reports whether the ban covers t.
func (b *UserBan) ActiveAt(t time.Time) bool {
	return !t.Before(b.StartAt) && t.Before(b.EndAt)
}
