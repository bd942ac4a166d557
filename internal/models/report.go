package models

import "time"

// ReportTargetType is the kind of content a report points at.
type ReportTargetType string

const (
	ReportTargetPost    ReportTargetType = "post"
	ReportTargetComment ReportTargetType = "comment"
	ReportTargetUser    ReportTargetType = "user"
)

// ReportStatus is the moderation state of a report.
type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusResolved ReportStatus = "resolved"
	ReportStatusRejected ReportStatus = "rejected"
	ReportStatusDeleted  ReportStatus = "deleted"
)

// Valid reports whether s is a known status.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusPending, ReportStatusResolved, ReportStatusRejected, ReportStatusDeleted:
		return true
	}
	return false
}

// Report is a user complaint about a post, comment or another user.
// UserID is the author of the reported content.
type Report struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	TargetType     ReportTargetType `gorm:"type:varchar(20);not null;index" json:"target_type"`
	TargetID       uint             `gorm:"not null" json:"target_id"`
	Reason         string           `gorm:"type:text;not null" json:"reason"`
	Status         ReportStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReporterID     uint             `gorm:"not null;index" json:"reporter_id"`
	Reporter       *User            `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	UserID         *uint            `gorm:"index" json:"user_id"`
	Author         *User            `gorm:"foreignKey:UserID" json:"author,omitempty"`
	ContentPreview string           `gorm:"size:255" json:"content_preview"`
	CreatedAt      time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// ReportDayCount is one cell of the admin report heatmap.
type ReportDayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}
