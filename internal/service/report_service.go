package service

import (
	"context"
	"fmt"
	"time"

	"kbomate/internal/models"
	"kbomate/internal/observability"
	"kbomate/internal/repository"
)

const (
	reportPreviewRunes = 100
	maxReportReason    = 1000
	maxHeatmapDays     = 366
)

type ReportService struct {
	reports  repository.ReportRepository
	posts    repository.MatePostRepository
	comments repository.MateCommentRepository
	users    repository.UserRepository
	now      func() time.Time
}

func NewReportService(
	reports repository.ReportRepository,
	posts repository.MatePostRepository,
	comments repository.MateCommentRepository,
	users repository.UserRepository,
) *ReportService {
	return &ReportService{reports: reports, posts: posts, comments: comments, users: users, now: time.Now}
}

type ListReportsInput struct {
	TargetType string
	Status     string
	SortBy     string
	Page       int
}

// List returns one 20-row page of reports, newest (or by status) first.
func (s *ReportService) List(ctx context.Context, in ListReportsInput) (*Page[models.Report], error) {
	if in.Status != "" && !models.ReportStatus(in.Status).Valid() {
		return nil, models.NewValidationError("Invalid status filter")
	}
	if in.TargetType != "" && !validTarget(models.ReportTargetType(in.TargetType)) {
		return nil, models.NewValidationError("Invalid target type filter")
	}
	if in.SortBy != "" && in.SortBy != "created_at" && in.SortBy != "status" {
		return nil, models.NewValidationError("sort_by must be created_at or status")
	}

	page := normalizePage(in.Page)
	items, total, err := s.reports.List(ctx, repository.ReportFilter{
		TargetType: models.ReportTargetType(in.TargetType),
		Status:     models.ReportStatus(in.Status),
		SortBy:     in.SortBy,
		Page:       page,
		PageSize:   ReportPageSize,
	})
	if err != nil {
		return nil, wrap(err)
	}
	return &Page[models.Report]{Items: items, Total: total, Page: page, PageSize: ReportPageSize}, nil
}

func validTarget(t models.ReportTargetType) bool {
	switch t {
	case models.ReportTargetPost, models.ReportTargetComment, models.ReportTargetUser:
		return true
	}
	return false
}

type CreateReportInput struct {
	ReporterID uint
	TargetType models.ReportTargetType
	TargetID   uint
	Reason     string
}

// Create files a report. The reported author and a content preview are resolved here.
func (s *ReportService) Create(ctx context.Context, in CreateReportInput) (*models.Report, error) {
	reason := trimmed(in.Reason)
	if reason == "" {
		return nil, models.NewValidationError("Reason is required")
	}
	if runeLen(reason) > maxReportReason {
		return nil, models.NewValidationError("Reason too long (max 1000 characters)")
	}
	if in.TargetID == 0 {
		return nil, models.NewValidationError("Target is required")
	}

	report := &models.Report{
		TargetType: in.TargetType,
		TargetID:   in.TargetID,
		Reason:     reason,
		Status:     models.ReportStatusPending,
		ReporterID: in.ReporterID,
	}

	switch in.TargetType {
	case models.ReportTargetPost:
		post, err := s.posts.GetByID(ctx, in.TargetID)
		if err != nil {
			return nil, wrap(err)
		}
		report.UserID = &post.UserID
		report.ContentPreview = truncateRunes(post.Title+" "+post.Content, reportPreviewRunes)
	case models.ReportTargetComment:
		comment, err := s.comments.GetByID(ctx, in.TargetID)
		if err != nil {
			return nil, wrap(err)
		}
		report.UserID = &comment.UserID
		report.ContentPreview = truncateRunes(comment.Content, reportPreviewRunes)
	case models.ReportTargetUser:
		user, err := s.users.GetByID(ctx, in.TargetID)
		if err != nil {
			return nil, wrap(err)
		}
		report.UserID = &user.ID
		report.ContentPreview = truncateRunes(user.Nickname, reportPreviewRunes)
	default:
		return nil, models.NewValidationError("Invalid target type")
	}

	if report.UserID != nil && *report.UserID == in.ReporterID {
		return nil, models.NewValidationError("You cannot report your own content")
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, wrap(err)
	}
	return report, nil
}

// UpdateStatus applies a moderation action to a report.
func (s *ReportService) UpdateStatus(ctx context.Context, actorID, id uint, status models.ReportStatus) error {
	if !status.Valid() {
		return models.NewValidationError("Invalid status")
	}
	if err := s.reports.UpdateStatus(ctx, id, status); err != nil {
		return wrap(err)
	}
	observability.AdminActions.WithLabelValues("reports", "status").Inc()
	observability.Audit.Record(ctx, actorID, "report.status", "report", id, map[string]any{"status": status})
	return nil
}

// Delete hard-deletes a report.
func (s *ReportService) Delete(ctx context.Context, actorID, id uint) error {
	if err := s.reports.Delete(ctx, id); err != nil {
		return wrap(err)
	}
	observability.AdminActions.WithLabelValues("reports", "delete").Inc()
	observability.Audit.Record(ctx, actorID, "report.delete", "report", id, nil)
	return nil
}

// Heatmap counts reports per KST calendar day for the last days days, oldest first.
// Days without reports are included with a zero count.
func (s *ReportService) Heatmap(ctx context.Context, days int) ([]models.ReportDayCount, error) {
	if days < 1 || days > maxHeatmapDays {
		return nil, models.NewValidationError(fmt.Sprintf("days must be between 1 and %d", maxHeatmapDays))
	}

	today := startOfDay(s.now().In(KST))
	first := today.AddDate(0, 0, -(days - 1))
	stamps, err := s.reports.CreatedSince(ctx, first)
	if err != nil {
		return nil, wrap(err)
	}

	return bucketByDay(stamps, first, days), nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func bucketByDay(stamps []time.Time, first time.Time, days int) []models.ReportDayCount {
	out := make([]models.ReportDayCount, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := first.AddDate(0, 0, i).Format(time.DateOnly)
		out[i] = models.ReportDayCount{Date: date}
		index[date] = i
	}
	for _, ts := range stamps {
		if i, ok := index[ts.In(KST).Format(time.DateOnly)]; ok {
			out[i].Count++
		}
	}
	return out
}
