package repository

import (
	"context"
	"time"

	"kbomate/internal/models"

	"gorm.io/gorm"
)

// ReportFilter narrows the admin report listing. Empty fields do not filter.
type ReportFilter struct {
	TargetType models.ReportTargetType
	Status     models.ReportStatus
	SortBy     string
	Page       int
	PageSize   int
}

// ReportRepository persists user reports.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	List(ctx context.Context, f ReportFilter) ([]models.Report, int64, error)
	ListByReporter(ctx context.Context, reporterID uint, limit int) ([]models.Report, error)
	UpdateStatus(ctx context.Context, id uint, status models.ReportStatus) error
	Delete(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context, status models.ReportStatus) (int64, error)
	CreatedSince(ctx context.Context, since time.Time) ([]time.Time, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

var reportSortColumns = map[string]string{
	"created_at": "created_at",
	"status":     "status",
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reportRepository) List(ctx context.Context, f ReportFilter) ([]models.Report, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Report{})
	if f.TargetType != "" {
		q = q.Where("target_type = ?", f.TargetType)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	// Session makes q reusable for the count and the page query.
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	col, ok := reportSortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	limit, offset := offsetRange(f.Page, f.PageSize)

	var reports []models.Report
	err := q.
		Preload("Reporter", func(db *gorm.DB) *gorm.DB { return db.Select("id", "nickname", "email") }).
		Preload("Author", func(db *gorm.DB) *gorm.DB { return db.Select("id", "nickname", "email") }).
		Order(col + " DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&reports).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return reports, total, nil
}

func (r *reportRepository) ListByReporter(ctx context.Context, reporterID uint, limit int) ([]models.Report, error) {
	var reports []models.Report
	err := readDB(r.db).WithContext(ctx).
		Where("reporter_id = ?", reporterID).
		Order("created_at DESC").
		Limit(limit).
		Find(&reports).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return reports, nil
}

func (r *reportRepository) UpdateStatus(ctx context.Context, id uint, status models.ReportStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Report{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Report", id)
	}
	return nil
}

func (r *reportRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Report{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Report", id)
	}
	return nil
}

func (r *reportRepository) CountByStatus(ctx context.Context, status models.ReportStatus) (int64, error) {
	var n int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.Report{}).Where("status = ?", status).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

// CreatedSince returns creation timestamps of reports filed at or after since.
// Bucketing happens in the service so it does not depend on SQL date functions.
func (r *reportRepository) CreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	var stamps []time.Time
	err := readDB(r.db).WithContext(ctx).Model(&models.Report{}).
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Pluck("created_at", &stamps).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return stamps, nil
}
