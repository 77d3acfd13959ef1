package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/greenloophq/greenloop/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	errs "github.com/greenloophq/greenloop/errors"
)

const DefaultPageSize = 10

type ReportRepository interface {
	CreateWithReward(report *models.Report) (*models.Reward, error)
	GetReportByID(reportID uuid.UUID) (*models.Report, error)
	GetReportsByUserID(userID uint) ([]models.Report, error)
	GetPaginatedReports(page, pageSize int) (*models.PaginatedReports, error)
	VerifyReport(reportID uuid.UUID) (*models.Report, error)
	MarkCollected(reportID uuid.UUID, collectorID uint) (*models.Report, error)
	DeleteReport(reportID uuid.UUID) error
	GetTodayReportCount() (int64, error)
}

type reportRepo struct {
	DB *gorm.DB
}

func NewReportRepo(db *GormDB) ReportRepository {
	return &reportRepo{db.DB}
}

// CreateWithReward inserts the pending report and credits the reporter
// inside one transaction: a mid-sequence failure leaves no partial
// credit and no report without its reward.
func (r *reportRepo) CreateWithReward(report *models.Report) (*models.Reward, error) {
	var reward *models.Reward
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		report.Status = models.ReportStatusPending
		if err := tx.Create(report).Error; err != nil {
			return errors.Wrap(err, "creating report")
		}

		var txErr error
		reward, txErr = creditPointsTx(tx, report.UserID,
			models.ReportPoints,
			models.TransactionEarnedReport,
			"Points earned for reporting waste",
			fmt.Sprintf("You've earned %d points for reporting waste!", models.ReportPoints),
		)
		return txErr
	})
	if err != nil {
		return nil, mapDBError(err)
	}
	return reward, nil
}

func (r *reportRepo) GetReportByID(reportID uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := r.DB.Where("id = ?", reportID).First(&report).Error; err != nil {
		return nil, mapDBError(err)
	}
	return &report, nil
}

func (r *reportRepo) GetReportsByUserID(userID uint) ([]models.Report, error) {
	var reports []models.Report
	err := r.DB.Where("user_id = ?", userID).Find(&reports).Error
	if err != nil {
		return nil, errors.Wrap(err, "fetching reports by user")
	}
	return reports, nil
}

// GetPaginatedReports returns one page of reports, newest first. page
// is 1-indexed; out-of-range pages come back empty, not as an error.
func (r *reportRepo) GetPaginatedReports(page, pageSize int) (*models.PaginatedReports, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	offset := (page - 1) * pageSize

	var total int64
	if err := r.DB.Model(&models.Report{}).Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "counting reports")
	}

	var reports []models.Report
	err := r.DB.Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&reports).Error
	if err != nil {
		return nil, errors.Wrap(err, "fetching paginated reports")
	}

	return &models.PaginatedReports{
		Reports:  reports,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

// VerifyReport moves a pending report to verified.
func (r *reportRepo) VerifyReport(reportID uuid.UUID) (*models.Report, error) {
	var report models.Report
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", reportID).
			First(&report).Error; err != nil {
			return err
		}
		if !report.CanTransitionTo(models.ReportStatusVerified) {
			return errs.New(fmt.Sprintf("cannot verify report in status %q", report.Status), 422)
		}
		report.Status = models.ReportStatusVerified
		return tx.Model(&models.Report{}).
			Where("id = ?", reportID).
			Update("status", models.ReportStatusVerified).Error
	})
	if err != nil {
		return nil, mapDBError(err)
	}
	return &report, nil
}

// MarkCollected completes the pickup: assigns the collector, records
// the CollectedWaste row and credits the collector, all in one
// transaction.
func (r *reportRepo) MarkCollected(reportID uuid.UUID, collectorID uint) (*models.Report, error) {
	var report models.Report
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", reportID).
			First(&report).Error; err != nil {
			return err
		}
		if !report.CanTransitionTo(models.ReportStatusCollected) {
			return errs.New(fmt.Sprintf("cannot collect report in status %q", report.Status), 422)
		}

		report.Status = models.ReportStatusCollected
		report.CollectorID = &collectorID
		if err := tx.Model(&models.Report{}).
			Where("id = ?", reportID).
			Updates(map[string]interface{}{
				"status":       models.ReportStatusCollected,
				"collector_id": collectorID,
			}).Error; err != nil {
			return errors.Wrap(err, "updating report status")
		}

		collected := models.CollectedWaste{
			ReportID:       reportID,
			CollectorID:    collectorID,
			CollectionDate: time.Now(),
			Status:         models.ReportStatusCollected,
		}
		if err := tx.Create(&collected).Error; err != nil {
			return errors.Wrap(err, "recording collected waste")
		}

		_, txErr := creditPointsTx(tx, collectorID,
			models.CollectionPoints,
			models.TransactionEarnedCollect,
			"Points earned for collecting waste",
			fmt.Sprintf("You've earned %d points for collecting waste!", models.CollectionPoints),
		)
		return txErr
	})
	if err != nil {
		return nil, mapDBError(err)
	}
	return &report, nil
}

// DeleteReport soft-deletes; report rows are never hard-deleted.
func (r *reportRepo) DeleteReport(reportID uuid.UUID) error {
	result := r.DB.Where("id = ?", reportID).Delete(&models.Report{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "deleting report")
	}
	if result.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// startOfDay returns local midnight for t; truncating against the UTC
// epoch would shift the window in any non-UTC deployment.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (r *reportRepo) GetTodayReportCount() (int64, error) {
	var count int64
	err := r.DB.Model(&models.Report{}).
		Where("created_at >= ?", startOfDay(time.Now())).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "counting today's reports")
	}
	return count, nil
}
