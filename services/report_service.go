package services

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/greenloophq/greenloop/config"
	"github.com/greenloophq/greenloop/db"
	"github.com/greenloophq/greenloop/models"

	apiError "github.com/greenloophq/greenloop/errors"
)

const classifyPrompt = "Estimate the waste type and quantity visible in this photo. " +
	"Respond with the waste category, an approximate amount and your confidence."

type ReportService interface {
	CreateReport(userID uint, request models.CreateReportRequest, image []byte) (*models.Report, error)
	GetReportsByUserID(userID uint) ([]models.Report, error)
	GetPaginatedReports(page, pageSize int) (*models.PaginatedReports, error)
	VerifyReport(reportID uuid.UUID, actor *models.User) (*models.Report, error)
	CollectReport(reportID uuid.UUID, actor *models.User) (*models.Report, error)
	DeleteReport(reportID uuid.UUID, actor *models.User) error
}

type reportService struct {
	Config     *config.Config
	reportRepo db.ReportRepository
	rewardRepo db.RewardRepository
	verifier   WasteVerifier
}

func NewReportService(reportRepo db.ReportRepository, rewardRepo db.RewardRepository, verifier WasteVerifier, conf *config.Config) ReportService {
	return &reportService{
		Config:     conf,
		reportRepo: reportRepo,
		rewardRepo: rewardRepo,
		verifier:   verifier,
	}
}

// CreateReport inserts a pending report and credits the reporter in one
// atomic unit. Failures are returned to the caller; a partial write is
// never silently dropped.
func (s *reportService) CreateReport(userID uint, request models.CreateReportRequest, image []byte) (*models.Report, error) {
	report := &models.Report{
		UserID:    userID,
		Location:  request.Location,
		WasteType: request.WasteType,
		Amount:    request.Amount,
		ImageURL:  request.ImageURL,
	}

	// Classification is best-effort: the collaborator may be down and
	// the report is still accepted, just unverified.
	if len(image) > 0 && s.verifier != nil {
		result, err := s.verifier.Classify(image, classifyPrompt)
		if err != nil {
			log.Printf("waste classification failed for user %d: %v", userID, err)
		} else if payload, err := json.Marshal(result); err == nil {
			report.VerificationResult = payload
			if report.WasteType == "" {
				report.WasteType = result.WasteType
			}
		}
	}

	reward, err := s.reportRepo.CreateWithReward(report)
	if err != nil {
		return nil, fmt.Errorf("error creating report: %w", err)
	}

	log.Printf("report %s created for user %d, balance now %d points", report.ID, userID, reward.Points)
	return report, nil
}

func (s *reportService) GetReportsByUserID(userID uint) ([]models.Report, error) {
	reports, err := s.reportRepo.GetReportsByUserID(userID)
	if err != nil {
		// Read-only query: degrade to an empty result.
		log.Printf("error fetching reports for user %d: %v", userID, err)
		return []models.Report{}, nil
	}
	return reports, nil
}

func (s *reportService) GetPaginatedReports(page, pageSize int) (*models.PaginatedReports, error) {
	if pageSize < 1 {
		pageSize = db.DefaultPageSize
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return s.reportRepo.GetPaginatedReports(page, pageSize)
}

// VerifyReport transitions pending -> verified. Collectors and admins only.
func (s *reportService) VerifyReport(reportID uuid.UUID, actor *models.User) (*models.Report, error) {
	if !isCollectorOrAdmin(actor) {
		return nil, apiError.ErrForbidden
	}
	return s.reportRepo.VerifyReport(reportID)
}

// CollectReport transitions verified -> collected and credits the
// acting collector.
func (s *reportService) CollectReport(reportID uuid.UUID, actor *models.User) (*models.Report, error) {
	if !isCollectorOrAdmin(actor) {
		return nil, apiError.ErrForbidden
	}
	return s.reportRepo.MarkCollected(reportID, actor.ID)
}

func (s *reportService) DeleteReport(reportID uuid.UUID, actor *models.User) error {
	report, err := s.reportRepo.GetReportByID(reportID)
	if err != nil {
		return err
	}
	if actor.Role.Name != models.RoleAdmin && report.UserID != actor.ID {
		return apiError.New("only the owner or an admin can delete a report", http.StatusForbidden)
	}
	return s.reportRepo.DeleteReport(reportID)
}

func isCollectorOrAdmin(actor *models.User) bool {
	if actor == nil {
		return false
	}
	return actor.Role.Name == models.RoleCollector || actor.Role.Name == models.RoleAdmin
}
