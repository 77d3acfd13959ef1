package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/greenloophq/greenloop/db"
	"github.com/greenloophq/greenloop/models"

	errs "github.com/greenloophq/greenloop/errors"
)

// fakeLedger is an in-memory stand-in for the reward and report
// repositories. Mutations take the same all-or-nothing shape as the
// real transactions: an injected failure leaves no partial state.
type fakeLedger struct {
	mu            sync.Mutex
	rewards       map[uint]*models.Reward
	userNames     map[uint]string
	txns          []models.PointTransaction
	notifications []models.Notification
	reports       []models.Report
	collected     []models.CollectedWaste
	nextRewardID  uint

	failNotify bool
	readErr    error
}

var (
	_ db.RewardRepository = (*fakeLedger)(nil)
	_ db.ReportRepository = (*fakeLedger)(nil)
)

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		rewards:   make(map[uint]*models.Reward),
		userNames: make(map[uint]string),
	}
}

func (f *fakeLedger) getOrCreateLocked(userID uint) *models.Reward {
	if reward, ok := f.rewards[userID]; ok {
		return reward
	}
	f.nextRewardID++
	reward := &models.Reward{
		Model:          models.Model{ID: f.nextRewardID},
		UserID:         userID,
		Points:         0,
		Level:          1,
		IsAvailable:    true,
		Name:           "Default Reward",
		CollectionInfo: "Default Collection Info",
	}
	f.rewards[userID] = reward
	return reward
}

// creditLocked mirrors the atomic ledger unit: balance move, audit row
// and notification either all land or none do.
func (f *fakeLedger) creditLocked(userID uint, delta int, txnType, description, message string) (*models.Reward, error) {
	reward := f.getOrCreateLocked(userID)
	if reward.Points+delta < 0 {
		return nil, errs.ErrInsufficientPoints
	}
	if f.failNotify && message != "" {
		return nil, fmt.Errorf("writing reward notification: connection reset")
	}

	reward.Points += delta
	f.txns = append(f.txns, models.PointTransaction{
		UserID:      userID,
		Type:        txnType,
		Amount:      delta,
		Description: description,
	})
	if message != "" {
		f.notifications = append(f.notifications, models.Notification{
			UserID:  userID,
			Message: message,
			Type:    models.NotificationTypeReward,
		})
	}
	snapshot := *reward
	return &snapshot, nil
}

func (f *fakeLedger) GetOrCreateReward(userID uint) (*models.Reward, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snapshot := *f.getOrCreateLocked(userID)
	return &snapshot, nil
}

func (f *fakeLedger) GetRewardByUserID(userID uint) (*models.Reward, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reward, ok := f.rewards[userID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	snapshot := *reward
	return &snapshot, nil
}

func (f *fakeLedger) CreditPoints(userID uint, delta int, txnType, description, message string) (*models.Reward, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creditLocked(userID, delta, txnType, description, message)
}

func (f *fakeLedger) CreateTransaction(userID uint, txnType string, amount int, description string) (*models.PointTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	txn := models.PointTransaction{
		UserID:      userID,
		Type:        txnType,
		Amount:      amount,
		Description: description,
	}
	f.txns = append(f.txns, txn)
	return &txn, nil
}

func (f *fakeLedger) GetAllRewardsWithUsers() ([]models.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := make([]models.LeaderboardEntry, 0, len(f.rewards))
	for userID, reward := range f.rewards {
		entries = append(entries, models.LeaderboardEntry{
			ID:       reward.ID,
			UserID:   userID,
			Points:   reward.Points,
			Level:    reward.Level,
			UserName: f.userNames[userID],
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Points > entries[j].Points })
	return entries, nil
}

func (f *fakeLedger) GetTransactionsByUserID(userID uint) ([]models.PointTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	var txns []models.PointTransaction
	for _, txn := range f.txns {
		if txn.UserID == userID {
			txns = append(txns, txn)
		}
	}
	return txns, nil
}

func (f *fakeLedger) SumTransactionAmount(userID uint) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, txn := range f.txns {
		if txn.UserID == userID {
			total += txn.Amount
		}
	}
	return total, nil
}

func (f *fakeLedger) ProcessDailyRewards() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	userIDs := make([]uint, 0, len(f.rewards))
	for userID := range f.rewards {
		userIDs = append(userIDs, userID)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })
	for _, userID := range userIDs {
		if _, err := f.creditLocked(userID,
			models.DailyBonusPoints,
			models.TransactionEarnedCollect,
			"Daily activity bonus",
			fmt.Sprintf("You've received %d points as your daily reward!", models.DailyBonusPoints),
		); err != nil {
			return 0, err
		}
	}
	return len(userIDs), nil
}

func (f *fakeLedger) SetRewardLevel(userID uint, level int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	reward, ok := f.rewards[userID]
	if !ok {
		return errs.ErrNotFound
	}
	reward.Level = level
	return nil
}

func (f *fakeLedger) CreateWithReward(report *models.Report) (*models.Reward, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	report.Status = models.ReportStatusPending
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	reward, err := f.creditLocked(report.UserID,
		models.ReportPoints,
		models.TransactionEarnedReport,
		"Points earned for reporting waste",
		fmt.Sprintf("You've earned %d points for reporting waste!", models.ReportPoints),
	)
	if err != nil {
		return nil, err
	}
	f.reports = append(f.reports, *report)
	return reward, nil
}

func (f *fakeLedger) GetReportByID(reportID uuid.UUID) (*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.reports {
		if f.reports[i].ID == reportID {
			snapshot := f.reports[i]
			return &snapshot, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeLedger) GetReportsByUserID(userID uint) ([]models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	var reports []models.Report
	for _, report := range f.reports {
		if report.UserID == userID {
			reports = append(reports, report)
		}
	}
	return reports, nil
}

func (f *fakeLedger) GetPaginatedReports(page, pageSize int) (*models.PaginatedReports, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = db.DefaultPageSize
	}

	sorted := make([]models.Report, len(f.reports))
	copy(sorted, f.reports)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })

	offset := (page - 1) * pageSize
	if offset > len(sorted) {
		offset = len(sorted)
	}
	end := offset + pageSize
	if end > len(sorted) {
		end = len(sorted)
	}

	return &models.PaginatedReports{
		Reports:  sorted[offset:end],
		Page:     page,
		PageSize: pageSize,
		Total:    int64(len(f.reports)),
	}, nil
}

func (f *fakeLedger) VerifyReport(reportID uuid.UUID) (*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.reports {
		if f.reports[i].ID != reportID {
			continue
		}
		if !f.reports[i].CanTransitionTo(models.ReportStatusVerified) {
			return nil, errs.New(fmt.Sprintf("cannot verify report in status %q", f.reports[i].Status), 422)
		}
		f.reports[i].Status = models.ReportStatusVerified
		snapshot := f.reports[i]
		return &snapshot, nil
	}
	return nil, errs.ErrNotFound
}

func (f *fakeLedger) MarkCollected(reportID uuid.UUID, collectorID uint) (*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.reports {
		if f.reports[i].ID != reportID {
			continue
		}
		if !f.reports[i].CanTransitionTo(models.ReportStatusCollected) {
			return nil, errs.New(fmt.Sprintf("cannot collect report in status %q", f.reports[i].Status), 422)
		}
		if _, err := f.creditLocked(collectorID,
			models.CollectionPoints,
			models.TransactionEarnedCollect,
			"Points earned for collecting waste",
			fmt.Sprintf("You've earned %d points for collecting waste!", models.CollectionPoints),
		); err != nil {
			return nil, err
		}
		f.reports[i].Status = models.ReportStatusCollected
		f.reports[i].CollectorID = &collectorID
		f.collected = append(f.collected, models.CollectedWaste{
			ReportID:       reportID,
			CollectorID:    collectorID,
			CollectionDate: time.Now(),
			Status:         models.ReportStatusCollected,
		})
		snapshot := f.reports[i]
		return &snapshot, nil
	}
	return nil, errs.ErrNotFound
}

func (f *fakeLedger) DeleteReport(reportID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.reports {
		if f.reports[i].ID == reportID {
			f.reports = append(f.reports[:i], f.reports[i+1:]...)
			return nil
		}
	}
	return errs.ErrNotFound
}

func (f *fakeLedger) GetTodayReportCount() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.reports)), nil
}

// fakeVerifier is a canned waste classifier.
type fakeVerifier struct {
	result *VerificationResult
	err    error
	calls  int
}

func (f *fakeVerifier) Classify(image []byte, prompt string) (*VerificationResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeNotificationStore implements db.NotificationRepository in memory.
type fakeNotificationStore struct {
	mu            sync.Mutex
	notifications []models.Notification
	nextID        uint
}

var _ db.NotificationRepository = (*fakeNotificationStore)(nil)

func (f *fakeNotificationStore) CreateNotification(userID uint, message, notificationType string) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	notification := models.Notification{
		Model:   models.Model{ID: f.nextID},
		UserID:  userID,
		Message: message,
		Type:    notificationType,
	}
	f.notifications = append(f.notifications, notification)
	return &notification, nil
}

func (f *fakeNotificationStore) GetUnreadNotifications(userID uint) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var unread []models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID && !n.IsRead {
			unread = append(unread, n)
		}
	}
	return unread, nil
}

func (f *fakeNotificationStore) MarkNotificationAsRead(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].ID == id {
			f.notifications[i].IsRead = true
		}
	}
	return nil
}
