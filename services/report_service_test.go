package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/greenloophq/greenloop/config"
	"github.com/greenloophq/greenloop/db"
	"github.com/greenloophq/greenloop/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiError "github.com/greenloophq/greenloop/errors"
)

func newTestReportService(ledger *fakeLedger, verifier WasteVerifier) ReportService {
	return NewReportService(ledger, ledger, verifier, &config.Config{})
}

func sampleRequest(i int) models.CreateReportRequest {
	return models.CreateReportRequest{
		Location:  fmt.Sprintf("site-%02d", i),
		WasteType: "plastic",
		Amount:    "2kg",
	}
}

func TestCreateReportAccruesTenPointsPerReport(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestReportService(ledger, nil)

	const n = 5
	for i := 0; i < n; i++ {
		_, err := svc.CreateReport(1, sampleRequest(i), nil)
		require.NoError(t, err)
	}

	reward, err := ledger.GetRewardByUserID(1)
	require.NoError(t, err)
	assert.Equal(t, n*models.ReportPoints, reward.Points)

	txns, err := ledger.GetTransactionsByUserID(1)
	require.NoError(t, err)
	require.Len(t, txns, n)
	for _, txn := range txns {
		assert.Equal(t, models.TransactionEarnedReport, txn.Type)
		assert.Equal(t, models.ReportPoints, txn.Amount)
	}
	assert.Len(t, ledger.notifications, n)
}

func TestCreateReportConcurrentAccrualLosesNoUpdate(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestReportService(ledger, nil)

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.CreateReport(1, sampleRequest(i), nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	reward, err := ledger.GetRewardByUserID(1)
	require.NoError(t, err)
	assert.Equal(t, n*models.ReportPoints, reward.Points)

	audited, err := ledger.SumTransactionAmount(1)
	require.NoError(t, err)
	assert.Equal(t, reward.Points, audited)
}

func TestCreateReportRollsBackWhenNotificationFails(t *testing.T) {
	ledger := newFakeLedger()
	ledger.failNotify = true
	svc := newTestReportService(ledger, nil)

	_, err := svc.CreateReport(1, sampleRequest(0), nil)
	require.Error(t, err)

	// Nothing from the failed unit may survive: no report, no balance
	// change, no audit row.
	assert.Empty(t, ledger.reports)
	assert.Empty(t, ledger.txns)
	assert.Empty(t, ledger.notifications)
	reward, err := ledger.GetOrCreateReward(1)
	require.NoError(t, err)
	assert.Equal(t, 0, reward.Points)
}

func TestCreateReportClassifierFailureStillAccepts(t *testing.T) {
	ledger := newFakeLedger()
	verifier := &fakeVerifier{err: errors.New("vision service returned status 503")}
	svc := newTestReportService(ledger, verifier)

	report, err := svc.CreateReport(1, sampleRequest(0), []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, 1, verifier.calls)
	assert.Empty(t, report.VerificationResult)
	assert.Equal(t, models.ReportStatusPending, report.Status)

	reward, err := ledger.GetRewardByUserID(1)
	require.NoError(t, err)
	assert.Equal(t, models.ReportPoints, reward.Points)
}

func TestCreateReportStoresClassifierEstimate(t *testing.T) {
	ledger := newFakeLedger()
	verifier := &fakeVerifier{result: &VerificationResult{
		WasteType:  "organic",
		Quantity:   "5kg",
		Confidence: 0.87,
	}}
	svc := newTestReportService(ledger, verifier)

	request := sampleRequest(0)
	request.WasteType = ""
	report, err := svc.CreateReport(1, request, []byte("jpeg-bytes"))
	require.NoError(t, err)

	var stored VerificationResult
	require.NoError(t, json.Unmarshal(report.VerificationResult, &stored))
	assert.Equal(t, "organic", stored.WasteType)
	assert.Equal(t, "organic", report.WasteType)
}

func TestGetPaginatedReportsWindow(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestReportService(ledger, nil)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		report := models.Report{
			UserID:    1,
			Location:  fmt.Sprintf("site-%02d", i),
			WasteType: "plastic",
			Amount:    "1kg",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		_, err := ledger.CreateWithReward(&report)
		require.NoError(t, err)
	}

	page, err := svc.GetPaginatedReports(2, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, int64(25), page.Total)
	require.Len(t, page.Reports, 10)

	// Newest first, so page 2 holds global items 11 through 20.
	assert.Equal(t, "site-14", page.Reports[0].Location)
	assert.Equal(t, "site-05", page.Reports[9].Location)
}

func TestGetPaginatedReportsOutOfRangePageIsEmpty(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestReportService(ledger, nil)

	_, err := svc.CreateReport(1, sampleRequest(0), nil)
	require.NoError(t, err)

	page, err := svc.GetPaginatedReports(9, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Reports)
	assert.Equal(t, int64(1), page.Total)
}

func TestGetPaginatedReportsClampsPageSize(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestReportService(ledger, nil)

	page, err := svc.GetPaginatedReports(1, 0)
	require.NoError(t, err)
	assert.Equal(t, db.DefaultPageSize, page.PageSize)

	page, err = svc.GetPaginatedReports(1, 1000)
	require.NoError(t, err)
	assert.Equal(t, 100, page.PageSize)
}

func TestGetReportsByUserIDDegradesToEmpty(t *testing.T) {
	ledger := newFakeLedger()
	ledger.readErr = errors.New("connection timeout")
	svc := newTestReportService(ledger, nil)

	reports, err := svc.GetReportsByUserID(1)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestVerifyReportRequiresCollectorOrAdmin(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestReportService(ledger, nil)

	report, err := svc.CreateReport(1, sampleRequest(0), nil)
	require.NoError(t, err)

	reporter := &models.User{Model: models.Model{ID: 1}, Role: models.Role{Name: models.RoleReporter}}
	_, err = svc.VerifyReport(report.ID, reporter)
	assert.ErrorIs(t, err, apiError.ErrForbidden)

	collector := &models.User{Model: models.Model{ID: 2}, Role: models.Role{Name: models.RoleCollector}}
	verified, err := svc.VerifyReport(report.ID, collector)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusVerified, verified.Status)
}

func TestCollectReportCreditsCollector(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestReportService(ledger, nil)

	report, err := svc.CreateReport(1, sampleRequest(0), nil)
	require.NoError(t, err)

	collector := &models.User{Model: models.Model{ID: 2}, Role: models.Role{Name: models.RoleCollector}}
	_, err = svc.VerifyReport(report.ID, collector)
	require.NoError(t, err)

	collected, err := svc.CollectReport(report.ID, collector)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusCollected, collected.Status)
	require.NotNil(t, collected.CollectorID)
	assert.Equal(t, uint(2), *collected.CollectorID)

	reward, err := ledger.GetRewardByUserID(2)
	require.NoError(t, err)
	assert.Equal(t, models.CollectionPoints, reward.Points)
	require.Len(t, ledger.collected, 1)
}

func TestCollectReportRejectsPendingReport(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestReportService(ledger, nil)

	report, err := svc.CreateReport(1, sampleRequest(0), nil)
	require.NoError(t, err)

	collector := &models.User{Model: models.Model{ID: 2}, Role: models.Role{Name: models.RoleCollector}}
	_, err = svc.CollectReport(report.ID, collector)
	require.Error(t, err)

	apiErr, ok := err.(*apiError.Error)
	require.True(t, ok)
	assert.Equal(t, 422, apiErr.Status)
}

func TestDeleteReportOwnerOrAdminOnly(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestReportService(ledger, nil)

	report, err := svc.CreateReport(1, sampleRequest(0), nil)
	require.NoError(t, err)

	stranger := &models.User{Model: models.Model{ID: 99}, Role: models.Role{Name: models.RoleReporter}}
	err = svc.DeleteReport(report.ID, stranger)
	require.Error(t, err)

	owner := &models.User{Model: models.Model{ID: 1}, Role: models.Role{Name: models.RoleReporter}}
	require.NoError(t, svc.DeleteReport(report.ID, owner))
	assert.Empty(t, ledger.reports)
}
