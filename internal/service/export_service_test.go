package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/blood-donation-api/internal/inventory"
	"github.com/noah-isme/blood-donation-api/internal/models"
	"github.com/noah-isme/blood-donation-api/pkg/storage"
)

type inventorySourceStub []models.InventoryItem

func (s inventorySourceStub) ListAll(ctx context.Context, hospitalID string) ([]models.InventoryItem, error) {
	var out []models.InventoryItem
	for _, item := range s {
		if hospitalID == "" || item.HospitalID == hospitalID {
			out = append(out, item)
		}
	}
	return out, nil
}

type sessionSourceStub struct {
	sessions []models.Session
	filters  []models.SessionFilter
}

func (s *sessionSourceStub) ListAll(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
	s.filters = append(s.filters, filter)
	return s.sessions, nil
}

type emergencySourceStub []models.EmergencyRequest

func (s emergencySourceStub) ListAll(ctx context.Context, filter models.EmergencyFilter) ([]models.EmergencyRequest, error) {
	return s, nil
}

var exportNow = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

func newExportServiceForTest(t *testing.T) (*ExportService, *sessionSourceStub) {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	passed := models.PassPassed
	evaluations := &sessionSourceStub{sessions: []models.Session{
		{ID: "ev-1", DonorID: "donor-1", HospitalID: "h-1", AppointmentDate: exportNow, AppointmentTime: "09:30", ActiveStatus: models.ActiveAccepted, ProgressStatus: models.ProgressCompleted, PassStatus: &passed},
	}}
	sources := ExportSources{
		Inventory: inventorySourceStub{
			{ID: "inv-1", HospitalID: "h-1", BloodType: models.BloodTypeAPos, AvailableStocks: 7, ExpirationDate: exportNow.AddDate(0, 0, 2)},
			{ID: "inv-2", HospitalID: "h-2", BloodType: models.BloodTypeONeg, AvailableStocks: 4, ExpirationDate: exportNow.AddDate(0, 1, 0)},
		},
		Appointments: &sessionSourceStub{},
		Evaluations:  evaluations,
		Emergencies: emergencySourceStub{
			{ID: "em-1", BloodType: models.BloodTypeBNeg, UnitsRequired: 2, CriticalLevel: models.CriticalHigh, ActiveStatus: models.EmergencyActive, AcceptStatus: models.AcceptPending, CreatedAt: exportNow},
		},
	}
	classifier := inventory.NewClassifier(inventory.DefaultSoonWindow, func() time.Time { return exportNow })
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	svc := NewExportService(sources, classifier, files, signer, ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}, nil)
	return svc, evaluations
}

func readExport(t *testing.T, svc *ExportService, relPath string) []byte {
	t.Helper()
	file, err := svc.Open(relPath)
	require.NoError(t, err)
	defer file.Close()
	body, err := io.ReadAll(file)
	require.NoError(t, err)
	return body
}

func TestExportServiceInventoryCSVScopedToHospital(t *testing.T) {
	svc, _ := newExportServiceForTest(t)
	job := &models.ReportJob{
		ID:     "job-1",
		Type:   models.ReportTypeInventory,
		Params: models.ReportJobParams{HospitalID: "h-1", Format: models.ReportFormatCSV},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.Contains(t, result.URL, "/api/v1/export/")
	assert.Equal(t, 1+len(models.AllBloodTypes), result.Rows)

	records, err := csv.NewReader(bytes.NewReader(readExport(t, svc, result.RelativePath))).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Hospital ID", "Blood Type", "Available Stocks", "Expiration Date", "Status"}, records[0])
	assert.Equal(t, []string{"h-1", "A+", "7", "2026-05-12", "Soon"}, records[1])
	assert.Equal(t, []string{"TOTAL", "A-", "0", "", "MISSING"}, records[3])

	jobID, relPath, _, err := svc.ParseToken(result.Token, false)
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobID)
	assert.Equal(t, result.RelativePath, relPath)
}

func TestExportServiceEvaluationsXLSX(t *testing.T) {
	svc, evaluations := newExportServiceForTest(t)
	job := &models.ReportJob{
		ID:     "job-2",
		Type:   models.ReportTypeEvaluations,
		Params: models.ReportJobParams{HospitalID: "h-1", Format: models.ReportFormatXLSX},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, "h-1", evaluations.filters[0].HospitalID)

	book, err := excelize.OpenReader(bytes.NewReader(readExport(t, svc, result.RelativePath)))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows(book.GetSheetName(0))
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	found := false
	for _, row := range rows {
		if len(row) > 0 && row[0] == "ev-1" {
			found = true
			assert.Equal(t, "Passed", row[len(row)-1])
		}
	}
	assert.True(t, found)
}

func TestExportServiceEmergencyPDF(t *testing.T) {
	svc, _ := newExportServiceForTest(t)
	result, err := svc.Generate(context.Background(), &models.ReportJob{
		ID:     "job-3",
		Type:   models.ReportTypeEmergency,
		Params: models.ReportJobParams{Format: models.ReportFormatPDF},
	})
	require.NoError(t, err)
	body := readExport(t, svc, result.RelativePath)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc, _ := newExportServiceForTest(t)
	_, err := svc.Generate(context.Background(), &models.ReportJob{
		ID:     "job-4",
		Type:   models.ReportTypeInventory,
		Params: models.ReportJobParams{Format: "docx"},
	})
	require.Error(t, err)
}
