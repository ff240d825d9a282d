package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/blood-donation-api/internal/inventory"
	"github.com/noah-isme/blood-donation-api/internal/models"
	"github.com/noah-isme/blood-donation-api/pkg/export"
	"github.com/noah-isme/blood-donation-api/pkg/storage"
)

type inventorySource interface {
	ListAll(ctx context.Context, hospitalID string) ([]models.InventoryItem, error)
}

type sessionSource interface {
	ListAll(ctx context.Context, filter models.SessionFilter) ([]models.Session, error)
}

type emergencySource interface {
	ListAll(ctx context.Context, filter models.EmergencyFilter) ([]models.EmergencyRequest, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportSources are the read models reports are built from.
type ExportSources struct {
	Inventory    inventorySource
	Appointments sessionSource
	Evaluations  sessionSource
	Emergencies  emergencySource
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
	Rows         int
}

// ExportService builds report datasets and persists rendered files.
type ExportService struct {
	sources    ExportSources
	classifier *inventory.Classifier
	storage    fileStorage
	renderers  map[models.ReportFormat]datasetRenderer
	signer     *storage.SignedURLSigner
	logger     *zap.Logger
	cfg        ExportConfig
}

// NewExportService constructs an ExportService rendering CSV, PDF and XLSX.
func NewExportService(sources ExportSources, classifier *inventory.Classifier, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if classifier == nil {
		classifier = inventory.NewClassifier(inventory.DefaultSoonWindow, nil)
	}
	return &ExportService{
		sources:    sources,
		classifier: classifier,
		storage:    files,
		renderers: map[models.ReportFormat]datasetRenderer{
			models.ReportFormatCSV:  export.NewCSVExporter(),
			models.ReportFormatPDF:  export.NewPDFExporter(),
			models.ReportFormatXLSX: export.NewXLSXExporter(),
		},
		signer: signer,
		logger: logger,
		cfg:    cfg,
	}
}

// Generate builds the dataset of job, renders it and stores the file behind a signed token.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	renderer, ok := s.renderers[job.Params.Format]
	if !ok {
		return nil, fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	dataset, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}
	payload, err := renderer.Render(dataset)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", job.Params.Format, err)
	}

	relPath, err := s.storage.Save(s.buildFilename(job), payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	s.logger.Debug("report rendered",
		zap.String("job_id", job.ID),
		zap.String("type", string(job.Type)),
		zap.Int("rows", len(dataset.Rows)),
		zap.Int("bytes", len(payload)),
	)
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
		Rows:         len(dataset.Rows),
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	scope := sanitizeFilename(job.Params.HospitalID)
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Type)), scope, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "all"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, error) {
	hospitalID := job.Params.HospitalID
	switch job.Type {
	case models.ReportTypeInventory:
		return s.buildInventoryDataset(ctx, hospitalID)
	case models.ReportTypeAppointments:
		return s.buildSessionDataset(ctx, s.sources.Appointments, "Donation Appointments", hospitalID, false)
	case models.ReportTypeEvaluations:
		return s.buildSessionDataset(ctx, s.sources.Evaluations, "Health Evaluations", hospitalID, true)
	case models.ReportTypeEmergency:
		return s.buildEmergencyDataset(ctx)
	default:
		return export.Dataset{}, fmt.Errorf("unsupported report type %s", job.Type)
	}
}

func (s *ExportService) buildInventoryDataset(ctx context.Context, hospitalID string) (export.Dataset, error) {
	if s.sources.Inventory == nil {
		return export.Dataset{}, fmt.Errorf("inventory source not configured")
	}
	items, err := s.sources.Inventory.ListAll(ctx, hospitalID)
	if err != nil {
		return export.Dataset{}, err
	}
	s.classifier.Annotate(items)

	dataset := export.Dataset{
		Title:   reportTitle("Blood Inventory", hospitalID),
		Headers: []string{"Hospital ID", "Blood Type", "Available Stocks", "Expiration Date", "Status"},
	}
	for _, item := range items {
		dataset.AddRow(
			item.HospitalID,
			string(item.BloodType),
			strconv.Itoa(item.AvailableStocks),
			item.ExpirationDate.Format(dateLayout),
			string(item.ExpiredStatus),
		)
	}

	summary := inventory.Summarize(items)
	for _, t := range models.AllBloodTypes {
		dataset.AddRow("TOTAL", string(t), strconv.Itoa(summary.ByBloodType[t]), "", totalNote(summary, t))
	}
	return dataset, nil
}

func totalNote(summary models.InventorySummary, t models.BloodType) string {
	for _, missing := range summary.MissingTypes {
		if missing == t {
			return "MISSING"
		}
	}
	return ""
}

func (s *ExportService) buildSessionDataset(ctx context.Context, source sessionSource, title, hospitalID string, evaluation bool) (export.Dataset, error) {
	if source == nil {
		return export.Dataset{}, fmt.Errorf("%s source not configured", strings.ToLower(title))
	}
	sessions, err := source.ListAll(ctx, models.SessionFilter{HospitalID: hospitalID})
	if err != nil {
		return export.Dataset{}, err
	}

	headers := []string{"ID", "Donor ID", "Hospital ID", "Date", "Time", "Active Status", "Progress Status", "Receipt"}
	if evaluation {
		headers = append(headers, "Pass Status")
	}
	dataset := export.Dataset{Title: reportTitle(title, hospitalID), Headers: headers}
	for _, session := range sessions {
		values := []string{
			session.ID,
			session.DonorID,
			session.HospitalID,
			session.AppointmentDate.Format(dateLayout),
			session.AppointmentTime,
			string(session.ActiveStatus),
			string(session.ProgressStatus),
			deref(session.ReceiptNumber),
		}
		if evaluation {
			pass := ""
			if session.PassStatus != nil {
				pass = string(*session.PassStatus)
			}
			values = append(values, pass)
		}
		dataset.AddRow(values...)
	}
	return dataset, nil
}

func (s *ExportService) buildEmergencyDataset(ctx context.Context) (export.Dataset, error) {
	if s.sources.Emergencies == nil {
		return export.Dataset{}, fmt.Errorf("emergency source not configured")
	}
	requests, err := s.sources.Emergencies.ListAll(ctx, models.EmergencyFilter{})
	if err != nil {
		return export.Dataset{}, err
	}
	dataset := export.Dataset{
		Title:   "Emergency Blood Requests",
		Headers: []string{"ID", "Created", "Blood Type", "Units", "Critical Level", "Active Status", "Accept Status", "Responding Hospital"},
	}
	for _, req := range requests {
		dataset.AddRow(
			req.ID,
			req.CreatedAt.UTC().Format(time.RFC3339),
			string(req.BloodType),
			strconv.Itoa(req.UnitsRequired),
			string(req.CriticalLevel),
			string(req.ActiveStatus),
			string(req.AcceptStatus),
			deref(req.RespondingHospitalID),
		)
	}
	return dataset, nil
}

func reportTitle(title, hospitalID string) string {
	if hospitalID == "" {
		return title + " (all hospitals)"
	}
	return title + " " + hospitalID
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
