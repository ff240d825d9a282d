package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/blood-donation-api/internal/dto"
	"github.com/noah-isme/blood-donation-api/internal/lifecycle"
	"github.com/noah-isme/blood-donation-api/internal/models"
	"github.com/noah-isme/blood-donation-api/internal/policy"
)

type inquiryRepository interface {
	FindByID(ctx context.Context, id string) (*models.Inquiry, error)
	List(ctx context.Context, filter models.InquiryFilter) ([]models.Inquiry, int, error)
	Create(ctx context.Context, inq *models.Inquiry) error
	UpdateStatus(ctx context.Context, prevStatus models.InquiryStatus, next *models.Inquiry) error
	Delete(ctx context.Context, id string) error
}

// InquiryService handles donor questions about their sessions.
type InquiryService struct {
	repo      inquiryRepository
	sessions  SessionDirectory
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	audit     auditTrail
}

// NewInquiryService constructs an InquiryService.
func NewInquiryService(repo inquiryRepository, sessions SessionDirectory, auditRepo auditLogWriter, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *InquiryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &InquiryService{
		repo:      repo,
		sessions:  sessions,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		audit:     newAuditTrail(auditRepo, logger),
	}
}

func inquiryResource(inq *models.Inquiry) policy.Resource {
	return policy.Resource{Kind: policy.KindInquiry, ID: inq.ID, DonorID: inq.DonorID, HospitalID: inq.HospitalID}
}

// List returns inquiries visible to the actor.
func (s *InquiryService) List(ctx context.Context, actor models.Actor, filter models.InquiryFilter) ([]models.Inquiry, *models.Pagination, error) {
	scope, err := policy.ListScope(actor, policy.KindInquiry)
	if err != nil {
		return nil, nil, err
	}
	if scope.DonorID != "" {
		filter.DonorID = scope.DonorID
	}
	if scope.HospitalID != "" {
		filter.HospitalID = scope.HospitalID
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, loadError(err, "inquiry")
	}
	return items, filter.Pagination(total), nil
}

// Get returns one inquiry.
func (s *InquiryService) Get(ctx context.Context, actor models.Actor, id string) (*models.Inquiry, error) {
	return s.load(ctx, actor, id, policy.OpRead)
}

// Create opens an inquiry about one of the donor's sessions. The hospital is taken from the session.
func (s *InquiryService) Create(ctx context.Context, actor models.Actor, req dto.CreateInquiryRequest) (*models.Inquiry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid inquiry payload")
	}
	session, err := s.sessions.visible(ctx, actor, req.SessionType, req.SessionID)
	if err != nil {
		return nil, err
	}
	res := policy.Resource{Kind: policy.KindInquiry, DonorID: session.DonorID, HospitalID: session.HospitalID}
	if err := policy.Authorize(actor, res, policy.OpCreate); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	inq := &models.Inquiry{
		ID:          uuid.NewString(),
		DonorID:     session.DonorID,
		HospitalID:  session.HospitalID,
		SessionID:   session.ID,
		SessionType: req.SessionType,
		Subject:     req.Subject,
		Message:     req.Message,
		Status:      models.InquiryPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, inq); err != nil {
		return nil, writeError(err, "inquiry")
	}
	s.audit.record(ctx, actor, models.AuditActionModeration, "inquiry", inq.ID, nil, map[string]interface{}{"op": "create", "status": inq.Status})
	return inq, nil
}

// UpdateStatus moves an inquiry forward, optionally attaching a response.
func (s *InquiryService) UpdateStatus(ctx context.Context, actor models.Actor, id string, req dto.UpdateInquiryStatusRequest) (*models.Inquiry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid inquiry status payload")
	}
	current, err := s.load(ctx, actor, id, policy.OpModerate)
	if err != nil {
		return nil, err
	}
	next, err := lifecycle.TransitionInquiry(*current, req.Status, req.Response)
	if err != nil {
		s.metrics.RecordTransition(string(policy.KindInquiry), string(req.Status), TransitionRejected)
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, current.Status, &next); err != nil {
		s.metrics.RecordTransition(string(policy.KindInquiry), string(req.Status), TransitionConflict)
		return nil, writeError(err, "inquiry")
	}
	s.metrics.RecordTransition(string(policy.KindInquiry), string(req.Status), TransitionApplied)
	s.audit.record(ctx, actor, models.AuditActionModeration, "inquiry", next.ID,
		map[string]interface{}{"status": current.Status},
		map[string]interface{}{"op": "status", "status": next.Status})
	return &next, nil
}

// Delete removes an inquiry.
func (s *InquiryService) Delete(ctx context.Context, actor models.Actor, id string) error {
	inq, err := s.load(ctx, actor, id, policy.OpDelete)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, inq.ID); err != nil {
		return writeError(err, "inquiry")
	}
	s.audit.record(ctx, actor, models.AuditActionModeration, "inquiry", inq.ID, map[string]interface{}{"status": inq.Status}, map[string]interface{}{"op": "delete"})
	return nil
}

func (s *InquiryService) load(ctx context.Context, actor models.Actor, id string, op policy.Operation) (*models.Inquiry, error) {
	inq, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "inquiry")
	}
	if err := policy.Authorize(actor, inquiryResource(inq), op); err != nil {
		return nil, err
	}
	return inq, nil
}
