package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/blood-donation-api/internal/dto"
	"github.com/noah-isme/blood-donation-api/internal/models"
	"github.com/noah-isme/blood-donation-api/internal/policy"
	appErrors "github.com/noah-isme/blood-donation-api/pkg/errors"
)

type feedbackRepository interface {
	FindByID(ctx context.Context, id string) (*models.Feedback, error)
	List(ctx context.Context, filter models.FeedbackFilter) ([]models.Feedback, int, error)
	Create(ctx context.Context, fb *models.Feedback) error
	MarkReviewed(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type sessionFinder interface {
	FindByID(ctx context.Context, id string) (*models.Session, error)
}

// SessionDirectory resolves a session reference (id plus kind tag) to its record.
type SessionDirectory map[models.SessionKind]sessionFinder

func (d SessionDirectory) find(ctx context.Context, kind models.SessionKind, id string) (*models.Session, error) {
	finder, ok := d[kind]
	if !ok || finder == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "sessionType must be appointment or evaluation")
	}
	session, err := finder.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, string(kind))
	}
	session.Kind = kind
	return session, nil
}

// visible is find restricted to sessions the actor may read. Others are NotFound.
func (d SessionDirectory) visible(ctx context.Context, actor models.Actor, kind models.SessionKind, id string) (*models.Session, error) {
	session, err := d.find(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	res := policy.Resource{Kind: policy.SessionKind(kind), ID: session.ID, DonorID: session.DonorID, HospitalID: session.HospitalID}
	if err := policy.Authorize(actor, res, policy.OpRead); err != nil {
		return nil, err
	}
	return session, nil
}

// FeedbackService stores donor ratings of completed sessions.
type FeedbackService struct {
	repo      feedbackRepository
	sessions  SessionDirectory
	validator *validator.Validate
	logger    *zap.Logger
	audit     auditTrail
}

// NewFeedbackService constructs a FeedbackService.
func NewFeedbackService(repo feedbackRepository, sessions SessionDirectory, auditRepo auditLogWriter, validate *validator.Validate, logger *zap.Logger) *FeedbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &FeedbackService{
		repo:      repo,
		sessions:  sessions,
		validator: validate,
		logger:    logger,
		audit:     newAuditTrail(auditRepo, logger),
	}
}

func feedbackResource(fb *models.Feedback) policy.Resource {
	return policy.Resource{Kind: policy.KindFeedback, ID: fb.ID, DonorID: fb.DonorID, HospitalID: fb.HospitalID}
}

// List returns feedback visible to the actor.
func (s *FeedbackService) List(ctx context.Context, actor models.Actor, filter models.FeedbackFilter) ([]models.Feedback, *models.Pagination, error) {
	scope, err := policy.ListScope(actor, policy.KindFeedback)
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
		return nil, nil, loadError(err, "feedback")
	}
	return items, filter.Pagination(total), nil
}

// Get returns a single feedback entry.
func (s *FeedbackService) Get(ctx context.Context, actor models.Actor, id string) (*models.Feedback, error) {
	return s.load(ctx, actor, id, policy.OpRead)
}

// Create rates one of the donor's completed sessions. A session takes a single rating.
func (s *FeedbackService) Create(ctx context.Context, actor models.Actor, req dto.CreateFeedbackRequest) (*models.Feedback, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid feedback payload")
	}
	session, err := s.sessions.visible(ctx, actor, req.SessionType, req.SessionID)
	if err != nil {
		return nil, err
	}
	res := policy.Resource{Kind: policy.KindFeedback, DonorID: session.DonorID, HospitalID: session.HospitalID}
	if err := policy.Authorize(actor, res, policy.OpCreate); err != nil {
		return nil, err
	}
	if session.ProgressStatus != models.ProgressCompleted {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "feedback is only accepted for completed sessions")
	}

	fb := &models.Feedback{
		ID:          uuid.NewString(),
		DonorID:     session.DonorID,
		HospitalID:  session.HospitalID,
		SessionID:   session.ID,
		SessionType: req.SessionType,
		Rating:      req.Rating,
		Comment:     req.Comment,
		Status:      models.FeedbackSubmitted,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, fb); err != nil {
		return nil, writeError(err, "feedback for this session")
	}
	s.audit.record(ctx, actor, models.AuditActionModeration, "feedback", fb.ID, nil, map[string]interface{}{"op": "create", "rating": fb.Rating})
	return fb, nil
}

// Review marks a submitted entry as reviewed.
func (s *FeedbackService) Review(ctx context.Context, actor models.Actor, id string) (*models.Feedback, error) {
	fb, err := s.load(ctx, actor, id, policy.OpModerate)
	if err != nil {
		return nil, err
	}
	if fb.Status != models.FeedbackSubmitted {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "feedback already reviewed")
	}
	if err := s.repo.MarkReviewed(ctx, fb.ID); err != nil {
		return nil, writeError(err, "feedback")
	}
	fb.Status = models.FeedbackReviewed
	s.audit.record(ctx, actor, models.AuditActionModeration, "feedback", fb.ID,
		map[string]interface{}{"status": models.FeedbackSubmitted},
		map[string]interface{}{"op": "review", "status": fb.Status})
	return fb, nil
}

// Delete removes a feedback entry.
func (s *FeedbackService) Delete(ctx context.Context, actor models.Actor, id string) error {
	fb, err := s.load(ctx, actor, id, policy.OpDelete)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, fb.ID); err != nil {
		return writeError(err, "feedback")
	}
	s.audit.record(ctx, actor, models.AuditActionModeration, "feedback", fb.ID, map[string]interface{}{"rating": fb.Rating, "status": fb.Status}, map[string]interface{}{"op": "delete"})
	return nil
}

func (s *FeedbackService) load(ctx context.Context, actor models.Actor, id string, op policy.Operation) (*models.Feedback, error) {
	fb, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "feedback")
	}
	if err := policy.Authorize(actor, feedbackResource(fb), op); err != nil {
		return nil, err
	}
	return fb, nil
}
