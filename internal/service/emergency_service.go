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

type emergencyRepository interface {
	FindByID(ctx context.Context, id string) (*models.EmergencyRequest, error)
	List(ctx context.Context, filter models.EmergencyFilter) ([]models.EmergencyRequest, int, error)
	Create(ctx context.Context, req *models.EmergencyRequest) error
	UpdateStatus(ctx context.Context, prev, next *models.EmergencyRequest) error
	Delete(ctx context.Context, id string) error
}

// EmergencyService handles urgent blood requests: filing, manager validation and hospital response.
type EmergencyService struct {
	repo      emergencyRepository
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	audit     auditTrail
}

// NewEmergencyService constructs an EmergencyService.
func NewEmergencyService(repo emergencyRepository, auditRepo auditLogWriter, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EmergencyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EmergencyService{
		repo:      repo,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		audit:     newAuditTrail(auditRepo, logger),
	}
}

func emergencyResource(req *models.EmergencyRequest) policy.Resource {
	return policy.Resource{Kind: policy.KindEmergency, ID: req.ID, OwnerID: req.RequesterID}
}

// List returns emergency requests. Donors only see the requests they filed.
func (s *EmergencyService) List(ctx context.Context, actor models.Actor, filter models.EmergencyFilter) ([]models.EmergencyRequest, *models.Pagination, error) {
	scope, err := policy.ListScope(actor, policy.KindEmergency)
	if err != nil {
		return nil, nil, err
	}
	if scope.OwnerID != "" {
		filter.RequesterID = scope.OwnerID
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, loadError(err, "emergency request")
	}
	return items, filter.Pagination(total), nil
}

// Get returns a single emergency request.
func (s *EmergencyService) Get(ctx context.Context, actor models.Actor, id string) (*models.EmergencyRequest, error) {
	return s.load(ctx, actor, id, policy.OpRead)
}

// Create files a new request. It starts Pending on both axes until a manager validates it.
func (s *EmergencyService) Create(ctx context.Context, actor models.Actor, req dto.CreateEmergencyRequest) (*models.EmergencyRequest, error) {
	if err := policy.Authorize(actor, policy.Resource{Kind: policy.KindEmergency, OwnerID: actor.ID}, policy.OpCreate); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid emergency request payload")
	}

	now := time.Now().UTC()
	item := &models.EmergencyRequest{
		ID:            uuid.NewString(),
		RequesterID:   actor.ID,
		RequesterRole: actor.Role,
		PatientName:   req.PatientName,
		ContactName:   req.ContactName,
		ContactPhone:  req.ContactPhone,
		HospitalName:  req.HospitalName,
		Location:      req.Location,
		BloodType:     req.BloodType,
		UnitsRequired: req.UnitsRequired,
		Reason:        req.Reason,
		CriticalLevel: req.CriticalLevel,
		AcceptStatus:  models.AcceptPending,
		ActiveStatus:  models.EmergencyPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, writeError(err, "emergency request")
	}
	s.audit.record(ctx, actor, models.AuditActionEmergency, "emergency_request", item.ID, nil, map[string]interface{}{
		"op":            "create",
		"bloodType":     item.BloodType,
		"unitsRequired": item.UnitsRequired,
		"criticalLevel": item.CriticalLevel,
	})
	return item, nil
}

// Validate activates a pending request.
func (s *EmergencyService) Validate(ctx context.Context, actor models.Actor, id string) (*models.EmergencyRequest, error) {
	return s.transition(ctx, actor, id, policy.OpValidate, "validate", func(current models.EmergencyRequest) (models.EmergencyRequest, error) {
		return lifecycle.ValidateEmergency(current, actor)
	})
}

// Accept commits the actor's hospital to the request.
func (s *EmergencyService) Accept(ctx context.Context, actor models.Actor, id string) (*models.EmergencyRequest, error) {
	return s.transition(ctx, actor, id, policy.OpRespond, "accept", func(current models.EmergencyRequest) (models.EmergencyRequest, error) {
		return lifecycle.RespondEmergency(current, actor, true)
	})
}

// Decline refuses the request on behalf of the actor's hospital.
func (s *EmergencyService) Decline(ctx context.Context, actor models.Actor, id string) (*models.EmergencyRequest, error) {
	return s.transition(ctx, actor, id, policy.OpRespond, "decline", func(current models.EmergencyRequest) (models.EmergencyRequest, error) {
		return lifecycle.RespondEmergency(current, actor, false)
	})
}

// Delete removes a request.
func (s *EmergencyService) Delete(ctx context.Context, actor models.Actor, id string) error {
	item, err := s.load(ctx, actor, id, policy.OpDelete)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return writeError(err, "emergency request")
	}
	s.audit.record(ctx, actor, models.AuditActionEmergency, "emergency_request", item.ID, emergencySnapshot(item), map[string]interface{}{"op": "delete"})
	return nil
}

func (s *EmergencyService) transition(ctx context.Context, actor models.Actor, id string, op policy.Operation, action string, apply func(models.EmergencyRequest) (models.EmergencyRequest, error)) (*models.EmergencyRequest, error) {
	current, err := s.load(ctx, actor, id, op)
	if err != nil {
		return nil, err
	}
	next, err := apply(*current)
	if err != nil {
		s.metrics.RecordTransition(string(policy.KindEmergency), action, TransitionRejected)
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, current, &next); err != nil {
		s.metrics.RecordTransition(string(policy.KindEmergency), action, TransitionConflict)
		return nil, writeError(err, "emergency request")
	}
	s.metrics.RecordTransition(string(policy.KindEmergency), action, TransitionApplied)

	newValues := emergencySnapshot(&next)
	newValues["op"] = action
	s.audit.record(ctx, actor, models.AuditActionEmergency, "emergency_request", next.ID, emergencySnapshot(current), newValues)
	s.logger.Debug("emergency request transition",
		zap.String("id", next.ID),
		zap.String("action", action),
		zap.String("accept_status", string(next.AcceptStatus)),
		zap.String("active_status", string(next.ActiveStatus)),
	)
	return &next, nil
}

func (s *EmergencyService) load(ctx context.Context, actor models.Actor, id string, op policy.Operation) (*models.EmergencyRequest, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "emergency request")
	}
	if err := policy.Authorize(actor, emergencyResource(item), op); err != nil {
		return nil, err
	}
	return item, nil
}

func emergencySnapshot(item *models.EmergencyRequest) map[string]interface{} {
	return map[string]interface{}{
		"acceptStatus": item.AcceptStatus,
		"activeStatus": item.ActiveStatus,
	}
}
