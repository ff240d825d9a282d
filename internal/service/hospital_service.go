package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/blood-donation-api/internal/dto"
	"github.com/noah-isme/blood-donation-api/internal/models"
	"github.com/noah-isme/blood-donation-api/internal/policy"
)

type hospitalRepository interface {
	FindByID(ctx context.Context, id string) (*models.Hospital, error)
	List(ctx context.Context, filter models.AccountFilter) ([]models.Hospital, int, error)
	Create(ctx context.Context, hospital *models.Hospital) error
	Update(ctx context.Context, hospital *models.Hospital) error
	ToggleActive(ctx context.Context, id string) (bool, error)
}

// HospitalService manages hospital accounts.
type HospitalService struct {
	repo      hospitalRepository
	validator *validator.Validate
	logger    *zap.Logger
	audit     auditTrail
}

// NewHospitalService creates an instance of HospitalService.
func NewHospitalService(repo hospitalRepository, auditRepo auditLogWriter, validate *validator.Validate, logger *zap.Logger) *HospitalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &HospitalService{repo: repo, validator: validate, logger: logger, audit: newAuditTrail(auditRepo, logger)}
}

func hospitalResource(h *models.Hospital) policy.Resource {
	return policy.Resource{Kind: policy.KindHospital, ID: h.ID, HospitalID: h.ID}
}

// Create registers a hospital. Only managers onboard hospitals.
func (s *HospitalService) Create(ctx context.Context, actor models.Actor, req dto.CreateHospitalRequest) (*models.Hospital, error) {
	if err := policy.Authorize(actor, policy.Resource{Kind: policy.KindHospital}, policy.OpCreate); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid hospital payload")
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	hospital := &models.Hospital{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Address:      req.Address,
		City:         req.City,
		Phone:        req.Phone,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, hospital); err != nil {
		return nil, writeError(err, "hospital")
	}
	s.audit.record(ctx, actor, models.AuditActionAccountCreate, "hospitals", hospital.ID, nil, map[string]interface{}{"email": hospital.Email, "name": hospital.Name})
	return hospital, nil
}

// List returns hospitals. Every role may browse hospitals to book sessions.
func (s *HospitalService) List(ctx context.Context, actor models.Actor, filter models.AccountFilter) ([]models.Hospital, *models.Pagination, error) {
	if _, err := policy.ListScope(actor, policy.KindHospital); err != nil {
		return nil, nil, err
	}
	hospitals, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, loadError(err, "hospitals")
	}
	return hospitals, filter.Pagination(total), nil
}

// Get returns a hospital by ID.
func (s *HospitalService) Get(ctx context.Context, actor models.Actor, id string) (*models.Hospital, error) {
	hospital, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "hospital")
	}
	if err := policy.Authorize(actor, hospitalResource(hospital), policy.OpRead); err != nil {
		return nil, err
	}
	return hospital, nil
}

// Update modifies a hospital profile.
func (s *HospitalService) Update(ctx context.Context, actor models.Actor, id string, req dto.UpdateHospitalRequest) (*models.Hospital, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid hospital payload")
	}
	hospital, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "hospital")
	}
	if err := policy.Authorize(actor, hospitalResource(hospital), policy.OpUpdate); err != nil {
		return nil, err
	}

	old := map[string]interface{}{"name": hospital.Name, "city": hospital.City}
	hospital.Name = strings.TrimSpace(req.Name)
	hospital.Address = req.Address
	hospital.City = req.City
	hospital.Phone = req.Phone
	if req.Password != "" {
		if hospital.PasswordHash, err = hashPassword(req.Password); err != nil {
			return nil, err
		}
	}
	hospital.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, hospital); err != nil {
		return nil, writeError(err, "hospital")
	}
	s.audit.record(ctx, actor, models.AuditActionAccountUpdate, "hospitals", hospital.ID, old, map[string]interface{}{"name": hospital.Name, "city": hospital.City})
	return hospital, nil
}

// ToggleStatus flips the active flag of a hospital.
func (s *HospitalService) ToggleStatus(ctx context.Context, actor models.Actor, req dto.ToggleStatusRequest) (*dto.ToggleStatusResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid toggle payload")
	}
	hospital, err := s.repo.FindByID(ctx, req.ID)
	if err != nil {
		return nil, loadError(err, "hospital")
	}
	if err := policy.Authorize(actor, hospitalResource(hospital), policy.OpToggle); err != nil {
		return nil, err
	}
	active, err := s.repo.ToggleActive(ctx, hospital.ID)
	if err != nil {
		return nil, writeError(err, "hospital")
	}
	s.audit.record(ctx, actor, models.AuditActionStatusToggle, "hospitals", hospital.ID, map[string]bool{"active": hospital.Active}, map[string]bool{"active": active})
	return &dto.ToggleStatusResponse{ID: hospital.ID, Active: active}, nil
}
