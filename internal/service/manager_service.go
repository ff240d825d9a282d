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
	appErrors "github.com/noah-isme/blood-donation-api/pkg/errors"
)

type managerRepository interface {
	FindByID(ctx context.Context, id string) (*models.Manager, error)
	List(ctx context.Context, filter models.AccountFilter) ([]models.Manager, int, error)
	Create(ctx context.Context, manager *models.Manager) error
	Update(ctx context.Context, manager *models.Manager) error
	ToggleActive(ctx context.Context, id string) (bool, error)
}

// ManagerService manages manager accounts.
type ManagerService struct {
	repo      managerRepository
	validator *validator.Validate
	logger    *zap.Logger
	audit     auditTrail
}

// NewManagerService creates an instance of ManagerService.
func NewManagerService(repo managerRepository, auditRepo auditLogWriter, validate *validator.Validate, logger *zap.Logger) *ManagerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ManagerService{repo: repo, validator: validate, logger: logger, audit: newAuditTrail(auditRepo, logger)}
}

func managerResource(m *models.Manager) policy.Resource {
	return policy.Resource{Kind: policy.KindManager, ID: m.ID}
}

// Create registers another manager.
func (s *ManagerService) Create(ctx context.Context, actor models.Actor, req dto.CreateManagerRequest) (*models.Manager, error) {
	if err := policy.Authorize(actor, policy.Resource{Kind: policy.KindManager}, policy.OpCreate); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid manager payload")
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	manager := &models.Manager{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        req.Phone,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, manager); err != nil {
		return nil, writeError(err, "manager")
	}
	s.audit.record(ctx, actor, models.AuditActionAccountCreate, "managers", manager.ID, nil, map[string]interface{}{"email": manager.Email})
	return manager, nil
}

// List returns managers.
func (s *ManagerService) List(ctx context.Context, actor models.Actor, filter models.AccountFilter) ([]models.Manager, *models.Pagination, error) {
	if _, err := policy.ListScope(actor, policy.KindManager); err != nil {
		return nil, nil, err
	}
	managers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, loadError(err, "managers")
	}
	return managers, filter.Pagination(total), nil
}

// Get returns a manager by ID.
func (s *ManagerService) Get(ctx context.Context, actor models.Actor, id string) (*models.Manager, error) {
	manager, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "manager")
	}
	if err := policy.Authorize(actor, managerResource(manager), policy.OpRead); err != nil {
		return nil, err
	}
	return manager, nil
}

// Update modifies the caller's own manager profile.
func (s *ManagerService) Update(ctx context.Context, actor models.Actor, id string, req dto.UpdateManagerRequest) (*models.Manager, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid manager payload")
	}
	manager, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "manager")
	}
	if err := policy.Authorize(actor, managerResource(manager), policy.OpUpdate); err != nil {
		return nil, err
	}

	old := map[string]interface{}{"fullName": manager.FullName, "phone": manager.Phone}
	manager.FullName = strings.TrimSpace(req.FullName)
	manager.Phone = req.Phone
	if req.Password != "" {
		if manager.PasswordHash, err = hashPassword(req.Password); err != nil {
			return nil, err
		}
	}
	manager.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, manager); err != nil {
		return nil, writeError(err, "manager")
	}
	s.audit.record(ctx, actor, models.AuditActionAccountUpdate, "managers", manager.ID, old, map[string]interface{}{"fullName": manager.FullName, "phone": manager.Phone})
	return manager, nil
}

// ToggleStatus flips the active flag of another manager.
func (s *ManagerService) ToggleStatus(ctx context.Context, actor models.Actor, req dto.ToggleStatusRequest) (*dto.ToggleStatusResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid toggle payload")
	}
	manager, err := s.repo.FindByID(ctx, req.ID)
	if err != nil {
		return nil, loadError(err, "manager")
	}
	if err := policy.Authorize(actor, managerResource(manager), policy.OpToggle); err != nil {
		return nil, err
	}
	if manager.ID == actor.ID {
		return nil, appErrors.Clone(appErrors.ErrConflict, "managers cannot toggle their own status")
	}
	active, err := s.repo.ToggleActive(ctx, manager.ID)
	if err != nil {
		return nil, writeError(err, "manager")
	}
	s.audit.record(ctx, actor, models.AuditActionStatusToggle, "managers", manager.ID, map[string]bool{"active": manager.Active}, map[string]bool{"active": active})
	return &dto.ToggleStatusResponse{ID: manager.ID, Active: active}, nil
}
