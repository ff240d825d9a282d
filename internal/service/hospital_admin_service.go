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

type hospitalAdminRepository interface {
	FindByID(ctx context.Context, id string) (*models.HospitalAdmin, error)
	List(ctx context.Context, filter models.AccountFilter) ([]models.HospitalAdmin, int, error)
	Create(ctx context.Context, admin *models.HospitalAdmin) error
	Update(ctx context.Context, admin *models.HospitalAdmin) error
	Delete(ctx context.Context, id string) error
}

type sessionRevoker interface {
	RevokeAccountRefreshTokens(ctx context.Context, role models.Role, accountID string) error
}

type hospitalAdminAccounts interface {
	auditLogWriter
	sessionRevoker
}

// HospitalAdminService lets a hospital manage the staff acting on its behalf.
type HospitalAdminService struct {
	repo      hospitalAdminRepository
	sessions  sessionRevoker
	validator *validator.Validate
	logger    *zap.Logger
	audit     auditTrail
}

// NewHospitalAdminService creates an instance of HospitalAdminService.
func NewHospitalAdminService(repo hospitalAdminRepository, accounts hospitalAdminAccounts, validate *validator.Validate, logger *zap.Logger) *HospitalAdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	svc := &HospitalAdminService{repo: repo, validator: validate, logger: logger, audit: newAuditTrail(nil, logger)}
	if accounts != nil {
		svc.sessions = accounts
		svc.audit = newAuditTrail(accounts, logger)
	}
	return svc
}

func adminResource(a *models.HospitalAdmin) policy.Resource {
	return policy.Resource{Kind: policy.KindHospitalAdmin, ID: a.ID, HospitalID: a.HospitalID}
}

// Create adds an admin to the calling hospital.
func (s *HospitalAdminService) Create(ctx context.Context, actor models.Actor, req dto.CreateHospitalAdminRequest) (*models.HospitalAdmin, error) {
	if err := policy.Authorize(actor, policy.Resource{Kind: policy.KindHospitalAdmin, HospitalID: actor.HospitalID}, policy.OpCreate); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid hospital admin payload")
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	admin := &models.HospitalAdmin{
		ID:           uuid.NewString(),
		HospitalID:   actor.HospitalID,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        req.Phone,
		Position:     req.Position,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return nil, writeError(err, "hospital admin")
	}
	s.audit.record(ctx, actor, models.AuditActionAccountCreate, "hospital_admins", admin.ID, nil, map[string]interface{}{"email": admin.Email, "hospitalId": admin.HospitalID})
	return admin, nil
}

// List returns the admins of the caller's hospital, or every admin for managers.
func (s *HospitalAdminService) List(ctx context.Context, actor models.Actor, filter models.AccountFilter) ([]models.HospitalAdmin, *models.Pagination, error) {
	scope, err := policy.ListScope(actor, policy.KindHospitalAdmin)
	if err != nil {
		return nil, nil, err
	}
	if scope.AccountID != "" {
		admin, err := s.Get(ctx, actor, scope.AccountID)
		if err != nil {
			return nil, nil, err
		}
		return []models.HospitalAdmin{*admin}, filter.Pagination(1), nil
	}
	if scope.HospitalID != "" {
		filter.HospitalID = scope.HospitalID
	}

	admins, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, loadError(err, "hospital admins")
	}
	return admins, filter.Pagination(total), nil
}

// Get returns a hospital admin by ID.
func (s *HospitalAdminService) Get(ctx context.Context, actor models.Actor, id string) (*models.HospitalAdmin, error) {
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "hospital admin")
	}
	if err := policy.Authorize(actor, adminResource(admin), policy.OpRead); err != nil {
		return nil, err
	}
	return admin, nil
}

// Update modifies a hospital admin. Deactivation revokes the admin's refresh tokens.
func (s *HospitalAdminService) Update(ctx context.Context, actor models.Actor, id string, req dto.UpdateHospitalAdminRequest) (*models.HospitalAdmin, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid hospital admin payload")
	}
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "hospital admin")
	}
	if err := policy.Authorize(actor, adminResource(admin), policy.OpUpdate); err != nil {
		return nil, err
	}
	if req.Active != nil && actor.Role == models.RoleHospitalAdmin && *req.Active != admin.Active {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "hospital admins cannot change their own status")
	}

	old := map[string]interface{}{"fullName": admin.FullName, "position": admin.Position, "active": admin.Active}
	admin.FullName = strings.TrimSpace(req.FullName)
	admin.Phone = req.Phone
	admin.Position = req.Position
	if req.Active != nil {
		admin.Active = *req.Active
	}
	if req.Password != "" {
		if admin.PasswordHash, err = hashPassword(req.Password); err != nil {
			return nil, err
		}
	}
	admin.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, admin); err != nil {
		return nil, writeError(err, "hospital admin")
	}
	if !admin.Active {
		s.revokeSessions(ctx, admin.ID)
	}
	s.audit.record(ctx, actor, models.AuditActionAccountUpdate, "hospital_admins", admin.ID, old,
		map[string]interface{}{"fullName": admin.FullName, "position": admin.Position, "active": admin.Active})
	return admin, nil
}

// Delete removes a hospital admin and revokes their sessions.
func (s *HospitalAdminService) Delete(ctx context.Context, actor models.Actor, id string) error {
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return loadError(err, "hospital admin")
	}
	if err := policy.Authorize(actor, adminResource(admin), policy.OpDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, admin.ID); err != nil {
		return writeError(err, "hospital admin")
	}
	s.revokeSessions(ctx, admin.ID)
	s.audit.record(ctx, actor, models.AuditActionAccountDelete, "hospital_admins", admin.ID, map[string]interface{}{"email": admin.Email, "hospitalId": admin.HospitalID}, nil)
	return nil
}

func (s *HospitalAdminService) revokeSessions(ctx context.Context, adminID string) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.RevokeAccountRefreshTokens(ctx, models.RoleHospitalAdmin, adminID); err != nil {
		s.logger.Warn("failed to revoke hospital admin sessions", zap.String("admin_id", adminID), zap.Error(err))
	}
}
