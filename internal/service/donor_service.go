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

type donorRepository interface {
	FindByID(ctx context.Context, id string) (*models.Donor, error)
	List(ctx context.Context, filter models.AccountFilter) ([]models.Donor, int, error)
	Create(ctx context.Context, donor *models.Donor) error
	Update(ctx context.Context, donor *models.Donor) error
	Delete(ctx context.Context, id string) error
}

// DonorService manages donor registration and profiles.
type DonorService struct {
	repo      donorRepository
	validator *validator.Validate
	logger    *zap.Logger
	audit     auditTrail
}

// NewDonorService creates an instance of DonorService.
func NewDonorService(repo donorRepository, auditRepo auditLogWriter, validate *validator.Validate, logger *zap.Logger) *DonorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DonorService{repo: repo, validator: validate, logger: logger, audit: newAuditTrail(auditRepo, logger)}
}

// Register creates a donor account. Registration is public.
func (s *DonorService) Register(ctx context.Context, req dto.CreateDonorRequest) (*models.Donor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid donor payload")
	}
	birthDate, err := parseDate(req.BirthDate, "birthDate")
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	donor := &models.Donor{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		BloodType:    req.BloodType,
		Gender:       req.Gender,
		BirthDate:    birthDate,
		Phone:        req.Phone,
		Address:      req.Address,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, donor); err != nil {
		return nil, writeError(err, "donor")
	}

	s.audit.record(ctx, models.Actor{ID: donor.ID, Role: models.RoleDonor}, models.AuditActionAccountCreate, "donors", donor.ID, nil,
		map[string]interface{}{"email": donor.Email, "bloodType": donor.BloodType})
	return donor, nil
}

// List returns donors visible to the actor. A donor only ever sees their own profile.
func (s *DonorService) List(ctx context.Context, actor models.Actor, filter models.AccountFilter) ([]models.Donor, *models.Pagination, error) {
	scope, err := policy.ListScope(actor, policy.KindDonor)
	if err != nil {
		return nil, nil, err
	}
	if scope.AccountID != "" {
		donor, err := s.Get(ctx, actor, scope.AccountID)
		if err != nil {
			return nil, nil, err
		}
		return []models.Donor{*donor}, filter.Pagination(1), nil
	}

	donors, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, loadError(err, "donors")
	}
	return donors, filter.Pagination(total), nil
}

// Get returns a donor by ID.
func (s *DonorService) Get(ctx context.Context, actor models.Actor, id string) (*models.Donor, error) {
	donor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "donor")
	}
	if err := policy.Authorize(actor, policy.Resource{Kind: policy.KindDonor, ID: donor.ID}, policy.OpRead); err != nil {
		return nil, err
	}
	return donor, nil
}

// Update modifies the donor profile.
func (s *DonorService) Update(ctx context.Context, actor models.Actor, id string, req dto.UpdateDonorRequest) (*models.Donor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid donor payload")
	}
	donor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "donor")
	}
	if err := policy.Authorize(actor, policy.Resource{Kind: policy.KindDonor, ID: donor.ID}, policy.OpUpdate); err != nil {
		return nil, err
	}
	birthDate, err := parseDate(req.BirthDate, "birthDate")
	if err != nil {
		return nil, err
	}

	old := map[string]interface{}{"bloodType": donor.BloodType, "phone": donor.Phone, "address": donor.Address}
	donor.FirstName = strings.TrimSpace(req.FirstName)
	donor.LastName = strings.TrimSpace(req.LastName)
	donor.BloodType = req.BloodType
	donor.Gender = req.Gender
	donor.BirthDate = birthDate
	donor.Phone = req.Phone
	donor.Address = req.Address
	if req.Password != "" {
		if donor.PasswordHash, err = hashPassword(req.Password); err != nil {
			return nil, err
		}
	}
	donor.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, donor); err != nil {
		return nil, writeError(err, "donor")
	}
	s.audit.record(ctx, actor, models.AuditActionAccountUpdate, "donors", donor.ID, old,
		map[string]interface{}{"bloodType": donor.BloodType, "phone": donor.Phone, "address": donor.Address})
	return donor, nil
}

// Delete deactivates a donor. Sessions and feedback stay for hospital records.
func (s *DonorService) Delete(ctx context.Context, actor models.Actor, id string) error {
	donor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return loadError(err, "donor")
	}
	if err := policy.Authorize(actor, policy.Resource{Kind: policy.KindDonor, ID: donor.ID}, policy.OpDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, donor.ID); err != nil {
		return writeError(err, "donor")
	}
	s.audit.record(ctx, actor, models.AuditActionAccountDelete, "donors", donor.ID, map[string]interface{}{"active": donor.Active}, map[string]interface{}{"active": false})
	return nil
}
