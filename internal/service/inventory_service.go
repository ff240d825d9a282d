package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/blood-donation-api/internal/dto"
	"github.com/noah-isme/blood-donation-api/internal/inventory"
	"github.com/noah-isme/blood-donation-api/internal/models"
	"github.com/noah-isme/blood-donation-api/internal/policy"
	"github.com/noah-isme/blood-donation-api/internal/repository"
	appErrors "github.com/noah-isme/blood-donation-api/pkg/errors"
)

type inventoryRepository interface {
	FindByID(ctx context.Context, id string) (*models.InventoryItem, error)
	List(ctx context.Context, q repository.InventoryQuery) ([]models.InventoryItem, int, error)
	ListAll(ctx context.Context, hospitalID string) ([]models.InventoryItem, error)
	Create(ctx context.Context, item *models.InventoryItem) error
	Update(ctx context.Context, item *models.InventoryItem) error
	Delete(ctx context.Context, id string) error
}

// InventoryService manages hospital blood stock. Expiry status is derived on every read.
type InventoryService struct {
	repo       inventoryRepository
	classifier *inventory.Classifier
	cache      *CacheService
	cacheTTL   time.Duration
	validator  *validator.Validate
	logger     *zap.Logger
	audit      auditTrail
}

// NewInventoryService constructs an InventoryService.
func NewInventoryService(repo inventoryRepository, classifier *inventory.Classifier, cache *CacheService, cacheTTL time.Duration, auditRepo auditLogWriter, validate *validator.Validate, logger *zap.Logger) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if classifier == nil {
		classifier = inventory.NewClassifier(inventory.DefaultSoonWindow, nil)
	}
	return &InventoryService{
		repo:       repo,
		classifier: classifier,
		cache:      cache,
		cacheTTL:   cacheTTL,
		validator:  validate,
		logger:     logger,
		audit:      newAuditTrail(auditRepo, logger),
	}
}

func inventoryResource(item *models.InventoryItem) policy.Resource {
	return policy.Resource{Kind: policy.KindInventory, ID: item.ID, HospitalID: item.HospitalID}
}

// List returns inventory visible to the actor, classified against the current clock.
func (s *InventoryService) List(ctx context.Context, actor models.Actor, filter models.InventoryFilter) ([]models.InventoryItem, *models.Pagination, error) {
	scope, err := policy.ListScope(actor, policy.KindInventory)
	if err != nil {
		return nil, nil, err
	}
	query := repository.InventoryQuery{PageRequest: filter.PageRequest, HospitalID: filter.HospitalID, BloodType: filter.BloodType}
	if scope.HospitalID != "" {
		query.HospitalID = scope.HospitalID
	}
	if filter.ExpiredStatus != "" {
		from, before, ok := s.classifier.Bounds(filter.ExpiredStatus)
		if !ok {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "expiredStatus must be Valid, Soon or Expired")
		}
		query.ExpiresFrom, query.ExpiresBefore = from, before
	}

	items, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, nil, loadError(err, "inventory")
	}
	s.classifier.Annotate(items)
	return items, filter.Pagination(total), nil
}

// Get returns one inventory item with its expiry status.
func (s *InventoryService) Get(ctx context.Context, actor models.Actor, id string) (*models.InventoryItem, error) {
	item, err := s.load(ctx, actor, id, policy.OpRead)
	if err != nil {
		return nil, err
	}
	item.ExpiredStatus = s.classifier.Status(item.ExpirationDate)
	return item, nil
}

// ToggleExpired re-evaluates an item's expiry band against the current clock. Nothing is
// persisted: the band is always derived.
func (s *InventoryService) ToggleExpired(ctx context.Context, actor models.Actor, id string) (*models.InventoryItem, error) {
	return s.Get(ctx, actor, id)
}

// Create records a new stock batch for the caller's hospital.
func (s *InventoryService) Create(ctx context.Context, actor models.Actor, req dto.InventoryRequest) (*models.InventoryItem, error) {
	if err := policy.Authorize(actor, policy.Resource{Kind: policy.KindInventory, HospitalID: actor.HospitalID}, policy.OpCreate); err != nil {
		return nil, err
	}
	expiration, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := &models.InventoryItem{
		ID:              uuid.NewString(),
		HospitalID:      actor.HospitalID,
		BloodType:       req.BloodType,
		AvailableStocks: req.AvailableStocks,
		ExpirationDate:  expiration,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, writeError(err, "inventory item")
	}
	s.afterWrite(ctx, actor, item, nil, "create")
	item.ExpiredStatus = s.classifier.Status(item.ExpirationDate)
	return item, nil
}

// Update replaces stock level, blood type and expiration of an item.
func (s *InventoryService) Update(ctx context.Context, actor models.Actor, id string, req dto.InventoryRequest) (*models.InventoryItem, error) {
	item, err := s.load(ctx, actor, id, policy.OpUpdate)
	if err != nil {
		return nil, err
	}
	expiration, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	old := *item
	item.BloodType = req.BloodType
	item.AvailableStocks = req.AvailableStocks
	item.ExpirationDate = expiration
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, writeError(err, "inventory item")
	}
	s.afterWrite(ctx, actor, item, &old, "update")
	item.ExpiredStatus = s.classifier.Status(item.ExpirationDate)
	return item, nil
}

// Delete removes an inventory item.
func (s *InventoryService) Delete(ctx context.Context, actor models.Actor, id string) error {
	item, err := s.load(ctx, actor, id, policy.OpDelete)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return writeError(err, "inventory item")
	}
	s.afterWrite(ctx, actor, nil, item, "delete")
	return nil
}

// Summary aggregates stock per blood type. Hospital accounts always get their own
// hospital; other roles may pass hospitalID or leave it empty for every hospital. The
// bool reports whether the summary was served from cache.
func (s *InventoryService) Summary(ctx context.Context, actor models.Actor, hospitalID string) (*models.InventorySummary, bool, error) {
	scope, err := policy.ListScope(actor, policy.KindInventory)
	if err != nil {
		return nil, false, err
	}
	if scope.HospitalID != "" {
		hospitalID = scope.HospitalID
	}

	summary, hit, err := remember(ctx, s.cache, InventorySummaryKey(hospitalID), s.cacheTTL, func(ctx context.Context) (models.InventorySummary, error) {
		items, err := s.repo.ListAll(ctx, hospitalID)
		if err != nil {
			return models.InventorySummary{}, loadError(err, "inventory")
		}
		summary := inventory.Summarize(items)
		summary.HospitalID = hospitalID
		return summary, nil
	})
	if err != nil {
		return nil, false, err
	}
	return &summary, hit, nil
}

func (s *InventoryService) load(ctx context.Context, actor models.Actor, id string, op policy.Operation) (*models.InventoryItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "inventory item")
	}
	if err := policy.Authorize(actor, inventoryResource(item), op); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *InventoryService) validate(req dto.InventoryRequest) (time.Time, error) {
	if err := s.validator.Struct(req); err != nil {
		return time.Time{}, validationError(err, "invalid inventory payload")
	}
	expiration, err := parseDate(req.ExpirationDate, "expirationDate")
	if err != nil {
		return time.Time{}, err
	}
	if expiration == nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "expirationDate is required")
	}
	return *expiration, nil
}

func (s *InventoryService) afterWrite(ctx context.Context, actor models.Actor, next, prev *models.InventoryItem, op string) {
	hospitalID := ""
	id := ""
	if next != nil {
		hospitalID, id = next.HospitalID, next.ID
	} else if prev != nil {
		hospitalID, id = prev.HospitalID, prev.ID
	}
	s.cache.InvalidateInventory(ctx, hospitalID)

	var oldValues, newValues interface{}
	if prev != nil {
		oldValues = map[string]interface{}{"bloodType": prev.BloodType, "availableStocks": prev.AvailableStocks, "expirationDate": prev.ExpirationDate.Format(dateLayout)}
	}
	if next != nil {
		newValues = map[string]interface{}{"op": op, "bloodType": next.BloodType, "availableStocks": next.AvailableStocks, "expirationDate": next.ExpirationDate.Format(dateLayout)}
	}
	s.audit.record(ctx, actor, models.AuditActionInventoryWrite, "inventory", id, oldValues, newValues)
}
