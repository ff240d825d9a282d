package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/blood-donation-api/internal/models"
)

const inventoryColumns = `id, hospital_id, blood_type, available_stocks, expiration_date, created_at, updated_at`

// InventoryQuery narrows inventory lookups. The expiry bounds are derived by the caller from
// the classifier window so the SQL filter agrees with read-time classification.
type InventoryQuery struct {
	models.PageRequest
	HospitalID    string
	BloodType     models.BloodType
	ExpiresFrom   *time.Time
	ExpiresBefore *time.Time
}

// InventoryRepository provides database access for blood inventory items.
type InventoryRepository struct {
	db *sqlx.DB
}

// NewInventoryRepository creates a new instance of InventoryRepository.
func NewInventoryRepository(db *sqlx.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func inventoryWhere(q InventoryQuery) whereClause {
	var where whereClause
	if q.HospitalID != "" {
		where.add("hospital_id = $%d", q.HospitalID)
	}
	if q.BloodType != "" {
		where.add("blood_type = $%d", q.BloodType)
	}
	if q.ExpiresFrom != nil {
		where.add("expiration_date >= $%d", *q.ExpiresFrom)
	}
	if q.ExpiresBefore != nil {
		where.add("expiration_date < $%d", *q.ExpiresBefore)
	}
	return where
}

// FindByID returns an inventory item by identifier.
func (r *InventoryRepository) FindByID(ctx context.Context, id string) (*models.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM blood_inventory WHERE id = $1 LIMIT 1`
	var item models.InventoryItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find inventory item by id: %w", err)
	}
	return &item, nil
}

// List returns inventory items with total count, soonest expiry first.
func (r *InventoryRepository) List(ctx context.Context, q InventoryQuery) ([]models.InventoryItem, int, error) {
	where := inventoryWhere(q)
	page := q.PageRequest.Normalize()

	listQuery := fmt.Sprintf("SELECT %s FROM blood_inventory%s ORDER BY expiration_date ASC LIMIT %d OFFSET %d", inventoryColumns, where.String(), page.PageSize, page.Offset())
	var items []models.InventoryItem
	if err := r.db.SelectContext(ctx, &items, listQuery, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list inventory: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM blood_inventory"+where.String(), where.args...); err != nil {
		return nil, 0, fmt.Errorf("count inventory: %w", err)
	}
	return items, total, nil
}

// ListAll returns every item of a hospital, or of all hospitals when hospitalID is empty.
func (r *InventoryRepository) ListAll(ctx context.Context, hospitalID string) ([]models.InventoryItem, error) {
	where := inventoryWhere(InventoryQuery{HospitalID: hospitalID})
	query := fmt.Sprintf("SELECT %s FROM blood_inventory%s ORDER BY blood_type ASC, expiration_date ASC", inventoryColumns, where.String())
	var items []models.InventoryItem
	if err := r.db.SelectContext(ctx, &items, query, where.args...); err != nil {
		return nil, fmt.Errorf("list all inventory: %w", err)
	}
	return items, nil
}

// Create inserts a new inventory item.
func (r *InventoryRepository) Create(ctx context.Context, item *models.InventoryItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	const query = `INSERT INTO blood_inventory (id, hospital_id, blood_type, available_stocks, expiration_date, created_at, updated_at) VALUES (:id, :hospital_id, :blood_type, :available_stocks, :expiration_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create inventory item: %w", err)
	}
	return nil
}

// Update updates stock, blood type and expiration of an item.
func (r *InventoryRepository) Update(ctx context.Context, item *models.InventoryItem) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE blood_inventory SET blood_type = :blood_type, available_stocks = :available_stocks, expiration_date = :expiration_date, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, item)
	if err != nil {
		return fmt.Errorf("update inventory item: %w", err)
	}
	return expectAffected(res)
}

// Delete removes an inventory item.
func (r *InventoryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blood_inventory WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}
	return expectAffected(res)
}
