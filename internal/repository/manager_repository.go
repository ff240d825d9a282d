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

const managerColumns = `id, email, password_hash, full_name, phone, active, last_login, created_at, updated_at`

// ManagerRepository provides database access for manager accounts.
type ManagerRepository struct {
	db *sqlx.DB
}

// NewManagerRepository creates a new instance of ManagerRepository.
func NewManagerRepository(db *sqlx.DB) *ManagerRepository {
	return &ManagerRepository{db: db}
}

// FindByID returns a manager by identifier.
func (r *ManagerRepository) FindByID(ctx context.Context, id string) (*models.Manager, error) {
	query := `SELECT ` + managerColumns + ` FROM managers WHERE id = $1 LIMIT 1`
	var manager models.Manager
	if err := r.db.GetContext(ctx, &manager, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find manager by id: %w", err)
	}
	return &manager, nil
}

// List returns managers with total count.
func (r *ManagerRepository) List(ctx context.Context, filter models.AccountFilter) ([]models.Manager, int, error) {
	var where whereClause
	if filter.Active != nil {
		where.add("active = $%d", *filter.Active)
	}
	if filter.Search != "" {
		where.add("(LOWER(email) LIKE $%[1]d OR LOWER(full_name) LIKE $%[1]d)", likePattern(filter.Search))
	}

	page := filter.PageRequest.Normalize()
	listQuery := fmt.Sprintf("SELECT %s FROM managers%s ORDER BY full_name ASC LIMIT %d OFFSET %d", managerColumns, where.String(), page.PageSize, page.Offset())
	var managers []models.Manager
	if err := r.db.SelectContext(ctx, &managers, listQuery, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list managers: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM managers"+where.String(), where.args...); err != nil {
		return nil, 0, fmt.Errorf("count managers: %w", err)
	}
	return managers, total, nil
}

// Create inserts a new manager.
func (r *ManagerRepository) Create(ctx context.Context, manager *models.Manager) error {
	if manager.ID == "" {
		manager.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if manager.CreatedAt.IsZero() {
		manager.CreatedAt = now
	}
	manager.UpdatedAt = now
	manager.Email = normalizeEmail(manager.Email)

	const query = `INSERT INTO managers (id, email, password_hash, full_name, phone, active, created_at, updated_at) VALUES (:id, :email, :password_hash, :full_name, :phone, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, manager); err != nil {
		return mapWriteError("create manager", err)
	}
	return nil
}

// Update updates mutable fields of a manager.
func (r *ManagerRepository) Update(ctx context.Context, manager *models.Manager) error {
	manager.UpdatedAt = time.Now().UTC()
	const query = `UPDATE managers SET full_name = :full_name, phone = :phone, password_hash = :password_hash, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, manager)
	if err != nil {
		return mapWriteError("update manager", err)
	}
	return expectAffected(res)
}

// ToggleActive flips the active flag and returns the new value.
func (r *ManagerRepository) ToggleActive(ctx context.Context, id string) (bool, error) {
	const query = `UPDATE managers SET active = NOT active, updated_at = $2 WHERE id = $1 RETURNING active`
	var active bool
	if err := r.db.GetContext(ctx, &active, query, id, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, err
		}
		return false, fmt.Errorf("toggle manager status: %w", err)
	}
	return active, nil
}
