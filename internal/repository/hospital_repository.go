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

const hospitalColumns = `id, email, password_hash, name, address, city, phone, active, last_login, created_at, updated_at`

// HospitalRepository provides database access for hospital accounts.
type HospitalRepository struct {
	db *sqlx.DB
}

// NewHospitalRepository creates a new instance of HospitalRepository.
func NewHospitalRepository(db *sqlx.DB) *HospitalRepository {
	return &HospitalRepository{db: db}
}

// FindByID returns a hospital by identifier.
func (r *HospitalRepository) FindByID(ctx context.Context, id string) (*models.Hospital, error) {
	query := `SELECT ` + hospitalColumns + ` FROM hospitals WHERE id = $1 LIMIT 1`
	var hospital models.Hospital
	if err := r.db.GetContext(ctx, &hospital, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find hospital by id: %w", err)
	}
	return &hospital, nil
}

// List returns hospitals based on filters with total count.
func (r *HospitalRepository) List(ctx context.Context, filter models.AccountFilter) ([]models.Hospital, int, error) {
	var where whereClause
	if filter.Active != nil {
		where.add("active = $%d", *filter.Active)
	}
	if filter.Search != "" {
		where.add("(LOWER(name) LIKE $%[1]d OR LOWER(city) LIKE $%[1]d OR LOWER(email) LIKE $%[1]d)", likePattern(filter.Search))
	}

	page := filter.PageRequest.Normalize()
	listQuery := fmt.Sprintf("SELECT %s FROM hospitals%s ORDER BY name ASC LIMIT %d OFFSET %d", hospitalColumns, where.String(), page.PageSize, page.Offset())
	var hospitals []models.Hospital
	if err := r.db.SelectContext(ctx, &hospitals, listQuery, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list hospitals: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM hospitals"+where.String(), where.args...); err != nil {
		return nil, 0, fmt.Errorf("count hospitals: %w", err)
	}
	return hospitals, total, nil
}

// Create inserts a new hospital.
func (r *HospitalRepository) Create(ctx context.Context, hospital *models.Hospital) error {
	if hospital.ID == "" {
		hospital.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if hospital.CreatedAt.IsZero() {
		hospital.CreatedAt = now
	}
	hospital.UpdatedAt = now
	hospital.Email = normalizeEmail(hospital.Email)

	const query = `INSERT INTO hospitals (id, email, password_hash, name, address, city, phone, active, created_at, updated_at) VALUES (:id, :email, :password_hash, :name, :address, :city, :phone, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, hospital); err != nil {
		return mapWriteError("create hospital", err)
	}
	return nil
}

// Update updates mutable fields of a hospital.
func (r *HospitalRepository) Update(ctx context.Context, hospital *models.Hospital) error {
	hospital.UpdatedAt = time.Now().UTC()
	const query = `UPDATE hospitals SET name = :name, address = :address, city = :city, phone = :phone, password_hash = :password_hash, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, hospital)
	if err != nil {
		return mapWriteError("update hospital", err)
	}
	return expectAffected(res)
}

// ToggleActive flips the active flag and returns the new value.
func (r *HospitalRepository) ToggleActive(ctx context.Context, id string) (bool, error) {
	const query = `UPDATE hospitals SET active = NOT active, updated_at = $2 WHERE id = $1 RETURNING active`
	var active bool
	if err := r.db.GetContext(ctx, &active, query, id, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, err
		}
		return false, fmt.Errorf("toggle hospital status: %w", err)
	}
	return active, nil
}
