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

const hospitalAdminColumns = `id, hospital_id, email, password_hash, full_name, phone, position, active, last_login, created_at, updated_at`

// HospitalAdminRepository provides database access for hospital staff accounts.
type HospitalAdminRepository struct {
	db *sqlx.DB
}

// NewHospitalAdminRepository creates a new instance of HospitalAdminRepository.
func NewHospitalAdminRepository(db *sqlx.DB) *HospitalAdminRepository {
	return &HospitalAdminRepository{db: db}
}

// FindByID returns a hospital admin by identifier.
func (r *HospitalAdminRepository) FindByID(ctx context.Context, id string) (*models.HospitalAdmin, error) {
	query := `SELECT ` + hospitalAdminColumns + ` FROM hospital_admins WHERE id = $1 LIMIT 1`
	var admin models.HospitalAdmin
	if err := r.db.GetContext(ctx, &admin, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find hospital admin by id: %w", err)
	}
	return &admin, nil
}

// List returns hospital admins, optionally restricted to a hospital.
func (r *HospitalAdminRepository) List(ctx context.Context, filter models.AccountFilter) ([]models.HospitalAdmin, int, error) {
	var where whereClause
	if filter.HospitalID != "" {
		where.add("hospital_id = $%d", filter.HospitalID)
	}
	if filter.Active != nil {
		where.add("active = $%d", *filter.Active)
	}
	if filter.Search != "" {
		where.add("(LOWER(email) LIKE $%[1]d OR LOWER(full_name) LIKE $%[1]d)", likePattern(filter.Search))
	}

	page := filter.PageRequest.Normalize()
	listQuery := fmt.Sprintf("SELECT %s FROM hospital_admins%s ORDER BY full_name ASC LIMIT %d OFFSET %d", hospitalAdminColumns, where.String(), page.PageSize, page.Offset())
	var admins []models.HospitalAdmin
	if err := r.db.SelectContext(ctx, &admins, listQuery, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list hospital admins: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM hospital_admins"+where.String(), where.args...); err != nil {
		return nil, 0, fmt.Errorf("count hospital admins: %w", err)
	}
	return admins, total, nil
}

// Create inserts a new hospital admin.
func (r *HospitalAdminRepository) Create(ctx context.Context, admin *models.HospitalAdmin) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = now
	}
	admin.UpdatedAt = now
	admin.Email = normalizeEmail(admin.Email)

	const query = `INSERT INTO hospital_admins (id, hospital_id, email, password_hash, full_name, phone, position, active, created_at, updated_at) VALUES (:id, :hospital_id, :email, :password_hash, :full_name, :phone, :position, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, admin); err != nil {
		return mapWriteError("create hospital admin", err)
	}
	return nil
}

// Update updates mutable fields of a hospital admin.
func (r *HospitalAdminRepository) Update(ctx context.Context, admin *models.HospitalAdmin) error {
	admin.UpdatedAt = time.Now().UTC()
	const query = `UPDATE hospital_admins SET full_name = :full_name, phone = :phone, position = :position, active = :active, password_hash = :password_hash, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, admin)
	if err != nil {
		return mapWriteError("update hospital admin", err)
	}
	return expectAffected(res)
}

// Delete removes a hospital admin account.
func (r *HospitalAdminRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM hospital_admins WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete hospital admin: %w", err)
	}
	return expectAffected(res)
}
