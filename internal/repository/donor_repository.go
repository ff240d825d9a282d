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

const donorColumns = `id, email, password_hash, first_name, last_name, blood_type, gender, birth_date, phone, address, active, last_login, created_at, updated_at`

// DonorRepository provides database access for donor accounts.
type DonorRepository struct {
	db *sqlx.DB
}

// NewDonorRepository creates a new instance of DonorRepository.
func NewDonorRepository(db *sqlx.DB) *DonorRepository {
	return &DonorRepository{db: db}
}

// FindByID returns a donor by identifier.
func (r *DonorRepository) FindByID(ctx context.Context, id string) (*models.Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors WHERE id = $1 LIMIT 1`
	var donor models.Donor
	if err := r.db.GetContext(ctx, &donor, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find donor by id: %w", err)
	}
	return &donor, nil
}

// List returns donors based on filters with total count.
func (r *DonorRepository) List(ctx context.Context, filter models.AccountFilter) ([]models.Donor, int, error) {
	var where whereClause
	if filter.Active != nil {
		where.add("active = $%d", *filter.Active)
	}
	if filter.BloodType != "" {
		where.add("blood_type = $%d", filter.BloodType)
	}
	if filter.Search != "" {
		where.add("(LOWER(email) LIKE $%[1]d OR LOWER(first_name || ' ' || last_name) LIKE $%[1]d)", likePattern(filter.Search))
	}

	page := filter.PageRequest.Normalize()
	listQuery := fmt.Sprintf("SELECT %s FROM donors%s ORDER BY created_at DESC LIMIT %d OFFSET %d", donorColumns, where.String(), page.PageSize, page.Offset())
	var donors []models.Donor
	if err := r.db.SelectContext(ctx, &donors, listQuery, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list donors: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM donors"+where.String(), where.args...); err != nil {
		return nil, 0, fmt.Errorf("count donors: %w", err)
	}
	return donors, total, nil
}

// Create inserts a new donor.
func (r *DonorRepository) Create(ctx context.Context, donor *models.Donor) error {
	if donor.ID == "" {
		donor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if donor.CreatedAt.IsZero() {
		donor.CreatedAt = now
	}
	donor.UpdatedAt = now
	donor.Email = normalizeEmail(donor.Email)

	const query = `INSERT INTO donors (id, email, password_hash, first_name, last_name, blood_type, gender, birth_date, phone, address, active, created_at, updated_at) VALUES (:id, :email, :password_hash, :first_name, :last_name, :blood_type, :gender, :birth_date, :phone, :address, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, donor); err != nil {
		return mapWriteError("create donor", err)
	}
	return nil
}

// Update updates mutable profile fields of a donor.
func (r *DonorRepository) Update(ctx context.Context, donor *models.Donor) error {
	donor.UpdatedAt = time.Now().UTC()
	const query = `UPDATE donors SET first_name = :first_name, last_name = :last_name, blood_type = :blood_type, gender = :gender, birth_date = :birth_date, phone = :phone, address = :address, password_hash = :password_hash, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, donor)
	if err != nil {
		return mapWriteError("update donor", err)
	}
	return expectAffected(res)
}

// Delete performs a soft delete by marking the donor inactive.
func (r *DonorRepository) Delete(ctx context.Context, id string) error {
	const query = `UPDATE donors SET active = FALSE, updated_at = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("delete donor: %w", err)
	}
	return expectAffected(res)
}
