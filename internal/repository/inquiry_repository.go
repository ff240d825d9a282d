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

const inquiryColumns = `id, donor_id, hospital_id, session_id, session_type, subject, message, response, status, created_at, updated_at`

// InquiryRepository provides database access for donor inquiries.
type InquiryRepository struct {
	db *sqlx.DB
}

// NewInquiryRepository creates a new instance of InquiryRepository.
func NewInquiryRepository(db *sqlx.DB) *InquiryRepository {
	return &InquiryRepository{db: db}
}

// FindByID returns an inquiry by identifier.
func (r *InquiryRepository) FindByID(ctx context.Context, id string) (*models.Inquiry, error) {
	query := `SELECT ` + inquiryColumns + ` FROM inquiries WHERE id = $1 LIMIT 1`
	var inq models.Inquiry
	if err := r.db.GetContext(ctx, &inq, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find inquiry by id: %w", err)
	}
	return &inq, nil
}

// List returns inquiries with total count.
func (r *InquiryRepository) List(ctx context.Context, filter models.InquiryFilter) ([]models.Inquiry, int, error) {
	var where whereClause
	if filter.DonorID != "" {
		where.add("donor_id = $%d", filter.DonorID)
	}
	if filter.HospitalID != "" {
		where.add("hospital_id = $%d", filter.HospitalID)
	}
	if filter.Status != "" {
		where.add("status = $%d", filter.Status)
	}
	page := filter.PageRequest.Normalize()

	listQuery := fmt.Sprintf("SELECT %s FROM inquiries%s ORDER BY created_at DESC LIMIT %d OFFSET %d", inquiryColumns, where.String(), page.PageSize, page.Offset())
	var inquiries []models.Inquiry
	if err := r.db.SelectContext(ctx, &inquiries, listQuery, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list inquiries: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM inquiries"+where.String(), where.args...); err != nil {
		return nil, 0, fmt.Errorf("count inquiries: %w", err)
	}
	return inquiries, total, nil
}

// Create inserts a new inquiry.
func (r *InquiryRepository) Create(ctx context.Context, inq *models.Inquiry) error {
	if inq.ID == "" {
		inq.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if inq.CreatedAt.IsZero() {
		inq.CreatedAt = now
	}
	inq.UpdatedAt = now
	const query = `INSERT INTO inquiries (id, donor_id, hospital_id, session_id, session_type, subject, message, response, status, created_at, updated_at) VALUES (:id, :donor_id, :hospital_id, :session_id, :session_type, :subject, :message, :response, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, inq); err != nil {
		return fmt.Errorf("create inquiry: %w", err)
	}
	return nil
}

// UpdateStatus writes next's status and response if the row still holds prevStatus.
func (r *InquiryRepository) UpdateStatus(ctx context.Context, prevStatus models.InquiryStatus, next *models.Inquiry) error {
	next.UpdatedAt = time.Now().UTC()
	const query = `UPDATE inquiries SET status = $3, response = $4, updated_at = $5 WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, next.ID, prevStatus, next.Status, next.Response, next.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update inquiry status: %w", err)
	}
	return expectAffected(res)
}

// Delete removes an inquiry.
func (r *InquiryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM inquiries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete inquiry: %w", err)
	}
	return expectAffected(res)
}
