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

const feedbackColumns = `id, donor_id, hospital_id, session_id, session_type, rating, comment, status, created_at`

// FeedbackRepository provides database access for donor feedback.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository creates a new instance of FeedbackRepository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// FindByID returns a feedback entry by identifier.
func (r *FeedbackRepository) FindByID(ctx context.Context, id string) (*models.Feedback, error) {
	query := `SELECT ` + feedbackColumns + ` FROM feedback WHERE id = $1 LIMIT 1`
	var fb models.Feedback
	if err := r.db.GetContext(ctx, &fb, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find feedback by id: %w", err)
	}
	return &fb, nil
}

// List returns feedback entries with total count.
func (r *FeedbackRepository) List(ctx context.Context, filter models.FeedbackFilter) ([]models.Feedback, int, error) {
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

	listQuery := fmt.Sprintf("SELECT %s FROM feedback%s ORDER BY created_at DESC LIMIT %d OFFSET %d", feedbackColumns, where.String(), page.PageSize, page.Offset())
	var entries []models.Feedback
	if err := r.db.SelectContext(ctx, &entries, listQuery, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list feedback: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM feedback"+where.String(), where.args...); err != nil {
		return nil, 0, fmt.Errorf("count feedback: %w", err)
	}
	return entries, total, nil
}

// Create inserts a feedback entry. One entry per session is allowed.
func (r *FeedbackRepository) Create(ctx context.Context, fb *models.Feedback) error {
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO feedback (id, donor_id, hospital_id, session_id, session_type, rating, comment, status, created_at) VALUES (:id, :donor_id, :hospital_id, :session_id, :session_type, :rating, :comment, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, fb); err != nil {
		return mapWriteError("create feedback", err)
	}
	return nil
}

// MarkReviewed flips a submitted entry to reviewed.
func (r *FeedbackRepository) MarkReviewed(ctx context.Context, id string) error {
	const query = `UPDATE feedback SET status = $2 WHERE id = $1 AND status = $3`
	res, err := r.db.ExecContext(ctx, query, id, models.FeedbackReviewed, models.FeedbackSubmitted)
	if err != nil {
		return fmt.Errorf("review feedback: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a feedback entry.
func (r *FeedbackRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM feedback WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	return expectAffected(res)
}
