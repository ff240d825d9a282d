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

const emergencyColumns = `id, requester_id, requester_role, patient_name, contact_name, contact_phone, hospital_name, location, blood_type, units_required, reason, critical_level, accept_status, active_status, responding_hospital_id, validated_by, created_at, updated_at`

// EmergencyRepository provides database access for emergency blood requests.
type EmergencyRepository struct {
	db *sqlx.DB
}

// NewEmergencyRepository creates a new instance of EmergencyRepository.
func NewEmergencyRepository(db *sqlx.DB) *EmergencyRepository {
	return &EmergencyRepository{db: db}
}

func emergencyWhere(filter models.EmergencyFilter) whereClause {
	var where whereClause
	if filter.RequesterID != "" {
		where.add("requester_id = $%d", filter.RequesterID)
	}
	if filter.BloodType != "" {
		where.add("blood_type = $%d", filter.BloodType)
	}
	if filter.AcceptStatus != "" {
		where.add("accept_status = $%d", filter.AcceptStatus)
	}
	if filter.ActiveStatus != "" {
		where.add("active_status = $%d", filter.ActiveStatus)
	}
	if filter.CriticalLevel != "" {
		where.add("critical_level = $%d", filter.CriticalLevel)
	}
	return where
}

// FindByID returns an emergency request by identifier.
func (r *EmergencyRepository) FindByID(ctx context.Context, id string) (*models.EmergencyRequest, error) {
	query := `SELECT ` + emergencyColumns + ` FROM emergency_requests WHERE id = $1 LIMIT 1`
	var req models.EmergencyRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find emergency request by id: %w", err)
	}
	return &req, nil
}

// List returns emergency requests, most critical and newest first.
func (r *EmergencyRepository) List(ctx context.Context, filter models.EmergencyFilter) ([]models.EmergencyRequest, int, error) {
	where := emergencyWhere(filter)
	page := filter.PageRequest.Normalize()

	listQuery := fmt.Sprintf(`SELECT %s FROM emergency_requests%s ORDER BY CASE critical_level WHEN 'High' THEN 0 WHEN 'Medium' THEN 1 ELSE 2 END, created_at DESC LIMIT %d OFFSET %d`,
		emergencyColumns, where.String(), page.PageSize, page.Offset())
	var requests []models.EmergencyRequest
	if err := r.db.SelectContext(ctx, &requests, listQuery, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list emergency requests: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM emergency_requests"+where.String(), where.args...); err != nil {
		return nil, 0, fmt.Errorf("count emergency requests: %w", err)
	}
	return requests, total, nil
}

// ListAll returns every emergency request matching filter, oldest first.
func (r *EmergencyRepository) ListAll(ctx context.Context, filter models.EmergencyFilter) ([]models.EmergencyRequest, error) {
	where := emergencyWhere(filter)
	query := fmt.Sprintf("SELECT %s FROM emergency_requests%s ORDER BY created_at ASC", emergencyColumns, where.String())
	var requests []models.EmergencyRequest
	if err := r.db.SelectContext(ctx, &requests, query, where.args...); err != nil {
		return nil, fmt.Errorf("list all emergency requests: %w", err)
	}
	return requests, nil
}

// Create inserts a new emergency request.
func (r *EmergencyRepository) Create(ctx context.Context, req *models.EmergencyRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now

	const query = `INSERT INTO emergency_requests (id, requester_id, requester_role, patient_name, contact_name, contact_phone, hospital_name, location, blood_type, units_required, reason, critical_level, accept_status, active_status, responding_hospital_id, validated_by, created_at, updated_at) VALUES (:id, :requester_id, :requester_role, :patient_name, :contact_name, :contact_phone, :hospital_name, :location, :blood_type, :units_required, :reason, :critical_level, :accept_status, :active_status, :responding_hospital_id, :validated_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create emergency request: %w", err)
	}
	return nil
}

// UpdateStatus writes the status fields of next if the stored row still holds prev's statuses.
func (r *EmergencyRepository) UpdateStatus(ctx context.Context, prev, next *models.EmergencyRequest) error {
	next.UpdatedAt = time.Now().UTC()
	const query = `UPDATE emergency_requests SET accept_status = $4, active_status = $5, responding_hospital_id = $6, validated_by = $7, updated_at = $8 WHERE id = $1 AND accept_status = $2 AND active_status = $3`
	res, err := r.db.ExecContext(ctx, query,
		prev.ID, prev.AcceptStatus, prev.ActiveStatus,
		next.AcceptStatus, next.ActiveStatus, next.RespondingHospitalID, next.ValidatedBy, next.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update emergency request status: %w", err)
	}
	return expectAffected(res)
}

// Delete removes an emergency request.
func (r *EmergencyRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM emergency_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete emergency request: %w", err)
	}
	return expectAffected(res)
}
