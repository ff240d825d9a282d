package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/blood-donation-api/internal/models"
)

const sessionBaseColumns = `id, donor_id, hospital_id, hospital_admin_id, appointment_date, appointment_time, receipt_number, active_status, progress_status, created_at, updated_at`

// SessionRepository persists appointments or health evaluations. Both tables share the
// lifecycle columns; evaluations add pass_status and result_file.
type SessionRepository struct {
	db      *sqlx.DB
	kind    models.SessionKind
	table   string
	columns string
}

// NewAppointmentRepository returns a repository over blood_donation_appointments.
func NewAppointmentRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db, kind: models.SessionAppointment, table: "blood_donation_appointments", columns: sessionBaseColumns}
}

// NewEvaluationRepository returns a repository over health_evaluations.
func NewEvaluationRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db, kind: models.SessionEvaluation, table: "health_evaluations", columns: sessionBaseColumns + ", pass_status, result_file"}
}

// Kind reports which session kind the repository stores.
func (r *SessionRepository) Kind() models.SessionKind {
	return r.kind
}

func (r *SessionRepository) tag(sessions []models.Session) {
	for i := range sessions {
		sessions[i].Kind = r.kind
	}
}

// FindByID returns a session by identifier.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1 LIMIT 1", r.columns, r.table)
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find %s by id: %w", r.kind, err)
	}
	session.Kind = r.kind
	return &session, nil
}

func sessionWhere(filter models.SessionFilter) whereClause {
	var where whereClause
	if filter.DonorID != "" {
		where.add("donor_id = $%d", filter.DonorID)
	}
	if filter.HospitalID != "" {
		where.add("hospital_id = $%d", filter.HospitalID)
	}
	if filter.ActiveStatus != "" {
		where.add("active_status = $%d", filter.ActiveStatus)
	}
	if filter.ProgressStatus != "" {
		where.add("progress_status = $%d", filter.ProgressStatus)
	}
	if filter.DateFrom != nil {
		where.add("appointment_date >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where.add("appointment_date <= $%d", *filter.DateTo)
	}
	return where
}

// List returns sessions matching filter with total count.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error) {
	where := sessionWhere(filter)
	page := filter.PageRequest.Normalize()

	listQuery := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY appointment_date DESC, appointment_time DESC LIMIT %d OFFSET %d",
		r.columns, r.table, where.String(), page.PageSize, page.Offset())
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, listQuery, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.kind, err)
	}
	r.tag(sessions)

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM %s%s", r.table, where.String()), where.args...); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.kind, err)
	}
	return sessions, total, nil
}

// ListAll returns every session matching filter without paging, oldest first. Used by reports.
func (r *SessionRepository) ListAll(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
	where := sessionWhere(filter)
	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY appointment_date ASC, appointment_time ASC", r.columns, r.table, where.String())
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, where.args...); err != nil {
		return nil, fmt.Errorf("list all %s: %w", r.kind, err)
	}
	r.tag(sessions)
	return sessions, nil
}

// Create inserts a new session.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	session.Kind = r.kind

	columns := []string{"id", "donor_id", "hospital_id", "hospital_admin_id", "appointment_date", "appointment_time", "receipt_number", "active_status", "progress_status", "created_at", "updated_at"}
	if r.kind == models.SessionEvaluation {
		columns = append(columns, "pass_status", "result_file")
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (:%s)", r.table, strings.Join(columns, ", "), strings.Join(columns, ", :"))
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return mapWriteError("create "+string(r.kind), err)
	}
	return nil
}

// UpdateState writes the lifecycle fields of next only if the stored row still holds the
// statuses of prev. A lost race returns sql.ErrNoRows.
func (r *SessionRepository) UpdateState(ctx context.Context, prev, next *models.Session) error {
	next.UpdatedAt = time.Now().UTC()

	set := []string{
		"hospital_admin_id = $4",
		"appointment_date = $5",
		"appointment_time = $6",
		"receipt_number = $7",
		"active_status = $8",
		"progress_status = $9",
		"updated_at = $10",
	}
	args := []interface{}{
		prev.ID, prev.ActiveStatus, prev.ProgressStatus,
		next.HospitalAdminID, next.AppointmentDate, next.AppointmentTime, next.ReceiptNumber,
		next.ActiveStatus, next.ProgressStatus, next.UpdatedAt,
	}
	if r.kind == models.SessionEvaluation {
		set = append(set, "pass_status = $11", "result_file = $12")
		args = append(args, next.PassStatus, next.ResultFile)
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $1 AND active_status = $2 AND progress_status = $3", r.table, strings.Join(set, ", "))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s state: %w", r.kind, err)
	}
	return expectAffected(res)
}

// Delete removes a session only while it still holds the statuses the caller checked.
func (r *SessionRepository) Delete(ctx context.Context, current *models.Session) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1 AND active_status = $2 AND progress_status = $3", r.table)
	res, err := r.db.ExecContext(ctx, query, current.ID, current.ActiveStatus, current.ProgressStatus)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.kind, err)
	}
	return expectAffected(res)
}
