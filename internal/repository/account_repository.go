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

type accountTable struct {
	name       string
	fullName   string
	hospitalID string
}

var accountTables = map[models.Role]accountTable{
	models.RoleDonor:         {name: "donors", fullName: "TRIM(first_name || ' ' || last_name)", hospitalID: "NULL::text"},
	models.RoleHospital:      {name: "hospitals", fullName: "name", hospitalID: "id"},
	models.RoleHospitalAdmin: {name: "hospital_admins", fullName: "full_name", hospitalID: "hospital_id"},
	models.RoleManager:       {name: "managers", fullName: "full_name", hospitalID: "NULL::text"},
}

// AccountRepository resolves credentials across the four account tables and owns
// refresh tokens and the audit trail.
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository creates a new instance of AccountRepository.
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func tableFor(role models.Role) (accountTable, error) {
	t, ok := accountTables[role]
	if !ok {
		return accountTable{}, fmt.Errorf("unknown role %q", role)
	}
	return t, nil
}

func (r *AccountRepository) findBy(ctx context.Context, role models.Role, column, value string) (*models.Account, error) {
	t, err := tableFor(role)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT id, email, password_hash, %s AS full_name, %s AS hospital_id, active FROM %s WHERE %s = $1 LIMIT 1`,
		t.fullName, t.hospitalID, t.name, column)
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find %s account by %s: %w", role, column, err)
	}
	account.Role = role
	return &account, nil
}

// FindByEmail returns the credential projection of an account of the given role.
func (r *AccountRepository) FindByEmail(ctx context.Context, role models.Role, email string) (*models.Account, error) {
	return r.findBy(ctx, role, "LOWER(email)", normalizeEmail(email))
}

// FindByID returns the credential projection of an account by id.
func (r *AccountRepository) FindByID(ctx context.Context, role models.Role, id string) (*models.Account, error) {
	return r.findBy(ctx, role, "id", id)
}

// UpdateLastLogin updates the last_login timestamp for an account.
func (r *AccountRepository) UpdateLastLogin(ctx context.Context, role models.Role, id string, ts time.Time) error {
	t, err := tableFor(role)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE %s SET last_login = $2, updated_at = $3 WHERE id = $1`, t.name)
	if _, err := r.db.ExecContext(ctx, query, id, ts, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// CreateRefreshToken persists a refresh token entry.
func (r *AccountRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO refresh_tokens (id, account_id, role, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent) VALUES (:id, :account_id, :role, :token, :expires_at, :created_at, :revoked, :revoked_at, :ip_address, :user_agent)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken returns a refresh token by token string.
func (r *AccountRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const query = `SELECT id, account_id, role, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent FROM refresh_tokens WHERE token = $1 LIMIT 1`
	var rt models.RefreshToken
	if err := r.db.GetContext(ctx, &rt, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &rt, nil
}

// RevokeRefreshToken marks a token as revoked. It reports sql.ErrNoRows when the token was
// already revoked so a refresh token cannot be rotated twice.
func (r *AccountRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE id = $1 AND revoked = FALSE`
	res, err := r.db.ExecContext(ctx, query, id, revokedAt)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RevokeAccountRefreshTokens revokes all refresh tokens for an account.
func (r *AccountRepository) RevokeAccountRefreshTokens(ctx context.Context, role models.Role, accountID string) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $3 WHERE account_id = $1 AND role = $2 AND revoked = FALSE`
	if _, err := r.db.ExecContext(ctx, query, accountID, role, time.Now().UTC()); err != nil {
		return fmt.Errorf("revoke account refresh tokens: %w", err)
	}
	return nil
}

// CreateAuditLog stores an audit log entry.
func (r *AccountRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, actor_id, actor_role, action, resource, resource_id, old_values, new_values, ip_address, user_agent, created_at) VALUES (:id, :actor_id, :actor_role, :action, :resource, :resource_id, :old_values, :new_values, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
