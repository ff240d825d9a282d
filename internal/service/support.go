package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/blood-donation-api/internal/models"
	"github.com/noah-isme/blood-donation-api/internal/repository"
	appErrors "github.com/noah-isme/blood-donation-api/pkg/errors"
)

type requestMetaKey struct{}

// ContextWithRequestMeta stores client details used by the audit trail.
func ContextWithRequestMeta(ctx context.Context, meta models.RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFrom returns the client details stored by ContextWithRequestMeta.
func RequestMetaFrom(ctx context.Context) models.RequestMeta {
	if meta, ok := ctx.Value(requestMetaKey{}).(models.RequestMeta); ok {
		return meta
	}
	return models.RequestMeta{}
}

type auditLogWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// auditTrail writes best-effort audit entries; failures are logged and swallowed.
type auditTrail struct {
	repo   auditLogWriter
	logger *zap.Logger
}

func newAuditTrail(repo auditLogWriter, logger *zap.Logger) auditTrail {
	if logger == nil {
		logger = zap.NewNop()
	}
	return auditTrail{repo: repo, logger: logger}
}

func (a auditTrail) record(ctx context.Context, actor models.Actor, action, resource, resourceID string, oldValues, newValues interface{}) {
	if a.repo == nil {
		return
	}
	meta := RequestMetaFrom(ctx)
	entry := &models.AuditLog{
		Action:    action,
		Resource:  resource,
		OldValues: marshalAudit(oldValues),
		NewValues: marshalAudit(newValues),
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	}
	if actor.ID != "" {
		id := actor.ID
		role := actor.Role
		entry.ActorID = &id
		entry.ActorRole = &role
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if err := a.repo.CreateAuditLog(ctx, entry); err != nil {
		a.logger.Warn("failed to record audit log", zap.String("action", action), zap.String("resource", resource), zap.Error(err))
	}
}

func marshalAudit(v interface{}) []byte {
	if v == nil {
		return nil
	}
	if raw, ok := v.([]byte); ok {
		return raw
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

// loadError maps a repository lookup failure: missing rows become NotFound, everything
// else is an upstream failure the client may retry.
func loadError(err error, resource string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, resource+" not found")
	}
	return appErrors.Upstream(err, "failed to load "+resource)
}

// writeError maps a repository write failure. A compare-and-swap that matched no row
// means another request changed the record first.
func writeError(err error, resource string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return appErrors.Clone(appErrors.ErrConflict, resource+" already exists")
	}
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrConflict, resource+" was modified concurrently, reload and retry")
	}
	return appErrors.Upstream(err, "failed to persist "+resource)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	return string(hash), nil
}

const dateLayout = "2006-01-02"

// parseDate reads an optional YYYY-MM-DD value.
func parseDate(raw, field string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, validationError(err, field+" must be formatted as YYYY-MM-DD")
	}
	return &t, nil
}
