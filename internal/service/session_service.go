package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/blood-donation-api/internal/dto"
	"github.com/noah-isme/blood-donation-api/internal/lifecycle"
	"github.com/noah-isme/blood-donation-api/internal/models"
	"github.com/noah-isme/blood-donation-api/internal/policy"
	appErrors "github.com/noah-isme/blood-donation-api/pkg/errors"
)

type sessionRepository interface {
	Kind() models.SessionKind
	FindByID(ctx context.Context, id string) (*models.Session, error)
	List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error)
	Create(ctx context.Context, session *models.Session) error
	UpdateState(ctx context.Context, prev, next *models.Session) error
	Delete(ctx context.Context, current *models.Session) error
}

type hospitalLookup interface {
	FindByID(ctx context.Context, id string) (*models.Hospital, error)
}

// DocumentStore persists evaluation result documents and hands out download links.
type DocumentStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	URL(ctx context.Context, key string) (string, time.Time, error)
	Delete(ctx context.Context, key string) error
}

// DocumentUpload is a result file attached when an evaluation completes.
type DocumentUpload struct {
	models.ResultDocument
	Body io.Reader
}

// DocumentPolicy bounds accepted result documents.
type DocumentPolicy struct {
	MaxSizeBytes int64
	AllowedMIMEs []string
}

// SessionService runs the booking lifecycle of one session kind (appointments or
// evaluations).
type SessionService struct {
	repo      sessionRepository
	hospitals hospitalLookup
	documents DocumentStore
	docPolicy DocumentPolicy
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	audit     auditTrail
	now       func() time.Time
}

// SessionServiceDeps groups the collaborators of SessionService.
type SessionServiceDeps struct {
	Repo           sessionRepository
	Hospitals      hospitalLookup
	Documents      DocumentStore
	DocumentPolicy DocumentPolicy
	Audit          auditLogWriter
	Metrics        *MetricsService
	Validator      *validator.Validate
	Logger         *zap.Logger
}

// NewSessionService constructs a SessionService.
func NewSessionService(deps SessionServiceDeps) *SessionService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	return &SessionService{
		repo:      deps.Repo,
		hospitals: deps.Hospitals,
		documents: deps.Documents,
		docPolicy: deps.DocumentPolicy,
		metrics:   deps.Metrics,
		validator: deps.Validator,
		logger:    deps.Logger,
		audit:     newAuditTrail(deps.Audit, deps.Logger),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *SessionService) kind() policy.Kind {
	return policy.SessionKind(s.repo.Kind())
}

func (s *SessionService) resource(session *models.Session) policy.Resource {
	return policy.Resource{Kind: s.kind(), ID: session.ID, DonorID: session.DonorID, HospitalID: session.HospitalID}
}

func (s *SessionService) label() string {
	return string(s.repo.Kind())
}

// List returns sessions visible to the actor.
func (s *SessionService) List(ctx context.Context, actor models.Actor, filter models.SessionFilter) ([]dto.SessionView, *models.Pagination, error) {
	scope, err := policy.ListScope(actor, s.kind())
	if err != nil {
		return nil, nil, err
	}
	if scope.DonorID != "" {
		filter.DonorID = scope.DonorID
	}
	if scope.HospitalID != "" {
		filter.HospitalID = scope.HospitalID
	}

	sessions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, loadError(err, s.label()+"s")
	}
	views := make([]dto.SessionView, 0, len(sessions))
	for i := range sessions {
		views = append(views, s.view(ctx, actor, &sessions[i]))
	}
	return views, filter.Pagination(total), nil
}

// Get returns one session.
func (s *SessionService) Get(ctx context.Context, actor models.Actor, id string) (*dto.SessionView, error) {
	session, err := s.load(ctx, actor, id, policy.OpRead)
	if err != nil {
		return nil, err
	}
	view := s.view(ctx, actor, session)
	return &view, nil
}

// Create books a new session for the calling donor.
func (s *SessionService) Create(ctx context.Context, actor models.Actor, req dto.CreateSessionRequest) (*dto.SessionView, error) {
	if err := policy.Authorize(actor, policy.Resource{Kind: s.kind(), DonorID: actor.ID}, policy.OpCreate); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid booking payload")
	}
	date, err := s.slotDate(req.AppointmentDate)
	if err != nil {
		return nil, err
	}
	if err := s.ensureHospital(ctx, req.HospitalID); err != nil {
		return nil, err
	}

	now := s.now()
	session := &models.Session{
		ID:              uuid.NewString(),
		Kind:            s.repo.Kind(),
		DonorID:         actor.ID,
		HospitalID:      req.HospitalID,
		AppointmentDate: date,
		AppointmentTime: req.AppointmentTime,
		ActiveStatus:    models.ActivePending,
		ProgressStatus:  models.ProgressNotStarted,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if session.Kind == models.SessionEvaluation {
		pending := models.PassPending
		session.PassStatus = &pending
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, writeError(err, s.label())
	}

	s.audit.record(ctx, actor, models.AuditActionSessionCreate, s.label(), session.ID, nil, statusSnapshot(session))
	view := s.view(ctx, actor, session)
	return &view, nil
}

// Reschedule proposes a new slot for a pending session.
func (s *SessionService) Reschedule(ctx context.Context, actor models.Actor, id string, req dto.RescheduleRequest) (*dto.SessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid reschedule payload")
	}
	date, err := s.slotDate(req.AppointmentDate)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, id, lifecycle.Input{Action: lifecycle.ActionReschedule, Date: &date, Time: req.AppointmentTime}, nil)
}

// Accept confirms a session. Hospital admins accept pending bookings; donors accept a
// rescheduled slot.
func (s *SessionService) Accept(ctx context.Context, actor models.Actor, id string) (*dto.SessionView, error) {
	action := lifecycle.ActionAccept
	if actor.Role == models.RoleDonor {
		action = lifecycle.ActionAcceptByDonor
	}
	return s.transition(ctx, actor, id, lifecycle.Input{Action: action}, nil)
}

// Cancel is the hospital admin cancellation.
func (s *SessionService) Cancel(ctx context.Context, actor models.Actor, id string) (*dto.SessionView, error) {
	return s.transition(ctx, actor, id, lifecycle.Input{Action: lifecycle.ActionCancel}, nil)
}

// CancelByDonor declines a rescheduled slot.
func (s *SessionService) CancelByDonor(ctx context.Context, actor models.Actor, id string) (*dto.SessionView, error) {
	return s.transition(ctx, actor, id, lifecycle.Input{Action: lifecycle.ActionCancelByDonor}, nil)
}

// Arrive records the donor's arrival with a receipt number.
func (s *SessionService) Arrive(ctx context.Context, actor models.Actor, id string, req dto.ArriveRequest) (*dto.SessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid arrival payload")
	}
	return s.transition(ctx, actor, id, lifecycle.Input{Action: lifecycle.ActionArrive, ReceiptNumber: req.ReceiptNumber}, nil)
}

// Complete finishes a session. Evaluations need a pass status and may carry a result
// document.
func (s *SessionService) Complete(ctx context.Context, actor models.Actor, id string, req dto.CompleteRequest, doc *DocumentUpload) (*dto.SessionView, error) {
	if doc != nil {
		if err := s.checkDocument(doc); err != nil {
			return nil, err
		}
	}
	return s.transition(ctx, actor, id, lifecycle.Input{Action: lifecycle.ActionComplete, PassStatus: req.PassStatus}, doc)
}

// Delete removes a finished session.
func (s *SessionService) Delete(ctx context.Context, actor models.Actor, id string) error {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return loadError(err, s.label())
	}
	if err := policy.Authorize(actor, s.resource(session), policy.OpDelete); err != nil {
		return err
	}
	if err := lifecycle.CanDelete(*session); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, session); err != nil {
		return writeError(err, s.label())
	}
	if session.ResultFile != nil && s.documents != nil {
		if err := s.documents.Delete(ctx, *session.ResultFile); err != nil {
			s.logger.Warn("failed to delete result document", zap.String("key", *session.ResultFile), zap.Error(err))
		}
	}
	s.audit.record(ctx, actor, models.AuditActionSessionDelete, s.label(), session.ID, statusSnapshot(session), nil)
	return nil
}

func (s *SessionService) load(ctx context.Context, actor models.Actor, id string, op policy.Operation) (*models.Session, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, s.label())
	}
	if err := policy.Authorize(actor, s.resource(session), op); err != nil {
		return nil, err
	}
	return session, nil
}

// transition is the single read-modify-write path of every lifecycle action. The store
// update only succeeds when the session still holds the statuses it was read with.
func (s *SessionService) transition(ctx context.Context, actor models.Actor, id string, in lifecycle.Input, doc *DocumentUpload) (*dto.SessionView, error) {
	current, err := s.load(ctx, actor, id, policy.OpLifecycle)
	if err != nil {
		return nil, err
	}

	in.Actor = actor.Role
	in.ActorID = actor.ID
	if doc != nil {
		if current.Kind != models.SessionEvaluation {
			return nil, appErrors.Clone(appErrors.ErrValidation, "result documents can only be attached to evaluations")
		}
		in.ResultFile = s.documentKey(current.ID, doc.Filename)
	}

	next, err := lifecycle.Apply(*current, in)
	if err != nil {
		s.metrics.RecordTransition(s.label(), string(in.Action), TransitionRejected)
		return nil, err
	}
	next.UpdatedAt = s.now()

	if doc != nil {
		if err := s.storeDocument(ctx, in.ResultFile, doc); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateState(ctx, current, &next); err != nil {
		s.metrics.RecordTransition(s.label(), string(in.Action), TransitionConflict)
		if doc != nil {
			s.discardDocument(ctx, in.ResultFile)
		}
		return nil, writeError(err, s.label())
	}
	s.metrics.RecordTransition(s.label(), string(in.Action), TransitionApplied)

	if doc != nil && current.ResultFile != nil && *current.ResultFile != in.ResultFile {
		s.discardDocument(ctx, *current.ResultFile)
	}

	s.audit.record(ctx, actor, models.AuditActionTransition, s.label(), next.ID, statusSnapshot(current),
		mergeSnapshot(statusSnapshot(&next), map[string]interface{}{"action": in.Action}))
	s.logger.Debug("session transition applied",
		zap.String("kind", s.label()), zap.String("id", next.ID), zap.String("action", string(in.Action)),
		zap.String("active_status", string(next.ActiveStatus)), zap.String("progress_status", string(next.ProgressStatus)))

	view := s.view(ctx, actor, &next)
	return &view, nil
}

func (s *SessionService) view(ctx context.Context, actor models.Actor, session *models.Session) dto.SessionView {
	if session.ResultFile != nil && s.documents != nil {
		url, _, err := s.documents.URL(ctx, *session.ResultFile)
		if err != nil {
			s.logger.Warn("failed to sign result document", zap.String("session_id", session.ID), zap.Error(err))
		} else {
			session.ResultURL = url
		}
	}
	var actions []lifecycle.Action
	if policy.Allowed(actor, s.resource(session), policy.OpLifecycle) {
		actions = lifecycle.Allowed(*session, actor.Role)
	}
	if actions == nil {
		actions = []lifecycle.Action{}
	}
	return dto.SessionView{Session: *session, AllowedActions: actions}
}

func (s *SessionService) slotDate(raw string) (time.Time, error) {
	date, err := parseDate(raw, "appointmentDate")
	if err != nil {
		return time.Time{}, err
	}
	if date == nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "appointmentDate is required")
	}
	today := s.now().Truncate(24 * time.Hour)
	if date.Before(today) {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "appointmentDate cannot be in the past")
	}
	return *date, nil
}

func (s *SessionService) ensureHospital(ctx context.Context, hospitalID string) error {
	if s.hospitals == nil {
		return nil
	}
	hospital, err := s.hospitals.FindByID(ctx, hospitalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "hospital does not exist")
		}
		return appErrors.Upstream(err, "failed to load hospital")
	}
	if !hospital.Active {
		return appErrors.Clone(appErrors.ErrValidation, "hospital is not accepting bookings")
	}
	return nil
}

func (s *SessionService) checkDocument(doc *DocumentUpload) error {
	if doc.Body == nil || doc.Size <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "document is empty")
	}
	if s.docPolicy.MaxSizeBytes > 0 && doc.Size > s.docPolicy.MaxSizeBytes {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("document exceeds %d bytes", s.docPolicy.MaxSizeBytes))
	}
	if len(s.docPolicy.AllowedMIMEs) == 0 {
		return nil
	}
	contentType := strings.ToLower(strings.TrimSpace(strings.SplitN(doc.ContentType, ";", 2)[0]))
	for _, allowed := range s.docPolicy.AllowedMIMEs {
		if strings.EqualFold(allowed, contentType) {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrValidation, "document type "+contentType+" is not allowed")
}

func (s *SessionService) documentKey(sessionID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%ss/%s/%s%s", s.label(), sessionID, uuid.NewString(), ext)
}

func (s *SessionService) storeDocument(ctx context.Context, key string, doc *DocumentUpload) error {
	if s.documents == nil {
		return appErrors.Clone(appErrors.ErrValidation, "document uploads are disabled")
	}
	if err := s.documents.Put(ctx, key, doc.Body, doc.Size, doc.ContentType); err != nil {
		return appErrors.Upstream(err, "failed to store result document")
	}
	return nil
}

func (s *SessionService) discardDocument(ctx context.Context, key string) {
	if s.documents == nil {
		return
	}
	if err := s.documents.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to discard result document", zap.String("key", key), zap.Error(err))
	}
}

func statusSnapshot(session *models.Session) map[string]interface{} {
	snap := map[string]interface{}{
		"activeStatus":   session.ActiveStatus,
		"progressStatus": session.ProgressStatus,
	}
	if session.PassStatus != nil {
		snap["passStatus"] = *session.PassStatus
	}
	if session.ReceiptNumber != nil {
		snap["receiptNumber"] = *session.ReceiptNumber
	}
	return snap
}

func mergeSnapshot(dst, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		dst[k] = v
	}
	return dst
}
