package service

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/blood-donation-api/internal/dto"
	"github.com/noah-isme/blood-donation-api/internal/lifecycle"
	"github.com/noah-isme/blood-donation-api/internal/models"
	appErrors "github.com/noah-isme/blood-donation-api/pkg/errors"
)

type stubSessionRepo struct {
	kind     models.SessionKind
	sessions map[string]*models.Session
	filters  []models.SessionFilter
	race     bool
	deleted  []string
}

func newStubSessionRepo(kind models.SessionKind) *stubSessionRepo {
	return &stubSessionRepo{kind: kind, sessions: map[string]*models.Session{}}
}

func (r *stubSessionRepo) Kind() models.SessionKind { return r.kind }

func (r *stubSessionRepo) FindByID(ctx context.Context, id string) (*models.Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *s
	return &clone, nil
}

func (r *stubSessionRepo) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error) {
	r.filters = append(r.filters, filter)
	var out []models.Session
	for _, s := range r.sessions {
		if filter.DonorID != "" && s.DonorID != filter.DonorID {
			continue
		}
		if filter.HospitalID != "" && s.HospitalID != filter.HospitalID {
			continue
		}
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (r *stubSessionRepo) Create(ctx context.Context, session *models.Session) error {
	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

func (r *stubSessionRepo) UpdateState(ctx context.Context, prev, next *models.Session) error {
	stored, ok := r.sessions[prev.ID]
	if !ok || r.race || stored.ActiveStatus != prev.ActiveStatus || stored.ProgressStatus != prev.ProgressStatus {
		return sql.ErrNoRows
	}
	clone := *next
	r.sessions[next.ID] = &clone
	return nil
}

func (r *stubSessionRepo) Delete(ctx context.Context, current *models.Session) error {
	if _, ok := r.sessions[current.ID]; !ok {
		return sql.ErrNoRows
	}
	delete(r.sessions, current.ID)
	r.deleted = append(r.deleted, current.ID)
	return nil
}

type stubHospitals map[string]*models.Hospital

func (h stubHospitals) FindByID(ctx context.Context, id string) (*models.Hospital, error) {
	if hospital, ok := h[id]; ok {
		return hospital, nil
	}
	return nil, sql.ErrNoRows
}

type documentStoreStub struct {
	objects map[string][]byte
	deleted []string
}

func (d *documentStoreStub) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	d.objects[key] = body
	return nil
}

func (d *documentStoreStub) URL(ctx context.Context, key string) (string, time.Time, error) {
	return "https://docs.example/" + key, time.Now().Add(time.Hour), nil
}

func (d *documentStoreStub) Delete(ctx context.Context, key string) error {
	delete(d.objects, key)
	d.deleted = append(d.deleted, key)
	return nil
}

type auditRecorder struct {
	logs []*models.AuditLog
}

func (a *auditRecorder) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

var (
	donorActor      = models.Actor{ID: "donor-1", Role: models.RoleDonor}
	otherDonorActor = models.Actor{ID: "donor-2", Role: models.RoleDonor}
	adminActor      = models.Actor{ID: "admin-1", Role: models.RoleHospitalAdmin, HospitalID: "h-1"}
	otherAdminActor = models.Actor{ID: "admin-9", Role: models.RoleHospitalAdmin, HospitalID: "h-9"}
	managerActor    = models.Actor{ID: "mgr-1", Role: models.RoleManager}
)

func tomorrow() string {
	return time.Now().UTC().Add(48 * time.Hour).Format("2006-01-02")
}

type sessionFixture struct {
	repo    *stubSessionRepo
	docs    *documentStoreStub
	audit   *auditRecorder
	metrics *MetricsService
	svc     *SessionService
}

func newSessionFixture(kind models.SessionKind) *sessionFixture {
	f := &sessionFixture{
		repo:    newStubSessionRepo(kind),
		docs:    &documentStoreStub{objects: map[string][]byte{}},
		audit:   &auditRecorder{},
		metrics: NewMetricsService(),
	}
	f.svc = NewSessionService(SessionServiceDeps{
		Repo:           f.repo,
		Hospitals:      stubHospitals{"h-1": {ID: "h-1", Active: true}, "h-off": {ID: "h-off", Active: false}},
		Documents:      f.docs,
		DocumentPolicy: DocumentPolicy{MaxSizeBytes: 1024, AllowedMIMEs: []string{"application/pdf"}},
		Audit:          f.audit,
		Metrics:        f.metrics,
	})
	return f
}

func (f *sessionFixture) book(t *testing.T) string {
	t.Helper()
	view, err := f.svc.Create(context.Background(), donorActor, dto.CreateSessionRequest{HospitalID: "h-1", AppointmentDate: tomorrow(), AppointmentTime: "09:30"})
	require.NoError(t, err)
	return view.ID
}

func TestSessionServiceAppointmentScenario(t *testing.T) {
	f := newSessionFixture(models.SessionAppointment)
	ctx := context.Background()
	id := f.book(t)

	stored := f.repo.sessions[id]
	assert.Equal(t, models.ActivePending, stored.ActiveStatus)
	assert.Equal(t, models.ProgressNotStarted, stored.ProgressStatus)
	assert.Nil(t, stored.PassStatus)

	view, err := f.svc.Accept(ctx, adminActor, id)
	require.NoError(t, err)
	assert.Equal(t, models.ActiveAccepted, view.ActiveStatus)
	assert.Equal(t, []lifecycle.Action{lifecycle.ActionArrive}, view.AllowedActions)

	view, err = f.svc.Arrive(ctx, adminActor, id, dto.ArriveRequest{ReceiptNumber: "R-001"})
	require.NoError(t, err)
	require.NotNil(t, view.ReceiptNumber)
	assert.Equal(t, "R-001", *view.ReceiptNumber)

	view, err = f.svc.Complete(ctx, adminActor, id, dto.CompleteRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ProgressCompleted, view.ProgressStatus)

	require.NoError(t, f.svc.Delete(ctx, adminActor, id))
	assert.Equal(t, []string{id}, f.repo.deleted)

	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.transitions.WithLabelValues("appointment", "accept", TransitionApplied))+
		testutil.ToFloat64(f.metrics.transitions.WithLabelValues("appointment", "arrive", TransitionApplied))+
		testutil.ToFloat64(f.metrics.transitions.WithLabelValues("appointment", "complete", TransitionApplied)))
	require.Len(t, f.audit.logs, 5)
	assert.Equal(t, models.AuditActionSessionDelete, f.audit.logs[4].Action)
}

func TestSessionServiceDonorCannotTouchOtherDonorsSession(t *testing.T) {
	f := newSessionFixture(models.SessionAppointment)
	ctx := context.Background()
	id := f.book(t)
	_, err := f.svc.Reschedule(ctx, adminActor, id, dto.RescheduleRequest{AppointmentDate: tomorrow(), AppointmentTime: "11:00"})
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, otherDonorActor, id)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Equal(t, models.ActiveRescheduled, f.repo.sessions[id].ActiveStatus)

	_, err = f.svc.Get(ctx, otherDonorActor, id)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	view, err := f.svc.Accept(ctx, donorActor, id)
	require.NoError(t, err)
	assert.Equal(t, models.ActiveAccepted, view.ActiveStatus)
}

func TestSessionServiceForeignHospitalAdmin(t *testing.T) {
	f := newSessionFixture(models.SessionAppointment)
	id := f.book(t)

	_, err := f.svc.Accept(context.Background(), otherAdminActor, id)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = f.svc.Get(context.Background(), otherAdminActor, id)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSessionServiceManagerHasNoLifecycle(t *testing.T) {
	f := newSessionFixture(models.SessionAppointment)
	id := f.book(t)

	view, err := f.svc.Get(context.Background(), managerActor, id)
	require.NoError(t, err)
	assert.Empty(t, view.AllowedActions)

	_, err = f.svc.Cancel(context.Background(), managerActor, id)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestSessionServiceViewListsActionsOnlyForLifecycleActors(t *testing.T) {
	f := newSessionFixture(models.SessionAppointment)
	ctx := context.Background()
	id := f.book(t)

	view, err := f.svc.Get(ctx, adminActor, id)
	require.NoError(t, err)
	assert.Equal(t, []lifecycle.Action{lifecycle.ActionAccept, lifecycle.ActionReschedule, lifecycle.ActionCancel}, view.AllowedActions)

	view, err = f.svc.Get(ctx, hospitalActor, id)
	require.NoError(t, err)
	assert.NotNil(t, view.AllowedActions)
	assert.Empty(t, view.AllowedActions)
}

func TestSessionServiceInvalidTransitionLeavesState(t *testing.T) {
	f := newSessionFixture(models.SessionAppointment)
	id := f.book(t)

	_, err := f.svc.Arrive(context.Background(), adminActor, id, dto.ArriveRequest{ReceiptNumber: "R-1"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)
	assert.Equal(t, models.ProgressNotStarted, f.repo.sessions[id].ProgressStatus)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.transitions.WithLabelValues("appointment", "arrive", TransitionRejected)))
}

func TestSessionServiceConcurrentModificationIsConflict(t *testing.T) {
	f := newSessionFixture(models.SessionAppointment)
	id := f.book(t)
	f.repo.race = true

	_, err := f.svc.Accept(context.Background(), adminActor, id)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.transitions.WithLabelValues("appointment", "accept", TransitionConflict)))
}

func TestSessionServiceDeleteRequiresTerminalState(t *testing.T) {
	f := newSessionFixture(models.SessionAppointment)
	id := f.book(t)

	err := f.svc.Delete(context.Background(), donorActor, id)
	assert.ErrorIs(t, err, appErrors.ErrDeletionNotAllowed)

	_, err = f.svc.Cancel(context.Background(), adminActor, id)
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(context.Background(), donorActor, id))
}

func TestSessionServiceCreateValidation(t *testing.T) {
	f := newSessionFixture(models.SessionAppointment)
	ctx := context.Background()

	past := time.Now().UTC().Add(-72 * time.Hour).Format("2006-01-02")
	_, err := f.svc.Create(ctx, donorActor, dto.CreateSessionRequest{HospitalID: "h-1", AppointmentDate: past, AppointmentTime: "09:00"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.svc.Create(ctx, donorActor, dto.CreateSessionRequest{HospitalID: "h-off", AppointmentDate: tomorrow(), AppointmentTime: "09:00"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.svc.Create(ctx, donorActor, dto.CreateSessionRequest{HospitalID: "missing", AppointmentDate: tomorrow(), AppointmentTime: "09:00"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.svc.Create(ctx, adminActor, dto.CreateSessionRequest{HospitalID: "h-1", AppointmentDate: tomorrow(), AppointmentTime: "09:00"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestSessionServiceListIsScoped(t *testing.T) {
	f := newSessionFixture(models.SessionAppointment)
	f.book(t)

	views, page, err := f.svc.List(context.Background(), otherDonorActor, models.SessionFilter{DonorID: "donor-1"})
	require.NoError(t, err)
	assert.Empty(t, views)
	assert.Equal(t, 0, page.TotalCount)
	assert.Equal(t, "donor-2", f.repo.filters[0].DonorID)

	views, _, err = f.svc.List(context.Background(), adminActor, models.SessionFilter{HospitalID: "h-9"})
	require.NoError(t, err)
	assert.Len(t, views, 1)
	assert.Equal(t, "h-1", f.repo.filters[1].HospitalID)
}

func TestSessionServiceEvaluationCompletionWithDocument(t *testing.T) {
	f := newSessionFixture(models.SessionEvaluation)
	ctx := context.Background()
	id := f.book(t)
	require.NotNil(t, f.repo.sessions[id].PassStatus)
	assert.Equal(t, models.PassPending, *f.repo.sessions[id].PassStatus)

	_, err := f.svc.Accept(ctx, adminActor, id)
	require.NoError(t, err)
	_, err = f.svc.Arrive(ctx, adminActor, id, dto.ArriveRequest{ReceiptNumber: "E-7"})
	require.NoError(t, err)

	_, err = f.svc.Complete(ctx, adminActor, id, dto.CompleteRequest{}, nil)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	doc := &DocumentUpload{ResultDocument: models.ResultDocument{Filename: "result.PDF", ContentType: "application/pdf", Size: 4}, Body: bytes.NewReader([]byte("%PDF"))}
	view, err := f.svc.Complete(ctx, adminActor, id, dto.CompleteRequest{PassStatus: models.PassPassed}, doc)
	require.NoError(t, err)
	require.NotNil(t, view.PassStatus)
	assert.Equal(t, models.PassPassed, *view.PassStatus)
	require.NotNil(t, view.ResultFile)
	assert.Contains(t, *view.ResultFile, "evaluations/"+id+"/")
	assert.Equal(t, []byte("%PDF"), f.docs.objects[*view.ResultFile])
	assert.Equal(t, "https://docs.example/"+*view.ResultFile, view.ResultURL)
}

func TestSessionServiceRejectsBadDocuments(t *testing.T) {
	f := newSessionFixture(models.SessionEvaluation)
	id := f.book(t)

	big := &DocumentUpload{ResultDocument: models.ResultDocument{Filename: "a.pdf", ContentType: "application/pdf", Size: 4096}, Body: bytes.NewReader(make([]byte, 4096))}
	_, err := f.svc.Complete(context.Background(), adminActor, id, dto.CompleteRequest{PassStatus: models.PassPassed}, big)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	exe := &DocumentUpload{ResultDocument: models.ResultDocument{Filename: "a.exe", ContentType: "application/octet-stream", Size: 3}, Body: bytes.NewReader([]byte("abc"))}
	_, err = f.svc.Complete(context.Background(), adminActor, id, dto.CompleteRequest{PassStatus: models.PassPassed}, exe)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSessionServiceConflictDiscardsUploadedDocument(t *testing.T) {
	f := newSessionFixture(models.SessionEvaluation)
	ctx := context.Background()
	id := f.book(t)
	_, err := f.svc.Accept(ctx, adminActor, id)
	require.NoError(t, err)
	_, err = f.svc.Arrive(ctx, adminActor, id, dto.ArriveRequest{ReceiptNumber: "E-8"})
	require.NoError(t, err)

	f.repo.race = true
	doc := &DocumentUpload{ResultDocument: models.ResultDocument{Filename: "r.pdf", ContentType: "application/pdf", Size: 3}, Body: bytes.NewReader([]byte("pdf"))}
	_, err = f.svc.Complete(ctx, adminActor, id, dto.CompleteRequest{PassStatus: models.PassFailed}, doc)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Empty(t, f.docs.objects)
	assert.Len(t, f.docs.deleted, 1)
}
