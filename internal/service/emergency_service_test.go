package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/blood-donation-api/internal/dto"
	"github.com/noah-isme/blood-donation-api/internal/models"
	appErrors "github.com/noah-isme/blood-donation-api/pkg/errors"
)

type stubEmergencyRepo struct {
	items   map[string]*models.EmergencyRequest
	filters []models.EmergencyFilter
	race    bool
}

func (r *stubEmergencyRepo) FindByID(ctx context.Context, id string) (*models.EmergencyRequest, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *item
	return &clone, nil
}

func (r *stubEmergencyRepo) List(ctx context.Context, filter models.EmergencyFilter) ([]models.EmergencyRequest, int, error) {
	r.filters = append(r.filters, filter)
	var out []models.EmergencyRequest
	for _, item := range r.items {
		if filter.RequesterID != "" && item.RequesterID != filter.RequesterID {
			continue
		}
		out = append(out, *item)
	}
	return out, len(out), nil
}

func (r *stubEmergencyRepo) Create(ctx context.Context, req *models.EmergencyRequest) error {
	clone := *req
	r.items[req.ID] = &clone
	return nil
}

func (r *stubEmergencyRepo) UpdateStatus(ctx context.Context, prev, next *models.EmergencyRequest) error {
	stored, ok := r.items[prev.ID]
	if !ok || r.race || stored.AcceptStatus != prev.AcceptStatus || stored.ActiveStatus != prev.ActiveStatus {
		return sql.ErrNoRows
	}
	clone := *next
	r.items[next.ID] = &clone
	return nil
}

func (r *stubEmergencyRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

func validEmergency() dto.CreateEmergencyRequest {
	return dto.CreateEmergencyRequest{
		PatientName:   "Ana Lima",
		ContactName:   "Rui Lima",
		ContactPhone:  "+351900000000",
		HospitalName:  "Central",
		Location:      "Lisbon",
		BloodType:     models.BloodTypeONeg,
		UnitsRequired: 3,
		CriticalLevel: models.CriticalHigh,
	}
}

func newEmergencyFixture() (*EmergencyService, *stubEmergencyRepo, *MetricsService, *auditRecorder) {
	repo := &stubEmergencyRepo{items: map[string]*models.EmergencyRequest{}}
	metrics := NewMetricsService()
	audit := &auditRecorder{}
	return NewEmergencyService(repo, audit, metrics, nil, nil), repo, metrics, audit
}

func TestEmergencyServiceValidateThenAccept(t *testing.T) {
	svc, _, metrics, audit := newEmergencyFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, donorActor, validEmergency())
	require.NoError(t, err)
	assert.Equal(t, models.AcceptPending, created.AcceptStatus)
	assert.Equal(t, models.EmergencyPending, created.ActiveStatus)
	assert.Equal(t, models.RoleDonor, created.RequesterRole)

	_, err = svc.Accept(ctx, adminActor, created.ID)
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)

	_, err = svc.Validate(ctx, adminActor, created.ID)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	validated, err := svc.Validate(ctx, managerActor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EmergencyActive, validated.ActiveStatus)
	require.NotNil(t, validated.ValidatedBy)
	assert.Equal(t, managerActor.ID, *validated.ValidatedBy)

	accepted, err := svc.Accept(ctx, adminActor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AcceptAccepted, accepted.AcceptStatus)
	require.NotNil(t, accepted.RespondingHospitalID)
	assert.Equal(t, "h-1", *accepted.RespondingHospitalID)

	_, err = svc.Decline(ctx, otherAdminActor, created.ID)
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.transitions.WithLabelValues("emergency", "accept", TransitionApplied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.transitions.WithLabelValues("emergency", "accept", TransitionRejected)))
	assert.Len(t, audit.logs, 3)
}

func TestEmergencyServiceDonorSeesOwnRequests(t *testing.T) {
	svc, repo, _, _ := newEmergencyFixture()
	ctx := context.Background()

	mine, err := svc.Create(ctx, donorActor, validEmergency())
	require.NoError(t, err)
	theirs, err := svc.Create(ctx, otherDonorActor, validEmergency())
	require.NoError(t, err)

	items, page, err := svc.List(ctx, donorActor, models.EmergencyFilter{RequesterID: otherDonorActor.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, mine.ID, items[0].ID)
	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, donorActor.ID, repo.filters[0].RequesterID)

	_, err = svc.Get(ctx, donorActor, theirs.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	items, _, err = svc.List(ctx, adminActor, models.EmergencyFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestEmergencyServiceConflictAndDelete(t *testing.T) {
	svc, repo, metrics, _ := newEmergencyFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, adminActor, validEmergency())
	require.NoError(t, err)

	repo.race = true
	_, err = svc.Validate(ctx, managerActor, created.ID)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.transitions.WithLabelValues("emergency", "validate", TransitionConflict)))
	repo.race = false

	assert.ErrorIs(t, svc.Delete(ctx, adminActor, created.ID), appErrors.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, managerActor, created.ID))
	_, err = svc.Get(ctx, managerActor, created.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestEmergencyServiceRejectsInvalidPayload(t *testing.T) {
	svc, _, _, _ := newEmergencyFixture()
	req := validEmergency()
	req.UnitsRequired = 0
	req.CriticalLevel = "Extreme"
	_, err := svc.Create(context.Background(), donorActor, req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
