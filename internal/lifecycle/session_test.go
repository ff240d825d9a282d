package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/blood-donation-api/internal/models"
	appErrors "github.com/noah-isme/blood-donation-api/pkg/errors"
)

func newAppointment() models.Session {
	return models.Session{
		ID:              "apt-1",
		Kind:            models.SessionAppointment,
		DonorID:         "donor-1",
		HospitalID:      "hosp-1",
		AppointmentDate: time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC),
		AppointmentTime: "09:30",
		ActiveStatus:    models.ActivePending,
		ProgressStatus:  models.ProgressNotStarted,
	}
}

func newEvaluation() models.Session {
	s := newAppointment()
	s.ID = "ev-1"
	s.Kind = models.SessionEvaluation
	pending := models.PassPending
	s.PassStatus = &pending
	return s
}

func admin(a Action) Input {
	return Input{Action: a, Actor: models.RoleHospitalAdmin, ActorID: "admin-1"}
}

func TestApplyFullAppointmentScenario(t *testing.T) {
	s := newAppointment()

	s, err := Apply(s, admin(ActionAccept))
	require.NoError(t, err)
	assert.Equal(t, models.ActiveAccepted, s.ActiveStatus)
	assert.Equal(t, models.ProgressNotStarted, s.ProgressStatus)
	require.NotNil(t, s.HospitalAdminID)
	assert.Equal(t, "admin-1", *s.HospitalAdminID)

	in := admin(ActionArrive)
	in.ReceiptNumber = "R-001"
	s, err = Apply(s, in)
	require.NoError(t, err)
	assert.Equal(t, models.ProgressInProgress, s.ProgressStatus)
	require.NotNil(t, s.ReceiptNumber)
	assert.Equal(t, "R-001", *s.ReceiptNumber)

	s, err = Apply(s, admin(ActionComplete))
	require.NoError(t, err)
	assert.Equal(t, models.ProgressCompleted, s.ProgressStatus)
	assert.True(t, s.Terminal())

	require.NoError(t, CanDelete(s))
}

func TestApplyOnlyTableTransitionsSucceed(t *testing.T) {
	date := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	inputs := map[Action]Input{
		ActionAccept:        admin(ActionAccept),
		ActionReschedule:    {Action: ActionReschedule, Actor: models.RoleHospitalAdmin, Date: &date, Time: "10:00"},
		ActionAcceptByDonor: {Action: ActionAcceptByDonor, Actor: models.RoleDonor},
		ActionCancelByDonor: {Action: ActionCancelByDonor, Actor: models.RoleDonor},
		ActionCancel:        admin(ActionCancel),
		ActionArrive:        {Action: ActionArrive, Actor: models.RoleHospitalAdmin, ReceiptNumber: "R-9"},
		ActionComplete:      admin(ActionComplete),
	}
	type state struct {
		active   models.ActiveStatus
		progress models.ProgressStatus
	}
	legal := map[state]map[Action]bool{
		{models.ActivePending, models.ProgressNotStarted}:     {ActionAccept: true, ActionReschedule: true, ActionCancel: true},
		{models.ActiveRescheduled, models.ProgressNotStarted}: {ActionAcceptByDonor: true, ActionCancelByDonor: true, ActionCancel: true},
		{models.ActiveAccepted, models.ProgressNotStarted}:    {ActionArrive: true},
		{models.ActiveAccepted, models.ProgressInProgress}:    {ActionComplete: true},
		{models.ActiveAccepted, models.ProgressCompleted}:     {},
		{models.ActiveCancelled, models.ProgressCancelled}:    {},
	}

	for st, allowed := range legal {
		for action, in := range inputs {
			current := newAppointment()
			current.ActiveStatus = st.active
			current.ProgressStatus = st.progress

			next, err := Apply(current, in)
			if allowed[action] {
				assert.NoError(t, err, "%s from %s/%s", action, st.active, st.progress)
				continue
			}
			require.Error(t, err, "%s from %s/%s", action, st.active, st.progress)
			assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)
			assert.Equal(t, current, next)
		}
	}
}

func TestApplyWrongActorIsForbidden(t *testing.T) {
	s := newAppointment()
	_, err := Apply(s, Input{Action: ActionAccept, Actor: models.RoleDonor})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	s.ActiveStatus = models.ActiveRescheduled
	_, err = Apply(s, admin(ActionAcceptByDonor))
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = Apply(s, Input{Action: ActionCancel, Actor: models.RoleManager})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestApplyRequiresArguments(t *testing.T) {
	s := newAppointment()
	_, err := Apply(s, admin(ActionReschedule))
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	s.ActiveStatus = models.ActiveAccepted
	_, err = Apply(s, admin(ActionArrive))
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = Apply(s, Input{Action: "teleport", Actor: models.RoleHospitalAdmin})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestApplyRescheduleUpdatesSlot(t *testing.T) {
	date := time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC)
	in := admin(ActionReschedule)
	in.Date = &date
	in.Time = " 14:00 "

	next, err := Apply(newAppointment(), in)
	require.NoError(t, err)
	assert.Equal(t, models.ActiveRescheduled, next.ActiveStatus)
	assert.Equal(t, date, next.AppointmentDate)
	assert.Equal(t, "14:00", next.AppointmentTime)

	next, err = Apply(next, Input{Action: ActionAcceptByDonor, Actor: models.RoleDonor})
	require.NoError(t, err)
	assert.Equal(t, models.ActiveAccepted, next.ActiveStatus)
}

func TestApplyEvaluationPassStatus(t *testing.T) {
	ev := newEvaluation()
	ev.ActiveStatus = models.ActiveAccepted
	ev.ProgressStatus = models.ProgressInProgress

	_, err := Apply(ev, admin(ActionComplete))
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	in := admin(ActionComplete)
	in.PassStatus = models.PassPassed
	in.ResultFile = "evaluations/ev-1/result.pdf"
	next, err := Apply(ev, in)
	require.NoError(t, err)
	require.NotNil(t, next.PassStatus)
	assert.Equal(t, models.PassPassed, *next.PassStatus)
	require.NotNil(t, next.ResultFile)
	assert.Equal(t, models.PassPending, *ev.PassStatus, "input must not be mutated")
}

func TestApplyCancelEvaluationSetsTerminalStatuses(t *testing.T) {
	next, err := Apply(newEvaluation(), admin(ActionCancel))
	require.NoError(t, err)
	assert.Equal(t, models.ActiveCancelled, next.ActiveStatus)
	assert.Equal(t, models.ProgressCancelled, next.ProgressStatus)
	require.NotNil(t, next.PassStatus)
	assert.Equal(t, models.PassCancelled, *next.PassStatus)
	assert.NoError(t, CanDelete(next))
}

func TestCanDelete(t *testing.T) {
	cases := []struct {
		name     string
		active   models.ActiveStatus
		progress models.ProgressStatus
		ok       bool
	}{
		{"pending", models.ActivePending, models.ProgressNotStarted, false},
		{"rescheduled", models.ActiveRescheduled, models.ProgressNotStarted, false},
		{"accepted", models.ActiveAccepted, models.ProgressNotStarted, false},
		{"in progress", models.ActiveAccepted, models.ProgressInProgress, false},
		{"completed", models.ActiveAccepted, models.ProgressCompleted, true},
		{"cancelled", models.ActiveCancelled, models.ProgressCancelled, true},
		{"cancelled legacy progress", models.ActiveCancelled, models.ProgressNotStarted, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newAppointment()
			s.ActiveStatus = tc.active
			s.ProgressStatus = tc.progress
			err := CanDelete(s)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, appErrors.ErrDeletionNotAllowed)
		})
	}
}

func TestAllowed(t *testing.T) {
	s := newAppointment()
	assert.Equal(t, []Action{ActionAccept, ActionReschedule, ActionCancel}, Allowed(s, models.RoleHospitalAdmin))
	assert.Empty(t, Allowed(s, models.RoleDonor))

	s.ActiveStatus = models.ActiveRescheduled
	assert.Equal(t, []Action{ActionAcceptByDonor, ActionCancelByDonor}, Allowed(s, models.RoleDonor))
}
