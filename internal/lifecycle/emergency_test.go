package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/blood-donation-api/internal/models"
	appErrors "github.com/noah-isme/blood-donation-api/pkg/errors"
)

func TestEmergencyValidateThenRespond(t *testing.T) {
	req := models.EmergencyRequest{
		ID:           "er-1",
		AcceptStatus: models.AcceptPending,
		ActiveStatus: models.EmergencyPending,
	}
	hospitalAdmin := models.Actor{ID: "admin-1", Role: models.RoleHospitalAdmin, HospitalID: "hosp-1"}
	manager := models.Actor{ID: "mgr-1", Role: models.RoleManager}

	_, err := RespondEmergency(req, hospitalAdmin, true)
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)

	_, err = ValidateEmergency(req, hospitalAdmin)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	validated, err := ValidateEmergency(req, manager)
	require.NoError(t, err)
	assert.Equal(t, models.EmergencyActive, validated.ActiveStatus)
	require.NotNil(t, validated.ValidatedBy)
	assert.Equal(t, "mgr-1", *validated.ValidatedBy)

	_, err = ValidateEmergency(validated, manager)
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)

	accepted, err := RespondEmergency(validated, hospitalAdmin, true)
	require.NoError(t, err)
	assert.Equal(t, models.AcceptAccepted, accepted.AcceptStatus)
	require.NotNil(t, accepted.RespondingHospitalID)
	assert.Equal(t, "hosp-1", *accepted.RespondingHospitalID)

	_, err = RespondEmergency(accepted, hospitalAdmin, false)
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)
}

func TestEmergencyDeclineIsTerminal(t *testing.T) {
	req := models.EmergencyRequest{AcceptStatus: models.AcceptPending, ActiveStatus: models.EmergencyActive}
	hospitalAdmin := models.Actor{ID: "admin-1", Role: models.RoleHospitalAdmin, HospitalID: "hosp-1"}

	declined, err := RespondEmergency(req, hospitalAdmin, false)
	require.NoError(t, err)
	assert.Equal(t, models.AcceptDeclined, declined.AcceptStatus)

	_, err = RespondEmergency(declined, hospitalAdmin, true)
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)

	_, err = RespondEmergency(req, models.Actor{Role: models.RoleDonor}, true)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestTransitionInquiry(t *testing.T) {
	inq := models.Inquiry{ID: "inq-1", Status: models.InquiryPending}

	_, err := TransitionInquiry(inq, models.InquiryResolved, "")
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)

	inq, err = TransitionInquiry(inq, models.InquiryInProgress, "")
	require.NoError(t, err)
	assert.Nil(t, inq.Response)

	inq, err = TransitionInquiry(inq, models.InquiryResolved, "Your slot is confirmed.")
	require.NoError(t, err)
	assert.Equal(t, models.InquiryResolved, inq.Status)
	require.NotNil(t, inq.Response)

	_, err = TransitionInquiry(inq, models.InquiryClosed, "")
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)
}
