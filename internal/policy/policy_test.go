package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/blood-donation-api/internal/models"
	appErrors "github.com/noah-isme/blood-donation-api/pkg/errors"
)

var (
	donor         = models.Actor{ID: "donor-1", Role: models.RoleDonor}
	otherDonor    = models.Actor{ID: "donor-2", Role: models.RoleDonor}
	hospitalAdmin = models.Actor{ID: "admin-1", Role: models.RoleHospitalAdmin, HospitalID: "hosp-1"}
	otherAdmin    = models.Actor{ID: "admin-2", Role: models.RoleHospitalAdmin, HospitalID: "hosp-2"}
	hospital      = models.Actor{ID: "hosp-1", Role: models.RoleHospital, HospitalID: "hosp-1"}
	manager       = models.Actor{ID: "mgr-1", Role: models.RoleManager}
)

func appointment() Resource {
	return Resource{Kind: KindAppointment, ID: "apt-1", DonorID: "donor-1", HospitalID: "hosp-1"}
}

func TestDonorCannotMutateAnotherDonorsAppointment(t *testing.T) {
	require.NoError(t, Authorize(donor, appointment(), OpLifecycle))

	err := Authorize(otherDonor, appointment(), OpLifecycle)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	err = Authorize(otherDonor, appointment(), OpDelete)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestReadMismatchHidesExistence(t *testing.T) {
	err := Authorize(otherDonor, appointment(), OpRead)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	err = Authorize(otherAdmin, appointment(), OpRead)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	assert.NoError(t, Authorize(hospital, appointment(), OpRead))
	assert.NoError(t, Authorize(manager, appointment(), OpRead))
}

func TestHospitalAdminScopedToHospital(t *testing.T) {
	assert.NoError(t, Authorize(hospitalAdmin, appointment(), OpLifecycle))
	assert.ErrorIs(t, Authorize(otherAdmin, appointment(), OpLifecycle), appErrors.ErrForbidden)

	item := Resource{Kind: KindInventory, HospitalID: "hosp-1"}
	assert.NoError(t, Authorize(hospitalAdmin, item, OpUpdate))
	assert.ErrorIs(t, Authorize(otherAdmin, item, OpUpdate), appErrors.ErrForbidden)
	assert.ErrorIs(t, Authorize(hospital, item, OpUpdate), appErrors.ErrForbidden)
}

func TestManagerHasNoLifecycleActions(t *testing.T) {
	assert.ErrorIs(t, Authorize(manager, appointment(), OpLifecycle), appErrors.ErrForbidden)
	assert.ErrorIs(t, Authorize(manager, Resource{Kind: KindEvaluation}, OpLifecycle), appErrors.ErrForbidden)

	assert.NoError(t, Authorize(manager, Resource{Kind: KindFeedback}, OpDelete))
	assert.NoError(t, Authorize(manager, Resource{Kind: KindInquiry}, OpDelete))
	assert.NoError(t, Authorize(manager, Resource{Kind: KindHospital, ID: "hosp-9"}, OpToggle))
	assert.NoError(t, Authorize(manager, Resource{Kind: KindManager, ID: "mgr-9"}, OpToggle))
	assert.NoError(t, Authorize(manager, Resource{Kind: KindEmergency}, OpValidate))
}

func TestAccountSelfScope(t *testing.T) {
	assert.NoError(t, Authorize(donor, Resource{Kind: KindDonor, ID: "donor-1"}, OpUpdate))
	assert.ErrorIs(t, Authorize(donor, Resource{Kind: KindDonor, ID: "donor-2"}, OpUpdate), appErrors.ErrForbidden)
	assert.ErrorIs(t, Authorize(donor, Resource{Kind: KindDonor, ID: "donor-2"}, OpRead), appErrors.ErrNotFound)
	assert.ErrorIs(t, Authorize(manager, Resource{Kind: KindManager, ID: "mgr-2"}, OpUpdate), appErrors.ErrForbidden)
}

func TestListScope(t *testing.T) {
	c, err := ListScope(donor, KindAppointment)
	require.NoError(t, err)
	assert.Equal(t, ListConstraint{DonorID: "donor-1"}, c)

	c, err = ListScope(hospitalAdmin, KindInquiry)
	require.NoError(t, err)
	assert.Equal(t, ListConstraint{HospitalID: "hosp-1"}, c)

	c, err = ListScope(manager, KindFeedback)
	require.NoError(t, err)
	assert.Equal(t, ListConstraint{}, c)

	_, err = ListScope(donor, KindManager)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}
