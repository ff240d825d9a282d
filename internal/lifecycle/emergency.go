package lifecycle

import (
	"github.com/noah-isme/blood-donation-api/internal/models"
	appErrors "github.com/noah-isme/blood-donation-api/pkg/errors"
)

// ValidateEmergency marks a pending request Active. Only managers validate.
func ValidateEmergency(current models.EmergencyRequest, actor models.Actor) (models.EmergencyRequest, error) {
	if actor.Role != models.RoleManager {
		return current, appErrors.Clone(appErrors.ErrForbidden, "only managers validate emergency requests")
	}
	if current.ActiveStatus != models.EmergencyPending || current.AcceptStatus != models.AcceptPending {
		return current, appErrors.Clone(appErrors.ErrInvalidTransition, "emergency request is already validated")
	}
	next := current
	next.ActiveStatus = models.EmergencyActive
	id := actor.ID
	next.ValidatedBy = &id
	return next, nil
}

// RespondEmergency accepts or declines an active request on behalf of the actor's hospital.
// Accepted and Declined are terminal.
func RespondEmergency(current models.EmergencyRequest, actor models.Actor, accept bool) (models.EmergencyRequest, error) {
	if actor.Role != models.RoleHospitalAdmin {
		return current, appErrors.Clone(appErrors.ErrForbidden, "only hospital admins respond to emergency requests")
	}
	if current.AcceptStatus != models.AcceptPending {
		return current, appErrors.Clone(appErrors.ErrInvalidTransition, "emergency request already "+string(current.AcceptStatus))
	}
	if current.ActiveStatus != models.EmergencyActive {
		return current, appErrors.Clone(appErrors.ErrInvalidTransition, "emergency request must be validated first")
	}
	next := current
	if accept {
		next.AcceptStatus = models.AcceptAccepted
	} else {
		next.AcceptStatus = models.AcceptDeclined
	}
	hospitalID := actor.HospitalID
	next.RespondingHospitalID = &hospitalID
	return next, nil
}
