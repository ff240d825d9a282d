package models

import "time"

// CriticalLevel grades the urgency of an emergency request.
type CriticalLevel string

const (
	CriticalLow    CriticalLevel = "Low"
	CriticalMedium CriticalLevel = "Medium"
	CriticalHigh   CriticalLevel = "High"
)

// AcceptStatus is the response axis of an emergency request. Accepted and Declined are terminal.
type AcceptStatus string

const (
	AcceptPending  AcceptStatus = "Pending"
	AcceptAccepted AcceptStatus = "Accepted"
	AcceptDeclined AcceptStatus = "Declined"
)

// EmergencyActiveStatus is the validation axis of an emergency request.
type EmergencyActiveStatus string

const (
	EmergencyPending EmergencyActiveStatus = "Pending"
	EmergencyActive  EmergencyActiveStatus = "Active"
)

// EmergencyRequest is an urgent call for blood units.
type EmergencyRequest struct {
	ID                   string                `db:"id" json:"id"`
	RequesterID          string                `db:"requester_id" json:"requesterId"`
	RequesterRole        Role                  `db:"requester_role" json:"requesterRole"`
	PatientName          string                `db:"patient_name" json:"patientName"`
	ContactName          string                `db:"contact_name" json:"contactName"`
	ContactPhone         string                `db:"contact_phone" json:"contactPhone"`
	HospitalName         string                `db:"hospital_name" json:"hospitalName"`
	Location             string                `db:"location" json:"location"`
	BloodType            BloodType             `db:"blood_type" json:"bloodType"`
	UnitsRequired        int                   `db:"units_required" json:"unitsRequired"`
	Reason               string                `db:"reason" json:"reason"`
	CriticalLevel        CriticalLevel         `db:"critical_level" json:"criticalLevel"`
	AcceptStatus         AcceptStatus          `db:"accept_status" json:"acceptStatus"`
	ActiveStatus         EmergencyActiveStatus `db:"active_status" json:"activeStatus"`
	RespondingHospitalID *string               `db:"responding_hospital_id" json:"respondingHospitalId,omitempty"`
	ValidatedBy          *string               `db:"validated_by" json:"validatedBy,omitempty"`
	CreatedAt            time.Time             `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time             `db:"updated_at" json:"updatedAt"`
}

// EmergencyFilter captures list criteria for emergency requests.
type EmergencyFilter struct {
	PageRequest
	RequesterID   string
	BloodType     BloodType
	AcceptStatus  AcceptStatus
	ActiveStatus  EmergencyActiveStatus
	CriticalLevel CriticalLevel
}
