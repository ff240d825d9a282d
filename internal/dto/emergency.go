package dto

import "github.com/noah-isme/blood-donation-api/internal/models"

// CreateEmergencyRequest files an urgent request for blood.
type CreateEmergencyRequest struct {
	PatientName   string               `json:"patientName" validate:"required,max=150"`
	ContactName   string               `json:"contactName" validate:"required,max=150"`
	ContactPhone  string               `json:"contactPhone" validate:"required,max=30"`
	HospitalName  string               `json:"hospitalName" validate:"required,max=150"`
	Location      string               `json:"location" validate:"required,max=255"`
	BloodType     models.BloodType     `json:"bloodType" validate:"required,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	UnitsRequired int                  `json:"unitsRequired" validate:"required,gt=0,lte=100"`
	Reason        string               `json:"reason" validate:"omitempty,max=1000"`
	CriticalLevel models.CriticalLevel `json:"criticalLevel" validate:"required,oneof=Low Medium High"`
}
