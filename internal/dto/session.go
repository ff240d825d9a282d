package dto

import (
	"github.com/noah-isme/blood-donation-api/internal/lifecycle"
	"github.com/noah-isme/blood-donation-api/internal/models"
)

// CreateSessionRequest is a donor booking for an appointment or evaluation.
type CreateSessionRequest struct {
	HospitalID      string `json:"hospitalId" validate:"required"`
	AppointmentDate string `json:"appointmentDate" validate:"required,datetime=2006-01-02"`
	AppointmentTime string `json:"appointmentTime" validate:"required,datetime=15:04"`
}

// RescheduleRequest proposes a new slot for a pending session.
type RescheduleRequest struct {
	AppointmentDate string `json:"appointmentDate" validate:"required,datetime=2006-01-02"`
	AppointmentTime string `json:"appointmentTime" validate:"required,datetime=15:04"`
}

// ArriveRequest records the donor's arrival.
type ArriveRequest struct {
	ReceiptNumber string `json:"receiptNumber" validate:"required,max=64"`
}

// CompleteRequest finishes a session. PassStatus is required for evaluations.
type CompleteRequest struct {
	PassStatus models.PassStatus `json:"passStatus" form:"passStatus"`
}

// SessionView decorates a session with the actions the caller may take next.
type SessionView struct {
	models.Session
	AllowedActions []lifecycle.Action `json:"allowedActions"`
}
