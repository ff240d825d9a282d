package dto

import "github.com/noah-isme/blood-donation-api/internal/models"

// CreateFeedbackRequest rates a completed session.
type CreateFeedbackRequest struct {
	SessionID   string             `json:"sessionId" validate:"required"`
	SessionType models.SessionKind `json:"sessionType" validate:"required,oneof=appointment evaluation"`
	Rating      int                `json:"rating" validate:"required,min=1,max=5"`
	Comment     string             `json:"comment" validate:"omitempty,max=2000"`
}

// CreateInquiryRequest asks a hospital about a session.
type CreateInquiryRequest struct {
	SessionID   string             `json:"sessionId" validate:"required"`
	SessionType models.SessionKind `json:"sessionType" validate:"required,oneof=appointment evaluation"`
	Subject     string             `json:"subject" validate:"required,max=200"`
	Message     string             `json:"message" validate:"required,max=4000"`
}

// UpdateInquiryStatusRequest moves an inquiry along its workflow.
type UpdateInquiryStatusRequest struct {
	Status   models.InquiryStatus `json:"status" validate:"required"`
	Response string               `json:"response" validate:"omitempty,max=4000"`
}
