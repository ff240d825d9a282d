package dto

import "github.com/noah-isme/blood-donation-api/internal/models"

// ReportRequest captures POST /reports/generate payload.
type ReportRequest struct {
	Type       models.ReportType   `json:"type" validate:"required,oneof=inventory appointments evaluations emergency"`
	Format     models.ReportFormat `json:"format" validate:"required,oneof=csv pdf xlsx"`
	HospitalID string              `json:"hospitalId"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	Success  bool                `json:"success"`
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress metadata.
type ReportStatusResponse struct {
	Success  bool                `json:"success"`
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
	FileURL  *string             `json:"fileUrl,omitempty"`
	Error    *string             `json:"error,omitempty"`
}
