package models

import "time"

// InquiryStatus tracks the handling of a donor inquiry.
type InquiryStatus string

const (
	InquiryPending    InquiryStatus = "Pending"
	InquiryInProgress InquiryStatus = "In Progress"
	InquiryResolved   InquiryStatus = "Resolved"
	InquiryClosed     InquiryStatus = "Closed"
)

// Inquiry is a donor question about one of their sessions.
type Inquiry struct {
	ID          string        `db:"id" json:"id"`
	DonorID     string        `db:"donor_id" json:"donorId"`
	HospitalID  string        `db:"hospital_id" json:"hospitalId"`
	SessionID   string        `db:"session_id" json:"sessionId"`
	SessionType SessionKind   `db:"session_type" json:"sessionType"`
	Subject     string        `db:"subject" json:"subject"`
	Message     string        `db:"message" json:"message"`
	Response    *string       `db:"response" json:"response,omitempty"`
	Status      InquiryStatus `db:"status" json:"status"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updatedAt"`
}

// InquiryFilter captures list criteria for inquiries.
type InquiryFilter struct {
	PageRequest
	DonorID    string
	HospitalID string
	Status     InquiryStatus
}
