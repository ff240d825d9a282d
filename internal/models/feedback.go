package models

import "time"

// FeedbackStatus tracks moderation of a feedback entry.
type FeedbackStatus string

const (
	FeedbackSubmitted FeedbackStatus = "Submitted"
	FeedbackReviewed  FeedbackStatus = "Reviewed"
)

// Feedback is a donor rating of a completed session.
type Feedback struct {
	ID          string         `db:"id" json:"id"`
	DonorID     string         `db:"donor_id" json:"donorId"`
	HospitalID  string         `db:"hospital_id" json:"hospitalId"`
	SessionID   string         `db:"session_id" json:"sessionId"`
	SessionType SessionKind    `db:"session_type" json:"sessionType"`
	Rating      int            `db:"rating" json:"rating"`
	Comment     string         `db:"comment" json:"comment"`
	Status      FeedbackStatus `db:"status" json:"status"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
}

// FeedbackFilter captures list criteria for feedback.
type FeedbackFilter struct {
	PageRequest
	DonorID    string
	HospitalID string
	Status     FeedbackStatus
}
