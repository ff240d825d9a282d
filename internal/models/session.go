package models

import "time"

// SessionKind tags a scheduled session as a donation appointment or a health evaluation.
type SessionKind string

const (
	SessionAppointment SessionKind = "appointment"
	SessionEvaluation  SessionKind = "evaluation"
)

// Valid reports whether k is a known kind.
func (k SessionKind) Valid() bool {
	return k == SessionAppointment || k == SessionEvaluation
}

// ActiveStatus is the approval axis of a session.
type ActiveStatus string

const (
	ActivePending     ActiveStatus = "Pending"
	ActiveAccepted    ActiveStatus = "Accepted"
	ActiveRescheduled ActiveStatus = "Re-Scheduled"
	ActiveCancelled   ActiveStatus = "Cancelled"
)

// ProgressStatus is the execution axis of a session.
type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "Not Started"
	ProgressInProgress ProgressStatus = "In Progress"
	ProgressCompleted  ProgressStatus = "Completed"
	ProgressCancelled  ProgressStatus = "Cancelled"
)

// PassStatus is the outcome axis of a health evaluation.
type PassStatus string

const (
	PassPending   PassStatus = "Pending"
	PassPassed    PassStatus = "Passed"
	PassFailed    PassStatus = "Failed"
	PassCancelled PassStatus = "Cancelled"
)

// Session is a donation appointment or a health evaluation. Both share the same lifecycle;
// PassStatus and ResultFile are only populated for evaluations.
type Session struct {
	ID              string         `db:"id" json:"id"`
	Kind            SessionKind    `db:"-" json:"type"`
	DonorID         string         `db:"donor_id" json:"donorId"`
	HospitalID      string         `db:"hospital_id" json:"hospitalId"`
	HospitalAdminID *string        `db:"hospital_admin_id" json:"hospitalAdminId,omitempty"`
	AppointmentDate time.Time      `db:"appointment_date" json:"appointmentDate"`
	AppointmentTime string         `db:"appointment_time" json:"appointmentTime"`
	ReceiptNumber   *string        `db:"receipt_number" json:"receiptNumber,omitempty"`
	ActiveStatus    ActiveStatus   `db:"active_status" json:"activeStatus"`
	ProgressStatus  ProgressStatus `db:"progress_status" json:"progressStatus"`
	PassStatus      *PassStatus    `db:"pass_status" json:"passStatus,omitempty"`
	ResultFile      *string        `db:"result_file" json:"-"`
	ResultURL       string         `db:"-" json:"resultUrl,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updatedAt"`
}

// Terminal reports whether no further lifecycle action can apply.
func (s Session) Terminal() bool {
	return s.ProgressStatus == ProgressCompleted || s.ActiveStatus == ActiveCancelled
}

// SessionFilter captures list criteria for appointments and evaluations.
type SessionFilter struct {
	PageRequest
	DonorID        string
	HospitalID     string
	ActiveStatus   ActiveStatus
	ProgressStatus ProgressStatus
	DateFrom       *time.Time
	DateTo         *time.Time
}

// ResultDocument is an uploaded evaluation result attached on completion.
type ResultDocument struct {
	Filename    string
	ContentType string
	Size        int64
}
