// Package lifecycle holds the legal status transitions of sessions, emergency requests and
// inquiries. Every function is pure: the input entity is copied, never mutated.
package lifecycle

import (
	"strings"
	"time"

	"github.com/noah-isme/blood-donation-api/internal/models"
	appErrors "github.com/noah-isme/blood-donation-api/pkg/errors"
)

// Action is a lifecycle operation requested on a session.
type Action string

const (
	ActionAccept        Action = "accept"
	ActionReschedule    Action = "reschedule"
	ActionAcceptByDonor Action = "accept_by_donor"
	ActionCancelByDonor Action = "cancel_by_donor"
	ActionCancel        Action = "cancel"
	ActionArrive        Action = "arrive"
	ActionComplete      Action = "complete"
)

// Input carries the action and its arguments.
type Input struct {
	Action        Action
	Actor         models.Role
	ActorID       string
	ReceiptNumber string
	PassStatus    models.PassStatus
	Date          *time.Time
	Time          string
	ResultFile    string
}

type rule struct {
	from     []models.ActiveStatus
	progress models.ProgressStatus
	actor    models.Role
	apply    func(*models.Session, Input) error
}

var sessionRules = map[Action]rule{
	ActionAccept: {
		from:     []models.ActiveStatus{models.ActivePending},
		progress: models.ProgressNotStarted,
		actor:    models.RoleHospitalAdmin,
		apply:    accept,
	},
	ActionReschedule: {
		from:     []models.ActiveStatus{models.ActivePending},
		progress: models.ProgressNotStarted,
		actor:    models.RoleHospitalAdmin,
		apply:    reschedule,
	},
	ActionAcceptByDonor: {
		from:     []models.ActiveStatus{models.ActiveRescheduled},
		progress: models.ProgressNotStarted,
		actor:    models.RoleDonor,
		apply: func(s *models.Session, _ Input) error {
			s.ActiveStatus = models.ActiveAccepted
			return nil
		},
	},
	ActionCancelByDonor: {
		from:     []models.ActiveStatus{models.ActiveRescheduled},
		progress: models.ProgressNotStarted,
		actor:    models.RoleDonor,
		apply:    cancel,
	},
	ActionCancel: {
		from:     []models.ActiveStatus{models.ActivePending, models.ActiveRescheduled},
		progress: models.ProgressNotStarted,
		actor:    models.RoleHospitalAdmin,
		apply:    cancel,
	},
	ActionArrive: {
		from:     []models.ActiveStatus{models.ActiveAccepted},
		progress: models.ProgressNotStarted,
		actor:    models.RoleHospitalAdmin,
		apply:    arrive,
	},
	ActionComplete: {
		from:     []models.ActiveStatus{models.ActiveAccepted},
		progress: models.ProgressInProgress,
		actor:    models.RoleHospitalAdmin,
		apply:    complete,
	},
}

// Apply validates and performs a session transition, returning the updated copy.
// A wrong actor yields Forbidden; an action not legal from the current state yields
// InvalidTransition; missing action arguments yield a validation error.
func Apply(current models.Session, in Input) (models.Session, error) {
	r, ok := sessionRules[in.Action]
	if !ok {
		return current, appErrors.Clone(appErrors.ErrValidation, "unknown action "+string(in.Action))
	}
	if in.Actor != r.actor {
		return current, appErrors.Clone(appErrors.ErrForbidden, "role "+string(in.Actor)+" cannot "+string(in.Action))
	}
	if !contains(r.from, current.ActiveStatus) || current.ProgressStatus != r.progress {
		return current, appErrors.Clone(appErrors.ErrInvalidTransition,
			string(in.Action)+" not allowed from "+string(current.ActiveStatus)+"/"+string(current.ProgressStatus))
	}

	next := current
	if current.PassStatus != nil {
		ps := *current.PassStatus
		next.PassStatus = &ps
	}
	if err := r.apply(&next, in); err != nil {
		return current, err
	}
	return next, nil
}

// Allowed lists the actions role may currently perform on s.
func Allowed(s models.Session, role models.Role) []Action {
	order := []Action{ActionAccept, ActionReschedule, ActionAcceptByDonor, ActionCancelByDonor, ActionCancel, ActionArrive, ActionComplete}
	var out []Action
	for _, a := range order {
		r := sessionRules[a]
		if r.actor == role && contains(r.from, s.ActiveStatus) && s.ProgressStatus == r.progress {
			out = append(out, a)
		}
	}
	return out
}

// CanDelete enforces the deletion policy: completed sessions and fully cancelled ones only.
func CanDelete(s models.Session) error {
	if s.ActiveStatus == models.ActiveAccepted && s.ProgressStatus == models.ProgressCompleted {
		return nil
	}
	if s.ActiveStatus == models.ActiveCancelled && s.ProgressStatus == models.ProgressCancelled {
		if s.Kind != models.SessionEvaluation || (s.PassStatus != nil && *s.PassStatus == models.PassCancelled) {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrDeletionNotAllowed,
		"cannot delete a session that is "+string(s.ActiveStatus)+"/"+string(s.ProgressStatus))
}

func accept(s *models.Session, in Input) error {
	s.ActiveStatus = models.ActiveAccepted
	if in.ActorID != "" {
		id := in.ActorID
		s.HospitalAdminID = &id
	}
	return nil
}

func reschedule(s *models.Session, in Input) error {
	if in.Date == nil || in.Date.IsZero() || strings.TrimSpace(in.Time) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "new date and time are required to reschedule")
	}
	s.AppointmentDate = *in.Date
	s.AppointmentTime = strings.TrimSpace(in.Time)
	s.ActiveStatus = models.ActiveRescheduled
	if in.ActorID != "" {
		id := in.ActorID
		s.HospitalAdminID = &id
	}
	return nil
}

func cancel(s *models.Session, _ Input) error {
	s.ActiveStatus = models.ActiveCancelled
	s.ProgressStatus = models.ProgressCancelled
	if s.Kind == models.SessionEvaluation {
		ps := models.PassCancelled
		s.PassStatus = &ps
	}
	return nil
}

func arrive(s *models.Session, in Input) error {
	receipt := strings.TrimSpace(in.ReceiptNumber)
	if receipt == "" {
		return appErrors.Clone(appErrors.ErrValidation, "receiptNumber is required")
	}
	s.ReceiptNumber = &receipt
	s.ProgressStatus = models.ProgressInProgress
	return nil
}

func complete(s *models.Session, in Input) error {
	if s.Kind == models.SessionEvaluation {
		if in.PassStatus != models.PassPassed && in.PassStatus != models.PassFailed {
			return appErrors.Clone(appErrors.ErrValidation, "passStatus must be Passed or Failed")
		}
		ps := in.PassStatus
		s.PassStatus = &ps
		if in.ResultFile != "" {
			file := in.ResultFile
			s.ResultFile = &file
		}
	}
	s.ProgressStatus = models.ProgressCompleted
	return nil
}

func contains(states []models.ActiveStatus, st models.ActiveStatus) bool {
	for _, s := range states {
		if s == st {
			return true
		}
	}
	return false
}
