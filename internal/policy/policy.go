// Package policy decides which operations an actor may perform on which resource.
package policy

import (
	"github.com/noah-isme/blood-donation-api/internal/models"
	appErrors "github.com/noah-isme/blood-donation-api/pkg/errors"
)

// Kind names a protected resource.
type Kind string

const (
	KindAppointment   Kind = "appointment"
	KindEvaluation    Kind = "evaluation"
	KindInventory     Kind = "inventory"
	KindEmergency     Kind = "emergency"
	KindFeedback      Kind = "feedback"
	KindInquiry       Kind = "inquiry"
	KindDonor         Kind = "donor"
	KindHospital      Kind = "hospital"
	KindHospitalAdmin Kind = "hospital_admin"
	KindManager       Kind = "manager"
	KindReport        Kind = "report"
)

// SessionKind maps a session kind onto its resource kind.
func SessionKind(k models.SessionKind) Kind {
	if k == models.SessionEvaluation {
		return KindEvaluation
	}
	return KindAppointment
}

// Operation is an action on a resource.
type Operation string

const (
	OpRead      Operation = "read"
	OpCreate    Operation = "create"
	OpUpdate    Operation = "update"
	OpDelete    Operation = "delete"
	OpLifecycle Operation = "lifecycle"
	OpRespond   Operation = "respond"
	OpValidate  Operation = "validate"
	OpModerate  Operation = "moderate"
	OpToggle    Operation = "toggle_status"
)

// Scope restricts a grant to a subset of resources.
type Scope int

const (
	ScopeNone Scope = iota
	ScopeAny
	ScopeOwnDonor
	ScopeOwnHospital
	ScopeSelf
	ScopeOwner
)

// Resource describes the ownership attributes of the entity being accessed.
type Resource struct {
	Kind       Kind
	ID         string
	DonorID    string
	HospitalID string
	OwnerID    string
}

type grants map[models.Role]map[Operation]Scope

var table = map[Kind]grants{
	KindAppointment: sessionGrants(),
	KindEvaluation:  sessionGrants(),
	KindInventory: {
		models.RoleDonor:         {OpRead: ScopeAny},
		models.RoleHospital:      {OpRead: ScopeOwnHospital},
		models.RoleHospitalAdmin: {OpRead: ScopeOwnHospital, OpCreate: ScopeOwnHospital, OpUpdate: ScopeOwnHospital, OpDelete: ScopeOwnHospital},
		models.RoleManager:       {OpRead: ScopeAny},
	},
	KindEmergency: {
		models.RoleDonor:         {OpRead: ScopeOwner, OpCreate: ScopeAny},
		models.RoleHospital:      {OpRead: ScopeAny, OpCreate: ScopeAny},
		models.RoleHospitalAdmin: {OpRead: ScopeAny, OpCreate: ScopeAny, OpRespond: ScopeAny},
		models.RoleManager:       {OpRead: ScopeAny, OpCreate: ScopeAny, OpValidate: ScopeAny, OpDelete: ScopeAny},
	},
	KindFeedback: {
		models.RoleDonor:         {OpRead: ScopeOwnDonor, OpCreate: ScopeOwnDonor},
		models.RoleHospital:      {OpRead: ScopeOwnHospital},
		models.RoleHospitalAdmin: {OpRead: ScopeOwnHospital, OpModerate: ScopeOwnHospital},
		models.RoleManager:       {OpRead: ScopeAny, OpModerate: ScopeAny, OpDelete: ScopeAny},
	},
	KindInquiry: {
		models.RoleDonor:         {OpRead: ScopeOwnDonor, OpCreate: ScopeOwnDonor},
		models.RoleHospital:      {OpRead: ScopeOwnHospital},
		models.RoleHospitalAdmin: {OpRead: ScopeOwnHospital, OpModerate: ScopeOwnHospital},
		models.RoleManager:       {OpRead: ScopeAny, OpModerate: ScopeAny, OpDelete: ScopeAny},
	},
	KindDonor: {
		models.RoleDonor:         {OpRead: ScopeSelf, OpUpdate: ScopeSelf, OpDelete: ScopeSelf},
		models.RoleHospital:      {OpRead: ScopeAny},
		models.RoleHospitalAdmin: {OpRead: ScopeAny},
		models.RoleManager:       {OpRead: ScopeAny, OpDelete: ScopeAny},
	},
	KindHospital: {
		models.RoleDonor:         {OpRead: ScopeAny},
		models.RoleHospital:      {OpRead: ScopeAny, OpUpdate: ScopeOwnHospital},
		models.RoleHospitalAdmin: {OpRead: ScopeAny},
		models.RoleManager:       {OpRead: ScopeAny, OpCreate: ScopeAny, OpUpdate: ScopeAny, OpToggle: ScopeAny},
	},
	KindHospitalAdmin: {
		models.RoleHospital:      {OpRead: ScopeOwnHospital, OpCreate: ScopeOwnHospital, OpUpdate: ScopeOwnHospital, OpDelete: ScopeOwnHospital},
		models.RoleHospitalAdmin: {OpRead: ScopeSelf, OpUpdate: ScopeSelf},
		models.RoleManager:       {OpRead: ScopeAny, OpDelete: ScopeAny},
	},
	KindManager: {
		models.RoleManager: {OpRead: ScopeAny, OpCreate: ScopeAny, OpUpdate: ScopeSelf, OpToggle: ScopeAny},
	},
	KindReport: {
		models.RoleHospital:      {OpCreate: ScopeOwnHospital, OpRead: ScopeOwner},
		models.RoleHospitalAdmin: {OpCreate: ScopeOwnHospital, OpRead: ScopeOwner},
		models.RoleManager:       {OpCreate: ScopeAny, OpRead: ScopeAny},
	},
}

func sessionGrants() grants {
	return grants{
		models.RoleDonor:         {OpRead: ScopeOwnDonor, OpCreate: ScopeOwnDonor, OpLifecycle: ScopeOwnDonor, OpDelete: ScopeOwnDonor},
		models.RoleHospital:      {OpRead: ScopeOwnHospital},
		models.RoleHospitalAdmin: {OpRead: ScopeOwnHospital, OpLifecycle: ScopeOwnHospital, OpDelete: ScopeOwnHospital},
		models.RoleManager:       {OpRead: ScopeAny},
	}
}

// ScopeFor returns the grant an actor's role holds for op on kind.
func ScopeFor(role models.Role, kind Kind, op Operation) Scope {
	return table[kind][role][op]
}

// Authorize returns nil when actor may perform op on res. A role without the grant is
// Forbidden. An ownership mismatch is NotFound for reads so existence is not leaked,
// and Forbidden for mutations.
func Authorize(actor models.Actor, res Resource, op Operation) error {
	scope := ScopeFor(actor.Role, res.Kind, op)
	if scope == ScopeNone {
		return appErrors.Clone(appErrors.ErrForbidden, string(actor.Role)+" cannot "+string(op)+" "+string(res.Kind))
	}
	if matches(actor, res, scope) {
		return nil
	}
	if op == OpRead {
		return appErrors.Clone(appErrors.ErrNotFound, string(res.Kind)+" not found")
	}
	return appErrors.Clone(appErrors.ErrForbidden, string(res.Kind)+" belongs to another account")
}

// Allowed is Authorize as a predicate.
func Allowed(actor models.Actor, res Resource, op Operation) bool {
	return Authorize(actor, res, op) == nil
}

func matches(actor models.Actor, res Resource, scope Scope) bool {
	switch scope {
	case ScopeAny:
		return true
	case ScopeOwnDonor:
		return actor.ID != "" && res.DonorID == actor.ID
	case ScopeOwnHospital:
		return actor.HospitalID != "" && res.HospitalID == actor.HospitalID
	case ScopeSelf:
		return actor.ID != "" && res.ID == actor.ID
	case ScopeOwner:
		return actor.ID != "" && res.OwnerID == actor.ID
	default:
		return false
	}
}

// ListConstraint narrows list queries to what the actor may read.
type ListConstraint struct {
	DonorID    string
	HospitalID string
	OwnerID    string
	AccountID  string
}

// ListScope returns the filter constraints for listing kind. Roles without read access
// get Forbidden.
func ListScope(actor models.Actor, kind Kind) (ListConstraint, error) {
	switch ScopeFor(actor.Role, kind, OpRead) {
	case ScopeAny:
		return ListConstraint{}, nil
	case ScopeOwnDonor:
		return ListConstraint{DonorID: actor.ID}, nil
	case ScopeOwnHospital:
		return ListConstraint{HospitalID: actor.HospitalID}, nil
	case ScopeOwner:
		return ListConstraint{OwnerID: actor.ID}, nil
	case ScopeSelf:
		return ListConstraint{AccountID: actor.ID}, nil
	default:
		return ListConstraint{}, appErrors.Clone(appErrors.ErrForbidden, string(actor.Role)+" cannot list "+string(kind))
	}
}
