package models

// Role represents the account type behind an authenticated request.
type Role string

const (
	RoleDonor         Role = "Donor"
	RoleHospital      Role = "Hospital"
	RoleHospitalAdmin Role = "HospitalAdmin"
	RoleManager       Role = "Manager"
)

// AllRoles lists every role in display order.
var AllRoles = []Role{RoleDonor, RoleHospital, RoleHospitalAdmin, RoleManager}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleDonor, RoleHospital, RoleHospitalAdmin, RoleManager:
		return true
	default:
		return false
	}
}

// Actor is the server-side identity of the caller, resolved from the access token.
// HospitalID is the hospital a HospitalAdmin works for, or the account id of a Hospital.
type Actor struct {
	ID         string
	Role       Role
	HospitalID string
}
