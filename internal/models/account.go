package models

import "time"

// Donor is an individual who books donation appointments and health evaluations.
type Donor struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FirstName    string     `db:"first_name" json:"firstName"`
	LastName     string     `db:"last_name" json:"lastName"`
	BloodType    BloodType  `db:"blood_type" json:"bloodType"`
	Gender       string     `db:"gender" json:"gender"`
	BirthDate    *time.Time `db:"birth_date" json:"birthDate,omitempty"`
	Phone        string     `db:"phone" json:"phone"`
	Address      string     `db:"address" json:"address"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// FullName joins first and last name.
func (d Donor) FullName() string {
	if d.LastName == "" {
		return d.FirstName
	}
	return d.FirstName + " " + d.LastName
}

// Hospital is an organisation account owning inventory and hosting sessions.
type Hospital struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Name         string     `db:"name" json:"name"`
	Address      string     `db:"address" json:"address"`
	City         string     `db:"city" json:"city"`
	Phone        string     `db:"phone" json:"phone"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// HospitalAdmin is a staff account acting on behalf of one hospital.
type HospitalAdmin struct {
	ID           string     `db:"id" json:"id"`
	HospitalID   string     `db:"hospital_id" json:"hospitalId"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"fullName"`
	Phone        string     `db:"phone" json:"phone"`
	Position     string     `db:"position" json:"position"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// Manager is a cross-hospital moderation account.
type Manager struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"fullName"`
	Phone        string     `db:"phone" json:"phone"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// Account is the credential projection shared by all four account tables.
type Account struct {
	ID           string  `db:"id"`
	Role         Role    `db:"-"`
	Email        string  `db:"email"`
	PasswordHash string  `db:"password_hash"`
	FullName     string  `db:"full_name"`
	HospitalID   *string `db:"hospital_id"`
	Active       bool    `db:"active"`
}

// Actor returns the request identity for the account.
func (a Account) Actor() Actor {
	actor := Actor{ID: a.ID, Role: a.Role}
	switch a.Role {
	case RoleHospital:
		actor.HospitalID = a.ID
	case RoleHospitalAdmin:
		if a.HospitalID != nil {
			actor.HospitalID = *a.HospitalID
		}
	}
	return actor
}

// AccountFilter captures filtering criteria for listing accounts of any role.
type AccountFilter struct {
	PageRequest
	Search     string
	Active     *bool
	HospitalID string
	BloodType  BloodType
}
