package dto

import "github.com/noah-isme/blood-donation-api/internal/models"

// CreateDonorRequest is the public donor registration payload.
type CreateDonorRequest struct {
	Email     string           `json:"email" validate:"required,email"`
	Password  string           `json:"password" validate:"required,min=8"`
	FirstName string           `json:"firstName" validate:"required,max=100"`
	LastName  string           `json:"lastName" validate:"max=100"`
	BloodType models.BloodType `json:"bloodType" validate:"required,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Gender    string           `json:"gender" validate:"omitempty,oneof=Male Female"`
	BirthDate string           `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Phone     string           `json:"phone" validate:"omitempty,max=30"`
	Address   string           `json:"address" validate:"omitempty,max=255"`
}

// UpdateDonorRequest updates donor profile fields.
type UpdateDonorRequest struct {
	FirstName string           `json:"firstName" validate:"required,max=100"`
	LastName  string           `json:"lastName" validate:"max=100"`
	BloodType models.BloodType `json:"bloodType" validate:"required,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Gender    string           `json:"gender" validate:"omitempty,oneof=Male Female"`
	BirthDate string           `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Phone     string           `json:"phone" validate:"omitempty,max=30"`
	Address   string           `json:"address" validate:"omitempty,max=255"`
	Password  string           `json:"password" validate:"omitempty,min=8"`
}

// CreateHospitalRequest registers a hospital account.
type CreateHospitalRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,max=150"`
	Address  string `json:"address" validate:"omitempty,max=255"`
	City     string `json:"city" validate:"omitempty,max=100"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
}

// UpdateHospitalRequest updates hospital profile fields.
type UpdateHospitalRequest struct {
	Name     string `json:"name" validate:"required,max=150"`
	Address  string `json:"address" validate:"omitempty,max=255"`
	City     string `json:"city" validate:"omitempty,max=100"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
	Password string `json:"password" validate:"omitempty,min=8"`
}

// CreateHospitalAdminRequest adds a staff account to the caller's hospital.
type CreateHospitalAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName" validate:"required,max=150"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
	Position string `json:"position" validate:"omitempty,max=100"`
}

// UpdateHospitalAdminRequest updates a hospital admin.
type UpdateHospitalAdminRequest struct {
	FullName string `json:"fullName" validate:"required,max=150"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
	Position string `json:"position" validate:"omitempty,max=100"`
	Active   *bool  `json:"active"`
	Password string `json:"password" validate:"omitempty,min=8"`
}

// CreateManagerRequest registers a manager account.
type CreateManagerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName" validate:"required,max=150"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
}

// UpdateManagerRequest updates a manager profile.
type UpdateManagerRequest struct {
	FullName string `json:"fullName" validate:"required,max=150"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
	Password string `json:"password" validate:"omitempty,min=8"`
}

// ToggleStatusRequest flips the active flag of an account.
type ToggleStatusRequest struct {
	ID string `json:"id" validate:"required"`
}

// ToggleStatusResponse reports the new active flag.
type ToggleStatusResponse struct {
	ID     string `json:"id"`
	Active bool   `json:"active"`
}
