package dto

import "github.com/noah-isme/blood-donation-api/internal/models"

// InventoryRequest creates or replaces an inventory record. HospitalID is taken from the
// caller's session.
type InventoryRequest struct {
	BloodType       models.BloodType `json:"bloodType" validate:"required,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	AvailableStocks int              `json:"availableStocks" validate:"min=0"`
	ExpirationDate  string           `json:"expirationDate" validate:"required,datetime=2006-01-02"`
}
