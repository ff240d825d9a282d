package models

import "time"

// ExpiredStatus is derived from an item's expiration date at read time and never stored.
type ExpiredStatus string

const (
	ExpiryValid   ExpiredStatus = "Valid"
	ExpirySoon    ExpiredStatus = "Soon"
	ExpiryExpired ExpiredStatus = "Expired"
)

// InventoryItem is a batch of blood units held by a hospital.
type InventoryItem struct {
	ID              string        `db:"id" json:"id"`
	HospitalID      string        `db:"hospital_id" json:"hospitalId"`
	BloodType       BloodType     `db:"blood_type" json:"bloodType"`
	AvailableStocks int           `db:"available_stocks" json:"availableStocks"`
	ExpirationDate  time.Time     `db:"expiration_date" json:"expirationDate"`
	ExpiredStatus   ExpiredStatus `db:"-" json:"expiredStatus"`
	CreatedAt       time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updatedAt"`
}

// InventoryFilter captures list criteria for inventory items. ExpiredStatus is not a
// column; it is translated into expiration date bounds before querying.
type InventoryFilter struct {
	PageRequest
	HospitalID    string
	BloodType     BloodType
	ExpiredStatus ExpiredStatus
}

// InventorySummary is the per blood type stock total for a scope.
type InventorySummary struct {
	HospitalID   string            `json:"hospitalId,omitempty"`
	ByBloodType  map[BloodType]int `json:"byBloodType"`
	MissingTypes []BloodType       `json:"missingTypes"`
	TotalUnits   int               `json:"totalUnits"`
	GeneratedAt  time.Time         `json:"generatedAt"`
}
