package inventory

import (
	"time"

	"github.com/noah-isme/blood-donation-api/internal/models"
)

// Summarize totals available stock per blood type. Every type is present in ByBloodType;
// MissingTypes lists, in enum order, the types that have no record at all.
func Summarize(items []models.InventoryItem) models.InventorySummary {
	totals := make(map[models.BloodType]int, len(models.AllBloodTypes))
	seen := make(map[models.BloodType]bool, len(models.AllBloodTypes))
	for _, t := range models.AllBloodTypes {
		totals[t] = 0
	}

	total := 0
	for _, item := range items {
		if !item.BloodType.Valid() {
			continue
		}
		seen[item.BloodType] = true
		totals[item.BloodType] += item.AvailableStocks
		total += item.AvailableStocks
	}

	missing := make([]models.BloodType, 0)
	for _, t := range models.AllBloodTypes {
		if !seen[t] {
			missing = append(missing, t)
		}
	}

	return models.InventorySummary{
		ByBloodType:  totals,
		MissingTypes: missing,
		TotalUnits:   total,
		GeneratedAt:  time.Now().UTC(),
	}
}
