// Package inventory derives read-time views over blood inventory: expiry bands and per type totals.
package inventory

import (
	"time"

	"github.com/noah-isme/blood-donation-api/internal/models"
)

// DefaultSoonWindow is how far ahead an item counts as expiring soon.
const DefaultSoonWindow = 7 * 24 * time.Hour

// Classify places expiration into the Expired, Soon or Valid band relative to now.
func Classify(expiration, now time.Time, window time.Duration) models.ExpiredStatus {
	if window <= 0 {
		window = DefaultSoonWindow
	}
	switch {
	case expiration.Before(now):
		return models.ExpiryExpired
	case expiration.Before(now.Add(window)):
		return models.ExpirySoon
	default:
		return models.ExpiryValid
	}
}

// Classifier binds Classify to a window and clock.
type Classifier struct {
	window time.Duration
	now    func() time.Time
}

// NewClassifier builds a classifier. A nil clock uses time.Now.
func NewClassifier(window time.Duration, now func() time.Time) *Classifier {
	if window <= 0 {
		window = DefaultSoonWindow
	}
	if now == nil {
		now = time.Now
	}
	return &Classifier{window: window, now: now}
}

// Status classifies a single expiration date against the current clock.
func (c *Classifier) Status(expiration time.Time) models.ExpiredStatus {
	return Classify(expiration, c.now(), c.window)
}

// Annotate fills ExpiredStatus on every item in place using a single clock reading.
func (c *Classifier) Annotate(items []models.InventoryItem) {
	now := c.now()
	for i := range items {
		items[i].ExpiredStatus = Classify(items[i].ExpirationDate, now, c.window)
	}
}

// Bounds returns the expiration range [from, before) whose items classify as status at the
// current clock. Expiration dates are calendar days stored at midnight UTC, so each bound is
// the first midnight at or after the matching instant. A nil bound is open. ok is false for
// an unknown status.
func (c *Classifier) Bounds(status models.ExpiredStatus) (from, before *time.Time, ok bool) {
	now := c.now()
	today := nextMidnight(now)
	soon := nextMidnight(now.Add(c.window))
	switch status {
	case models.ExpiryExpired:
		return nil, &today, true
	case models.ExpirySoon:
		return &today, &soon, true
	case models.ExpiryValid:
		return &soon, nil, true
	default:
		return nil, nil, false
	}
}

func nextMidnight(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if day.Equal(t) {
		return day
	}
	return day.AddDate(0, 0, 1)
}
