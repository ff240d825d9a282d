package lifecycle

import (
	"github.com/noah-isme/blood-donation-api/internal/models"
	appErrors "github.com/noah-isme/blood-donation-api/pkg/errors"
)

var inquiryTransitions = map[models.InquiryStatus][]models.InquiryStatus{
	models.InquiryPending:    {models.InquiryInProgress},
	models.InquiryInProgress: {models.InquiryResolved, models.InquiryClosed},
}

// TransitionInquiry moves an inquiry forward, optionally recording a response.
func TransitionInquiry(current models.Inquiry, to models.InquiryStatus, response string) (models.Inquiry, error) {
	allowed := false
	for _, s := range inquiryTransitions[current.Status] {
		if s == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return current, appErrors.Clone(appErrors.ErrInvalidTransition,
			"inquiry cannot move from "+string(current.Status)+" to "+string(to))
	}
	next := current
	next.Status = to
	if response != "" {
		r := response
		next.Response = &r
	}
	return next, nil
}
