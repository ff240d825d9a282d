package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/blood-donation-api/internal/dto"
	"github.com/noah-isme/blood-donation-api/internal/models"
	"github.com/noah-isme/blood-donation-api/internal/service"
	appErrors "github.com/noah-isme/blood-donation-api/pkg/errors"
	"github.com/noah-isme/blood-donation-api/pkg/response"
)

type sessionService interface {
	List(ctx context.Context, actor models.Actor, filter models.SessionFilter) ([]dto.SessionView, *models.Pagination, error)
	Get(ctx context.Context, actor models.Actor, id string) (*dto.SessionView, error)
	Create(ctx context.Context, actor models.Actor, req dto.CreateSessionRequest) (*dto.SessionView, error)
	Reschedule(ctx context.Context, actor models.Actor, id string, req dto.RescheduleRequest) (*dto.SessionView, error)
	Accept(ctx context.Context, actor models.Actor, id string) (*dto.SessionView, error)
	Cancel(ctx context.Context, actor models.Actor, id string) (*dto.SessionView, error)
	CancelByDonor(ctx context.Context, actor models.Actor, id string) (*dto.SessionView, error)
	Arrive(ctx context.Context, actor models.Actor, id string, req dto.ArriveRequest) (*dto.SessionView, error)
	Complete(ctx context.Context, actor models.Actor, id string, req dto.CompleteRequest, doc *service.DocumentUpload) (*dto.SessionView, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
}

// SessionHandler serves one session kind. The same handler type backs both the
// appointment and the health evaluation routes.
type SessionHandler struct {
	service sessionService
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(svc sessionService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// List godoc
// @Summary List sessions
// @Description Appointments or health evaluations visible to the caller
// @Tags Sessions
// @Produce json
// @Param hospitalId query string false "Hospital ID"
// @Param donorId query string false "Donor ID"
// @Param activeStatus query string false "Pending, Accepted, Re-Scheduled or Cancelled"
// @Param progressStatus query string false "Not Started, In Progress, Completed or Cancelled"
// @Param dateFrom query string false "Inclusive start date (YYYY-MM-DD)"
// @Param dateTo query string false "Inclusive end date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /blooddonationappointment [get]
// @Router /healthEvaluation [get]
func (h *SessionHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	filter := models.SessionFilter{
		PageRequest:    pageRequest(c),
		DonorID:        c.Query("donorId"),
		HospitalID:     c.Query("hospitalId"),
		ActiveStatus:   models.ActiveStatus(c.Query("activeStatus")),
		ProgressStatus: models.ProgressStatus(c.Query("progressStatus")),
	}
	var err error
	if filter.DateFrom, err = dateQuery(c, "dateFrom"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.DateTo, err = dateQuery(c, "dateTo"); err != nil {
		response.Error(c, err)
		return
	}
	sessions, pagination, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondList(c, sessions, pagination)
}

// Get godoc
// @Summary Get session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /blooddonationappointment/{id} [get]
// @Router /healthEvaluation/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	session, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, session)
}

// Create godoc
// @Summary Book session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body dto.CreateSessionRequest true "Booking"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /blooddonationappointment [post]
// @Router /healthEvaluation [post]
func (h *SessionHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateSessionRequest
	if !bindJSON(c, &req, "invalid booking payload") {
		return
	}
	session, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Reschedule godoc
// @Summary Propose a new slot
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.RescheduleRequest true "New slot"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /blooddonationappointment/{id} [put]
// @Router /healthEvaluation/{id} [put]
func (h *SessionHandler) Reschedule(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.RescheduleRequest
	if !bindJSON(c, &req, "invalid reschedule payload") {
		return
	}
	session, err := h.service.Reschedule(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Accept godoc
// @Summary Accept session
// @Description Hospital staff accept a pending booking; a donor accepts a rescheduled one
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /blooddonationappointment/{id}/accept [patch]
// @Router /healthEvaluation/{id}/accept [patch]
func (h *SessionHandler) Accept(c *gin.Context) {
	h.simpleTransition(c, h.service.Accept)
}

// Cancel godoc
// @Summary Cancel session (hospital)
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /blooddonationappointment/{id}/cancel [patch]
// @Router /healthEvaluation/{id}/cancel [patch]
func (h *SessionHandler) Cancel(c *gin.Context) {
	h.simpleTransition(c, h.service.Cancel)
}

// CancelByDonor godoc
// @Summary Decline a rescheduled session (donor)
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /blooddonationappointment/{id}/cancelD [patch]
// @Router /healthEvaluation/{id}/cancelD [patch]
func (h *SessionHandler) CancelByDonor(c *gin.Context) {
	h.simpleTransition(c, h.service.CancelByDonor)
}

// Arrive godoc
// @Summary Record donor arrival
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.ArriveRequest true "Receipt"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /blooddonationappointment/{id}/arrived [patch]
// @Router /healthEvaluation/{id}/arrived [patch]
func (h *SessionHandler) Arrive(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.ArriveRequest
	if !bindJSON(c, &req, "receiptNumber required") {
		return
	}
	session, err := h.service.Arrive(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Complete godoc
// @Summary Complete session
// @Description JSON body or multipart form. Evaluations require passStatus and may attach a result document.
// @Tags Sessions
// @Accept json
// @Accept mpfd
// @Produce json
// @Param id path string true "Session ID"
// @Param passStatus formData string false "Passed or Failed"
// @Param document formData file false "Result document"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /blooddonationappointment/{id}/complete [patch]
// @Router /healthEvaluation/{id}/complete [patch]
func (h *SessionHandler) Complete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var (
		req dto.CompleteRequest
		doc *service.DocumentUpload
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		req.PassStatus = models.PassStatus(c.PostForm("passStatus"))
		header, err := c.FormFile("document")
		switch {
		case err == nil:
			file, openErr := header.Open()
			if openErr != nil {
				response.Error(c, appErrors.Wrap(openErr, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable document"))
				return
			}
			defer file.Close()
			doc = &service.DocumentUpload{
				ResultDocument: models.ResultDocument{
					Filename:    header.Filename,
					ContentType: header.Header.Get("Content-Type"),
					Size:        header.Size,
				},
				Body: file,
			}
		case err != http.ErrMissingFile:
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid multipart payload"))
			return
		}
	} else if c.Request.ContentLength != 0 {
		if !bindJSON(c, &req, "invalid completion payload") {
			return
		}
	}

	session, err := h.service.Complete(c.Request.Context(), actor, c.Param("id"), req, doc)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Delete godoc
// @Summary Delete finished session
// @Tags Sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /blooddonationappointment/{id} [delete]
// @Router /healthEvaluation/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *SessionHandler) simpleTransition(c *gin.Context, fn func(context.Context, models.Actor, string) (*dto.SessionView, error)) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	session, err := fn(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

func dateQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, key+" must be YYYY-MM-DD")
	}
	return &parsed, nil
}
