package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/blood-donation-api/internal/dto"
	"github.com/noah-isme/blood-donation-api/internal/models"
	"github.com/noah-isme/blood-donation-api/pkg/response"
)

type feedbackService interface {
	List(ctx context.Context, actor models.Actor, filter models.FeedbackFilter) ([]models.Feedback, *models.Pagination, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Feedback, error)
	Create(ctx context.Context, actor models.Actor, req dto.CreateFeedbackRequest) (*models.Feedback, error)
	Review(ctx context.Context, actor models.Actor, id string) (*models.Feedback, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
}

// FeedbackHandler exposes donor feedback endpoints.
type FeedbackHandler struct {
	service feedbackService
}

// NewFeedbackHandler constructs the handler.
func NewFeedbackHandler(svc feedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: svc}
}

// List godoc
// @Summary List feedback
// @Tags Feedback
// @Produce json
// @Param hospitalId query string false "Hospital ID"
// @Param donorId query string false "Donor ID"
// @Param status query string false "Submitted or Reviewed"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /feedback [get]
func (h *FeedbackHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	filter := models.FeedbackFilter{
		PageRequest: pageRequest(c),
		DonorID:     c.Query("donorId"),
		HospitalID:  c.Query("hospitalId"),
		Status:      models.FeedbackStatus(c.Query("status")),
	}
	entries, pagination, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondList(c, entries, pagination)
}

// Get godoc
// @Summary Get feedback
// @Tags Feedback
// @Produce json
// @Param id path string true "Feedback ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /feedback/{id} [get]
func (h *FeedbackHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	entry, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, entry)
}

// Create godoc
// @Summary Rate a completed session
// @Tags Feedback
// @Accept json
// @Produce json
// @Param payload body dto.CreateFeedbackRequest true "Feedback payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /feedback [post]
func (h *FeedbackHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateFeedbackRequest
	if !bindJSON(c, &req, "invalid feedback payload") {
		return
	}
	entry, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// Review godoc
// @Summary Mark feedback reviewed
// @Tags Feedback
// @Produce json
// @Param id path string true "Feedback ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /feedback/{id}/review [patch]
func (h *FeedbackHandler) Review(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	entry, err := h.service.Review(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// Delete godoc
// @Summary Delete feedback
// @Tags Feedback
// @Param id path string true "Feedback ID"
// @Success 204
// @Security BearerAuth
// @Router /feedback/{id} [delete]
func (h *FeedbackHandler) Delete(c *gin.Context) {
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
