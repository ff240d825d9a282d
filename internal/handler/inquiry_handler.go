package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/blood-donation-api/internal/dto"
	"github.com/noah-isme/blood-donation-api/internal/models"
	"github.com/noah-isme/blood-donation-api/pkg/response"
)

type inquiryService interface {
	List(ctx context.Context, actor models.Actor, filter models.InquiryFilter) ([]models.Inquiry, *models.Pagination, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Inquiry, error)
	Create(ctx context.Context, actor models.Actor, req dto.CreateInquiryRequest) (*models.Inquiry, error)
	UpdateStatus(ctx context.Context, actor models.Actor, id string, req dto.UpdateInquiryStatusRequest) (*models.Inquiry, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
}

// InquiryHandler exposes donor inquiry endpoints.
type InquiryHandler struct {
	service inquiryService
}

// NewInquiryHandler constructs the handler.
func NewInquiryHandler(svc inquiryService) *InquiryHandler {
	return &InquiryHandler{service: svc}
}

// List godoc
// @Summary List inquiries
// @Tags Inquiries
// @Produce json
// @Param hospitalId query string false "Hospital ID"
// @Param donorId query string false "Donor ID"
// @Param status query string false "Inquiry status"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /inquiry [get]
func (h *InquiryHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	filter := models.InquiryFilter{
		PageRequest: pageRequest(c),
		DonorID:     c.Query("donorId"),
		HospitalID:  c.Query("hospitalId"),
		Status:      models.InquiryStatus(c.Query("status")),
	}
	inquiries, pagination, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondList(c, inquiries, pagination)
}

// Get godoc
// @Summary Get inquiry
// @Tags Inquiries
// @Produce json
// @Param id path string true "Inquiry ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /inquiry/{id} [get]
func (h *InquiryHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	inquiry, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, inquiry)
}

// Create godoc
// @Summary Ask about a session
// @Tags Inquiries
// @Accept json
// @Produce json
// @Param payload body dto.CreateInquiryRequest true "Inquiry payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /inquiry [post]
func (h *InquiryHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateInquiryRequest
	if !bindJSON(c, &req, "invalid inquiry payload") {
		return
	}
	inquiry, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, inquiry)
}

// UpdateStatus godoc
// @Summary Move inquiry through its workflow
// @Tags Inquiries
// @Accept json
// @Produce json
// @Param id path string true "Inquiry ID"
// @Param payload body dto.UpdateInquiryStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /inquiry/{id}/status [patch]
func (h *InquiryHandler) UpdateStatus(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateInquiryStatusRequest
	if !bindJSON(c, &req, "invalid status payload") {
		return
	}
	inquiry, err := h.service.UpdateStatus(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, inquiry, nil)
}

// Delete godoc
// @Summary Delete inquiry
// @Tags Inquiries
// @Param id path string true "Inquiry ID"
// @Success 204
// @Security BearerAuth
// @Router /inquiry/{id} [delete]
func (h *InquiryHandler) Delete(c *gin.Context) {
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
