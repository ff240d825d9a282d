package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/blood-donation-api/internal/dto"
	"github.com/noah-isme/blood-donation-api/internal/models"
	"github.com/noah-isme/blood-donation-api/pkg/response"
)

type emergencyService interface {
	List(ctx context.Context, actor models.Actor, filter models.EmergencyFilter) ([]models.EmergencyRequest, *models.Pagination, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.EmergencyRequest, error)
	Create(ctx context.Context, actor models.Actor, req dto.CreateEmergencyRequest) (*models.EmergencyRequest, error)
	Validate(ctx context.Context, actor models.Actor, id string) (*models.EmergencyRequest, error)
	Accept(ctx context.Context, actor models.Actor, id string) (*models.EmergencyRequest, error)
	Decline(ctx context.Context, actor models.Actor, id string) (*models.EmergencyRequest, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
}

// EmergencyHandler exposes emergency blood request endpoints.
type EmergencyHandler struct {
	service emergencyService
}

// NewEmergencyHandler constructs the handler.
func NewEmergencyHandler(svc emergencyService) *EmergencyHandler {
	return &EmergencyHandler{service: svc}
}

// List godoc
// @Summary List emergency requests
// @Tags Emergency
// @Produce json
// @Param bloodType query string false "Blood type"
// @Param acceptStatus query string false "Accept status"
// @Param activeStatus query string false "Active status"
// @Param criticalLevel query string false "Low, Medium or High"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /emergencyBR [get]
func (h *EmergencyHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	filter := models.EmergencyFilter{
		PageRequest:   pageRequest(c),
		BloodType:     models.BloodType(c.Query("bloodType")),
		AcceptStatus:  models.AcceptStatus(c.Query("acceptStatus")),
		ActiveStatus:  models.EmergencyActiveStatus(c.Query("activeStatus")),
		CriticalLevel: models.CriticalLevel(c.Query("criticalLevel")),
	}
	requests, pagination, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondList(c, requests, pagination)
}

// Get godoc
// @Summary Get emergency request
// @Tags Emergency
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /emergencyBR/{id} [get]
func (h *EmergencyHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	req, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, req)
}

// Create godoc
// @Summary File emergency request
// @Tags Emergency
// @Accept json
// @Produce json
// @Param payload body dto.CreateEmergencyRequest true "Request payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /emergencyBR [post]
func (h *EmergencyHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateEmergencyRequest
	if !bindJSON(c, &req, "invalid emergency request payload") {
		return
	}
	created, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Validate godoc
// @Summary Validate emergency request
// @Tags Emergency
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /emergencyBR/{id}/validate [patch]
func (h *EmergencyHandler) Validate(c *gin.Context) {
	h.transition(c, h.service.Validate)
}

// Accept godoc
// @Summary Accept emergency request
// @Tags Emergency
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /emergencyBR/{id}/accept [patch]
func (h *EmergencyHandler) Accept(c *gin.Context) {
	h.transition(c, h.service.Accept)
}

// Decline godoc
// @Summary Decline emergency request
// @Tags Emergency
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /emergencyBR/{id}/decline [patch]
func (h *EmergencyHandler) Decline(c *gin.Context) {
	h.transition(c, h.service.Decline)
}

// Delete godoc
// @Summary Delete emergency request
// @Tags Emergency
// @Param id path string true "Request ID"
// @Success 204
// @Security BearerAuth
// @Router /emergencyBR/{id} [delete]
func (h *EmergencyHandler) Delete(c *gin.Context) {
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

func (h *EmergencyHandler) transition(c *gin.Context, fn func(context.Context, models.Actor, string) (*models.EmergencyRequest, error)) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	updated, err := fn(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}
