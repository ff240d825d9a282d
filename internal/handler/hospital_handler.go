package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/blood-donation-api/internal/dto"
	"github.com/noah-isme/blood-donation-api/internal/models"
	"github.com/noah-isme/blood-donation-api/pkg/response"
)

type hospitalService interface {
	Create(ctx context.Context, actor models.Actor, req dto.CreateHospitalRequest) (*models.Hospital, error)
	List(ctx context.Context, actor models.Actor, filter models.AccountFilter) ([]models.Hospital, *models.Pagination, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Hospital, error)
	Update(ctx context.Context, actor models.Actor, id string, req dto.UpdateHospitalRequest) (*models.Hospital, error)
	ToggleStatus(ctx context.Context, actor models.Actor, req dto.ToggleStatusRequest) (*dto.ToggleStatusResponse, error)
}

// HospitalHandler exposes hospital account endpoints.
type HospitalHandler struct {
	service hospitalService
}

// NewHospitalHandler constructs the handler.
func NewHospitalHandler(svc hospitalService) *HospitalHandler {
	return &HospitalHandler{service: svc}
}

// Create godoc
// @Summary Register hospital
// @Tags Hospitals
// @Accept json
// @Produce json
// @Param payload body dto.CreateHospitalRequest true "Hospital payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /hospital [post]
func (h *HospitalHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateHospitalRequest
	if !bindJSON(c, &req, "invalid hospital payload") {
		return
	}
	hospital, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, hospital)
}

// List godoc
// @Summary List hospitals
// @Tags Hospitals
// @Produce json
// @Param search query string false "Name search"
// @Param active query bool false "Active flag"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /hospital [get]
func (h *HospitalHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	filter := models.AccountFilter{
		PageRequest: pageRequest(c),
		Search:      c.Query("search"),
		Active:      boolQuery(c, "active"),
	}
	hospitals, pagination, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondList(c, hospitals, pagination)
}

// Get godoc
// @Summary Get hospital
// @Tags Hospitals
// @Produce json
// @Param id path string true "Hospital ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /hospital/{id} [get]
func (h *HospitalHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	hospital, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, hospital)
}

// Update godoc
// @Summary Update hospital
// @Tags Hospitals
// @Accept json
// @Produce json
// @Param id path string true "Hospital ID"
// @Param payload body dto.UpdateHospitalRequest true "Hospital payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /hospital/{id} [put]
func (h *HospitalHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateHospitalRequest
	if !bindJSON(c, &req, "invalid hospital payload") {
		return
	}
	hospital, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hospital, nil)
}

// ToggleStatus godoc
// @Summary Toggle hospital active flag
// @Tags Hospitals
// @Accept json
// @Produce json
// @Param payload body dto.ToggleStatusRequest true "Hospital id"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /hospital/toggle-status [patch]
func (h *HospitalHandler) ToggleStatus(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.ToggleStatusRequest
	if !bindJSON(c, &req, "hospital id required") {
		return
	}
	res, err := h.service.ToggleStatus(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
