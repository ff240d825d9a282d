package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/blood-donation-api/internal/dto"
	"github.com/noah-isme/blood-donation-api/internal/models"
	"github.com/noah-isme/blood-donation-api/pkg/response"
)

type hospitalAdminService interface {
	Create(ctx context.Context, actor models.Actor, req dto.CreateHospitalAdminRequest) (*models.HospitalAdmin, error)
	List(ctx context.Context, actor models.Actor, filter models.AccountFilter) ([]models.HospitalAdmin, *models.Pagination, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.HospitalAdmin, error)
	Update(ctx context.Context, actor models.Actor, id string, req dto.UpdateHospitalAdminRequest) (*models.HospitalAdmin, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
}

// HospitalAdminHandler exposes staff account endpoints.
type HospitalAdminHandler struct {
	service hospitalAdminService
}

// NewHospitalAdminHandler constructs the handler.
func NewHospitalAdminHandler(svc hospitalAdminService) *HospitalAdminHandler {
	return &HospitalAdminHandler{service: svc}
}

// Create godoc
// @Summary Create hospital admin
// @Tags HospitalAdmins
// @Accept json
// @Produce json
// @Param payload body dto.CreateHospitalAdminRequest true "Admin payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /hospitaladmins [post]
func (h *HospitalAdminHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateHospitalAdminRequest
	if !bindJSON(c, &req, "invalid hospital admin payload") {
		return
	}
	admin, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, admin)
}

// List godoc
// @Summary List hospital admins
// @Tags HospitalAdmins
// @Produce json
// @Param hospitalId query string false "Hospital ID (managers only)"
// @Param search query string false "Name search"
// @Param active query bool false "Active flag"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /hospitaladmins [get]
func (h *HospitalAdminHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	filter := models.AccountFilter{
		PageRequest: pageRequest(c),
		Search:      c.Query("search"),
		Active:      boolQuery(c, "active"),
		HospitalID:  c.Query("hospitalId"),
	}
	admins, pagination, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondList(c, admins, pagination)
}

// Get godoc
// @Summary Get hospital admin
// @Tags HospitalAdmins
// @Produce json
// @Param id path string true "Admin ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /hospitaladmins/{id} [get]
func (h *HospitalAdminHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	admin, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, admin)
}

// Update godoc
// @Summary Update hospital admin
// @Tags HospitalAdmins
// @Accept json
// @Produce json
// @Param id path string true "Admin ID"
// @Param payload body dto.UpdateHospitalAdminRequest true "Admin payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /hospitaladmins/{id} [put]
func (h *HospitalAdminHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateHospitalAdminRequest
	if !bindJSON(c, &req, "invalid hospital admin payload") {
		return
	}
	admin, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admin, nil)
}

// Delete godoc
// @Summary Delete hospital admin
// @Tags HospitalAdmins
// @Param id path string true "Admin ID"
// @Success 204
// @Security BearerAuth
// @Router /hospitaladmins/{id} [delete]
func (h *HospitalAdminHandler) Delete(c *gin.Context) {
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
