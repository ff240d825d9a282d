package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/blood-donation-api/internal/dto"
	"github.com/noah-isme/blood-donation-api/internal/models"
	"github.com/noah-isme/blood-donation-api/pkg/response"
)

type managerService interface {
	Create(ctx context.Context, actor models.Actor, req dto.CreateManagerRequest) (*models.Manager, error)
	List(ctx context.Context, actor models.Actor, filter models.AccountFilter) ([]models.Manager, *models.Pagination, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Manager, error)
	Update(ctx context.Context, actor models.Actor, id string, req dto.UpdateManagerRequest) (*models.Manager, error)
	ToggleStatus(ctx context.Context, actor models.Actor, req dto.ToggleStatusRequest) (*dto.ToggleStatusResponse, error)
}

// ManagerHandler exposes manager account endpoints.
type ManagerHandler struct {
	service managerService
}

// NewManagerHandler constructs the handler.
func NewManagerHandler(svc managerService) *ManagerHandler {
	return &ManagerHandler{service: svc}
}

// Create godoc
// @Summary Create manager
// @Tags Managers
// @Accept json
// @Produce json
// @Param payload body dto.CreateManagerRequest true "Manager payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /manager [post]
func (h *ManagerHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateManagerRequest
	if !bindJSON(c, &req, "invalid manager payload") {
		return
	}
	manager, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, manager)
}

// List godoc
// @Summary List managers
// @Tags Managers
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /manager [get]
func (h *ManagerHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	filter := models.AccountFilter{
		PageRequest: pageRequest(c),
		Search:      c.Query("search"),
		Active:      boolQuery(c, "active"),
	}
	managers, pagination, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondList(c, managers, pagination)
}

// Get godoc
// @Summary Get manager
// @Tags Managers
// @Produce json
// @Param id path string true "Manager ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /manager/{id} [get]
func (h *ManagerHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	manager, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, manager)
}

// Update godoc
// @Summary Update manager
// @Tags Managers
// @Accept json
// @Produce json
// @Param id path string true "Manager ID"
// @Param payload body dto.UpdateManagerRequest true "Manager payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /manager/{id} [put]
func (h *ManagerHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateManagerRequest
	if !bindJSON(c, &req, "invalid manager payload") {
		return
	}
	manager, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, manager, nil)
}

// ToggleStatus godoc
// @Summary Toggle manager active flag
// @Tags Managers
// @Accept json
// @Produce json
// @Param payload body dto.ToggleStatusRequest true "Manager id"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /manager/toggle-status [patch]
func (h *ManagerHandler) ToggleStatus(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.ToggleStatusRequest
	if !bindJSON(c, &req, "manager id required") {
		return
	}
	res, err := h.service.ToggleStatus(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
