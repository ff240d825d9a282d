package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/blood-donation-api/internal/dto"
	"github.com/noah-isme/blood-donation-api/internal/middleware"
	"github.com/noah-isme/blood-donation-api/internal/models"
	"github.com/noah-isme/blood-donation-api/pkg/response"
)

type inventoryService interface {
	List(ctx context.Context, actor models.Actor, filter models.InventoryFilter) ([]models.InventoryItem, *models.Pagination, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.InventoryItem, error)
	ToggleExpired(ctx context.Context, actor models.Actor, id string) (*models.InventoryItem, error)
	Create(ctx context.Context, actor models.Actor, req dto.InventoryRequest) (*models.InventoryItem, error)
	Update(ctx context.Context, actor models.Actor, id string, req dto.InventoryRequest) (*models.InventoryItem, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
	Summary(ctx context.Context, actor models.Actor, hospitalID string) (*models.InventorySummary, bool, error)
}

// InventoryHandler exposes blood stock endpoints.
type InventoryHandler struct {
	service inventoryService
}

// NewInventoryHandler constructs the handler.
func NewInventoryHandler(svc inventoryService) *InventoryHandler {
	return &InventoryHandler{service: svc}
}

// List godoc
// @Summary List inventory
// @Tags Inventory
// @Produce json
// @Param hospitalId query string false "Hospital ID"
// @Param bloodType query string false "Blood type"
// @Param expiredStatus query string false "Valid, Soon or Expired"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /blood-inventory [get]
func (h *InventoryHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	filter := models.InventoryFilter{
		PageRequest:   pageRequest(c),
		HospitalID:    c.Query("hospitalId"),
		BloodType:     models.BloodType(c.Query("bloodType")),
		ExpiredStatus: models.ExpiredStatus(c.Query("expiredStatus")),
	}
	items, pagination, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondList(c, items, pagination)
}

// Summary godoc
// @Summary Stock totals per blood type
// @Tags Inventory
// @Produce json
// @Param hospitalId query string false "Hospital ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /blood-inventory/summary [get]
func (h *InventoryHandler) Summary(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	summary, hit, err := h.service.Summary(c.Request.Context(), actor, c.Query("hospitalId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	respondOK(c, summary)
}

// Get godoc
// @Summary Get inventory item
// @Tags Inventory
// @Produce json
// @Param id path string true "Inventory ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /blood-inventory/{id} [get]
func (h *InventoryHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	item, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, item)
}

// ToggleExpired godoc
// @Summary Recompute expiry status
// @Description Returns the item with its expiry status derived from the current date
// @Tags Inventory
// @Produce json
// @Param id path string true "Inventory ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /blood-inventory/toggle-expired/{id} [patch]
func (h *InventoryHandler) ToggleExpired(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	item, err := h.service.ToggleExpired(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Add inventory
// @Tags Inventory
// @Accept json
// @Produce json
// @Param payload body dto.InventoryRequest true "Inventory payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /blood-inventory [post]
func (h *InventoryHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.InventoryRequest
	if !bindJSON(c, &req, "invalid inventory payload") {
		return
	}
	item, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update inventory
// @Tags Inventory
// @Accept json
// @Produce json
// @Param id path string true "Inventory ID"
// @Param payload body dto.InventoryRequest true "Inventory payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /blood-inventory/{id} [put]
func (h *InventoryHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.InventoryRequest
	if !bindJSON(c, &req, "invalid inventory payload") {
		return
	}
	item, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete inventory
// @Tags Inventory
// @Param id path string true "Inventory ID"
// @Success 204
// @Security BearerAuth
// @Router /blood-inventory/{id} [delete]
func (h *InventoryHandler) Delete(c *gin.Context) {
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
