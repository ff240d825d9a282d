package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/blood-donation-api/internal/dto"
	"github.com/noah-isme/blood-donation-api/internal/models"
	"github.com/noah-isme/blood-donation-api/pkg/response"
)

type donorService interface {
	Register(ctx context.Context, req dto.CreateDonorRequest) (*models.Donor, error)
	List(ctx context.Context, actor models.Actor, filter models.AccountFilter) ([]models.Donor, *models.Pagination, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Donor, error)
	Update(ctx context.Context, actor models.Actor, id string, req dto.UpdateDonorRequest) (*models.Donor, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
}

// DonorHandler exposes donor account endpoints.
type DonorHandler struct {
	service donorService
}

// NewDonorHandler constructs the handler.
func NewDonorHandler(svc donorService) *DonorHandler {
	return &DonorHandler{service: svc}
}

// Register godoc
// @Summary Register donor
// @Description Public donor self registration
// @Tags Donors
// @Accept json
// @Produce json
// @Param payload body dto.CreateDonorRequest true "Donor payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /donor [post]
func (h *DonorHandler) Register(c *gin.Context) {
	var req dto.CreateDonorRequest
	if !bindJSON(c, &req, "invalid donor payload") {
		return
	}
	donor, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, donor)
}

// List godoc
// @Summary List donors
// @Tags Donors
// @Produce json
// @Param search query string false "Name or email search"
// @Param bloodType query string false "Blood type"
// @Param active query bool false "Active flag"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /donor [get]
func (h *DonorHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	filter := models.AccountFilter{
		PageRequest: pageRequest(c),
		Search:      c.Query("search"),
		Active:      boolQuery(c, "active"),
		BloodType:   models.BloodType(c.Query("bloodType")),
	}
	donors, pagination, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondList(c, donors, pagination)
}

// Get godoc
// @Summary Get donor
// @Tags Donors
// @Produce json
// @Param id path string true "Donor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /donor/{id} [get]
func (h *DonorHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	donor, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, donor)
}

// Update godoc
// @Summary Update donor
// @Tags Donors
// @Accept json
// @Produce json
// @Param id path string true "Donor ID"
// @Param payload body dto.UpdateDonorRequest true "Donor payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /donor/{id} [put]
func (h *DonorHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateDonorRequest
	if !bindJSON(c, &req, "invalid donor payload") {
		return
	}
	donor, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, donor, nil)
}

// Delete godoc
// @Summary Deactivate donor
// @Tags Donors
// @Param id path string true "Donor ID"
// @Success 204
// @Security BearerAuth
// @Router /donor/{id} [delete]
func (h *DonorHandler) Delete(c *gin.Context) {
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
