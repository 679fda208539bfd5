package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-logistics-api/internal/service"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
	"github.com/noah-isme/exam-logistics-api/pkg/response"
)

// FloorHandler handles floor endpoints.
type FloorHandler struct {
	service *service.FloorService
}

// NewFloorHandler constructs a floor handler.
func NewFloorHandler(svc *service.FloorService) *FloorHandler {
	return &FloorHandler{service: svc}
}

// ListByBlock godoc
// @Summary List floors in a block
// @Tags Floors
// @Produce json
// @Param id path string true "Block ID"
// @Success 200 {object} response.Envelope
// @Router /blocks/{id}/floors [get]
func (h *FloorHandler) ListByBlock(c *gin.Context) {
	floors, err := h.service.ListByBlock(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, floors, nil)
}

// Create godoc
// @Summary Create floor
// @Tags Floors
// @Accept json
// @Produce json
// @Param payload body service.FloorRequest true "Floor payload"
// @Success 201 {object} response.Envelope
// @Router /floors [post]
func (h *FloorHandler) Create(c *gin.Context) {
	var req service.FloorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	floor, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, floor)
}

// Update godoc
// @Summary Update floor
// @Tags Floors
// @Accept json
// @Produce json
// @Param id path string true "Floor ID"
// @Param payload body service.FloorRequest true "Floor payload"
// @Success 200 {object} response.Envelope
// @Router /floors/{id} [put]
func (h *FloorHandler) Update(c *gin.Context) {
	var req service.FloorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	floor, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, floor, nil)
}

// Delete godoc
// @Summary Delete floor
// @Tags Floors
// @Produce json
// @Param id path string true "Floor ID"
// @Success 204
// @Router /floors/{id} [delete]
func (h *FloorHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
