package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-logistics-api/internal/service"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
	"github.com/noah-isme/exam-logistics-api/pkg/response"
)

// InvigilatorHandler handles invigilator roster endpoints.
type InvigilatorHandler struct {
	service *service.InvigilatorService
}

// NewInvigilatorHandler constructs an invigilator handler.
func NewInvigilatorHandler(svc *service.InvigilatorService) *InvigilatorHandler {
	return &InvigilatorHandler{service: svc}
}

// List godoc
// @Summary List invigilators
// @Tags Invigilators
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /invigilators [get]
func (h *InvigilatorHandler) List(c *gin.Context) {
	invigilators, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invigilators, nil)
}

// Create godoc
// @Summary Create invigilator
// @Tags Invigilators
// @Accept json
// @Produce json
// @Param payload body service.InvigilatorRequest true "Invigilator payload"
// @Success 201 {object} response.Envelope
// @Router /invigilators [post]
func (h *InvigilatorHandler) Create(c *gin.Context) {
	var req service.InvigilatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	invigilator, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, invigilator)
}

// Update godoc
// @Summary Update invigilator
// @Tags Invigilators
// @Accept json
// @Produce json
// @Param id path string true "Invigilator ID"
// @Param payload body service.InvigilatorRequest true "Invigilator payload"
// @Success 200 {object} response.Envelope
// @Router /invigilators/{id} [put]
func (h *InvigilatorHandler) Update(c *gin.Context) {
	var req service.InvigilatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	invigilator, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invigilator, nil)
}

// Delete godoc
// @Summary Delete invigilator
// @Tags Invigilators
// @Produce json
// @Param id path string true "Invigilator ID"
// @Success 204
// @Router /invigilators/{id} [delete]
func (h *InvigilatorHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
