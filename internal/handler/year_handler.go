package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-logistics-api/internal/service"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
	"github.com/noah-isme/exam-logistics-api/pkg/response"
)

// YearHandler handles academic year endpoints.
type YearHandler struct {
	service *service.YearService
}

// NewYearHandler constructs a year handler.
func NewYearHandler(svc *service.YearService) *YearHandler {
	return &YearHandler{service: svc}
}

// ListByProgram godoc
// @Summary List years of a program
// @Tags Years
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Router /programs/{id}/years [get]
func (h *YearHandler) ListByProgram(c *gin.Context) {
	years, err := h.service.ListByProgram(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, years, nil)
}

// Create godoc
// @Summary Create year
// @Tags Years
// @Accept json
// @Produce json
// @Param payload body service.YearRequest true "Year payload"
// @Success 201 {object} response.Envelope
// @Router /years [post]
func (h *YearHandler) Create(c *gin.Context) {
	var req service.YearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	year, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, year)
}

// Update godoc
// @Summary Update year
// @Tags Years
// @Accept json
// @Produce json
// @Param id path string true "Year ID"
// @Param payload body service.YearRequest true "Year payload"
// @Success 200 {object} response.Envelope
// @Router /years/{id} [put]
func (h *YearHandler) Update(c *gin.Context) {
	var req service.YearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	year, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// Delete godoc
// @Summary Delete year
// @Tags Years
// @Produce json
// @Param id path string true "Year ID"
// @Success 204
// @Router /years/{id} [delete]
func (h *YearHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
