package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-logistics-api/internal/service"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
	"github.com/noah-isme/exam-logistics-api/pkg/response"
)

// BranchHandler handles branch endpoints.
type BranchHandler struct {
	service *service.BranchService
}

// NewBranchHandler constructs a branch handler.
func NewBranchHandler(svc *service.BranchService) *BranchHandler {
	return &BranchHandler{service: svc}
}

// ListByYear godoc
// @Summary List branches of a year
// @Tags Branches
// @Produce json
// @Param id path string true "Year ID"
// @Success 200 {object} response.Envelope
// @Router /years/{id}/branches [get]
func (h *BranchHandler) ListByYear(c *gin.Context) {
	branches, err := h.service.ListByYear(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, branches, nil)
}

// Create godoc
// @Summary Create branch
// @Tags Branches
// @Accept json
// @Produce json
// @Param payload body service.BranchRequest true "Branch payload"
// @Success 201 {object} response.Envelope
// @Router /branches [post]
func (h *BranchHandler) Create(c *gin.Context) {
	var req service.BranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	branch, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, branch)
}

// Update godoc
// @Summary Update branch
// @Description Renaming a branch also refreshes the formatted name of its sections.
// @Tags Branches
// @Accept json
// @Produce json
// @Param id path string true "Branch ID"
// @Param payload body service.BranchRequest true "Branch payload"
// @Success 200 {object} response.Envelope
// @Router /branches/{id} [put]
func (h *BranchHandler) Update(c *gin.Context) {
	var req service.BranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	branch, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, branch, nil)
}

// Delete godoc
// @Summary Delete branch
// @Tags Branches
// @Produce json
// @Param id path string true "Branch ID"
// @Success 204
// @Router /branches/{id} [delete]
func (h *BranchHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
