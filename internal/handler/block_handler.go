package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-logistics-api/internal/service"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
	"github.com/noah-isme/exam-logistics-api/pkg/response"
)

// BlockHandler handles campus block endpoints.
type BlockHandler struct {
	service *service.BlockService
}

// NewBlockHandler constructs a block handler.
func NewBlockHandler(svc *service.BlockService) *BlockHandler {
	return &BlockHandler{service: svc}
}

// List godoc
// @Summary List blocks
// @Tags Blocks
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /blocks [get]
func (h *BlockHandler) List(c *gin.Context) {
	blocks, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blocks, nil)
}

// Create godoc
// @Summary Create block
// @Tags Blocks
// @Accept json
// @Produce json
// @Param payload body service.BlockRequest true "Block payload"
// @Success 201 {object} response.Envelope
// @Router /blocks [post]
func (h *BlockHandler) Create(c *gin.Context) {
	var req service.BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	block, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, block)
}

// Update godoc
// @Summary Update block
// @Tags Blocks
// @Accept json
// @Produce json
// @Param id path string true "Block ID"
// @Param payload body service.BlockRequest true "Block payload"
// @Success 200 {object} response.Envelope
// @Router /blocks/{id} [put]
func (h *BlockHandler) Update(c *gin.Context) {
	var req service.BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	block, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, block, nil)
}

// Delete godoc
// @Summary Delete block
// @Tags Blocks
// @Produce json
// @Param id path string true "Block ID"
// @Success 204
// @Router /blocks/{id} [delete]
func (h *BlockHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
