package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-logistics-api/internal/service"
	"github.com/noah-isme/exam-logistics-api/pkg/response"
)

// ExportHandler serves exam timetable downloads.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs an export handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// TimetableCSV godoc
// @Summary Download the exam timetable as CSV
// @Tags Exports
// @Produce text/csv
// @Param subject_id query string false "Filter by subject"
// @Param exam_type query string false "Filter by exam type"
// @Param exam_date query string false "Filter by date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Router /exports/timetable.csv [get]
func (h *ExportHandler) TimetableCSV(c *gin.Context) {
	payload, filename, err := h.service.TimetableCSV(c.Request.Context(), timetableRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", payload)
}

// TimetablePDF godoc
// @Summary Download the exam timetable as PDF
// @Tags Exports
// @Produce application/pdf
// @Param subject_id query string false "Filter by subject"
// @Param exam_type query string false "Filter by exam type"
// @Param exam_date query string false "Filter by date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Router /exports/timetable.pdf [get]
func (h *ExportHandler) TimetablePDF(c *gin.Context) {
	payload, filename, err := h.service.TimetablePDF(c.Request.Context(), timetableRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", payload)
}

func timetableRequest(c *gin.Context) service.TimetableRequest {
	return service.TimetableRequest{
		SubjectID: c.Query("subject_id"),
		ExamType:  c.Query("exam_type"),
		ExamDate:  c.Query("exam_date"),
	}
}
