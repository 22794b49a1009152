package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sekolahku/gradebook-api/internal/models"
	"github.com/sekolahku/gradebook-api/internal/service"
	appErrors "github.com/sekolahku/gradebook-api/pkg/errors"
	"github.com/sekolahku/gradebook-api/pkg/response"
)

// ReportHandler streams rendered gradebook exports.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// ExportGradebook godoc
// @Summary Export a class gradebook as CSV or PDF
// @Tags Reports
// @Produce octet-stream
// @Param classId path string true "Class ID"
// @Param termId query string true "Term ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /reports/classes/{classId}/gradebook [get]
func (h *ReportHandler) ExportGradebook(c *gin.Context) {
	file, err := h.reports.ExportClassGradebook(c.Request.Context(), c.Param("classId"), c.Query("termId"), reportFormat(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveReport(c, file)
}

// ExportRanking godoc
// @Summary Export a class ranking as CSV or PDF
// @Tags Reports
// @Produce octet-stream
// @Param classId path string true "Class ID"
// @Param termId query string true "Term ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /reports/classes/{classId}/rankings [get]
func (h *ReportHandler) ExportRanking(c *gin.Context) {
	file, err := h.reports.ExportClassRanking(c.Request.Context(), c.Param("classId"), c.Query("termId"), reportFormat(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveReport(c, file)
}

// ExportReportCard godoc
// @Summary Export a student report card as CSV or PDF
// @Tags Reports
// @Produce octet-stream
// @Param studentId path string true "Student ID"
// @Param termId query string true "Term ID"
// @Param format query string false "csv or pdf" default(pdf)
// @Success 200 {file} binary
// @Router /reports/students/{studentId}/report-card [get]
func (h *ReportHandler) ExportReportCard(c *gin.Context) {
	studentID := c.Param("studentId")
	claims := claimsFromContext(c)
	if claims != nil && claims.Role == models.RoleStudent {
		if claims.StudentID == nil || *claims.StudentID != studentID {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
	}
	format := service.ReportFormat(c.DefaultQuery("format", string(service.ReportFormatPDF)))
	file, err := h.reports.ExportReportCard(c.Request.Context(), studentID, c.Query("termId"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveReport(c, file)
}

func reportFormat(c *gin.Context) service.ReportFormat {
	return service.ReportFormat(c.DefaultQuery("format", string(service.ReportFormatCSV)))
}

func serveReport(c *gin.Context, file *service.ReportFile) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Payload)
}
