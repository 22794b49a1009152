package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sekolahku/gradebook-api/internal/models"
	"github.com/sekolahku/gradebook-api/internal/service"
	appErrors "github.com/sekolahku/gradebook-api/pkg/errors"
	"github.com/sekolahku/gradebook-api/pkg/response"
)

// GradebookHandler exposes derived gradebook, ranking, and report card
// endpoints.
type GradebookHandler struct {
	gradebooks *service.GradebookService
	rankings   *service.RankingService
}

// NewGradebookHandler constructs handler.
func NewGradebookHandler(gradebooks *service.GradebookService, rankings *service.RankingService) *GradebookHandler {
	return &GradebookHandler{gradebooks: gradebooks, rankings: rankings}
}

// ClassGradebook godoc
// @Summary Full class gradebook
// @Tags Gradebook
// @Produce json
// @Param classId path string true "Class ID"
// @Param termId query string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{classId}/gradebook [get]
func (h *GradebookHandler) ClassGradebook(c *gin.Context) {
	gradebook, err := h.gradebooks.ClassGradebook(c.Request.Context(), c.Param("classId"), c.Query("termId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gradebook, nil)
}

// ClassRankings godoc
// @Summary Ranked cohort for a class and term
// @Tags Gradebook
// @Produce json
// @Param classId path string true "Class ID"
// @Param termId query string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{classId}/rankings [get]
func (h *GradebookHandler) ClassRankings(c *gin.Context) {
	termID := c.Query("termId")
	if termID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "termId is required"))
		return
	}
	ranking, fromCache, err := h.rankings.ClassRankings(c.Request.Context(), c.Param("classId"), termID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ranking, nil, map[string]interface{}{"cached": fromCache})
}

// Distribution godoc
// @Summary Overall score distribution for a class and term
// @Tags Gradebook
// @Produce json
// @Param classId path string true "Class ID"
// @Param termId query string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{classId}/distribution [get]
func (h *GradebookHandler) Distribution(c *gin.Context) {
	termID := c.Query("termId")
	if termID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "termId is required"))
		return
	}
	distribution, err := h.rankings.Distribution(c.Request.Context(), c.Param("classId"), termID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, distribution, nil)
}

// ReportCard godoc
// @Summary Student report card with cohort rank
// @Tags Gradebook
// @Produce json
// @Param studentId path string true "Student ID"
// @Param termId query string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/report-card [get]
func (h *GradebookHandler) ReportCard(c *gin.Context) {
	studentID := c.Param("studentId")
	claims := claimsFromContext(c)
	if claims != nil && claims.Role == models.RoleStudent {
		if claims.StudentID == nil || *claims.StudentID != studentID {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
	}
	card, err := h.gradebooks.StudentReportCard(c.Request.Context(), studentID, c.Query("termId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, card, nil)
}
