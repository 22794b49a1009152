package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sekolahku/gradebook-api/internal/service"
	appErrors "github.com/sekolahku/gradebook-api/pkg/errors"
	"github.com/sekolahku/gradebook-api/pkg/response"
)

// GradeScaleHandler exposes letter grade scale endpoints.
type GradeScaleHandler struct {
	scales *service.GradeScaleService
}

// NewGradeScaleHandler constructs handler.
func NewGradeScaleHandler(scales *service.GradeScaleService) *GradeScaleHandler {
	return &GradeScaleHandler{scales: scales}
}

// List godoc
// @Summary List grade scales
// @Tags GradeScales
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grade-scales [get]
func (h *GradeScaleHandler) List(c *gin.Context) {
	scales, err := h.scales.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scales, nil)
}

// Get godoc
// @Summary Get a grade scale
// @Tags GradeScales
// @Produce json
// @Param id path string true "Scale ID"
// @Success 200 {object} response.Envelope
// @Router /grade-scales/{id} [get]
func (h *GradeScaleHandler) Get(c *gin.Context) {
	scale, err := h.scales.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scale, nil)
}

// Create godoc
// @Summary Create a grade scale
// @Tags GradeScales
// @Accept json
// @Produce json
// @Param payload body service.UpsertGradeScaleRequest true "Scale payload"
// @Success 201 {object} response.Envelope
// @Router /grade-scales [post]
func (h *GradeScaleHandler) Create(c *gin.Context) {
	var req service.UpsertGradeScaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	scale, err := h.scales.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, scale, nil)
}

// Update godoc
// @Summary Update a grade scale
// @Tags GradeScales
// @Accept json
// @Produce json
// @Param id path string true "Scale ID"
// @Param payload body service.UpsertGradeScaleRequest true "Scale payload"
// @Success 200 {object} response.Envelope
// @Router /grade-scales/{id} [put]
func (h *GradeScaleHandler) Update(c *gin.Context) {
	var req service.UpsertGradeScaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	scale, err := h.scales.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scale, nil)
}

// SetCurrent godoc
// @Summary Activate a grade scale
// @Tags GradeScales
// @Produce json
// @Param id path string true "Scale ID"
// @Success 200 {object} response.Envelope
// @Router /grade-scales/{id}/activate [post]
func (h *GradeScaleHandler) SetCurrent(c *gin.Context) {
	scale, err := h.scales.SetCurrent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scale, nil)
}

// Delete godoc
// @Summary Delete a grade scale
// @Tags GradeScales
// @Produce json
// @Param id path string true "Scale ID"
// @Success 204 {object} response.Envelope
// @Router /grade-scales/{id} [delete]
func (h *GradeScaleHandler) Delete(c *gin.Context) {
	if err := h.scales.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
