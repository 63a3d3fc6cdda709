package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/sekolahkita/siakad-backend/internal/model"
	"github.com/sekolahkita/siakad-backend/internal/response"
	"github.com/sekolahkita/siakad-backend/internal/service"
	"github.com/sekolahkita/siakad-backend/internal/validator"
)

// AcademicYearHandler handles academic year management endpoints.
type AcademicYearHandler struct {
	yearService *service.AcademicYearService
	log         zerolog.Logger
}

// NewAcademicYearHandler creates a new AcademicYearHandler.
func NewAcademicYearHandler(yearService *service.AcademicYearService, log zerolog.Logger) *AcademicYearHandler {
	return &AcademicYearHandler{
		yearService: yearService,
		log:         log.With().Str("component", "academic_year_handler").Logger(),
	}
}

// List godoc
// GET /api/v1/admin/academic-years
func (h *AcademicYearHandler) List(c *gin.Context) {
	years, err := h.yearService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"academic_years": years})
}

// GetActive godoc
// GET /api/v1/admin/academic-years/active
func (h *AcademicYearHandler) GetActive(c *gin.Context) {
	year, err := h.yearService.GetActive(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"academic_year": year})
}

// Create godoc
// POST /api/v1/admin/academic-years
func (h *AcademicYearHandler) Create(c *gin.Context) {
	var req model.CreateAcademicYearRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	year, err := h.yearService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"academic_year": year})
}

// Update godoc
// PUT /api/v1/admin/academic-years/:id
func (h *AcademicYearHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateAcademicYearRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	year, err := h.yearService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"academic_year": year})
}

// Activate godoc
// POST /api/v1/admin/academic-years/:id/activate
func (h *AcademicYearHandler) Activate(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.yearService.Activate(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "tahun ajaran berhasil diaktifkan"})
}

// Delete godoc
// DELETE /api/v1/admin/academic-years/:id
func (h *AcademicYearHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.yearService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "tahun ajaran berhasil dihapus"})
}
