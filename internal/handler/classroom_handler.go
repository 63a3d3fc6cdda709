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

// ClassroomHandler handles classroom management endpoints.
type ClassroomHandler struct {
	classroomService *service.ClassroomService
	log              zerolog.Logger
}

// NewClassroomHandler creates a new ClassroomHandler.
func NewClassroomHandler(classroomService *service.ClassroomService, log zerolog.Logger) *ClassroomHandler {
	return &ClassroomHandler{
		classroomService: classroomService,
		log:              log.With().Str("component", "classroom_handler").Logger(),
	}
}

// List godoc
// GET /api/v1/admin/classrooms?academic_year=N
func (h *ClassroomHandler) List(c *gin.Context) {
	academicYearID, _ := strconv.Atoi(c.Query("academic_year"))

	classrooms, err := h.classroomService.List(c.Request.Context(), academicYearID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"classrooms": classrooms})
}

// Get godoc
// GET /api/v1/admin/classrooms/:id
func (h *ClassroomHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	classroom, err := h.classroomService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"classroom": classroom})
}

// Create godoc
// POST /api/v1/admin/classrooms
func (h *ClassroomHandler) Create(c *gin.Context) {
	var req model.CreateClassroomRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	classroom := &model.Classroom{
		Name:           req.Name,
		AcademicYearID: req.AcademicYearID,
	}
	if err := h.classroomService.Create(c.Request.Context(), classroom); err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"classroom": classroom})
}

// Update godoc
// PUT /api/v1/admin/classrooms/:id
func (h *ClassroomHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateClassroomRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	classroom := &model.Classroom{
		ID:             id,
		Name:           req.Name,
		AcademicYearID: req.AcademicYearID,
	}
	if err := h.classroomService.Update(c.Request.Context(), classroom); err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"classroom": classroom})
}

// Delete godoc
// DELETE /api/v1/admin/classrooms/:id
func (h *ClassroomHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.classroomService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "kelas berhasil dihapus"})
}
