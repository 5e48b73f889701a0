package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-roster-api/internal/dto"
	"github.com/noah-isme/school-roster-api/internal/models"
	"github.com/noah-isme/school-roster-api/internal/service"
	"github.com/noah-isme/school-roster-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context, viewer models.UserProfile, filter models.StudentFilter) ([]models.Student, error)
	FilterOptions(ctx context.Context, viewer models.UserProfile) (*models.StudentFilterOptions, error)
	Get(ctx context.Context, viewer models.UserProfile, id string) (*models.Student, error)
	Create(ctx context.Context, viewer models.UserProfile, req dto.CreateStudentRequest) (*models.Student, error)
	Update(ctx context.Context, viewer models.UserProfile, id string, req dto.UpdateStudentRequest) (*models.Student, error)
	Delete(ctx context.Context, viewer models.UserProfile, id string) error
	Import(ctx context.Context, viewer models.UserProfile, r io.Reader) (*models.ImportResult, error)
	Export(ctx context.Context, viewer models.UserProfile, filter models.StudentFilter, format string) (*service.ExportFile, error)
}

// StudentHandler manages student endpoints.
type StudentHandler struct {
	service        studentService
	importMaxBytes int64
}

// NewStudentHandler constructs the handler. importMaxBytes bounds CSV uploads.
func NewStudentHandler(svc studentService, importMaxBytes int64) *StudentHandler {
	if importMaxBytes <= 0 {
		importMaxBytes = 5 << 20
	}
	return &StudentHandler{service: svc, importMaxBytes: importMaxBytes}
}

// List godoc
// @Summary List students
// @Description Students visible to the caller, optionally filtered
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status"
// @Param grade query string false "Grade"
// @Param residingCountry query string false "Residing country"
// @Param fatherName query string false "Father name"
// @Param motherName query string false "Mother name"
// @Param q query string false "Search name, roll number, phone or email"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	user, ok := viewer(c)
	if !ok {
		return
	}
	students, err := h.service.List(c.Request.Context(), user, studentFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, map[string]interface{}{"total": len(students)})
}

// Filters godoc
// @Summary Filter options
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /students/filters [get]
func (h *StudentHandler) Filters(c *gin.Context) {
	user, ok := viewer(c)
	if !ok {
		return
	}
	opts, err := h.service.FilterOptions(c.Request.Context(), user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, opts)
}

// Get godoc
// @Summary Get student
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	user, ok := viewer(c)
	if !ok {
		return
	}
	student, err := h.service.Get(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	user, ok := viewer(c)
	if !ok {
		return
	}
	var req dto.CreateStudentRequest
	if err := bindJSON(c, &req, "invalid student payload"); err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.service.Create(c.Request.Context(), user, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Description Supplied fields overwrite the stored ones; unknown keys are rejected
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param payload body dto.UpdateStudentRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	user, ok := viewer(c)
	if !ok {
		return
	}
	var req dto.UpdateStudentRequest
	if err := bindStrictJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.service.Update(c.Request.Context(), user, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Delete godoc
// @Summary Delete student
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	user, ok := viewer(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), user, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "Student deleted successfully"})
}

// Import godoc
// @Summary Import students from CSV
// @Description Admin only. Accepts multipart field "file" or a text/csv body
// @Tags Students
// @Accept mpfd
// @Accept plain
// @Produce json
// @Security BearerAuth
// @Param file formData file false "CSV file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /students/import [post]
func (h *StudentHandler) Import(c *gin.Context) {
	user, ok := viewer(c)
	if !ok {
		return
	}
	payload, err := readUpload(c, h.importMaxBytes)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.Import(c.Request.Context(), user, bytes.NewReader(payload))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Export godoc
// @Summary Export students
// @Description Downloads the caller's visible, filtered students
// @Tags Students
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /students/export [get]
func (h *StudentHandler) Export(c *gin.Context) {
	user, ok := viewer(c)
	if !ok {
		return
	}
	file, err := h.service.Export(c.Request.Context(), user, studentFilterFromQuery(c), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
