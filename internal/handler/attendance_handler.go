package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-roster-api/internal/dto"
	"github.com/noah-isme/school-roster-api/internal/models"
	"github.com/noah-isme/school-roster-api/pkg/response"
)

type attendanceService interface {
	Mark(ctx context.Context, viewer models.UserProfile, studentID string, req dto.MarkAttendanceRequest) (*models.MarkAttendanceResult, error)
	List(ctx context.Context, viewer models.UserProfile, studentID string) (*models.AttendanceHistory, error)
	Delete(ctx context.Context, viewer models.UserProfile, studentID string, req dto.DeleteAttendanceRequest) error
}

// AttendanceHandler exposes per-student attendance endpoints.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(svc attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Mark godoc
// @Summary Mark attendance
// @Description Records the student's status for a calendar day, replacing any existing mark for that day
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param payload body dto.MarkAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	user, ok := viewer(c)
	if !ok {
		return
	}
	var req dto.MarkAttendanceRequest
	if err := bindJSON(c, &req, "date and status are required"); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.Mark(c.Request.Context(), user, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	response.JSON(c, status, result)
}

// List godoc
// @Summary Attendance history
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	user, ok := viewer(c)
	if !ok {
		return
	}
	history, err := h.service.List(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history)
}

// Delete godoc
// @Summary Delete attendance record
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param payload body dto.DeleteAttendanceRequest true "Record to delete"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/attendance [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	user, ok := viewer(c)
	if !ok {
		return
	}
	var req dto.DeleteAttendanceRequest
	if err := bindJSON(c, &req, "attendanceId is required"); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), user, c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "Attendance record deleted successfully"})
}
