package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-roster-api/internal/dto"
	"github.com/noah-isme/school-roster-api/internal/models"
	appErrors "github.com/noah-isme/school-roster-api/pkg/errors"
)

type attendanceRepository interface {
	FindInRange(ctx context.Context, studentID string, from, to time.Time) (*models.AttendanceRecord, error)
	Create(ctx context.Context, record *models.AttendanceRecord) error
	UpdateStatus(ctx context.Context, id string, status models.AttendanceStatus, updatedAt time.Time) error
	ListByStudent(ctx context.Context, studentID string) ([]models.AttendanceRecord, error)
	DeleteForStudent(ctx context.Context, studentID, id string) error
}

type studentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// AttendanceService keeps at most one attendance record per student and calendar day.
type AttendanceService struct {
	repo      attendanceRepository
	students  studentFinder
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	loc       *time.Location
	now       func() time.Time
}

// NewAttendanceService constructs an AttendanceService. Calendar days are
// resolved in loc, UTC when nil.
func NewAttendanceService(repo attendanceRepository, students studentFinder, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, loc *time.Location) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceService{
		repo:      repo,
		students:  students,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		loc:       loc,
		now:       time.Now,
	}
}

// Mark records status for the student on the requested day, updating the day's
// existing record when there is one. Concurrent marks for the same day are not
// serialized.
func (s *AttendanceService) Mark(ctx context.Context, viewer models.UserProfile, studentID string, req dto.MarkAttendanceRequest) (*models.MarkAttendanceResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "date and status are required")
	}
	day, err := parseCalendarDay(req.Date, s.loc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be YYYY-MM-DD or an RFC3339 timestamp")
	}
	if err := s.requireStudent(ctx, viewer, studentID); err != nil {
		return nil, err
	}

	status := models.AttendanceStatus(req.Status)
	now := s.now().UTC()

	existing, err := s.repo.FindInRange(ctx, studentID, day, day.AddDate(0, 0, 1))
	switch {
	case err == nil:
		if err := s.repo.UpdateStatus(ctx, existing.ID, status, now); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance")
		}
		s.metrics.RecordAttendanceMark(false)
		s.logger.Info("attendance updated", zap.String("student_id", studentID), zap.String("record_id", existing.ID), zap.String("status", req.Status))
		return &models.MarkAttendanceResult{RecordID: existing.ID, Created: false, Message: "Attendance updated"}, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	record := &models.AttendanceRecord{StudentID: studentID, Date: day, Status: status, CreatedAt: now}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	s.metrics.RecordAttendanceMark(true)
	s.logger.Info("attendance recorded", zap.String("student_id", studentID), zap.String("record_id", record.ID), zap.String("status", req.Status))
	return &models.MarkAttendanceResult{RecordID: record.ID, Created: true, Message: "Attendance recorded"}, nil
}

// List returns the student's records, newest day first, with a summary.
func (s *AttendanceService) List(ctx context.Context, viewer models.UserProfile, studentID string) (*models.AttendanceHistory, error) {
	if err := s.requireStudent(ctx, viewer, studentID); err != nil {
		return nil, err
	}
	records, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	if records == nil {
		records = []models.AttendanceRecord{}
	}
	for i := range records {
		records[i].Date = records[i].Date.In(s.loc)
	}
	return &models.AttendanceHistory{Records: records, Summary: SummarizeAttendance(records)}, nil
}

// Delete removes a record of the student. A record belonging to another student
// is reported as missing and left untouched.
func (s *AttendanceService) Delete(ctx context.Context, viewer models.UserProfile, studentID string, req dto.DeleteAttendanceRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "attendanceId is required")
	}
	if err := s.requireStudent(ctx, viewer, studentID); err != nil {
		return err
	}
	if err := s.repo.DeleteForStudent(ctx, studentID, req.AttendanceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance")
	}
	s.logger.Info("attendance deleted", zap.String("student_id", studentID), zap.String("record_id", req.AttendanceID))
	return nil
}

func (s *AttendanceService) requireStudent(ctx context.Context, viewer models.UserProfile, studentID string) error {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return studentNotFound()
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	if !CanAccess(*student, viewer) {
		return studentNotFound()
	}
	return nil
}

// SummarizeAttendance counts records per status. Percentage is the share of
// Present marks rounded to one decimal, zero without records.
func SummarizeAttendance(records []models.AttendanceRecord) models.AttendanceSummary {
	summary := models.AttendanceSummary{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case models.AttendanceStatusPresent:
			summary.Present++
		case models.AttendanceStatusAbsent:
			summary.Absent++
		case models.AttendanceStatusLeave:
			summary.Leave++
		}
	}
	if summary.Total > 0 {
		summary.Percentage = math.Round(float64(summary.Present)/float64(summary.Total)*1000) / 10
	}
	return summary
}
