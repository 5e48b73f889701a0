package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-roster-api/internal/dto"
	"github.com/noah-isme/school-roster-api/internal/models"
	appErrors "github.com/noah-isme/school-roster-api/pkg/errors"
	"github.com/noah-isme/school-roster-api/pkg/imageproc"
)

// Export formats accepted by StudentService.Export.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	CreateMany(ctx context.Context, students []models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

type photoNormalizer interface {
	Normalize(dataURL string) (string, error)
}

// ExportFile is a rendered roster ready to be sent as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// StudentServiceParams groups constructor dependencies.
type StudentServiceParams struct {
	Repo      studentRepository
	Photos    photoNormalizer
	Codec     *RosterCodec
	Cache     *CacheService
	Metrics   *MetricsService
	Validator *validator.Validate
	Logger    *zap.Logger
}

// StudentService applies access scoping and validation on top of the student store.
type StudentService struct {
	repo      studentRepository
	photos    photoNormalizer
	codec     *RosterCodec
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentService constructs a StudentService.
func NewStudentService(params StudentServiceParams) *StudentService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = NewValidator()
	}
	codec := params.Codec
	if codec == nil {
		codec = NewRosterCodec()
	}
	return &StudentService{
		repo:      params.Repo,
		photos:    params.Photos,
		codec:     codec,
		cache:     params.Cache,
		metrics:   params.Metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns the students visible to viewer that match filter.
func (s *StudentService) List(ctx context.Context, viewer models.UserProfile, filter models.StudentFilter) ([]models.Student, error) {
	visible, err := s.visible(ctx, viewer)
	if err != nil {
		return nil, err
	}
	return ApplyFilter(visible, filter), nil
}

// FilterOptions returns the distinct filter values among the visible students.
func (s *StudentService) FilterOptions(ctx context.Context, viewer models.UserProfile) (*models.StudentFilterOptions, error) {
	visible, err := s.visible(ctx, viewer)
	if err != nil {
		return nil, err
	}
	opts := FilterOptions(visible)
	return &opts, nil
}

// Get fetches one student. Students outside the viewer's scope are reported as missing.
func (s *StudentService) Get(ctx context.Context, viewer models.UserProfile, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, studentNotFound()
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	if !CanAccess(*student, viewer) {
		return nil, studentNotFound()
	}
	return student, nil
}

// Create registers a new student. Client supplied identifiers and timestamps are ignored.
func (s *StudentService) Create(ctx context.Context, viewer models.UserProfile, req dto.CreateStudentRequest) (*models.Student, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Grade = strings.TrimSpace(req.Grade)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	if !CanAccessGrade(req.Grade, viewer) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "grade is outside your assigned classes")
	}

	student := req.ToStudent()
	if student.Status == "" {
		student.Status = models.StudentStatusActive
	}
	photo, err := s.normalizePhoto(req.Photo)
	if err != nil {
		return nil, err
	}
	student.Photo = photo

	if err := s.repo.Create(ctx, &student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.cache.Invalidate(ctx, DashboardCachePattern)
	s.logger.Info("student created", zap.String("student_id", student.ID), zap.String("user_id", viewer.ID))
	return &student, nil
}

// Update merges the supplied fields over the stored student.
func (s *StudentService) Update(ctx context.Context, viewer models.UserProfile, id string, req dto.UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	student, err := s.Get(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	req.Apply(student)
	student.Name = strings.TrimSpace(student.Name)
	if student.Name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name is required")
	}
	if student.Status == "" {
		student.Status = models.StudentStatusActive
	}
	// Stored grades predating validation are kept unless the request replaces them.
	if req.Grade != nil {
		student.Grade = strings.TrimSpace(student.Grade)
		if !models.ValidGrade(student.Grade) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "grade must be one of "+strings.Join(models.Grades, ", "))
		}
		if !CanAccessGrade(student.Grade, viewer) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "grade is outside your assigned classes")
		}
	}
	if req.Photo != nil {
		photo, err := s.normalizePhoto(req.Photo)
		if err != nil {
			return nil, err
		}
		student.Photo = photo
	}

	if err := s.repo.Update(ctx, student); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, studentNotFound()
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	s.cache.Invalidate(ctx, DashboardCachePattern)
	s.logger.Info("student updated", zap.String("student_id", student.ID), zap.String("user_id", viewer.ID))
	return student, nil
}

// Delete removes a student together with its attendance history.
func (s *StudentService) Delete(ctx context.Context, viewer models.UserProfile, id string) error {
	if _, err := s.Get(ctx, viewer, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return studentNotFound()
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.cache.Invalidate(ctx, DashboardCachePattern)
	s.logger.Info("student deleted", zap.String("student_id", id), zap.String("user_id", viewer.ID))
	return nil
}

// Import inserts every acceptable row of a roster CSV in one batch.
func (s *StudentService) Import(ctx context.Context, viewer models.UserProfile, r io.Reader) (*models.ImportResult, error) {
	if viewer.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can import students")
	}
	batch, err := s.codec.Import(r)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateMany(ctx, batch.Students); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import students")
	}
	s.metrics.RecordImport(len(batch.Students), batch.Skipped)
	s.cache.Invalidate(ctx, DashboardCachePattern)
	s.logger.Info("students imported",
		zap.Int("imported", len(batch.Students)),
		zap.Int("skipped", batch.Skipped),
		zap.String("user_id", viewer.ID),
	)
	return &models.ImportResult{Imported: len(batch.Students), Skipped: batch.Skipped}, nil
}

// Export renders the viewer's filtered students as CSV or PDF.
func (s *StudentService) Export(ctx context.Context, viewer models.UserProfile, filter models.StudentFilter, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	students, err := s.List(ctx, viewer, filter)
	if err != nil {
		return nil, err
	}

	file := &ExportFile{Filename: fmt.Sprintf("students_%s.%s", s.now().UTC().Format("2006-01-02"), format)}
	switch format {
	case ExportFormatPDF:
		file.ContentType = "application/pdf"
		file.Body, err = s.codec.ExportPDF(students, "Students")
	default:
		file.ContentType = "text/csv; charset=utf-8"
		file.Body, err = s.codec.ExportCSV(students)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return file, nil
}

func (s *StudentService) visible(ctx context.Context, viewer models.UserProfile) ([]models.Student, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return VisibleStudents(students, viewer), nil
}

// normalizePhoto maps an empty photo to none and re-encodes anything else.
func (s *StudentService) normalizePhoto(photo *string) (*string, error) {
	if photo == nil || strings.TrimSpace(*photo) == "" {
		return nil, nil
	}
	if s.photos == nil {
		return photo, nil
	}
	normalized, err := s.photos.Normalize(*photo)
	if err != nil {
		if errors.Is(err, imageproc.ErrTooLarge) {
			return nil, appErrors.Wrap(err, appErrors.ErrPayloadTooLarge.Code, appErrors.ErrPayloadTooLarge.Status, err.Error())
		}
		if errors.Is(err, imageproc.ErrMalformed) || errors.Is(err, imageproc.ErrUnsupported) {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to process photo")
	}
	return &normalized, nil
}

func studentNotFound() *appErrors.Error {
	return appErrors.Clone(appErrors.ErrNotFound, "student not found")
}
