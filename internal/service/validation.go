package service

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/noah-isme/school-roster-api/internal/models"
	appErrors "github.com/noah-isme/school-roster-api/pkg/errors"
)

const (
	gradeTag            = "grade"
	studentStatusTag    = "student_status"
	attendanceStatusTag = "attendance_status"
)

var translator ut.Translator

func init() {
	english := en.New()
	translator, _ = ut.New(english, english).GetTranslator("en")
}

// NewValidator returns a validator that knows the roster's enumerations and
// reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = enTranslations.RegisterDefaultTranslations(v, translator)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(gradeTag, func(fl validator.FieldLevel) bool {
		return models.ValidGrade(fl.Field().String())
	})
	_ = v.RegisterValidation(studentStatusTag, func(fl validator.FieldLevel) bool {
		return models.StudentStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation(attendanceStatusTag, func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(fl.Field().String()).Valid()
	})

	registerTranslation(v, gradeTag, "{0} must be one of "+strings.Join(models.Grades, ", "))
	registerTranslation(v, studentStatusTag, "{0} must be one of Active, Quit, Application, TC Issued")
	registerTranslation(v, attendanceStatusTag, "{0} must be one of Present, Absent, Leave")
	registerTranslation(v, "required", "{0} is required", true)

	return v
}

func registerTranslation(v *validator.Validate, tag, text string, override ...bool) {
	ovrd := len(override) > 0 && override[0]
	_ = v.RegisterTranslation(tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field())
			return msg
		},
	)
}

// validationError converts validator output into a 400 with readable field messages.
func validationError(err error, fallback string) *appErrors.Error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fe.Translate(translator))
		}
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, strings.Join(msgs, "; "))
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fallback)
}

// parseCalendarDay resolves a client supplied date into midnight of that day in loc.
// Plain dates are read as calendar days of loc; timestamps are converted into loc first.
func parseCalendarDay(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, err
	}
	return startOfDay(t, loc), nil
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
