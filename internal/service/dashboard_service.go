package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/school-roster-api/internal/dto"
	"github.com/noah-isme/school-roster-api/internal/models"
	appErrors "github.com/noah-isme/school-roster-api/pkg/errors"
)

const unknownLabel = "Unknown"

type studentLister interface {
	List(ctx context.Context) ([]models.Student, error)
}

// DashboardService aggregates the visible roster into dashboard views.
type DashboardService struct {
	students studentLister
	cache    *CacheService
	logger   *zap.Logger
}

// NewDashboardService constructs a DashboardService. cache may be nil.
func NewDashboardService(students studentLister, cache *CacheService, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{students: students, cache: cache, logger: logger}
}

// Summary returns the headline counts. The boolean reports a cache hit.
func (s *DashboardService) Summary(ctx context.Context, viewer models.UserProfile) (*dto.DashboardSummary, bool, error) {
	key := dashboardKey("summary", viewer)
	var cached dto.DashboardSummary
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	students, err := s.visible(ctx, viewer)
	if err != nil {
		return nil, false, err
	}
	summary := BuildSummary(students)
	s.cache.Set(ctx, key, summary)
	return &summary, false, nil
}

// Classes returns per-grade status counts in canonical grade order.
func (s *DashboardService) Classes(ctx context.Context, viewer models.UserProfile) (*dto.ClassesOverview, bool, error) {
	key := dashboardKey("classes", viewer)
	var cached dto.ClassesOverview
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	students, err := s.visible(ctx, viewer)
	if err != nil {
		return nil, false, err
	}
	overview := BuildClassesOverview(students, listedGrades(viewer))
	s.cache.Set(ctx, key, overview)
	return &overview, false, nil
}

// Class returns one grade's counts and students. Grades the viewer cannot see,
// and grades that neither exist nor have students, are reported as missing.
func (s *DashboardService) Class(ctx context.Context, viewer models.UserProfile, grade string) (*dto.ClassDetail, bool, error) {
	grade = strings.TrimSpace(grade)
	if !CanAccessGrade(grade, viewer) {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	key := dashboardKey("class:"+grade, viewer)
	var cached dto.ClassDetail
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	students, err := s.visible(ctx, viewer)
	if err != nil {
		return nil, false, err
	}
	members := ApplyFilter(students, models.StudentFilter{Grade: grade})
	if len(members) == 0 && !models.ValidGrade(grade) {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	detail := dto.ClassDetail{Stats: classStats(grade, members), Students: members}
	s.cache.Set(ctx, key, detail)
	return &detail, false, nil
}

func (s *DashboardService) visible(ctx context.Context, viewer models.UserProfile) ([]models.Student, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	return VisibleStudents(students, viewer), nil
}

// BuildSummary tallies students by grade, country and status. Missing grades and
// countries are counted as Unknown; every status is listed even when zero.
func BuildSummary(students []models.Student) dto.DashboardSummary {
	grades := map[string]int{}
	countries := map[string]int{}
	statuses := map[models.StudentStatus]int{}
	for _, st := range students {
		grades[labelOrUnknown(st.Grade)]++
		countries[labelOrUnknown(st.ResidingCountry)]++
		status := st.Status
		if status == "" {
			status = models.StudentStatusActive
		}
		statuses[status]++
	}

	byStatus := make([]dto.CountEntry, 0, len(models.StudentStatuses))
	for _, status := range models.StudentStatuses {
		byStatus = append(byStatus, dto.CountEntry{Name: string(status), Count: statuses[status]})
	}

	return dto.DashboardSummary{
		TotalStudents:  len(students),
		TotalGrades:    len(grades),
		TotalCountries: len(countries),
		ByGrade:        sortedCounts(grades),
		ByCountry:      sortedCounts(countries),
		ByStatus:       byStatus,
	}
}

// BuildClassesOverview returns stats for every listed grade plus any other grade
// present among students, in canonical order with unknown grades last.
func BuildClassesOverview(students []models.Student, listed []string) dto.ClassesOverview {
	byGrade := map[string][]models.Student{}
	for _, st := range students {
		g := labelOrUnknown(st.Grade)
		byGrade[g] = append(byGrade[g], st)
	}

	names := make(map[string]struct{}, len(listed)+len(byGrade))
	for _, g := range listed {
		names[g] = struct{}{}
	}
	for g := range byGrade {
		names[g] = struct{}{}
	}
	ordered := sortedKeys(names)
	sortGrades(ordered)

	overview := dto.ClassesOverview{Classes: make([]dto.ClassStats, 0, len(ordered))}
	for _, g := range ordered {
		overview.Classes = append(overview.Classes, classStats(g, byGrade[g]))
	}
	overview.Totals = classStats("Total", students)
	return overview
}

func classStats(name string, students []models.Student) dto.ClassStats {
	stats := dto.ClassStats{Name: name, Total: len(students)}
	for _, st := range students {
		switch st.Status {
		case models.StudentStatusActive, "":
			stats.Active++
		case models.StudentStatusQuit:
			stats.Quit++
		case models.StudentStatusApplication:
			stats.Application++
		case models.StudentStatusTCIssued:
			stats.TCIssued++
		}
	}
	return stats
}

func listedGrades(viewer models.UserProfile) []string {
	switch viewer.Role {
	case models.RoleAdmin:
		return models.Grades
	case models.RoleTeacher:
		return viewer.TeacherClasses
	default:
		return nil
	}
}

// dashboardKey scopes cached views: admins share one entry, teachers share
// entries with others assigned the same classes.
func dashboardKey(view string, viewer models.UserProfile) string {
	scope := "none"
	switch viewer.Role {
	case models.RoleAdmin:
		scope = "all"
	case models.RoleTeacher:
		classes := append([]string(nil), viewer.TeacherClasses...)
		sort.Strings(classes)
		scope = "classes=" + strings.Join(classes, ",")
	}
	return "dash:" + view + ":" + scope
}

func labelOrUnknown(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return unknownLabel
	}
	return v
}

func sortedCounts(counts map[string]int) []dto.CountEntry {
	out := make([]dto.CountEntry, 0, len(counts))
	for name, n := range counts {
		out = append(out, dto.CountEntry{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
