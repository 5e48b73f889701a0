package service

import (
	"sort"
	"strings"

	"github.com/noah-isme/school-roster-api/internal/models"
)

// VisibleStudents returns the students viewer may see. Admins see everything,
// teachers see only students whose grade is in their assigned classes and any
// other role sees nothing. The input order is preserved.
func VisibleStudents(students []models.Student, viewer models.UserProfile) []models.Student {
	switch viewer.Role {
	case models.RoleAdmin:
		out := make([]models.Student, len(students))
		copy(out, students)
		return out
	case models.RoleTeacher:
		allowed := classSet(viewer.TeacherClasses)
		out := make([]models.Student, 0, len(students))
		for _, s := range students {
			if _, ok := allowed[s.Grade]; ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []models.Student{}
	}
}

// CanAccess reports whether viewer may see student.
func CanAccess(student models.Student, viewer models.UserProfile) bool {
	return CanAccessGrade(student.Grade, viewer)
}

// CanAccessGrade reports whether viewer may see students of grade.
func CanAccessGrade(grade string, viewer models.UserProfile) bool {
	switch viewer.Role {
	case models.RoleAdmin:
		return true
	case models.RoleTeacher:
		for _, c := range viewer.TeacherClasses {
			if c == grade {
				return true
			}
		}
	}
	return false
}

// ApplyFilter keeps the students matching every non-empty predicate in filter.
func ApplyFilter(students []models.Student, filter models.StudentFilter) []models.Student {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]models.Student, 0, len(students))
	for _, s := range students {
		if filter.Status != "" && string(s.Status) != filter.Status {
			continue
		}
		if filter.Grade != "" && s.Grade != filter.Grade {
			continue
		}
		if filter.ResidingCountry != "" && s.ResidingCountry != filter.ResidingCountry {
			continue
		}
		if filter.FatherName != "" && s.FatherName != filter.FatherName {
			continue
		}
		if filter.MotherName != "" && s.MotherName != filter.MotherName {
			continue
		}
		if search != "" && !matchesSearch(s, search) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func matchesSearch(s models.Student, needle string) bool {
	for _, field := range []string{s.Name, s.RollNumber, s.Phone, s.Email} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// FilterOptions collects the distinct non-empty values offered by each filter.
func FilterOptions(students []models.Student) models.StudentFilterOptions {
	grades := map[string]struct{}{}
	countries := map[string]struct{}{}
	fathers := map[string]struct{}{}
	mothers := map[string]struct{}{}
	for _, s := range students {
		addNonEmpty(grades, s.Grade)
		addNonEmpty(countries, s.ResidingCountry)
		addNonEmpty(fathers, s.FatherName)
		addNonEmpty(mothers, s.MotherName)
	}

	gradeList := sortedKeys(grades)
	sortGrades(gradeList)

	return models.StudentFilterOptions{
		Grades:      gradeList,
		Countries:   sortedKeys(countries),
		FatherNames: sortedKeys(fathers),
		MotherNames: sortedKeys(mothers),
		Statuses:    append([]models.StudentStatus(nil), models.StudentStatuses...),
	}
}

// sortGrades orders grades canonically; unknown grades follow alphabetically.
func sortGrades(grades []string) {
	sort.SliceStable(grades, func(i, j int) bool {
		ri, rj := models.GradeRank(grades[i]), models.GradeRank(grades[j])
		if ri != rj {
			return ri < rj
		}
		return grades[i] < grades[j]
	})
}

func classSet(classes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(classes))
	for _, c := range classes {
		set[c] = struct{}{}
	}
	return set
}

func addNonEmpty(set map[string]struct{}, v string) {
	if v = strings.TrimSpace(v); v != "" {
		set[v] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
