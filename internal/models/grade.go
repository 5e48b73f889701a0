package models

import "strings"

// Grades lists the school's classes in their canonical order.
var Grades = []string{
	"KG1", "KG2",
	"Grade 1", "Grade 2", "Grade 3", "Grade 4",
	"Grade 5", "Grade 6", "Grade 7", "Grade 8",
}

// UnknownGradeRank sorts grades outside the enumeration after every known grade.
const UnknownGradeRank = 999

var gradeRanks = func() map[string]int {
	ranks := make(map[string]int, len(Grades))
	for i, g := range Grades {
		ranks[g] = i
	}
	return ranks
}()

// ValidGrade reports whether grade belongs to the enumeration.
func ValidGrade(grade string) bool {
	_, ok := gradeRanks[grade]
	return ok
}

// CanonicalGrade matches grade case-insensitively against the enumeration and
// returns its canonical spelling.
func CanonicalGrade(grade string) (string, bool) {
	grade = strings.TrimSpace(grade)
	for _, g := range Grades {
		if strings.EqualFold(g, grade) {
			return g, true
		}
	}
	return "", false
}

// GradeRank returns the canonical position of grade.
func GradeRank(grade string) int {
	if rank, ok := gradeRanks[grade]; ok {
		return rank
	}
	return UnknownGradeRank
}
