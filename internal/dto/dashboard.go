package dto

import "github.com/noah-isme/school-roster-api/internal/models"

// CountEntry is a labelled tally used by dashboard breakdowns.
type CountEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DashboardSummary captures the headline numbers over the caller's visible students.
type DashboardSummary struct {
	TotalStudents  int          `json:"totalStudents"`
	TotalGrades    int          `json:"totalGrades"`
	TotalCountries int          `json:"totalCountries"`
	ByGrade        []CountEntry `json:"byGrade"`
	ByCountry      []CountEntry `json:"byCountry"`
	ByStatus       []CountEntry `json:"byStatus"`
}

// ClassStats tallies one grade by enrollment status.
type ClassStats struct {
	Name        string `json:"name"`
	Total       int    `json:"total"`
	Active      int    `json:"active"`
	Quit        int    `json:"quit"`
	Application int    `json:"application"`
	TCIssued    int    `json:"tcIssued"`
}

// ClassesOverview lists every grade in canonical order plus the overall totals.
type ClassesOverview struct {
	Classes []ClassStats `json:"classes"`
	Totals  ClassStats   `json:"totals"`
}

// ClassDetail is a single grade with its students.
type ClassDetail struct {
	Stats    ClassStats       `json:"stats"`
	Students []models.Student `json:"students"`
}
