package models

import "time"

// AttendanceStatus represents the daily presence state of a student.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "Present"
	AttendanceStatusAbsent  AttendanceStatus = "Absent"
	AttendanceStatusLeave   AttendanceStatus = "Leave"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLeave:
		return true
	default:
		return false
	}
}

// AttendanceRecord is a single (student, day) mark. Date holds midnight of the
// calendar day in the configured attendance timezone.
type AttendanceRecord struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"studentId"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time        `db:"updated_at" json:"updatedAt"`
}

// MarkAttendanceResult reports whether a mark inserted or updated the day's record.
type MarkAttendanceResult struct {
	RecordID string `json:"recordId"`
	Created  bool   `json:"created"`
	Message  string `json:"message"`
}

// AttendanceSummary counts a student's marks.
type AttendanceSummary struct {
	Total      int     `json:"total"`
	Present    int     `json:"present"`
	Absent     int     `json:"absent"`
	Leave      int     `json:"leave"`
	Percentage float64 `json:"percentage"`
}

// AttendanceHistory is the list response for a student.
type AttendanceHistory struct {
	Records []AttendanceRecord `json:"records"`
	Summary AttendanceSummary  `json:"summary"`
}
