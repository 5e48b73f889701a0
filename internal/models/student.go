package models

import "time"

// StudentStatus is the enrollment state of a student.
type StudentStatus string

const (
	StudentStatusActive      StudentStatus = "Active"
	StudentStatusQuit        StudentStatus = "Quit"
	StudentStatusApplication StudentStatus = "Application"
	StudentStatusTCIssued    StudentStatus = "TC Issued"
)

// StudentStatuses lists every enrollment state in display order.
var StudentStatuses = []StudentStatus{
	StudentStatusActive,
	StudentStatusQuit,
	StudentStatusApplication,
	StudentStatusTCIssued,
}

// Valid returns true when the status is a supported value.
func (s StudentStatus) Valid() bool {
	switch s {
	case StudentStatusActive, StudentStatusQuit, StudentStatusApplication, StudentStatusTCIssued:
		return true
	default:
		return false
	}
}

// Student represents a learner registered in the school.
type Student struct {
	ID              string        `db:"id" json:"id"`
	Name            string        `db:"name" json:"name"`
	Grade           string        `db:"grade" json:"grade"`
	RollNumber      string        `db:"roll_number" json:"rollNumber"`
	Phone           string        `db:"phone" json:"phone"`
	WhatsappNumber  string        `db:"whatsapp_number" json:"whatsappNumber"`
	Email           string        `db:"email" json:"email"`
	FatherName      string        `db:"father_name" json:"fatherName"`
	MotherName      string        `db:"mother_name" json:"motherName"`
	ResidingCountry string        `db:"residing_country" json:"residingCountry"`
	HomeAddress     string        `db:"home_address" json:"homeAddress"`
	GCCAddress      string        `db:"gcc_address" json:"gccAddress"`
	Photo           *string       `db:"photo" json:"photo,omitempty"`
	Status          StudentStatus `db:"status" json:"status"`
	CreatedAt       time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updatedAt"`
}

// StudentFilter holds the independent predicates applied to a student list.
// Empty fields are ignored; the active ones are AND-composed.
type StudentFilter struct {
	Status          string
	Grade           string
	ResidingCountry string
	FatherName      string
	MotherName      string
	Search          string
}

// StudentFilterOptions are the distinct values available to each filter.
type StudentFilterOptions struct {
	Grades      []string        `json:"grades"`
	Countries   []string        `json:"countries"`
	FatherNames []string        `json:"fatherNames"`
	MotherNames []string        `json:"motherNames"`
	Statuses    []StudentStatus `json:"statuses"`
}

// ImportResult summarises a CSV import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
