package dto

import (
	"time"

	"github.com/noah-isme/school-roster-api/internal/models"
)

// CreateStudentRequest is the payload for registering a student. Identifier and
// timestamp keys are tolerated so edit forms can post a fetched record back, but
// they are never persisted.
type CreateStudentRequest struct {
	Name            string  `json:"name" validate:"required"`
	Grade           string  `json:"grade" validate:"required,grade"`
	RollNumber      string  `json:"rollNumber"`
	Phone           string  `json:"phone"`
	WhatsappNumber  string  `json:"whatsappNumber"`
	Email           string  `json:"email" validate:"omitempty,email"`
	FatherName      string  `json:"fatherName"`
	MotherName      string  `json:"motherName"`
	ResidingCountry string  `json:"residingCountry"`
	HomeAddress     string  `json:"homeAddress"`
	GCCAddress      string  `json:"gccAddress"`
	Photo           *string `json:"photo"`
	Status          string  `json:"status" validate:"omitempty,student_status"`

	ClientID        string     `json:"id"`
	LegacyClientID  string     `json:"_id"`
	ClientCreatedAt *time.Time `json:"createdAt"`
	ClientUpdatedAt *time.Time `json:"updatedAt"`
}

// UpdateStudentRequest carries only the fields to overwrite.
type UpdateStudentRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1"`
	Grade           *string `json:"grade" validate:"omitempty,grade"`
	RollNumber      *string `json:"rollNumber"`
	Phone           *string `json:"phone"`
	WhatsappNumber  *string `json:"whatsappNumber"`
	Email           *string `json:"email" validate:"omitempty,email"`
	FatherName      *string `json:"fatherName"`
	MotherName      *string `json:"motherName"`
	ResidingCountry *string `json:"residingCountry"`
	HomeAddress     *string `json:"homeAddress"`
	GCCAddress      *string `json:"gccAddress"`
	Photo           *string `json:"photo"`
	Status          *string `json:"status" validate:"omitempty,student_status"`

	ClientID        string     `json:"id"`
	LegacyClientID  string     `json:"_id"`
	ClientCreatedAt *time.Time `json:"createdAt"`
	ClientUpdatedAt *time.Time `json:"updatedAt"`
}

// ToStudent builds a new student from the request, leaving identity to the store.
func (r CreateStudentRequest) ToStudent() models.Student {
	return models.Student{
		Name:            r.Name,
		Grade:           r.Grade,
		RollNumber:      r.RollNumber,
		Phone:           r.Phone,
		WhatsappNumber:  r.WhatsappNumber,
		Email:           r.Email,
		FatherName:      r.FatherName,
		MotherName:      r.MotherName,
		ResidingCountry: r.ResidingCountry,
		HomeAddress:     r.HomeAddress,
		GCCAddress:      r.GCCAddress,
		Photo:           r.Photo,
		Status:          models.StudentStatus(r.Status),
	}
}

// Apply merges the supplied fields over student.
func (r UpdateStudentRequest) Apply(student *models.Student) {
	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&student.Name, r.Name)
	assign(&student.Grade, r.Grade)
	assign(&student.RollNumber, r.RollNumber)
	assign(&student.Phone, r.Phone)
	assign(&student.WhatsappNumber, r.WhatsappNumber)
	assign(&student.Email, r.Email)
	assign(&student.FatherName, r.FatherName)
	assign(&student.MotherName, r.MotherName)
	assign(&student.ResidingCountry, r.ResidingCountry)
	assign(&student.HomeAddress, r.HomeAddress)
	assign(&student.GCCAddress, r.GCCAddress)
	if r.Status != nil {
		student.Status = models.StudentStatus(*r.Status)
	}
}

// MarkAttendanceRequest records a student's status for a day.
type MarkAttendanceRequest struct {
	Date   string `json:"date" validate:"required"`
	Status string `json:"status" validate:"required,attendance_status"`
}

// DeleteAttendanceRequest identifies the record to remove.
type DeleteAttendanceRequest struct {
	AttendanceID string `json:"attendanceId" validate:"required"`
}
