// Package mongostore persists the roster in MongoDB using the collection layout
// of the original deployment: users, students and attendance.
package mongostore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/noah-isme/school-roster-api/internal/models"
)

const (
	usersCollection      = "users"
	studentsCollection   = "students"
	attendanceCollection = "attendance"
)

type userDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Email          string             `bson:"email"`
	PasswordHash   string             `bson:"passwordHash"`
	Name           string             `bson:"name"`
	Role           string             `bson:"role"`
	TeacherClasses []string           `bson:"teacherClasses"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

func (d userDocument) toModel() *models.User {
	classes := d.TeacherClasses
	if classes == nil {
		classes = []string{}
	}
	return &models.User{
		ID:             d.ID.Hex(),
		Email:          d.Email,
		PasswordHash:   d.PasswordHash,
		Name:           d.Name,
		Role:           models.UserRole(d.Role),
		TeacherClasses: classes,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type studentDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Name            string             `bson:"name"`
	Grade           string             `bson:"grade"`
	RollNumber      string             `bson:"rollNumber"`
	Phone           string             `bson:"phone"`
	WhatsappNumber  string             `bson:"whatsappNumber"`
	Email           string             `bson:"email"`
	FatherName      string             `bson:"fatherName"`
	MotherName      string             `bson:"motherName"`
	ResidingCountry string             `bson:"residingCountry"`
	HomeAddress     string             `bson:"homeAddress"`
	GCCAddress      string             `bson:"gccAddress"`
	Photo           *string            `bson:"photo,omitempty"`
	Status          string             `bson:"status"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

func newStudentDocument(s *models.Student) studentDocument {
	return studentDocument{
		Name:            s.Name,
		Grade:           s.Grade,
		RollNumber:      s.RollNumber,
		Phone:           s.Phone,
		WhatsappNumber:  s.WhatsappNumber,
		Email:           s.Email,
		FatherName:      s.FatherName,
		MotherName:      s.MotherName,
		ResidingCountry: s.ResidingCountry,
		HomeAddress:     s.HomeAddress,
		GCCAddress:      s.GCCAddress,
		Photo:           s.Photo,
		Status:          string(s.Status),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func (d studentDocument) toModel() models.Student {
	status := models.StudentStatus(d.Status)
	if status == "" {
		status = models.StudentStatusActive
	}
	return models.Student{
		ID:              d.ID.Hex(),
		Name:            d.Name,
		Grade:           d.Grade,
		RollNumber:      d.RollNumber,
		Phone:           d.Phone,
		WhatsappNumber:  d.WhatsappNumber,
		Email:           d.Email,
		FatherName:      d.FatherName,
		MotherName:      d.MotherName,
		ResidingCountry: d.ResidingCountry,
		HomeAddress:     d.HomeAddress,
		GCCAddress:      d.GCCAddress,
		Photo:           d.Photo,
		Status:          status,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type attendanceDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	StudentID primitive.ObjectID `bson:"studentId"`
	Date      time.Time          `bson:"date"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d attendanceDocument) toModel() models.AttendanceRecord {
	return models.AttendanceRecord{
		ID:        d.ID.Hex(),
		StudentID: d.StudentID.Hex(),
		Date:      d.Date,
		Status:    models.AttendanceStatus(d.Status),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// objectID parses a hex identifier; malformed ids behave like missing records.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, sql.ErrNoRows
	}
	return oid, nil
}

// wrapMiss maps the driver's miss onto the storage-agnostic sentinel and
// annotates every other failure with op.
func wrapMiss(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return sql.ErrNoRows
	}
	return fmt.Errorf("%s: %w", op, err)
}
