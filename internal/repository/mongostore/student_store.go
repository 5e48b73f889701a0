package mongostore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/noah-isme/school-roster-api/internal/models"
)

// StudentStore persists students in the students collection.
type StudentStore struct {
	coll *mongo.Collection
}

// NewStudentStore constructs a StudentStore.
func NewStudentStore(db *mongo.Database) *StudentStore {
	return &StudentStore{coll: db.Collection(studentsCollection)}
}

// List returns every student in natural order.
func (s *StudentStore) List(ctx context.Context) ([]models.Student, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	var docs []studentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode students: %w", err)
	}
	students := make([]models.Student, 0, len(docs))
	for _, d := range docs {
		students = append(students, d.toModel())
	}
	return students, nil
}

// FindByID fetches a student by id.
func (s *StudentStore) FindByID(ctx context.Context, id string) (*models.Student, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc studentDocument
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, wrapMiss(err, "find student")
	}
	student := doc.toModel()
	return &student, nil
}

// Create inserts a student, assigning its identity and timestamps.
func (s *StudentStore) Create(ctx context.Context, student *models.Student) error {
	stamp(student, time.Now().UTC())
	res, err := s.coll.InsertOne(ctx, newStudentDocument(student))
	if err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		student.ID = oid.Hex()
	}
	return nil
}

// CreateMany inserts the students as one ordered batch.
func (s *StudentStore) CreateMany(ctx context.Context, students []models.Student) error {
	if len(students) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(students))
	for i := range students {
		stamp(&students[i], now)
		docs = append(docs, newStudentDocument(&students[i]))
	}
	res, err := s.coll.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("import students: %w", err)
	}
	for i, id := range res.InsertedIDs {
		if oid, ok := id.(primitive.ObjectID); ok && i < len(students) {
			students[i].ID = oid.Hex()
		}
	}
	return nil
}

// Update overwrites the mutable fields of an existing student.
func (s *StudentStore) Update(ctx context.Context, student *models.Student) error {
	oid, err := objectID(student.ID)
	if err != nil {
		return err
	}
	student.UpdatedAt = time.Now().UTC()
	doc := newStudentDocument(student)
	set := bson.M{
		"name":            doc.Name,
		"grade":           doc.Grade,
		"rollNumber":      doc.RollNumber,
		"phone":           doc.Phone,
		"whatsappNumber":  doc.WhatsappNumber,
		"email":           doc.Email,
		"fatherName":      doc.FatherName,
		"motherName":      doc.MotherName,
		"residingCountry": doc.ResidingCountry,
		"homeAddress":     doc.HomeAddress,
		"gccAddress":      doc.GCCAddress,
		"status":          doc.Status,
		"updatedAt":       doc.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if doc.Photo != nil {
		set["photo"] = *doc.Photo
	} else {
		update["$unset"] = bson.M{"photo": ""}
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	if res.MatchedCount == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a student and the attendance pointing at it.
func (s *StudentStore) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if res.DeletedCount == 0 {
		return sql.ErrNoRows
	}
	if _, err := s.coll.Database().Collection(attendanceCollection).DeleteMany(ctx, bson.M{"studentId": oid}); err != nil {
		return fmt.Errorf("delete student attendance: %w", err)
	}
	return nil
}

// Ping checks connectivity for readiness probes.
func (s *StudentStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, readpref.Primary())
}

func stamp(student *models.Student, now time.Time) {
	student.ID = ""
	student.CreatedAt = now
	student.UpdatedAt = now
	if student.Status == "" {
		student.Status = models.StudentStatusActive
	}
}
