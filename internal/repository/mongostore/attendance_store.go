package mongostore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/school-roster-api/internal/models"
)

// AttendanceStore persists daily marks in the attendance collection.
type AttendanceStore struct {
	coll *mongo.Collection
}

// NewAttendanceStore constructs an AttendanceStore.
func NewAttendanceStore(db *mongo.Database) *AttendanceStore {
	return &AttendanceStore{coll: db.Collection(attendanceCollection)}
}

// FindInRange returns the earliest record for the student whose date lies in [from, to).
func (s *AttendanceStore) FindInRange(ctx context.Context, studentID string, from, to time.Time) (*models.AttendanceRecord, error) {
	oid, err := objectID(studentID)
	if err != nil {
		return nil, err
	}
	filter := bson.M{
		"studentId": oid,
		"date":      bson.M{"$gte": from, "$lt": to},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "date", Value: 1}})
	var doc attendanceDocument
	if err := s.coll.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		return nil, wrapMiss(err, "find attendance for day")
	}
	record := doc.toModel()
	return &record, nil
}

// Create inserts a new attendance record.
func (s *AttendanceStore) Create(ctx context.Context, record *models.AttendanceRecord) error {
	oid, err := objectID(record.StudentID)
	if err != nil {
		return err
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	record.UpdatedAt = record.CreatedAt
	doc := attendanceDocument{
		StudentID: oid,
		Date:      record.Date,
		Status:    string(record.Status),
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("create attendance: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		record.ID = id.Hex()
	}
	return nil
}

// UpdateStatus changes the status of an existing record.
func (s *AttendanceStore) UpdateStatus(ctx context.Context, id string, status models.AttendanceStatus, updatedAt time.Time) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"status": string(status), "updatedAt": updatedAt}})
	if err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}
	if res.MatchedCount == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByStudent returns all records for a student, newest first.
func (s *AttendanceStore) ListByStudent(ctx context.Context, studentID string) ([]models.AttendanceRecord, error) {
	oid, err := objectID(studentID)
	if err != nil {
		return []models.AttendanceRecord{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"studentId": oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	var docs []attendanceDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode attendance: %w", err)
	}
	records := make([]models.AttendanceRecord, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.toModel())
	}
	return records, nil
}

// DeleteForStudent removes a record only when it belongs to the student.
func (s *AttendanceStore) DeleteForStudent(ctx context.Context, studentID, id string) error {
	sid, err := objectID(studentID)
	if err != nil {
		return err
	}
	rid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": rid, "studentId": sid})
	if err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	if res.DeletedCount == 0 {
		return sql.ErrNoRows
	}
	return nil
}
