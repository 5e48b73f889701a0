package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-roster-api/internal/models"
)

const studentColumns = `id, name, grade, roll_number, phone, whatsapp_number, email, father_name, mother_name, residing_country, home_address, gcc_address, photo, status, created_at, updated_at`

const insertStudentQuery = `INSERT INTO students (id, name, grade, roll_number, phone, whatsapp_number, email, father_name, mother_name, residing_country, home_address, gcc_address, photo, status, created_at, updated_at)
        VALUES (:id, :name, :grade, :roll_number, :phone, :whatsapp_number, :email, :father_name, :mother_name, :residing_country, :home_address, :gcc_address, :photo, :status, :created_at, :updated_at)`

// StudentRepository manages persistence for student records. It is role-agnostic;
// visibility is applied by callers.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns every student in insertion order.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students ORDER BY created_at ASC, id ASC`
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, sql.ErrNoRows
	}
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// Create inserts a new student record, assigning its identity and timestamps.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	stampNewStudent(student, time.Now().UTC())
	if _, err := r.db.NamedExecContext(ctx, insertStudentQuery, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// CreateMany inserts the students in a single transaction.
func (r *StudentRepository) CreateMany(ctx context.Context, students []models.Student) error {
	if len(students) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	now := time.Now().UTC()
	for i := range students {
		stampNewStudent(&students[i], now)
		if _, err := tx.NamedExecContext(ctx, insertStudentQuery, &students[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("import student %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields of an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	if _, err := uuid.Parse(student.ID); err != nil {
		return sql.ErrNoRows
	}
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET name = :name, grade = :grade, roll_number = :roll_number, phone = :phone, whatsapp_number = :whatsapp_number, email = :email,
        father_name = :father_name, mother_name = :mother_name, residing_country = :residing_country, home_address = :home_address, gcc_address = :gcc_address,
        photo = :photo, status = :status, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return requireAffected(res, "update student")
}

// Delete removes a student. Attendance rows cascade.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return sql.ErrNoRows
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return requireAffected(res, "delete student")
}

// Ping checks connectivity for readiness probes.
func (r *StudentRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func stampNewStudent(student *models.Student, now time.Time) {
	student.ID = uuid.NewString()
	student.CreatedAt = now
	student.UpdatedAt = now
	if student.Status == "" {
		student.Status = models.StudentStatusActive
	}
}

func requireAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
