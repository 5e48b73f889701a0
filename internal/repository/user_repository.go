package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/school-roster-api/internal/models"
)

const userColumns = `id, email, password_hash, name, role, teacher_classes, created_at, updated_at`

// userRow maps the users table; teacher_classes is a Postgres text array.
type userRow struct {
	ID             string         `db:"id"`
	Email          string         `db:"email"`
	PasswordHash   string         `db:"password_hash"`
	Name           string         `db:"name"`
	Role           string         `db:"role"`
	TeacherClasses pq.StringArray `db:"teacher_classes"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r userRow) toModel() *models.User {
	classes := []string(r.TeacherClasses)
	if classes == nil {
		classes = []string{}
	}
	return &models.User{
		ID:             r.ID,
		Email:          r.Email,
		PasswordHash:   r.PasswordHash,
		Name:           r.Name,
		Role:           models.UserRole(r.Role),
		TeacherClasses: classes,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func newUserRow(u *models.User) userRow {
	classes := u.TeacherClasses
	if classes == nil {
		classes = []string{}
	}
	return userRow{
		ID:             u.ID,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		Name:           u.Name,
		Role:           string(u.Role),
		TeacherClasses: pq.StringArray(classes),
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// UserRepository provides database access for accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address, ignoring case.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1`
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, strings.TrimSpace(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return row.toModel(), nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return row.toModel(), nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	const query = `INSERT INTO users (id, email, password_hash, name, role, teacher_classes, created_at, updated_at) VALUES (:id, :email, :password_hash, :name, :role, :teacher_classes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, newUserRow(user)); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Upsert creates the account or replaces the existing one with the same email.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	const query = `INSERT INTO users (id, email, password_hash, name, role, teacher_classes, created_at, updated_at)
VALUES (:id, :email, :password_hash, :name, :role, :teacher_classes, :created_at, :updated_at)
ON CONFLICT ((LOWER(email))) DO UPDATE SET password_hash = EXCLUDED.password_hash, name = EXCLUDED.name, role = EXCLUDED.role, teacher_classes = EXCLUDED.teacher_classes, updated_at = EXCLUDED.updated_at
RETURNING id, created_at`
	rows, err := r.db.NamedQueryContext(ctx, query, newUserRow(user))
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&user.ID, &user.CreatedAt); err != nil {
			return fmt.Errorf("scan upserted user: %w", err)
		}
	}
	return rows.Err()
}

// DeleteByEmails removes the accounts with the given addresses.
func (r *UserRepository) DeleteByEmails(ctx context.Context, emails []string) (int64, error) {
	if len(emails) == 0 {
		return 0, nil
	}
	lowered := make([]string, 0, len(emails))
	for _, e := range emails {
		lowered = append(lowered, strings.ToLower(strings.TrimSpace(e)))
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE LOWER(email) = ANY($1)`, pq.Array(lowered))
	if err != nil {
		return 0, fmt.Errorf("delete users by email: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete users rows affected: %w", err)
	}
	return affected, nil
}
