package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
)

// Valid reports whether the role is one of the supported values.
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleTeacher
}

// User represents an account stored in the credential store.
type User struct {
	ID             string    `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	Name           string    `db:"name" json:"name"`
	Role           UserRole  `db:"role" json:"role"`
	TeacherClasses []string  `db:"-" json:"teacherClasses"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// Profile strips credentials and returns the public view of the account.
func (u *User) Profile() UserProfile {
	classes := u.TeacherClasses
	if classes == nil {
		classes = []string{}
	}
	return UserProfile{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Role:           u.Role,
		TeacherClasses: append([]string(nil), classes...),
	}
}

// UserProfile is the sanitized account returned to clients.
type UserProfile struct {
	ID             string   `json:"id"`
	Email          string   `json:"email"`
	Name           string   `json:"name"`
	Role           UserRole `json:"role"`
	TeacherClasses []string `json:"teacherClasses"`
}
