package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued access token and the sanitized profile.
type LoginResponse struct {
	User        UserProfile `json:"user"`
	AccessToken string      `json:"accessToken"`
	TokenType   string      `json:"tokenType"`
	ExpiresIn   int64       `json:"expiresIn"`
}

// SeedResult reports the outcome of the demo account bootstrap.
type SeedResult struct {
	Message string   `json:"message"`
	UserIDs []string `json:"userIds,omitempty"`
	Created bool     `json:"-"`
}

// CreateUserRequest provisions or replaces an account by email.
type CreateUserRequest struct {
	Email          string   `json:"email" validate:"required,email"`
	Name           string   `json:"name" validate:"required"`
	Password       string   `json:"password" validate:"required,min=6"`
	Role           UserRole `json:"role" validate:"required,oneof=admin teacher"`
	TeacherClasses []string `json:"teacherClasses" validate:"dive,grade"`
}

// JWTClaims represents the JWT payload for access tokens. The claims mirror the
// stored profile but the credential store stays authoritative.
type JWTClaims struct {
	UserID         string   `json:"userId"`
	Email          string   `json:"email"`
	Name           string   `json:"name"`
	Role           UserRole `json:"role"`
	TeacherClasses []string `json:"teacherClasses"`
	jwt.RegisteredClaims
}

// Profile rebuilds the sanitized profile carried by the token.
func (c *JWTClaims) Profile() UserProfile {
	classes := c.TeacherClasses
	if classes == nil {
		classes = []string{}
	}
	return UserProfile{ID: c.UserID, Email: c.Email, Name: c.Name, Role: c.Role, TeacherClasses: classes}
}
