package service

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-roster-api/internal/models"
	appErrors "github.com/noah-isme/school-roster-api/pkg/errors"
)

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Upsert(ctx context.Context, user *models.User) error
	DeleteByEmails(ctx context.Context, emails []string) (int64, error)
}

// SeedConfig describes the demo accounts created by Seed.
type SeedConfig struct {
	SecretKey       string
	AdminEmail      string
	AdminPassword   string
	TeacherEmail    string
	TeacherPassword string
	BcryptCost      int
}

// DemoTeacherClasses are the grades assigned to the seeded teacher.
var DemoTeacherClasses = []string{"KG1", "KG2", "Grade 1", "Grade 2"}

// UserService provisions accounts.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
	seed      SeedConfig
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger, seed SeedConfig) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if seed.BcryptCost == 0 {
		seed.BcryptCost = bcrypt.DefaultCost
	}
	return &UserService{repo: repo, validator: validate, logger: logger, seed: seed}
}

// Provision creates the account or replaces the one registered under the same email.
func (s *UserService) Provision(ctx context.Context, req models.CreateUserRequest) (*models.UserProfile, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid user payload")
	}

	classes := req.TeacherClasses
	if req.Role == models.RoleAdmin || classes == nil {
		classes = []string{}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.seed.BcryptCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Email:          req.Email,
		PasswordHash:   string(hash),
		Name:           strings.TrimSpace(req.Name),
		Role:           req.Role,
		TeacherClasses: classes,
	}
	if err := s.repo.Upsert(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save user")
	}

	s.logger.Info("user provisioned", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	profile := user.Profile()
	return &profile, nil
}

// Seed creates the demo admin and teacher accounts when key matches the configured
// secret. When both accounts already exist nothing changes.
func (s *UserService) Seed(ctx context.Context, key string) (*models.SeedResult, error) {
	if s.seed.SecretKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.seed.SecretKey)) != 1 {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid seed key")
	}

	adminExists, err := s.exists(ctx, s.seed.AdminEmail)
	if err != nil {
		return nil, err
	}
	teacherExists, err := s.exists(ctx, s.seed.TeacherEmail)
	if err != nil {
		return nil, err
	}
	if adminExists && teacherExists {
		return &models.SeedResult{Message: "Test users already exist"}, nil
	}

	if s.seed.AdminPassword == "" || s.seed.TeacherPassword == "" {
		return nil, appErrors.Clone(appErrors.ErrInternal, "seed passwords are not configured")
	}

	if _, err := s.repo.DeleteByEmails(ctx, []string{s.seed.AdminEmail, s.seed.TeacherEmail}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear demo users")
	}

	accounts := []struct {
		email, password, name string
		role                  models.UserRole
		classes               []string
	}{
		{s.seed.AdminEmail, s.seed.AdminPassword, "Admin User", models.RoleAdmin, []string{}},
		{s.seed.TeacherEmail, s.seed.TeacherPassword, "Teacher User", models.RoleTeacher, append([]string(nil), DemoTeacherClasses...)},
	}

	ids := make([]string, 0, len(accounts))
	for _, acct := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(acct.password), s.seed.BcryptCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		user := &models.User{
			Email:          strings.ToLower(acct.email),
			PasswordHash:   string(hash),
			Name:           acct.name,
			Role:           acct.role,
			TeacherClasses: acct.classes,
		}
		if err := s.repo.Create(ctx, user); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create demo user")
		}
		ids = append(ids, user.ID)
	}

	s.logger.Info("demo users seeded", zap.Strings("user_ids", ids))
	return &models.SeedResult{Message: "Test users created successfully", UserIDs: ids, Created: true}, nil
}

func (s *UserService) exists(ctx context.Context, email string) (bool, error) {
	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check demo users")
}
