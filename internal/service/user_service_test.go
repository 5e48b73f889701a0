package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-roster-api/internal/models"
	appErrors "github.com/noah-isme/school-roster-api/pkg/errors"
)

type mockUserRepo struct {
	users   map[string]*models.User
	seq     int
	deleted []string
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.users[strings.ToLower(email)]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.users == nil {
		m.users = map[string]*models.User{}
	}
	m.seq++
	user.ID = fmt.Sprintf("u%d", m.seq)
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepo) Upsert(ctx context.Context, user *models.User) error {
	if existing, ok := m.users[user.Email]; ok {
		user.ID = existing.ID
		m.users[user.Email] = user
		return nil
	}
	return m.Create(ctx, user)
}

func (m *mockUserRepo) DeleteByEmails(ctx context.Context, emails []string) (int64, error) {
	var n int64
	for _, e := range emails {
		e = strings.ToLower(e)
		m.deleted = append(m.deleted, e)
		if _, ok := m.users[e]; ok {
			delete(m.users, e)
			n++
		}
	}
	return n, nil
}

func seedConfig() SeedConfig {
	return SeedConfig{
		SecretKey:       "s3cret",
		AdminEmail:      "admin@school.test",
		AdminPassword:   "admin123",
		TeacherEmail:    "teacher@school.test",
		TeacherPassword: "teacher123",
		BcryptCost:      bcrypt.MinCost,
	}
}

func TestSeedCreatesDemoAccounts(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewUserService(repo, nil, nil, seedConfig())

	res, err := svc.Seed(context.Background(), "s3cret")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "Test users created successfully", res.Message)
	assert.Len(t, res.UserIDs, 2)

	admin := repo.users["admin@school.test"]
	require.NotNil(t, admin)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Empty(t, admin.TeacherClasses)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("admin123")))

	teacher := repo.users["teacher@school.test"]
	require.NotNil(t, teacher)
	assert.Equal(t, []string{"KG1", "KG2", "Grade 1", "Grade 2"}, teacher.TeacherClasses)

	again, err := svc.Seed(context.Background(), "s3cret")
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, "Test users already exist", again.Message)
}

func TestSeedReplacesPartialState(t *testing.T) {
	repo := &mockUserRepo{users: map[string]*models.User{
		"admin@school.test": {ID: "old", Email: "admin@school.test", Role: models.RoleAdmin},
	}}
	svc := NewUserService(repo, nil, nil, seedConfig())

	res, err := svc.Seed(context.Background(), "s3cret")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.ElementsMatch(t, []string{"admin@school.test", "teacher@school.test"}, repo.deleted)
	assert.NotEqual(t, "old", repo.users["admin@school.test"].ID)
}

func TestSeedRejectsBadKey(t *testing.T) {
	svc := NewUserService(&mockUserRepo{}, nil, nil, seedConfig())
	_, err := svc.Seed(context.Background(), "wrong")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	cfg := seedConfig()
	cfg.SecretKey = ""
	svc = NewUserService(&mockUserRepo{}, nil, nil, cfg)
	_, err = svc.Seed(context.Background(), "")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestSeedRequiresPasswords(t *testing.T) {
	cfg := seedConfig()
	cfg.TeacherPassword = ""
	svc := NewUserService(&mockUserRepo{}, nil, nil, cfg)
	_, err := svc.Seed(context.Background(), "s3cret")
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestProvisionUpsertsByEmail(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewUserService(repo, nil, nil, SeedConfig{BcryptCost: bcrypt.MinCost})
	ctx := context.Background()

	first, err := svc.Provision(ctx, models.CreateUserRequest{
		Email: "New@School.test", Name: "New", Password: "secret1", Role: models.RoleTeacher, TeacherClasses: []string{"KG1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "new@school.test", first.Email)

	second, err := svc.Provision(ctx, models.CreateUserRequest{
		Email: "new@school.test", Name: "Renamed", Password: "secret2", Role: models.RoleAdmin, TeacherClasses: []string{"KG1"},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.RoleAdmin, second.Role)
	assert.Empty(t, second.TeacherClasses)

	_, err = svc.Provision(ctx, models.CreateUserRequest{Email: "x@school.test", Password: "123", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Provision(ctx, models.CreateUserRequest{Email: "x@school.test", Password: "123456", Role: models.RoleTeacher, TeacherClasses: []string{"Grade 99"}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
