package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-roster-api/internal/models"
	"github.com/noah-isme/school-roster-api/internal/repository"
	appErrors "github.com/noah-isme/school-roster-api/pkg/errors"
)

type mockAuthRepo struct {
	users map[string]*models.User
	err   error
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.users[strings.ToLower(email)]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

const testSecret = "test-secret"

func newAuthFixture(t *testing.T) (*AuthService, *mockAuthRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("teach123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &mockAuthRepo{users: map[string]*models.User{
		"teacher@school.test": {
			ID:             "u-teacher",
			Email:          "teacher@school.test",
			PasswordHash:   string(hash),
			Name:           "Teacher User",
			Role:           models.RoleTeacher,
			TeacherClasses: []string{"KG1", "KG2"},
		},
	}}
	svc := NewAuthService(repo, nil, nil, nil, AuthConfig{
		AccessTokenSecret: testSecret,
		AccessTokenExpiry: time.Hour,
		Issuer:            "school-roster-api",
		BcryptCost:        bcrypt.MinCost,
	})
	return svc, repo
}

func TestLoginSuccess(t *testing.T) {
	svc, _ := newAuthFixture(t)
	svc.WithMetrics(NewMetricsService())

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: " Teacher@School.test ", Password: "teach123"})
	require.NoError(t, err)
	assert.Equal(t, "u-teacher", res.User.ID)
	assert.Equal(t, []string{"KG1", "KG2"}, res.User.TeacherClasses)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, int64(3600), res.ExpiresIn)

	claims, err := svc.ValidateToken(context.Background(), res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-teacher", claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, "school-roster-api", claims.Issuer)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, wrongPassword := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@school.test", Password: "nope"})
	_, unknownEmail := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@school.test", Password: "nope"})

	var a, b *appErrors.Error
	require.ErrorAs(t, wrongPassword, &a)
	require.ErrorAs(t, unknownEmail, &b)
	assert.Equal(t, a.Code, b.Code)
	assert.Equal(t, a.Message, b.Message)
	assert.Equal(t, a.Status, b.Status)
	assert.ErrorIs(t, wrongPassword, appErrors.ErrInvalidCredentials)
}

func TestLoginValidationAndStoreErrors(t *testing.T) {
	svc, repo := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@school.test"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	repo.err = errors.New("mongo unreachable")
	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "teacher@school.test", Password: "teach123"})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.ValidateToken(ctx, "garbage")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JWTClaims{UserID: "x", Role: models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}})
	forged, err := other.SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, forged)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JWTClaims{UserID: "x", Role: models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}})
	stale, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, stale)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	badRole := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JWTClaims{UserID: "x", Role: "parent",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}})
	signed, err := badRole.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, signed)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestLogoutRevokesToken(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	_, repo := newAuthFixture(t)
	svc := NewAuthService(repo, repository.NewSessionRepository(client), nil, nil, AuthConfig{
		AccessTokenSecret: testSecret, AccessTokenExpiry: time.Hour, BcryptCost: bcrypt.MinCost,
	})
	ctx := context.Background()

	res, err := svc.Login(ctx, models.LoginRequest{Email: "teacher@school.test", Password: "teach123"})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(ctx, res.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))
	_, err = svc.ValidateToken(ctx, res.AccessToken)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
	assert.Greater(t, srv.TTL("session:revoked:"+claims.ID), time.Duration(0))
}

func TestMeReloadsProfile(t *testing.T) {
	svc, repo := newAuthFixture(t)

	profile, err := svc.Me(context.Background(), "u-teacher")
	require.NoError(t, err)
	assert.Equal(t, "Teacher User", profile.Name)

	delete(repo.users, "teacher@school.test")
	_, err = svc.Me(context.Background(), "u-teacher")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
