package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-roster-api/internal/models"
	appErrors "github.com/noah-isme/school-roster-api/pkg/errors"
)

type fakeAuthSrv struct {
	loginErr   error
	lastLogin  models.LoginRequest
	loggedOut  string
	meID       string
	seedResult *models.SeedResult
	seedErr    error
	lastKey    string
}

func (f *fakeAuthSrv) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	f.lastLogin = req
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.LoginResponse{
		User:        models.UserProfile{ID: "u1", Email: req.Email, Role: models.RoleAdmin, TeacherClasses: []string{}},
		AccessToken: "token",
		TokenType:   "Bearer",
		ExpiresIn:   3600,
	}, nil
}

func (f *fakeAuthSrv) Me(_ context.Context, userID string) (*models.UserProfile, error) {
	f.meID = userID
	return &models.UserProfile{ID: userID, Role: models.RoleTeacher, TeacherClasses: []string{"KG1"}}, nil
}

func (f *fakeAuthSrv) Logout(_ context.Context, claims *models.JWTClaims) error {
	f.loggedOut = claims.UserID
	return nil
}

func (f *fakeAuthSrv) Seed(_ context.Context, key string) (*models.SeedResult, error) {
	f.lastKey = key
	return f.seedResult, f.seedErr
}

func TestAuthHandlerLoginSuccess(t *testing.T) {
	srv := &fakeAuthSrv{}
	h := NewAuthHandler(srv, srv)
	c, rec := newTestContext(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"admin@school.test","password":"pw"}`), nil)

	h.Login(c)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	var res map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "token", res["accessToken"])
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	srv := &fakeAuthSrv{loginErr: appErrors.Clone(appErrors.ErrInvalidCredentials, "")}
	h := NewAuthHandler(srv, srv)
	c, rec := newTestContext(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"x@y.z","password":"bad"}`), nil)

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, env.Error.Code)
}

func TestAuthHandlerLoginMalformedBody(t *testing.T) {
	srv := &fakeAuthSrv{}
	h := NewAuthHandler(srv, srv)
	c, rec := newTestContext(http.MethodPost, "/auth/login", strings.NewReader(`not json`), nil)

	h.Login(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, srv.lastLogin.Email)
}

func TestAuthHandlerSeedStatus(t *testing.T) {
	srv := &fakeAuthSrv{seedResult: &models.SeedResult{Message: "Test users created successfully", Created: true}}
	h := NewAuthHandler(srv, srv)
	c, rec := newTestContext(http.MethodPost, "/auth/seed?key=s3cret", nil, nil)

	h.Seed(c)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "s3cret", srv.lastKey)

	srv.seedResult = &models.SeedResult{Message: "Test users already exist"}
	c, rec = newTestContext(http.MethodPost, "/auth/seed?key=s3cret", nil, nil)
	h.Seed(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Test users already exist")
}

func TestAuthHandlerSeedWrongKey(t *testing.T) {
	srv := &fakeAuthSrv{seedErr: appErrors.Clone(appErrors.ErrUnauthorized, "invalid seed key")}
	h := NewAuthHandler(srv, srv)
	c, rec := newTestContext(http.MethodPost, "/auth/seed?key=nope", nil, nil)

	h.Seed(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandlerMeAndLogout(t *testing.T) {
	srv := &fakeAuthSrv{}
	h := NewAuthHandler(srv, srv)

	c, rec := newTestContext(http.MethodGet, "/auth/me", nil, teacherClaims)
	h.Me(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "teacher-1", srv.meID)

	c, rec = newTestContext(http.MethodPost, "/auth/logout", nil, teacherClaims)
	h.Logout(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "teacher-1", srv.loggedOut)

	c, rec = newTestContext(http.MethodGet, "/auth/me", nil, nil)
	h.Me(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
