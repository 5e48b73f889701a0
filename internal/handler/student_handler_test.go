package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-roster-api/internal/dto"
	"github.com/noah-isme/school-roster-api/internal/models"
	"github.com/noah-isme/school-roster-api/internal/service"
	appErrors "github.com/noah-isme/school-roster-api/pkg/errors"
)

type fakeStudentSrv struct {
	students     []models.Student
	err          error
	lastViewer   models.UserProfile
	lastFilter   models.StudentFilter
	lastID       string
	lastCreate   dto.CreateStudentRequest
	lastUpdate   dto.UpdateStudentRequest
	lastImport   string
	lastFormat   string
	exportResult *service.ExportFile
}

func (f *fakeStudentSrv) List(_ context.Context, viewer models.UserProfile, filter models.StudentFilter) ([]models.Student, error) {
	f.lastViewer = viewer
	f.lastFilter = filter
	return f.students, f.err
}

func (f *fakeStudentSrv) FilterOptions(_ context.Context, viewer models.UserProfile) (*models.StudentFilterOptions, error) {
	f.lastViewer = viewer
	if f.err != nil {
		return nil, f.err
	}
	return &models.StudentFilterOptions{Grades: []string{"KG1"}}, nil
}

func (f *fakeStudentSrv) Get(_ context.Context, _ models.UserProfile, id string) (*models.Student, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return &models.Student{ID: id, Name: "Aisha", Grade: "KG1"}, nil
}

func (f *fakeStudentSrv) Create(_ context.Context, _ models.UserProfile, req dto.CreateStudentRequest) (*models.Student, error) {
	f.lastCreate = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Student{ID: "new-1", Name: req.Name, Grade: req.Grade}, nil
}

func (f *fakeStudentSrv) Update(_ context.Context, _ models.UserProfile, id string, req dto.UpdateStudentRequest) (*models.Student, error) {
	f.lastID = id
	f.lastUpdate = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Student{ID: id}, nil
}

func (f *fakeStudentSrv) Delete(_ context.Context, _ models.UserProfile, id string) error {
	f.lastID = id
	return f.err
}

func (f *fakeStudentSrv) Import(_ context.Context, _ models.UserProfile, r io.Reader) (*models.ImportResult, error) {
	body, _ := io.ReadAll(r)
	f.lastImport = string(body)
	if f.err != nil {
		return nil, f.err
	}
	return &models.ImportResult{Imported: 2, Skipped: 1}, nil
}

func (f *fakeStudentSrv) Export(_ context.Context, _ models.UserProfile, filter models.StudentFilter, format string) (*service.ExportFile, error) {
	f.lastFilter = filter
	f.lastFormat = format
	if f.err != nil {
		return nil, f.err
	}
	return f.exportResult, nil
}

func TestStudentHandlerListRequiresClaims(t *testing.T) {
	h := NewStudentHandler(&fakeStudentSrv{}, 0)
	c, rec := newTestContext(http.MethodGet, "/students", nil, nil)

	h.List(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStudentHandlerListPassesFilterAndViewer(t *testing.T) {
	srv := &fakeStudentSrv{students: []models.Student{{ID: "s1"}, {ID: "s2"}}}
	h := NewStudentHandler(srv, 0)
	c, rec := newTestContext(http.MethodGet, "/students?status=Active&grade=KG1&q=%20ali%20", nil, teacherClaims)

	h.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RoleTeacher, srv.lastViewer.Role)
	assert.Equal(t, []string{"KG1"}, srv.lastViewer.TeacherClasses)
	assert.Equal(t, models.StudentFilter{Status: "Active", Grade: "KG1", Search: "ali"}, srv.lastFilter)

	env := decodeEnvelope(t, rec)
	var students []models.Student
	require.NoError(t, json.Unmarshal(env.Data, &students))
	assert.Len(t, students, 2)
	assert.EqualValues(t, 2, env.Meta["total"])
}

func TestStudentHandlerGetNotFound(t *testing.T) {
	h := NewStudentHandler(&fakeStudentSrv{err: appErrors.Clone(appErrors.ErrNotFound, "student not found")}, 0)
	c, rec := newTestContext(http.MethodGet, "/students/x", nil, adminClaims)
	c.Params = gin.Params{{Key: "id", Value: "x"}}

	h.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "student not found", env.Error.Message)
}

func TestStudentHandlerCreateIgnoresServerFields(t *testing.T) {
	srv := &fakeStudentSrv{}
	h := NewStudentHandler(srv, 0)
	body := `{"_id":"abc","id":"zzz","name":"Aisha","grade":"KG1","createdAt":"2020-01-01"}`
	c, rec := newTestContext(http.MethodPost, "/students", strings.NewReader(body), adminClaims)

	h.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Aisha", srv.lastCreate.Name)
	assert.Equal(t, "KG1", srv.lastCreate.Grade)
}

func TestStudentHandlerUpdateRejectsUnknownKeys(t *testing.T) {
	srv := &fakeStudentSrv{}
	h := NewStudentHandler(srv, 0)
	c, rec := newTestContext(http.MethodPut, "/students/s1", strings.NewReader(`{"name":"B","nickname":"x"}`), adminClaims)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	h.Update(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, srv.lastID)
}

func TestStudentHandlerUpdatePartial(t *testing.T) {
	srv := &fakeStudentSrv{}
	h := NewStudentHandler(srv, 0)
	c, rec := newTestContext(http.MethodPut, "/students/s1", strings.NewReader(`{"phone":"555"}`), adminClaims)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	h.Update(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s1", srv.lastID)
	require.NotNil(t, srv.lastUpdate.Phone)
	assert.Equal(t, "555", *srv.lastUpdate.Phone)
	assert.Nil(t, srv.lastUpdate.Name)
}

func TestStudentHandlerDelete(t *testing.T) {
	srv := &fakeStudentSrv{}
	h := NewStudentHandler(srv, 0)
	c, rec := newTestContext(http.MethodDelete, "/students/s9", nil, adminClaims)
	c.Params = gin.Params{{Key: "id", Value: "s9"}}

	h.Delete(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s9", srv.lastID)
	assert.Contains(t, rec.Body.String(), "Student deleted successfully")
}

func TestStudentHandlerImportRawBody(t *testing.T) {
	srv := &fakeStudentSrv{}
	h := NewStudentHandler(srv, 1024)
	c, rec := newTestContext(http.MethodPost, "/students/import", strings.NewReader("Name,Grade\nA,KG1\n"), adminClaims)
	c.Request.Header.Set("Content-Type", "text/csv")

	h.Import(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Name,Grade\nA,KG1\n", srv.lastImport)
	env := decodeEnvelope(t, rec)
	var result models.ImportResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)
}

func TestStudentHandlerImportMultipart(t *testing.T) {
	srv := &fakeStudentSrv{}
	h := NewStudentHandler(srv, 1<<20)

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	part, err := mw.CreateFormFile("file", "students.csv")
	require.NoError(t, err)
	_, _ = part.Write([]byte("Name,Grade\nB,KG2\n"))
	require.NoError(t, mw.Close())

	c, rec := newTestContext(http.MethodPost, "/students/import", buf, adminClaims)
	c.Request.Header.Set("Content-Type", mw.FormDataContentType())

	h.Import(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Name,Grade\nB,KG2\n", srv.lastImport)
}

func TestStudentHandlerImportLimits(t *testing.T) {
	srv := &fakeStudentSrv{}
	h := NewStudentHandler(srv, 8)
	c, rec := newTestContext(http.MethodPost, "/students/import", strings.NewReader("Name,Grade\nTooLong,KG1\n"), adminClaims)
	c.Request.Header.Set("Content-Type", "text/csv")

	h.Import(c)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	c, rec = newTestContext(http.MethodPost, "/students/import", strings.NewReader(""), adminClaims)
	c.Request.Header.Set("Content-Type", "text/csv")

	h.Import(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "CSV file is empty")
	assert.Empty(t, srv.lastImport)
}

func TestStudentHandlerExportAttachment(t *testing.T) {
	srv := &fakeStudentSrv{exportResult: &service.ExportFile{
		Filename:    "students_2024-03-05.csv",
		ContentType: "text/csv; charset=utf-8",
		Body:        []byte(`"Name"`),
	}}
	h := NewStudentHandler(srv, 0)
	c, rec := newTestContext(http.MethodGet, "/students/export?format=csv&grade=KG1", nil, adminClaims)

	h.Export(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", srv.lastFormat)
	assert.Equal(t, "KG1", srv.lastFilter.Grade)
	assert.Equal(t, `attachment; filename="students_2024-03-05.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `"Name"`, rec.Body.String())
}

func TestStudentHandlerExportBadFormat(t *testing.T) {
	h := NewStudentHandler(&fakeStudentSrv{err: appErrors.Clone(appErrors.ErrValidation, "unsupported export format")}, 0)
	c, rec := newTestContext(http.MethodGet, "/students/export?format=xlsx", nil, adminClaims)

	h.Export(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
