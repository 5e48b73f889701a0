package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-roster-api/internal/dto"
	"github.com/noah-isme/school-roster-api/internal/models"
	appErrors "github.com/noah-isme/school-roster-api/pkg/errors"
)

type fakeDashboardSrv struct {
	hit       bool
	err       error
	lastGrade string
}

func (f *fakeDashboardSrv) Summary(context.Context, models.UserProfile) (*dto.DashboardSummary, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return &dto.DashboardSummary{TotalStudents: 3}, f.hit, nil
}

func (f *fakeDashboardSrv) Classes(context.Context, models.UserProfile) (*dto.ClassesOverview, bool, error) {
	return &dto.ClassesOverview{Totals: dto.ClassStats{Name: "Total", Total: 3}}, f.hit, f.err
}

func (f *fakeDashboardSrv) Class(_ context.Context, _ models.UserProfile, grade string) (*dto.ClassDetail, bool, error) {
	f.lastGrade = grade
	if f.err != nil {
		return nil, false, f.err
	}
	return &dto.ClassDetail{Stats: dto.ClassStats{Name: grade}}, f.hit, nil
}

func TestDashboardHandlerSummaryCacheMeta(t *testing.T) {
	for _, hit := range []bool{true, false} {
		h := NewDashboardHandler(&fakeDashboardSrv{hit: hit})
		c, rec := newTestContext(http.MethodGet, "/dashboard", nil, adminClaims)

		h.Summary(c)

		require.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, hit, env.Meta["cache_hit"])
		var summary dto.DashboardSummary
		require.NoError(t, json.Unmarshal(env.Data, &summary))
		assert.Equal(t, 3, summary.TotalStudents)
	}
}

func TestDashboardHandlerRequiresClaims(t *testing.T) {
	h := NewDashboardHandler(&fakeDashboardSrv{})
	c, rec := newTestContext(http.MethodGet, "/dashboard/classes", nil, nil)

	h.Classes(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardHandlerClassPathParam(t *testing.T) {
	srv := &fakeDashboardSrv{}
	h := NewDashboardHandler(srv)
	c, rec := newTestContext(http.MethodGet, "/dashboard/classes/Grade%201", nil, teacherClaims)
	c.Params = gin.Params{{Key: "grade", Value: "Grade 1"}}

	h.Class(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Grade 1", srv.lastGrade)
}

func TestDashboardHandlerClassNotFound(t *testing.T) {
	h := NewDashboardHandler(&fakeDashboardSrv{err: appErrors.Clone(appErrors.ErrNotFound, "class not found")})
	c, rec := newTestContext(http.MethodGet, "/dashboard/classes/Grade%208", nil, teacherClaims)
	c.Params = gin.Params{{Key: "grade", Value: "Grade 8"}}

	h.Class(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "class not found")
}
