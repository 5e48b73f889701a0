package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-roster-api/internal/dto"
	"github.com/noah-isme/school-roster-api/internal/models"
	appErrors "github.com/noah-isme/school-roster-api/pkg/errors"
)

type memoryAttendanceRepo struct {
	records []models.AttendanceRecord
	seq     int
}

func (m *memoryAttendanceRepo) FindInRange(ctx context.Context, studentID string, from, to time.Time) (*models.AttendanceRecord, error) {
	for _, r := range m.records {
		if r.StudentID == studentID && !r.Date.Before(from) && r.Date.Before(to) {
			cp := r
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryAttendanceRepo) Create(ctx context.Context, record *models.AttendanceRecord) error {
	m.seq++
	record.ID = fmt.Sprintf("r%d", m.seq)
	m.records = append(m.records, *record)
	return nil
}

func (m *memoryAttendanceRepo) UpdateStatus(ctx context.Context, id string, status models.AttendanceStatus, updatedAt time.Time) error {
	for i := range m.records {
		if m.records[i].ID == id {
			m.records[i].Status = status
			m.records[i].UpdatedAt = updatedAt
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memoryAttendanceRepo) ListByStudent(ctx context.Context, studentID string) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].StudentID == studentID {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

func (m *memoryAttendanceRepo) DeleteForStudent(ctx context.Context, studentID, id string) error {
	for i, r := range m.records {
		if r.ID == id && r.StudentID == studentID {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func newAttendanceService(t *testing.T, loc *time.Location) (*AttendanceService, *memoryAttendanceRepo) {
	t.Helper()
	repo := &memoryAttendanceRepo{}
	students := &mockStudentRepo{students: []models.Student{
		{ID: "s1", Name: "Amal", Grade: "KG1"},
		{ID: "s2", Name: "Bilal", Grade: "Grade 5"},
	}}
	return NewAttendanceService(repo, students, NewMetricsService(), nil, nil, loc), repo
}

func TestAttendanceMarkUpsertsByDay(t *testing.T) {
	svc, repo := newAttendanceService(t, time.UTC)
	ctx := context.Background()

	first, err := svc.Mark(ctx, adminViewer, "s1", dto.MarkAttendanceRequest{Date: "2024-03-01", Status: "Present"})
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, "Attendance recorded", first.Message)

	second, err := svc.Mark(ctx, adminViewer, "s1", dto.MarkAttendanceRequest{Date: "2024-03-01T15:04:05Z", Status: "Absent"})
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, "Attendance updated", second.Message)
	assert.Equal(t, first.RecordID, second.RecordID)

	require.Len(t, repo.records, 1)
	assert.Equal(t, models.AttendanceStatusAbsent, repo.records[0].Status)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), repo.records[0].Date)

	history, err := svc.List(ctx, adminViewer, "s1")
	require.NoError(t, err)
	require.Len(t, history.Records, 1)
	assert.Equal(t, first.RecordID, history.Records[0].ID)

	_, err = svc.Mark(ctx, adminViewer, "s1", dto.MarkAttendanceRequest{Date: "2024-03-02", Status: "Leave"})
	require.NoError(t, err)
	assert.Len(t, repo.records, 2)
}

func TestAttendanceMarkUsesConfiguredTimezone(t *testing.T) {
	dubai := time.FixedZone("GST", 4*60*60)
	svc, repo := newAttendanceService(t, dubai)
	ctx := context.Background()

	_, err := svc.Mark(ctx, adminViewer, "s1", dto.MarkAttendanceRequest{Date: "2024-03-02", Status: "Present"})
	require.NoError(t, err)
	// 22:30 UTC on the 1st is already the 2nd in Dubai.
	res, err := svc.Mark(ctx, adminViewer, "s1", dto.MarkAttendanceRequest{Date: "2024-03-01T22:30:00Z", Status: "Leave"})
	require.NoError(t, err)
	assert.False(t, res.Created)

	require.Len(t, repo.records, 1)
	assert.True(t, repo.records[0].Date.Equal(time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)))
}

func TestAttendanceMarkValidation(t *testing.T) {
	svc, _ := newAttendanceService(t, time.UTC)
	ctx := context.Background()

	_, err := svc.Mark(ctx, adminViewer, "s1", dto.MarkAttendanceRequest{Date: "2024-03-01", Status: "Late"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Mark(ctx, adminViewer, "s1", dto.MarkAttendanceRequest{Status: "Present"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Mark(ctx, adminViewer, "s1", dto.MarkAttendanceRequest{Date: "03/01/2024", Status: "Present"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Mark(ctx, adminViewer, "missing", dto.MarkAttendanceRequest{Date: "2024-03-01", Status: "Present"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Mark(ctx, teacherViewer, "s2", dto.MarkAttendanceRequest{Date: "2024-03-01", Status: "Present"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAttendanceDeleteRequiresOwnership(t *testing.T) {
	svc, repo := newAttendanceService(t, time.UTC)
	ctx := context.Background()

	mark, err := svc.Mark(ctx, adminViewer, "s2", dto.MarkAttendanceRequest{Date: "2024-03-01", Status: "Present"})
	require.NoError(t, err)

	err = svc.Delete(ctx, adminViewer, "s1", dto.DeleteAttendanceRequest{AttendanceID: mark.RecordID})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Len(t, repo.records, 1)

	err = svc.Delete(ctx, adminViewer, "s2", dto.DeleteAttendanceRequest{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	require.NoError(t, svc.Delete(ctx, adminViewer, "s2", dto.DeleteAttendanceRequest{AttendanceID: mark.RecordID}))
	assert.Empty(t, repo.records)
}

func TestAttendanceListEmpty(t *testing.T) {
	svc, _ := newAttendanceService(t, time.UTC)
	history, err := svc.List(context.Background(), adminViewer, "s1")
	require.NoError(t, err)
	assert.NotNil(t, history.Records)
	assert.Equal(t, models.AttendanceSummary{}, history.Summary)
}

func TestSummarizeAttendance(t *testing.T) {
	records := []models.AttendanceRecord{
		{Status: models.AttendanceStatusPresent},
		{Status: models.AttendanceStatusPresent},
		{Status: models.AttendanceStatusAbsent},
	}
	summary := SummarizeAttendance(records)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Present)
	assert.Equal(t, 1, summary.Absent)
	assert.Equal(t, 66.7, summary.Percentage)
}
