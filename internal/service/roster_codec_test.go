package service

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-roster-api/internal/models"
	appErrors "github.com/noah-isme/school-roster-api/pkg/errors"
)

func TestRosterCodecExportLayout(t *testing.T) {
	out, err := NewRosterCodec().ExportCSV([]models.Student{{Name: "Ali", Grade: "KG1"}})
	require.NoError(t, err)

	lines := strings.Split(string(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"Name","Grade","Roll Number","Phone","WhatsApp","Email","Father Name","Mother Name","Residing Country","Home Address","GCC Address","Status"`, lines[0])
	assert.Equal(t, `"Ali","KG1","","","","","","","","","","Active"`, lines[1])
}

func TestRosterCodecRoundTrip(t *testing.T) {
	codec := NewRosterCodec()
	original := []models.Student{
		{Name: `Zain "Zee", Khan`, Grade: "Grade 2", RollNumber: "7", Phone: "+971 50", WhatsappNumber: "+971 55",
			Email: "z@example.com", FatherName: `Imran, Sr`, MotherName: `Sana "Mom"`, ResidingCountry: "UAE",
			HomeAddress: "12, Palm St", GCCAddress: "Dubai", Status: models.StudentStatusTCIssued},
		{Name: "Plain", Grade: "KG1", Status: models.StudentStatusQuit},
	}

	out, err := codec.ExportCSV(original)
	require.NoError(t, err)

	batch, err := codec.Import(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Zero(t, batch.Skipped)
	require.Len(t, batch.Students, len(original))
	for i := range original {
		assert.Equal(t, original[i], batch.Students[i])
	}
}

func TestRosterCodecImportSkipsInvalidRows(t *testing.T) {
	input := "name,GRADE,status\n" +
		"Ali,KG1,\n" +
		",KG2,Active\n" +
		"Sara,,Active\n" +
		"Noor,Grade 1,tc issued\n" +
		"Omar,Grade 1,Graduated\n"

	batch, err := NewRosterCodec().Import(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 3, batch.Skipped)
	require.Len(t, batch.Students, 2)
	assert.Equal(t, models.StudentStatusActive, batch.Students[0].Status)
	assert.Equal(t, models.StudentStatusTCIssued, batch.Students[1].Status)
}

func TestRosterCodecImportCanonicalizesGrades(t *testing.T) {
	input := "Name,Grade\n" +
		"Ali,grade 1\n" +
		"Sara, kg2 \n" +
		"Omar,Grade 12\n"

	batch, err := NewRosterCodec().Import(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, batch.Skipped)
	require.Len(t, batch.Students, 2)
	assert.Equal(t, "Grade 1", batch.Students[0].Grade)
	assert.Equal(t, "KG2", batch.Students[1].Grade)
}

func TestRosterCodecImportRejectsEmpty(t *testing.T) {
	codec := NewRosterCodec()

	_, err := codec.Import(strings.NewReader(""))
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = codec.Import(strings.NewReader("Name,Grade\n,\n"))
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "no valid students found in CSV", appErr.Message)
}

func TestRosterCodecExportPDF(t *testing.T) {
	out, err := NewRosterCodec().ExportPDF([]models.Student{{Name: "Ali", Grade: "KG1"}}, "Students")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
