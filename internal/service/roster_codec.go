package service

import (
	"errors"
	"io"
	"strings"

	"github.com/noah-isme/school-roster-api/internal/models"
	appErrors "github.com/noah-isme/school-roster-api/pkg/errors"
	"github.com/noah-isme/school-roster-api/pkg/export"
)

type rosterColumn struct {
	header string
	get    func(s *models.Student) string
	set    func(s *models.Student, v string)
}

var rosterColumns = []rosterColumn{
	{"Name", func(s *models.Student) string { return s.Name }, func(s *models.Student, v string) { s.Name = v }},
	{"Grade", func(s *models.Student) string { return s.Grade }, func(s *models.Student, v string) { s.Grade = v }},
	{"Roll Number", func(s *models.Student) string { return s.RollNumber }, func(s *models.Student, v string) { s.RollNumber = v }},
	{"Phone", func(s *models.Student) string { return s.Phone }, func(s *models.Student, v string) { s.Phone = v }},
	{"WhatsApp", func(s *models.Student) string { return s.WhatsappNumber }, func(s *models.Student, v string) { s.WhatsappNumber = v }},
	{"Email", func(s *models.Student) string { return s.Email }, func(s *models.Student, v string) { s.Email = v }},
	{"Father Name", func(s *models.Student) string { return s.FatherName }, func(s *models.Student, v string) { s.FatherName = v }},
	{"Mother Name", func(s *models.Student) string { return s.MotherName }, func(s *models.Student, v string) { s.MotherName = v }},
	{"Residing Country", func(s *models.Student) string { return s.ResidingCountry }, func(s *models.Student, v string) { s.ResidingCountry = v }},
	{"Home Address", func(s *models.Student) string { return s.HomeAddress }, func(s *models.Student, v string) { s.HomeAddress = v }},
	{"GCC Address", func(s *models.Student) string { return s.GCCAddress }, func(s *models.Student, v string) { s.GCCAddress = v }},
	{"Status", func(s *models.Student) string {
		if s.Status == "" {
			return string(models.StudentStatusActive)
		}
		return string(s.Status)
	}, func(s *models.Student, v string) { s.Status = models.StudentStatus(v) }},
}

var pdfColumns = []string{"Name", "Grade", "Roll Number", "Phone", "Residing Country", "Status"}

// RosterHeaders returns the CSV column names in export order.
func RosterHeaders() []string {
	headers := make([]string, len(rosterColumns))
	for i, col := range rosterColumns {
		headers[i] = col.header
	}
	return headers
}

// ImportBatch is the outcome of parsing a roster CSV.
type ImportBatch struct {
	Students []models.Student
	Skipped  int
}

// RosterCodec maps students to and from the roster's CSV and PDF layouts.
type RosterCodec struct {
	csv      *export.CSVExporter
	importer *export.CSVImporter
	pdf      *export.PDFExporter
}

// NewRosterCodec constructs a RosterCodec.
func NewRosterCodec() *RosterCodec {
	return &RosterCodec{
		csv:      export.NewCSVExporter(),
		importer: export.NewCSVImporter(),
		pdf:      export.NewPDFExporter(),
	}
}

// ExportCSV renders every student with all twelve roster columns.
func (c *RosterCodec) ExportCSV(students []models.Student) ([]byte, error) {
	return c.csv.Render(rosterDataset(students, RosterHeaders()))
}

// ExportPDF renders the printable subset of the roster columns.
func (c *RosterCodec) ExportPDF(students []models.Student, title string) ([]byte, error) {
	return c.pdf.Render(rosterDataset(students, pdfColumns), title)
}

// Import parses a roster CSV. Headers match case-insensitively, rows without a
// name or a known grade are skipped and a missing status becomes Active. A file without
// any acceptable row fails validation.
func (c *RosterCodec) Import(r io.Reader) (*ImportBatch, error) {
	data, err := c.importer.Parse(r)
	if err != nil {
		if errors.Is(err, export.ErrEmptyCSV) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "CSV file is empty")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to parse CSV")
	}

	batch := &ImportBatch{Students: make([]models.Student, 0, len(data.Rows))}
	for _, row := range data.Rows {
		student, ok := studentFromRow(row)
		if !ok {
			batch.Skipped++
			continue
		}
		batch.Students = append(batch.Students, student)
	}
	if len(batch.Students) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no valid students found in CSV")
	}
	return batch, nil
}

func studentFromRow(row map[string]string) (models.Student, bool) {
	var student models.Student
	for _, col := range rosterColumns {
		col.set(&student, row[export.NormalizeHeader(col.header)])
	}
	if student.Name == "" {
		return student, false
	}
	grade, ok := models.CanonicalGrade(student.Grade)
	if !ok {
		return student, false
	}
	student.Grade = grade
	if student.Status == "" {
		student.Status = models.StudentStatusActive
		return student, true
	}
	status, ok := canonicalStatus(string(student.Status))
	if !ok {
		return student, false
	}
	student.Status = status
	return student, true
}

func canonicalStatus(v string) (models.StudentStatus, bool) {
	for _, s := range models.StudentStatuses {
		if strings.EqualFold(string(s), v) {
			return s, true
		}
	}
	return "", false
}

func rosterDataset(students []models.Student, headers []string) export.Dataset {
	cols := make([]rosterColumn, 0, len(headers))
	for _, h := range headers {
		for _, col := range rosterColumns {
			if col.header == h {
				cols = append(cols, col)
				break
			}
		}
	}
	rows := make([]map[string]string, 0, len(students))
	for i := range students {
		row := make(map[string]string, len(cols))
		for _, col := range cols {
			row[col.header] = col.get(&students[i])
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
