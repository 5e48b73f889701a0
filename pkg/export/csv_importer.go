package export

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrEmptyCSV is returned when the input has no header row.
var ErrEmptyCSV = errors.New("csv file is empty")

// CSVImporter reads CSV text into a Dataset keyed by normalized header names.
type CSVImporter struct{}

// NewCSVImporter builds a CSV importer.
func NewCSVImporter() *CSVImporter {
	return &CSVImporter{}
}

// Parse reads the whole input. Header names are trimmed and lower-cased and
// each row maps those names to its trimmed cell values. Blank lines are skipped
// and rows shorter than the header simply omit the missing columns.
func (i *CSVImporter) Parse(r io.Reader) (Dataset, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headerRecord, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Dataset{}, ErrEmptyCSV
		}
		return Dataset{}, fmt.Errorf("read csv header: %w", err)
	}

	headers := make([]string, len(headerRecord))
	for idx, h := range headerRecord {
		headers[idx] = NormalizeHeader(h)
	}

	data := Dataset{Headers: headers}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Dataset{}, fmt.Errorf("read csv row: %w", err)
		}
		row := make(map[string]string, len(headers))
		for idx, value := range record {
			if idx >= len(headers) || headers[idx] == "" {
				continue
			}
			if _, seen := row[headers[idx]]; seen {
				continue
			}
			row[headers[idx]] = strings.TrimSpace(value)
		}
		data.Rows = append(data.Rows, row)
	}
	return data, nil
}

// NormalizeHeader returns the lookup form of a header cell.
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
