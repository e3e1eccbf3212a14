package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Column names required in the input export.
const (
	ColRetractionNature  = "RetractionNature"
	ColCountry           = "Country"
	ColReason            = "Reason"
	ColSubject           = "Subject"
	ColOriginalPaperDate = "OriginalPaperDate"
	ColRetractionDate    = "RetractionDate"
)

// RequiredColumns must all be present in the header.
var RequiredColumns = []string{
	ColRetractionNature,
	ColCountry,
	ColReason,
	ColSubject,
	ColOriginalPaperDate,
	ColRetractionDate,
}

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Reader yields records from a retraction CSV export.
type Reader struct {
	cr   *csv.Reader
	cols map[string]int
	line int
}

// NewReader reads and validates the header. Additional columns are ignored.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.New("reading header: empty input")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}

	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return &Reader{cr: cr, cols: cols, line: 1}, nil
}

// Next returns the next record, or io.EOF when the input is exhausted.
func (r *Reader) Next() (*Record, error) {
	row, err := r.cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("reading row %d: %w", r.line+1, err)
	}
	r.line++
	return &Record{
		Line:              r.line,
		RetractionNature:  r.field(row, ColRetractionNature),
		Country:           r.field(row, ColCountry),
		Reason:            r.field(row, ColReason),
		Subject:           r.field(row, ColSubject),
		OriginalPaperDate: r.field(row, ColOriginalPaperDate),
		RetractionDate:    r.field(row, ColRetractionDate),
	}, nil
}

func (r *Reader) field(row []string, name string) string {
	i := r.cols[name]
	if i >= len(row) {
		return ""
	}
	return row[i]
}

// Scan calls fn for every record in the input, stopping at the first error.
func Scan(in io.Reader, fn func(*Record) error) error {
	r, err := NewReader(in)
	if err != nil {
		return err
	}
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}
