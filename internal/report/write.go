package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/country"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/dataset"
	"github.com/segmentio/encoding/json"
)

// Output layout below the output directory.
const (
	YearsDir       = "years"
	NoticeYearsDir = "notice_years"
	CountryDataDir = "country_data"
	DashboardFile  = "dashboard_table.json"
	ManifestFile   = "manifest.json"
	MatchesFile    = "country_matches.txt"
	pageSuffix     = "_CountryPageData.json"
)

// Folders lists the dashboard table folders in basis order.
var Folders = []string{YearsDir, NoticeYearsDir}

// BasisDir returns the table folder for a basis.
func BasisDir(b dataset.Basis) string {
	if b == dataset.Notice {
		return NoticeYearsDir
	}
	return YearsDir
}

// WindowFile returns the file name of the table covering the last n years.
func WindowFile(n int) string {
	return fmt.Sprintf("dashboard_table_%d.json", n)
}

// PageFile returns the file name of a country's detail document.
func PageFile(name string) string {
	return country.FileStem(name) + pageSuffix
}

// Writer writes documents below Dir and remembers what it wrote.
type Writer struct {
	Dir     string
	written []string
}

// NewWriter returns a writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir}
}

// Written returns the paths written so far, relative to Dir.
func (w *Writer) Written() []string {
	return append([]string(nil), w.written...)
}

// WriteJSON encodes v as indented JSON at rel. The file is replaced
// atomically.
func (w *Writer) WriteJSON(rel string, v any) error {
	path := filepath.Join(w.Dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", rel, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", rel, err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", rel, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	w.written = append(w.written, rel)
	return nil
}

// WriteSummary writes a dashboard table for basis under file.
func (w *Writer) WriteSummary(b dataset.Basis, file string, rows []SummaryRow) error {
	if rows == nil {
		rows = []SummaryRow{}
	}
	return w.WriteJSON(filepath.Join(BasisDir(b), file), rows)
}

// WritePage writes a country detail document.
func (w *Writer) WritePage(name string, page CountryPage) error {
	return w.WriteJSON(filepath.Join(CountryDataDir, PageFile(name)), page)
}

// ReadSummary loads a dashboard table written by WriteSummary.
func ReadSummary(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return rows, nil
}
