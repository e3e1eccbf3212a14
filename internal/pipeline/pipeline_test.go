package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/country"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/dataset"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/report"
	"github.com/segmentio/encoding/json"
	"github.com/sirupsen/logrus"
)

const exportCSV = `Record ID,RetractionNature,Country,Reason,Subject,OriginalPaperDate,RetractionDate
1,Retraction,United States;Canada,+Plagiarism of Text;,(BLS) Biology - Cellular;,1/1/2020 0:00,6/1/2021 0:00
2,Correction,United States,+Plagiarism of Text;,(BLS) Biology - Cellular;,1/1/2020 0:00,6/1/2021 0:00
3,Retraction,Russia,+Paper Mill;,(HSC) Medicine;,,3/3/2022 0:00
4,Retraction,,+Error in Data;,,2020,2020
`

const referenceCSV = `Country,2020,2021,2022
United States,"2,000",2000,0
Canada,100,,
Russian Federation,50,50,50
`

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func setup(t *testing.T, input string) Options {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "classification", "Integrity.txt"), "plagiarism\n")
	writeFile(t, filepath.Join(dir, "classification", "Serious.txt"), "paper mill\n")
	writeFile(t, filepath.Join(dir, "classification", "Research.txt"), "error in data\n")
	writeFile(t, filepath.Join(dir, "scimago.csv"), referenceCSV)
	writeFile(t, filepath.Join(dir, "export.csv"), input)

	return Options{
		Input:          filepath.Join(dir, "export.csv"),
		OutputDir:      filepath.Join(dir, "out"),
		KeywordsDir:    filepath.Join(dir, "classification"),
		ReferenceCSV:   filepath.Join(dir, "scimago.csv"),
		MatchThreshold: 0.7,
		Windows:        2,
		Logger:         quietLogger(),
	}
}

func countries(t *testing.T, path string) []string {
	t.Helper()
	rows, err := report.ReadSummary(path)
	if err != nil {
		t.Fatalf("ReadSummary() error = %v", err)
	}
	var out []string
	for _, r := range rows {
		out = append(out, r["country"].(string))
	}
	return out
}

func TestRun(t *testing.T) {
	opts := setup(t, exportCSV)
	m, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if m.RowsRead != 4 || m.RowsIncluded != 3 || m.RowsExcluded != 1 {
		t.Errorf("rows = read %d included %d excluded %d, want 4/3/1", m.RowsRead, m.RowsIncluded, m.RowsExcluded)
	}
	if m.Countries != 3 {
		t.Errorf("Countries = %d, want 3", m.Countries)
	}
	if m.CategoryCounts["Integrity"] != 1 || m.CategoryCounts["Serious"] != 1 {
		t.Errorf("CategoryCounts = %v", m.CategoryCounts)
	}
	if m.RunID == "" {
		t.Error("RunID is empty")
	}

	orig := countries(t, filepath.Join(opts.OutputDir, report.YearsDir, report.DashboardFile))
	if strings.Join(orig, ",") != "Canada,United States" {
		t.Errorf("original basis countries = %v, want Canada and United States only", orig)
	}
	notice := countries(t, filepath.Join(opts.OutputDir, report.NoticeYearsDir, report.DashboardFile))
	if len(notice) != 3 {
		t.Errorf("notice basis countries = %v, want 3", notice)
	}

	rows, err := report.ReadSummary(filepath.Join(opts.OutputDir, report.YearsDir, report.DashboardFile))
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range rows {
		if r["country"] == "United States" {
			if r["integrity"].(float64) != 1 || r["total"].(float64) != 1 {
				t.Errorf("US row = %v", r)
			}
			if r["retraction_rate"].(float64) != 0.25 {
				t.Errorf("US retraction_rate = %v, want 0.25", r["retraction_rate"])
			}
		}
	}

	for _, name := range []string{"Canada", "Russia", "United States"} {
		if _, err := os.Stat(filepath.Join(opts.OutputDir, report.CountryDataDir, report.PageFile(name))); err != nil {
			t.Errorf("page for %s: %v", name, err)
		}
	}

	log, err := os.ReadFile(filepath.Join(opts.OutputDir, report.MatchesFile))
	if err != nil {
		t.Fatalf("reading match log: %v", err)
	}
	if !strings.Contains(string(log), "Russia -> Russian Federation") {
		t.Errorf("match log missing Russia:\n%s", log)
	}

	data, err := os.ReadFile(filepath.Join(opts.OutputDir, report.ManifestFile))
	if err != nil {
		t.Fatalf("reading manifest: %v", err)
	}
	var written Manifest
	if err := json.Unmarshal(data, &written); err != nil {
		t.Fatalf("parsing manifest: %v", err)
	}
	if written.RunID != m.RunID || len(written.Files) != len(m.Files) {
		t.Errorf("manifest on disk = %+v", written)
	}
	// 2 base tables + 2x2 windowed tables + 3 pages
	if len(m.Files) != 9 {
		t.Errorf("Files = %d entries (%v), want 9", len(m.Files), m.Files)
	}
}

func TestRun_Windows(t *testing.T) {
	opts := setup(t, exportCSV)
	if _, err := Run(context.Background(), opts); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	tests := []struct {
		dir, file string
		want      string
	}{
		{report.YearsDir, report.WindowFile(1), "Canada,United States"},
		{report.NoticeYearsDir, report.WindowFile(1), "Russia"},
		{report.NoticeYearsDir, report.WindowFile(2), "Canada,Russia,United States"},
	}
	for _, tt := range tests {
		t.Run(tt.dir+"/"+tt.file, func(t *testing.T) {
			got := strings.Join(countries(t, filepath.Join(opts.OutputDir, tt.dir, tt.file)), ",")
			if got != tt.want {
				t.Errorf("countries = %q, want %q", got, tt.want)
			}
		})
	}
	if _, err := os.Stat(filepath.Join(opts.OutputDir, report.YearsDir, report.WindowFile(3))); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("window 3 should not be written, stat error = %v", err)
	}
}

func TestRun_YearFilter(t *testing.T) {
	opts := setup(t, exportCSV)
	opts.MinYear = 2021
	opts.Windows = 0
	if _, err := Run(context.Background(), opts); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := countries(t, filepath.Join(opts.OutputDir, report.YearsDir, report.DashboardFile)); len(got) != 0 {
		t.Errorf("original basis countries = %v, want none", got)
	}
	if got := countries(t, filepath.Join(opts.OutputDir, report.NoticeYearsDir, report.DashboardFile)); len(got) != 3 {
		t.Errorf("notice basis countries = %v, want 3", got)
	}
}

func TestRun_NothingClassified(t *testing.T) {
	tests := []struct {
		name  string
		input string
		prep  func(*Options)
	}{
		{
			name:  "only corrections",
			input: "RetractionNature,Country,Reason,Subject,OriginalPaperDate,RetractionDate\nCorrection,Canada,x,,2020,2021\n",
		},
		{
			name:  "no keyword files",
			input: exportCSV,
			prep:  func(o *Options) { o.KeywordsDir = filepath.Join(filepath.Dir(o.KeywordsDir), "missing") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := setup(t, tt.input)
			if tt.prep != nil {
				tt.prep(&opts)
			}
			_, err := Run(context.Background(), opts)
			if !errors.Is(err, ErrNothingClassified) {
				t.Fatalf("Run() error = %v, want ErrNothingClassified", err)
			}
			if _, err := os.Stat(opts.OutputDir); !errors.Is(err, os.ErrNotExist) {
				t.Errorf("output directory should not exist, stat error = %v", err)
			}
		})
	}
}

func TestRun_MissingColumn(t *testing.T) {
	opts := setup(t, "RetractionNature,Country,Reason\nRetraction,Canada,x\n")
	_, err := Run(context.Background(), opts)
	if !errors.Is(err, dataset.ErrMissingColumn) {
		t.Fatalf("Run() error = %v, want ErrMissingColumn", err)
	}
}

func TestRun_MissingInput(t *testing.T) {
	opts := setup(t, exportCSV)
	opts.Input = filepath.Join(t.TempDir(), "absent.csv")
	if _, err := Run(context.Background(), opts); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Run() error = %v, want ErrNotExist", err)
	}
}

func TestRun_MatchLogAcrossRuns(t *testing.T) {
	opts := setup(t, exportCSV)
	for i := 0; i < 2; i++ {
		if _, err := Run(context.Background(), opts); err != nil {
			t.Fatalf("run %d: Run() error = %v", i+1, err)
		}
	}

	log, err := country.ReadMatchLog(filepath.Join(opts.OutputDir, report.MatchesFile))
	if err != nil {
		t.Fatalf("ReadMatchLog() error = %v", err)
	}
	if len(log) != 1 || log["Russia"] != "Russian Federation" {
		t.Errorf("match log = %v, want only Russia -> Russian Federation", log)
	}

	data, err := os.ReadFile(filepath.Join(opts.OutputDir, report.MatchesFile))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), country.MatchLogHeader); n != 1 {
		t.Errorf("header appears %d times, want 1:\n%s", n, data)
	}
}

func TestRun_MissingReference(t *testing.T) {
	opts := setup(t, exportCSV)
	opts.ReferenceCSV = filepath.Join(t.TempDir(), "absent.csv")
	m, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(m.UnmatchedCountries) != 3 {
		t.Errorf("UnmatchedCountries = %v, want all 3", m.UnmatchedCountries)
	}
}

func TestAggregate(t *testing.T) {
	opts := setup(t, exportCSV)
	e, err := Aggregate(context.Background(), opts.Input, nil, quietLogger())
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if e.Records() != 2 {
		t.Errorf("Records() = %d, want 2", e.Records())
	}
	if n := e.Edge("Canada", "United States", dataset.Original); n != 1 {
		t.Errorf("Edge(Canada, United States) = %d, want 1", n)
	}
}
