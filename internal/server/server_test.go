package server

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/config"
	"github.com/gofiber/fiber/v3"
	"github.com/segmentio/encoding/json"
	"github.com/sirupsen/logrus"
)

const exportCSV = `RetractionNature,Country,Reason,Subject,OriginalPaperDate,RetractionDate
Retraction,United States;Canada,+Plagiarism of Text;,(BLS) Biology;,1/1/2020 0:00,6/1/2021 0:00
Correction,United States,+Plagiarism of Text;,(BLS) Biology;,1/1/2020 0:00,6/1/2021 0:00
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	keywords := filepath.Join(dir, "classification")
	if err := os.MkdirAll(keywords, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(keywords, "Integrity.txt"), []byte("plagiarism\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.KeywordsDir = keywords
	cfg.ReferenceCSV = filepath.Join(dir, "scimago.csv")
	cfg.Windows = 1

	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(cfg, log)
}

func do(t *testing.T, s *Server, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := s.App.Test(req, fiber.TestConfig{Timeout: 10 * time.Second})
	if err != nil {
		t.Fatalf("%s %s failed: %v", req.Method, req.URL.Path, err)
	}
	body, _ := io.ReadAll(resp.Body)
	var v any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(body, &v); err != nil {
			t.Fatalf("decoding %s: %v", body, err)
		}
	}
	out, _ := v.(map[string]any)
	return resp, out
}

func uploadRequest(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req, _ := http.NewRequest("POST", "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadAndBrowse(t *testing.T) {
	s := newTestServer(t)

	resp, body := do(t, s, uploadRequest(t, "file", "export.CSV", exportCSV))
	if resp.StatusCode != 200 {
		t.Fatalf("upload: expected 200, got %d: %v", resp.StatusCode, body)
	}
	if body["success"] != true || body["filename"] != "retraction_watch.csv" {
		t.Errorf("upload body = %v", body)
	}
	if out, _ := body["output"].(string); !strings.Contains(out, "dashboard data generated") {
		t.Errorf("output does not contain run log: %q", out)
	}
	if _, err := os.Stat(s.Cfg.InputPath()); err != nil {
		t.Errorf("uploaded file not saved: %v", err)
	}

	req, _ := http.NewRequest("GET", "/api/files", nil)
	resp, body = do(t, s, req)
	if resp.StatusCode != 200 {
		t.Fatalf("files: expected 200, got %d", resp.StatusCode)
	}
	years, _ := body["years"].([]any)
	if len(years) != 2 {
		t.Fatalf("years = %v, want dashboard_table.json and dashboard_table_1.json", years)
	}
	first := years[0].(map[string]any)
	if first["name"] != "dashboard_table.json" || first["path"] != "years/dashboard_table.json" {
		t.Errorf("first entry = %v", first)
	}

	req, _ = http.NewRequest("GET", "/api/view/years/dashboard_table.json", nil)
	resp, body = do(t, s, req)
	if resp.StatusCode != 200 {
		t.Fatalf("view: expected 200, got %d: %v", resp.StatusCode, body)
	}
	if body["count"] != float64(2) || body["folder"] != "years" {
		t.Errorf("view body = %v", body)
	}

	req, _ = http.NewRequest("GET", "/api/download/notice_years/dashboard_table.json", nil)
	resp, _ = do(t, s, req)
	if resp.StatusCode != 200 {
		t.Fatalf("download: expected 200, got %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q, want attachment", cd)
	}
}

func TestUploadRejected(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		filename string
		wantMsg  string
	}{
		{"missing file field", "other", "export.csv", "No file provided"},
		{"wrong extension", "file", "export.xlsx", "Invalid file type. Only CSV files are allowed."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			resp, body := do(t, s, uploadRequest(t, tt.field, tt.filename, exportCSV))
			if resp.StatusCode != fiber.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			if body["error"] != tt.wantMsg {
				t.Errorf("error = %v, want %q", body["error"], tt.wantMsg)
			}
		})
	}
}

func TestUploadRateLimited(t *testing.T) {
	s := newTestServer(t)
	s.Cfg.Server.UploadsPerMinute = 1
	s = New(s.Cfg, s.log)

	resp, _ := do(t, s, uploadRequest(t, "file", "a.txt", ""))
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("first upload: expected 400, got %d", resp.StatusCode)
	}
	resp, _ = do(t, s, uploadRequest(t, "file", "a.csv", exportCSV))
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("second upload: expected 429, got %d", resp.StatusCode)
	}
}

func TestUploadPipelineFailure(t *testing.T) {
	s := newTestServer(t)
	s.Cfg.KeywordsDir = filepath.Join(t.TempDir(), "missing")

	resp, body := do(t, s, uploadRequest(t, "file", "export.csv", exportCSV))
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if body["error"] != "Processing failed" {
		t.Errorf("error = %v", body["error"])
	}
	if d, _ := body["details"].(string); !strings.Contains(d, "nothing classified") {
		t.Errorf("details = %q", d)
	}
}

func TestProcess(t *testing.T) {
	s := newTestServer(t)
	if err := os.MkdirAll(s.Cfg.DataDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.Cfg.DataDir, "older.csv"), []byte(exportCSV), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"existing file", `{"filename":"older.csv"}`, 200},
		{"missing file", `{"filename":"absent.csv"}`, 404},
		{"no filename", `{}`, 400},
		{"not json", `filename`, 400},
		{"path traversal", `{"filename":"../older.csv"}`, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("POST", "/api/process", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, body := do(t, s, req)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %v", tt.wantStatus, resp.StatusCode, body)
			}
		})
	}
}

func TestViewRejects(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/api/view/country_data/x.json", 400},
		{"/api/view/years/absent.json", 404},
		{"/api/view/years/manifest.txt", 404},
		{"/api/download/other/dashboard_table.json", 400},
		{"/api/download/years/absent.json", 404},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req, _ := http.NewRequest("GET", tt.path, nil)
			resp, _ := do(t, s, req)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
		})
	}
}

func TestFilesEmpty(t *testing.T) {
	s := newTestServer(t)
	req, _ := http.NewRequest("GET", "/api/files", nil)
	resp, body := do(t, s, req)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	for _, folder := range []string{"years", "notice_years"} {
		if v, ok := body[folder].([]any); !ok || len(v) != 0 {
			t.Errorf("%s = %v, want empty list", folder, body[folder])
		}
	}
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t)
	do(t, s, uploadRequest(t, "file", "a.txt", ""))

	req, _ := http.NewRequest("GET", "/metrics", nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `rwdash_uploads_total{status="rejected"} 1`) {
		t.Errorf("metrics missing rejected upload:\n%s", body)
	}
}

func TestSafeName(t *testing.T) {
	tests := map[string]bool{
		"dashboard_table.json": true,
		"":                     false,
		"..":                   false,
		"a/b.json":             false,
		`a\b.json`:             false,
		"..json":               false,
	}
	for name, want := range tests {
		if got := safeName(name); got != want {
			t.Errorf("safeName(%q) = %v, want %v", name, got, want)
		}
	}
}
