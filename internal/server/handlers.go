package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/report"
	"github.com/gofiber/fiber/v3"
	"github.com/segmentio/encoding/json"
)

// Upload outcomes reported to metrics.
const (
	uploadAccepted    = "accepted"
	uploadRejected    = "rejected"
	uploadRateLimited = "rate_limited"
)

// FileEntry describes one generated dashboard table.
type FileEntry struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Path string `json:"path"`
}

type processRequest struct {
	Filename string `json:"filename"`
}

func (s *Server) handleUpload(c fiber.Ctx) error {
	if !s.uploads.Allow() {
		s.metrics.Upload(uploadRateLimited)
		return jsonError(c, fiber.StatusTooManyRequests, "Too many uploads. Please try again later.")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		s.metrics.Upload(uploadRejected)
		return jsonError(c, fiber.StatusBadRequest, "No file provided")
	}
	if fh.Filename == "" {
		s.metrics.Upload(uploadRejected)
		return jsonError(c, fiber.StatusBadRequest, "No file selected")
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".csv") {
		s.metrics.Upload(uploadRejected)
		return jsonError(c, fiber.StatusBadRequest, "Invalid file type. Only CSV files are allowed.")
	}
	if fh.Size > s.Cfg.MaxUploadBytes() {
		s.metrics.Upload(uploadRejected)
		return jsonError(c, fiber.StatusBadRequest, fmt.Sprintf("File too large. The limit is %d MB.", s.Cfg.Server.MaxUploadMB))
	}

	if err := os.MkdirAll(s.Cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	dst := s.Cfg.InputPath()
	if err := c.SaveFile(fh, dst); err != nil {
		return fmt.Errorf("saving upload: %w", err)
	}
	s.metrics.Upload(uploadAccepted)

	output, err := s.runPipeline(c.Context(), dst)
	if err != nil {
		return jsonFailure(c, err, output)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"message":  fmt.Sprintf("File processed successfully and saved as %s.", s.Cfg.InputFile),
		"filename": s.Cfg.InputFile,
		"output":   output,
	})
}

func (s *Server) handleProcess(c fiber.Ctx) error {
	var req processRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil || req.Filename == "" {
		return jsonError(c, fiber.StatusBadRequest, "No filename provided")
	}
	if !safeName(req.Filename) {
		return jsonError(c, fiber.StatusBadRequest, "Invalid filename")
	}

	path := filepath.Join(s.Cfg.DataDir, req.Filename)
	if _, err := os.Stat(path); err != nil {
		return jsonError(c, fiber.StatusNotFound, "File not found")
	}

	output, err := s.runPipeline(c.Context(), path)
	if err != nil {
		return jsonFailure(c, err, output)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "File processed successfully",
		"output":  output,
	})
}

func (s *Server) handleFiles(c fiber.Ctx) error {
	out := make(map[string][]FileEntry, len(report.Folders))
	for _, folder := range report.Folders {
		entries, err := s.listFolder(folder)
		if err != nil {
			return err
		}
		out[folder] = entries
	}
	return c.JSON(out)
}

// listFolder returns the JSON files of one output folder, sorted by name.
// A folder that does not exist yet is empty.
func (s *Server) listFolder(folder string) ([]FileEntry, error) {
	entries := []FileEntry{}
	dir := filepath.Join(s.Cfg.OutputDir, folder)
	des, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return entries, nil
		}
		return nil, fmt.Errorf("listing %s: %w", folder, err)
	}
	for _, de := range des {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, FileEntry{
			Name: de.Name(),
			Size: info.Size(),
			Path: folder + "/" + de.Name(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (s *Server) handleView(c fiber.Ctx) error {
	folder, name := c.Params("folder"), c.Params("filename")
	path, status, msg := s.tablePath(folder, name)
	if status != 0 {
		return jsonError(c, status, msg)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, fmt.Sprintf("parsing %s: %v", name, err))
	}

	count := 1
	switch v := data.(type) {
	case []any:
		count = len(v)
	case map[string]any:
		count = len(v)
	}
	return c.JSON(fiber.Map{
		"filename": name,
		"folder":   folder,
		"data":     data,
		"count":    count,
	})
}

func (s *Server) handleDownload(c fiber.Ctx) error {
	folder, name := c.Params("folder"), c.Params("filename")
	path, status, msg := s.tablePath(folder, name)
	if status != 0 {
		return jsonError(c, status, msg)
	}
	return c.Download(path, name)
}

// tablePath validates a folder/filename pair from the URL and returns the
// file location, or an HTTP status and message when the request is refused.
func (s *Server) tablePath(folder, name string) (string, int, string) {
	if folder != report.YearsDir && folder != report.NoticeYearsDir {
		return "", fiber.StatusBadRequest, "Invalid folder"
	}
	if !safeName(name) || !strings.HasSuffix(name, ".json") {
		return "", fiber.StatusNotFound, "File not found"
	}
	path := filepath.Join(s.Cfg.OutputDir, folder, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fiber.StatusNotFound, "File not found"
	}
	return path, 0, ""
}

// safeName rejects names that could escape their directory.
func safeName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}
