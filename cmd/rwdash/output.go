package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/classify"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/config"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/dataset"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/pipeline"
	"github.com/segmentio/encoding/json"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...any) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// exitCodeFor maps pipeline errors onto exit codes.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, config.ErrInvalid):
		return ExitConfigError
	case errors.Is(err, pipeline.ErrNothingClassified),
		errors.Is(err, classify.ErrNoKeywords),
		errors.Is(err, dataset.ErrMissingColumn),
		errors.Is(err, fs.ErrNotExist):
		return ExitDataError
	default:
		return ExitError
	}
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// formatBytes formats bytes in a human-readable way.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
