package country

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MatchLogHeader is the first line of the audit file.
const MatchLogHeader = "Country Name Matches (Retraction Watch -> Scimago)"

const matchSeparator = " -> "

var matchRule = strings.Repeat("=", 60)

// MatchLog is the persisted source -> reference name audit trail.
type MatchLog map[string]string

// ReadMatchLog parses an audit file. A missing file is an empty log.
// The header, the rule and lines without the arrow separator are ignored.
func ReadMatchLog(path string) (MatchLog, error) {
	log := make(MatchLog)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return log, nil
		}
		return nil, fmt.Errorf("opening match log: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == MatchLogHeader || strings.Trim(line, "=") == "" {
			continue
		}
		src, dst, ok := strings.Cut(line, matchSeparator)
		if !ok {
			continue
		}
		src, dst = strings.TrimSpace(src), strings.TrimSpace(dst)
		if src == "" || dst == "" {
			continue
		}
		log[src] = dst
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading match log: %w", err)
	}
	return log, nil
}

// Merge copies entries from other into l, overwriting existing keys.
func (l MatchLog) Merge(other map[string]string) {
	for k, v := range other {
		l[k] = v
	}
}

// Sources returns the log keys in sorted order.
func (l MatchLog) Sources() []string {
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Write stores the log at path, replacing any previous file.
func (l MatchLog) Write(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating match log directory: %w", err)
		}
	}

	var sb strings.Builder
	sb.WriteString(MatchLogHeader)
	sb.WriteString("\n")
	sb.WriteString(matchRule)
	sb.WriteString("\n\n")
	for _, src := range l.Sources() {
		sb.WriteString(src)
		sb.WriteString(matchSeparator)
		sb.WriteString(l[src])
		sb.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("writing match log: %w", err)
	}
	return nil
}

// UpdateMatchLog merges matches into the audit file at path.
func UpdateMatchLog(path string, matches map[string]string) (MatchLog, error) {
	log, err := ReadMatchLog(path)
	if err != nil {
		return nil, err
	}
	log.Merge(matches)
	if err := log.Write(path); err != nil {
		return nil, err
	}
	return log, nil
}
