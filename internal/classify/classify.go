// Package classify assigns each retraction reason to exactly one category
// using per-category keyword files.
package classify

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Category is the single label attached to a retraction record.
type Category string

// Categories, in ascending priority. A later category overrides an earlier
// match on the same reason.
const (
	Supplemental Category = "Supplemental"
	System       Category = "System"
	Research     Category = "Research"
	Integrity    Category = "Integrity"
	Serious      Category = "Serious"
)

// Default is assigned when no keyword matches.
const Default = Research

// Priority lists every category in evaluation order.
var Priority = []Category{Supplemental, System, Research, Integrity, Serious}

// ErrNoKeywords is returned when a keyword directory yields no usable
// keyword for any category.
var ErrNoKeywords = errors.New("no classification keywords loaded")

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, p := range Priority {
		if c == p {
			return true
		}
	}
	return false
}

// SummaryKey is the dashboard table field that counts this category.
func (c Category) SummaryKey() string {
	switch c {
	case Supplemental:
		return "supplemental"
	case System:
		return "system"
	case Integrity:
		return "integrity"
	case Serious:
		return "alterations"
	default:
		return "research"
	}
}

// DetailKey is the key used in country page "marks" maps.
func (c Category) DetailKey() string {
	if c == Integrity {
		return "researcher_integrity"
	}
	return c.SummaryKey()
}

// Rule is one category and its compiled keyword alternation.
type Rule struct {
	Category Category
	Keywords []string
	pattern  *regexp.Regexp
}

// NewRule compiles keywords into a case-insensitive literal alternation.
// Blank keywords are dropped; a rule without keywords never matches.
func NewRule(c Category, keywords []string) Rule {
	var kept, quoted []string
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		kept = append(kept, k)
		quoted = append(quoted, regexp.QuoteMeta(k))
	}
	r := Rule{Category: c, Keywords: kept}
	if len(quoted) > 0 {
		r.pattern = regexp.MustCompile("(?i)" + strings.Join(quoted, "|"))
	}
	return r
}

// Matches reports whether reason contains any of the rule's keywords.
func (r Rule) Matches(reason string) bool {
	return r.pattern != nil && r.pattern.MatchString(reason)
}

// RuleSet is an ordered list of rules evaluated last-match-wins.
type RuleSet struct {
	Rules []Rule
}

// NewRuleSet builds a rule set in Priority order from a category keyword map.
// Categories missing from the map get an empty rule.
func NewRuleSet(keywords map[Category][]string) *RuleSet {
	rs := &RuleSet{}
	for _, c := range Priority {
		rs.Rules = append(rs.Rules, NewRule(c, keywords[c]))
	}
	return rs
}

// Classify folds over the rules in priority order; each matching rule
// replaces the current category. Reasons that match nothing get Default.
func (rs *RuleSet) Classify(reason string) Category {
	result := Default
	if rs == nil {
		return result
	}
	for _, r := range rs.Rules {
		if r.Matches(reason) {
			result = r.Category
		}
	}
	return result
}

// KeywordCount returns the number of keywords across all rules.
func (rs *RuleSet) KeywordCount() int {
	n := 0
	for _, r := range rs.Rules {
		n += len(r.Keywords)
	}
	return n
}

// Empty reports whether no rule can ever match.
func (rs *RuleSet) Empty() bool {
	return rs.KeywordCount() == 0
}

// FileName returns the keyword file name for a category.
func FileName(c Category) string {
	return string(c) + ".txt"
}

// LoadDir reads <dir>/<Category>.txt for every category. Missing or
// unreadable files are logged and skipped. ErrNoKeywords is returned
// (alongside the empty rule set) when nothing could be loaded.
func LoadDir(dir string, log logrus.FieldLogger) (*RuleSet, error) {
	keywords := make(map[Category][]string, len(Priority))
	for _, c := range Priority {
		path := filepath.Join(dir, FileName(c))
		lines, err := readLines(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.WithField("path", path).Warn("keyword file not found, skipping category")
			} else {
				log.WithError(err).WithField("path", path).Warn("could not read keyword file, skipping category")
			}
			continue
		}
		if len(lines) == 0 {
			log.WithField("path", path).Debug("keyword file is empty")
		}
		keywords[c] = lines
	}

	rs := NewRuleSet(keywords)
	if rs.Empty() {
		return rs, fmt.Errorf("%w from %s", ErrNoKeywords, dir)
	}
	return rs, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}
