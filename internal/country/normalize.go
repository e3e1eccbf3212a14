// Package country reconciles country names between the retraction dataset and
// the publication reference table.
package country

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	parenthetical = regexp.MustCompile(`\s*\([^)]*\)`)
	islandWord    = regexp.MustCompile(`\bIslands?\b`)
	saintAbbrev   = regexp.MustCompile(`\bSt\.\s*|\bSt\s+`)
)

// Normalize strips qualifiers and spelling variants from a country name:
// parentheticals (including "(formerly ...)") are removed, the words
// "Island"/"Islands" are dropped, "&" becomes "and", "St."/"St " become
// "Saint ", and whitespace is collapsed. Case is preserved.
func Normalize(name string) string {
	s := parenthetical.ReplaceAllString(name, "")
	s = islandWord.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&", " and ")
	s = saintAbbrev.ReplaceAllString(s, "Saint ")
	return strings.Join(strings.Fields(s), " ")
}

// Key returns the comparison form of a name: lower-cased with diacritics
// folded to their base letters ("Réunion" -> "reunion").
func Key(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// NormalizedKey is Key(Normalize(name)).
func NormalizedKey(name string) string {
	return Key(Normalize(name))
}

// FlagPath returns the dashboard path of a country's flag icon.
func FlagPath(name string) string {
	r := strings.NewReplacer(" ", "_", "(", "", ")", "", "&", "_")
	return "/country_flags/" + r.Replace(name) + ".svg"
}

// FileStem returns the file-system safe form of a country name used for
// per-country output files.
func FileStem(name string) string {
	r := strings.NewReplacer(" ", "_", "/", "_", "\\", "_")
	return r.Replace(name)
}
