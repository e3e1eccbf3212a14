package country

import (
	"sort"
	"strings"
)

// DefaultThreshold is the minimum similarity for a fuzzy match.
const DefaultThreshold = 0.7

// minPartialLen is the shortest normalized name allowed to take part in a
// substring alias match; "us" would otherwise hit "russia".
const minPartialLen = 4

// ContainmentBoost is added to a fuzzy score when one normalized name
// contains the other ("Russia" / "Russian Federation").
const ContainmentBoost = 0.15

// Method records which resolution step produced a match.
type Method string

const (
	MethodExact        Method = "exact"
	MethodAlias        Method = "alias"
	MethodPartialAlias Method = "partial_alias"
	MethodNormalized   Method = "normalized"
	MethodFuzzy        Method = "fuzzy"
	MethodNone         Method = "none"
)

// Match is the outcome of resolving one source name.
type Match struct {
	Source string  `json:"source"`
	Name   string  `json:"name,omitempty"`
	Method Method  `json:"method"`
	Score  float64 `json:"score,omitempty"`
}

// OK reports whether a reference name was found.
func (m Match) OK() bool {
	return m.Method != MethodNone
}

// Logged reports whether the match should be recorded in the audit log.
// Verbatim hits are not interesting to an auditor.
func (m Match) Logged() bool {
	return m.OK() && m.Method != MethodExact
}

type alias struct {
	from, to string
}

// aliases map retraction-dataset spellings to reference-table spellings.
// Keys are compared in their normalized form. Partial matches scan in
// declaration order, so "congo" resolves to Congo.
var aliases = []alias{
	{"russia", "Russian Federation"},
	{"brunei", "Brunei Darussalam"},
	{"myanmar", "Myanmar"},
	{"burma", "Myanmar"},
	{"syria", "Syrian Arab Republic"},
	{"north macedonia", "Macedonia"},
	{"macedonia", "Macedonia"},
	{"eswatini", "Eswatini"},
	{"swaziland", "Eswatini"},
	{"republic of the congo", "Congo"},
	{"congo-brazzaville", "Congo"},
	{"democratic republic of the congo", "Democratic Republic Congo"},
	{"réunion island", "Reunion"},
	{"reunion island", "Reunion"},
	{"reunion", "Reunion"},
	{"st. kitts & nevis", "Saint Kitts and Nevis"},
	{"st kitts & nevis", "Saint Kitts and Nevis"},
	{"saint kitts & nevis", "Saint Kitts and Nevis"},
	{"east timor", "Timor-Leste"},
	{"timor-leste", "Timor-Leste"},
	{"sint maarten", "Netherlands Antilles"},
}

// aliasKeys holds the normalized alias keys in declaration order,
// deduplicated.
var aliasKeys []alias

func init() {
	seen := make(map[string]bool, len(aliases))
	for _, a := range aliases {
		k := NormalizedKey(a.from)
		if seen[k] {
			continue
		}
		seen[k] = true
		aliasKeys = append(aliasKeys, alias{from: k, to: a.to})
	}
}

type candidate struct {
	name    string
	rawKey  string
	normKey string
}

// Resolver maps source country names onto a fixed reference vocabulary.
// Results are cached per source name, so repeated calls are cheap and
// always agree.
type Resolver struct {
	vocab     []candidate
	byName    map[string]bool
	threshold float64
	cache     map[string]Match
}

// NewResolver builds a resolver over vocabulary. A threshold <= 0 selects
// DefaultThreshold.
func NewResolver(vocabulary []string, threshold float64) *Resolver {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	r := &Resolver{
		byName:    make(map[string]bool, len(vocabulary)),
		threshold: threshold,
		cache:     make(map[string]Match),
	}
	for _, name := range vocabulary {
		if r.byName[name] {
			continue
		}
		r.byName[name] = true
		r.vocab = append(r.vocab, candidate{
			name:    name,
			rawKey:  Key(name),
			normKey: NormalizedKey(name),
		})
	}
	return r
}

// Threshold returns the fuzzy-match threshold in use.
func (r *Resolver) Threshold() float64 {
	return r.threshold
}

// Len returns the vocabulary size.
func (r *Resolver) Len() int {
	return len(r.vocab)
}

// Resolve finds the reference name for source. The first successful step
// wins: verbatim lookup, alias table, partial alias, normalized equality,
// then best fuzzy score at or above the threshold.
func (r *Resolver) Resolve(source string) Match {
	if m, ok := r.cache[source]; ok {
		return m
	}
	m := r.resolve(source)
	r.cache[source] = m
	return m
}

// Matches returns every cached resolution that should be audited, keyed by
// source name.
func (r *Resolver) Matches() map[string]string {
	out := make(map[string]string)
	for src, m := range r.cache {
		if m.Logged() {
			out[src] = m.Name
		}
	}
	return out
}

// Unmatched returns the cached source names that found no reference name,
// sorted.
func (r *Resolver) Unmatched() []string {
	var out []string
	for src, m := range r.cache {
		if !m.OK() {
			out = append(out, src)
		}
	}
	sort.Strings(out)
	return out
}

func (r *Resolver) resolve(source string) Match {
	none := Match{Source: source, Method: MethodNone}
	if len(r.vocab) == 0 || strings.TrimSpace(source) == "" {
		return none
	}
	if r.byName[source] {
		return Match{Source: source, Name: source, Method: MethodExact, Score: 1}
	}

	normKey := NormalizedKey(source)
	rawKey := Key(source)
	if normKey == "" {
		normKey = rawKey
	}

	for _, a := range aliasKeys {
		if a.from == normKey && r.byName[a.to] {
			return Match{Source: source, Name: a.to, Method: MethodAlias, Score: 1}
		}
	}
	for _, a := range aliasKeys {
		if len([]rune(normKey)) < minPartialLen {
			break
		}
		if (strings.Contains(normKey, a.from) || strings.Contains(a.from, normKey)) && r.byName[a.to] {
			return Match{Source: source, Name: a.to, Method: MethodPartialAlias, Score: 1}
		}
	}

	for _, c := range r.vocab {
		if c.normKey == normKey {
			return Match{Source: source, Name: c.name, Method: MethodNormalized, Score: 1}
		}
	}

	best, bestScore := "", 0.0
	for _, c := range r.vocab {
		if s := score(rawKey, normKey, c); s > bestScore {
			best, bestScore = c.name, s
		}
	}
	if bestScore >= r.threshold {
		return Match{Source: source, Name: best, Method: MethodFuzzy, Score: bestScore}
	}
	return none
}

// score is the best of the four raw/normalized pairings, boosted when the
// normalized forms contain one another.
func score(rawKey, normKey string, c candidate) float64 {
	s := max(
		Similarity(rawKey, c.rawKey),
		Similarity(rawKey, c.normKey),
		Similarity(normKey, c.rawKey),
		Similarity(normKey, c.normKey),
	)
	if normKey != "" && c.normKey != "" &&
		(strings.Contains(c.normKey, normKey) || strings.Contains(normKey, c.normKey)) {
		s += ContainmentBoost
	}
	return min(s, 1.0)
}
