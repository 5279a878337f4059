// Package commodity maps spoken or typed crop names, in any supported
// language and possibly misheard, onto canonical commodity keys.
package commodity

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed synonyms.yaml
var defaultTable []byte

// Method records which resolution step produced a Match.
type Method string

const (
	MethodExact       Method = "exact"
	MethodPhrase      Method = "phrase"
	MethodSubstring   Method = "substring"
	MethodFuzzy       Method = "fuzzy"
	MethodPassthrough Method = "passthrough"
)

// Match is the resolution of one token of free text.
type Match struct {
	Token    string `json:"token"`
	Key      string `json:"key"`
	Method   Method `json:"method"`
	Distance int    `json:"distance,omitempty"`

	pos int
}

// Known reports whether the token resolved to a canonical key.
func (m Match) Known() bool {
	return m.Method != MethodPassthrough
}

type tableFile struct {
	Commodities []struct {
		Key      string            `yaml:"key"`
		Names    map[string]string `yaml:"names"`
		Synonyms []string          `yaml:"synonyms"`
	} `yaml:"commodities"`
	Stopwords   []string `yaml:"stopwords"`
	StopPhrases []string `yaml:"stop_phrases"`
}

// Resolver is immutable after construction and safe for concurrent use.
type Resolver struct {
	synonyms    map[string]string // normalized synonym -> canonical key
	names       map[string]map[string]string
	keys        []string // canonical keys in table order
	words       []string // single-word synonyms, sorted for deterministic scans
	phrases     []string // multi-word synonyms, longest first
	stopwords   map[string]struct{}
	stopPhrases []string
}

// NewResolver builds a resolver from the embedded synonym table.
func NewResolver() (*Resolver, error) {
	return NewResolverFromYAML(defaultTable)
}

// MustResolver is NewResolver for package-level wiring and tests.
func MustResolver() *Resolver {
	r, err := NewResolver()
	if err != nil {
		panic(err)
	}
	return r
}

// NewResolverFromYAML builds a resolver from a table in synonyms.yaml format.
func NewResolverFromYAML(data []byte) (*Resolver, error) {
	var table tableFile
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse synonym table: %w", err)
	}

	r := &Resolver{
		synonyms:  make(map[string]string),
		names:     make(map[string]map[string]string),
		stopwords: make(map[string]struct{}),
	}

	for _, c := range table.Commodities {
		key := Normalize(c.Key)
		if key == "" {
			return nil, fmt.Errorf("commodity with empty key in synonym table")
		}
		if _, dup := r.names[key]; dup {
			return nil, fmt.Errorf("duplicate commodity key %q", key)
		}
		r.keys = append(r.keys, key)
		r.names[key] = c.Names
		for _, s := range append([]string{key}, c.Synonyms...) {
			s = Normalize(s)
			if s == "" {
				continue
			}
			if owner, ok := r.synonyms[s]; ok && owner != key {
				return nil, fmt.Errorf("synonym %q claimed by both %q and %q", s, owner, key)
			}
			r.synonyms[s] = key
		}
	}

	for s := range r.synonyms {
		if strings.Contains(s, " ") {
			r.phrases = append(r.phrases, s)
		} else {
			r.words = append(r.words, s)
		}
	}
	sort.Strings(r.words)
	sort.Slice(r.phrases, func(i, j int) bool {
		if len(r.phrases[i]) != len(r.phrases[j]) {
			return len(r.phrases[i]) > len(r.phrases[j])
		}
		return r.phrases[i] < r.phrases[j]
	})

	for _, w := range table.Stopwords {
		if w = Normalize(w); w != "" {
			r.stopwords[w] = struct{}{}
		}
	}
	for _, p := range table.StopPhrases {
		if p = Normalize(p); p != "" {
			r.stopPhrases = append(r.stopPhrases, p)
		}
	}
	sort.Slice(r.stopPhrases, func(i, j int) bool {
		return len(r.stopPhrases[i]) > len(r.stopPhrases[j])
	})

	return r, nil
}

// Normalize lowercases s, composes it to NFC and turns punctuation and symbols
// into single spaces. Combining marks are kept: Devanagari vowel signs are marks.
func Normalize(s string) string {
	s = norm.NFC.String(strings.ToLower(s))
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// Resolve returns the canonical keys named in text, in first-occurrence order.
// Tokens that resolve to nothing are returned unchanged. Empty or all-stopword
// input yields an empty list.
func (r *Resolver) Resolve(text string) []string {
	matches := r.ResolveDetailed(text)
	out := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if _, ok := seen[m.Key]; ok {
			continue
		}
		seen[m.Key] = struct{}{}
		out = append(out, m.Key)
	}
	return out
}

// ResolveDetailed is Resolve with per-token provenance. Duplicates are kept.
func (r *Resolver) ResolveDetailed(text string) []Match {
	normalized := " " + Normalize(text) + " "
	for _, p := range r.stopPhrases {
		normalized = strings.ReplaceAll(normalized, " "+p+" ", " ")
	}

	var matches []Match
	// Multi-word synonyms ("green gram") must win over their parts ("gram").
	for _, p := range r.phrases {
		needle := " " + p + " "
		for strings.Contains(normalized, needle) {
			idx := strings.Index(normalized, needle)
			matches = append(matches, Match{Token: p, Key: r.synonyms[p], Method: MethodPhrase, pos: idx})
			normalized = normalized[:idx] + " " + strings.Repeat("\x00", len(p)) + " " + normalized[idx+len(needle):]
		}
	}

	offset := 0
	for _, token := range strings.Fields(normalized) {
		idx := strings.Index(normalized[offset:], token) + offset
		offset = idx + len(token)
		if strings.HasPrefix(token, "\x00") {
			continue
		}
		if utf8.RuneCountInString(token) <= 1 {
			continue
		}
		if _, stop := r.stopwords[token]; stop {
			continue
		}
		m := r.resolveToken(token)
		m.pos = idx
		matches = append(matches, m)
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].pos < matches[j].pos })
	return matches
}

func (r *Resolver) resolveToken(token string) Match {
	if key, ok := r.synonyms[token]; ok {
		return Match{Token: token, Key: key, Method: MethodExact}
	}
	if key, ok := r.substringMatch(token); ok {
		return Match{Token: token, Key: key, Method: MethodSubstring}
	}
	if key, dist, ok := r.fuzzyMatch(token); ok {
		return Match{Token: token, Key: key, Method: MethodFuzzy, Distance: dist}
	}
	return Match{Token: token, Key: token, Method: MethodPassthrough}
}

// substringMatch accepts a synonym contained in the token ("tomatoes" holds
// "tomato"), or a token covering at least two thirds of a synonym ("tamat").
// Synonyms shorter than four runes only ever match exactly.
func (r *Resolver) substringMatch(token string) (string, bool) {
	tokenLen := utf8.RuneCountInString(token)
	best, bestLen := "", 0
	for _, s := range r.words {
		sLen := utf8.RuneCountInString(s)
		if sLen < minPartialRunes {
			continue
		}
		switch {
		case strings.Contains(token, s):
			if sLen > bestLen {
				best, bestLen = s, sLen
			}
		case tokenLen >= minPartialRunes && strings.Contains(s, token) && 3*tokenLen >= 2*sLen:
			if tokenLen > bestLen {
				best, bestLen = s, tokenLen
			}
		}
	}
	if best == "" {
		return "", false
	}
	return r.synonyms[best], true
}

// fuzzyMatch accepts the closest synonym when its edit distance is within
// max(2, len(synonym)/3).
func (r *Resolver) fuzzyMatch(token string) (string, int, bool) {
	if utf8.RuneCountInString(token) < minFuzzyRunes {
		return "", 0, false
	}
	best, bestDist := "", -1
	for _, s := range r.words {
		if utf8.RuneCountInString(s) < minPartialRunes {
			continue
		}
		d := levenshtein.ComputeDistance(token, s)
		if bestDist < 0 || d < bestDist {
			best, bestDist = s, d
		}
	}
	if best == "" || bestDist > fuzzyThreshold(best) {
		return "", 0, false
	}
	return r.synonyms[best], bestDist, true
}

func fuzzyThreshold(key string) int {
	t := utf8.RuneCountInString(key) / 3
	if t < 2 {
		t = 2
	}
	return t
}

const (
	minPartialRunes = 4
	minFuzzyRunes   = 3
)

// Canonical resolves a single commodity label, such as a provider's
// "Paddy(Dhan)(Common)", to its canonical key. The first known token wins.
func (r *Resolver) Canonical(label string) (string, bool) {
	normalized := Normalize(label)
	if normalized == "" {
		return "", false
	}
	if key, ok := r.synonyms[normalized]; ok {
		return key, true
	}
	for _, m := range r.ResolveDetailed(label) {
		if m.Known() {
			return m.Key, true
		}
	}
	return normalized, false
}

// Known reports whether key is a canonical commodity key.
func (r *Resolver) Known(key string) bool {
	_, ok := r.names[key]
	return ok
}

// Keys returns every canonical key in table order.
func (r *Resolver) Keys() []string {
	return append([]string(nil), r.keys...)
}

// DisplayName returns the commodity's name in lang, falling back to English
// and then to the key itself.
func (r *Resolver) DisplayName(key, lang string) string {
	names := r.names[key]
	if n := names[lang]; n != "" {
		return n
	}
	if n := names["en"]; n != "" {
		return n
	}
	return key
}
