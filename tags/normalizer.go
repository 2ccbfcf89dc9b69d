package tags

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Stoplist holds tag values that should never be written to a bookmark,
// loaded from an optional YAML file.
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist reads a stoplist from a YAML file.
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stoplist: %w", err)
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, fmt.Errorf("failed to parse stoplist: %w", err)
	}
	return &sl, nil
}

// Normalizer converts raw keywords into normalized, slug-safe tag strings.
type Normalizer struct {
	stopped map[string]bool
}

// NewNormalizer creates a normalizer. The stoplist may be nil.
func NewNormalizer(sl *Stoplist) *Normalizer {
	stopped := make(map[string]bool)
	if sl != nil {
		for _, term := range sl.Terms {
			stopped[Slugify(term)] = true
		}
	}
	return &Normalizer{stopped: stopped}
}

// Normalize slugifies each keyword, drops stoplisted and empty results,
// and removes duplicates while preserving the input order.
func (n *Normalizer) Normalize(keywords []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		slug := Slugify(kw)
		if slug == "" || seen[slug] || n.stopped[slug] {
			continue
		}
		seen[slug] = true
		out = append(out, slug)
	}
	return out
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lower-cases a keyword, folds accented characters to ASCII,
// turns whitespace runs into single hyphens, and drops everything that
// is not a letter, digit, or hyphen.
func Slugify(keyword string) string {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if folded, _, err := transform.String(accentStripper, keyword); err == nil {
		keyword = folded
	}

	var b strings.Builder
	lastHyphen := false
	for _, r := range keyword {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '/':
			if !lastHyphen && b.Len() > 0 {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// Merge unions existing and new tags: existing tags are preserved as-is,
// new tags are appended in order, duplicates (after slugification of the
// new side) are dropped. The result is never shorter than existing.
func Merge(existing, newTags []string) []string {
	merged := make([]string, 0, len(existing)+len(newTags))
	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		merged = append(merged, t)
		seen[Slugify(t)] = true
	}
	for _, t := range newTags {
		slug := Slugify(t)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		merged = append(merged, t)
	}
	return merged
}
