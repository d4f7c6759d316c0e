// Package titlematch scores how well series titles from a metadata search
// match the title read from a library directory.
package titlematch

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Confidence is the strength of a match.
type Confidence int

const (
	ConfidenceNone   Confidence = iota // score < 0.70
	ConfidenceLow                      // score >= 0.70
	ConfidenceMedium                   // score >= 0.85
	ConfidenceHigh                     // score >= 0.95
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	default:
		return "none"
	}
}

func confidenceFor(score float64) Confidence {
	switch {
	case score >= 0.95:
		return ConfidenceHigh
	case score >= 0.85:
		return ConfidenceMedium
	case score >= 0.70:
		return ConfidenceLow
	default:
		return ConfidenceNone
	}
}

// Candidate is one search result to match against.
type Candidate struct {
	Title string
	Year  int // 0 when unknown
}

// Match is the best candidate found by Best.
type Match struct {
	Index      int // index into the candidates, -1 when nothing matched
	Title      string
	Score      float64
	Confidence Confidence
}

// parenthesized qualifiers such as "(US)" or "(2005)"
var qualifierRegex = regexp.MustCompile(`\s*\([^)]*\)`)

// Normalize folds a title to the form titles are compared in: lowercase,
// accents removed, qualifiers and leading articles dropped, punctuation stripped.
func Normalize(title string) string {
	s := strings.ToLower(title)
	s = qualifierRegex.ReplaceAllString(s, " ")
	s = removeAccents(s)

	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.NewReplacer("-", " ", ".", " ", "_", " ").Replace(s)

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r), r == ':':
			b.WriteRune(' ')
		}
	}

	fields := strings.Fields(b.String())
	if len(fields) > 1 {
		switch fields[0] {
		case "the", "a", "an":
			fields = fields[1:]
		}
	}
	return strings.Join(fields, " ")
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// Score returns the Jaro-Winkler similarity of the normalized titles, adjusted
// by year: an equal year is a bonus, years more than one apart are a penalty.
func Score(title string, year int, c Candidate) float64 {
	score := float64(edlib.JaroWinklerSimilarity(Normalize(title), Normalize(c.Title)))

	if year > 0 && c.Year > 0 {
		diff := year - c.Year
		if diff < 0 {
			diff = -diff
		}
		switch {
		case diff == 0:
			score = min(score*1.05, 1.0)
		case diff > 1:
			score *= 0.85
		}
	}
	return score
}

// Best picks the highest scoring candidate. Ties keep the earlier candidate,
// which is the search service's own ranking.
func Best(title string, year int, candidates []Candidate) Match {
	best := Match{Index: -1}
	for i, c := range candidates {
		score := Score(title, year, c)
		if score > best.Score {
			best = Match{Index: i, Title: c.Title, Score: score}
		}
	}

	best.Confidence = confidenceFor(best.Score)
	if best.Confidence == ConfidenceNone {
		best.Index = -1
		best.Title = ""
	}
	return best
}
