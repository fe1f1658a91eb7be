package practice

import (
	"fmt"
	"strings"

	"github.com/example/wortkarten/internal/deck"
	"github.com/example/wortkarten/pkg/models"
	"github.com/pmezard/go-difflib/difflib"
)

// DefaultCutoff is the minimum similarity ratio for a "did you mean" hint
const DefaultCutoff = 0.75

// Verdict is the outcome of checking one answer
type Verdict int

const (
	// Incorrect means no accepted translation is close enough
	Incorrect Verdict = iota
	// NearMiss means the answer is close to an accepted translation
	NearMiss
	// Correct means the answer matches an accepted translation exactly
	Correct
)

func (v Verdict) String() string {
	switch v {
	case Correct:
		return "correct"
	case NearMiss:
		return "near_miss"
	default:
		return "incorrect"
	}
}

// Result holds the outcome of one answer
type Result struct {
	Verdict    Verdict
	Answer     string   // normalized answer
	Suggestion string   // closest normalized translation for a near miss
	Similarity float64  // ratio of the suggestion, 1 for a correct answer
	Accepted   []string // non-empty accepted translations as stored
}

// Feedback renders the message shown to the user after an answer
func (r Result) Feedback() string {
	switch r.Verdict {
	case Correct:
		return "✅ Correct!"
	case NearMiss:
		return fmt.Sprintf("❌ Not quite. Did you mean: '%s'?\n\nCorrect: %s", r.Suggestion, strings.Join(r.Accepted, ", "))
	default:
		return fmt.Sprintf("❌ Incorrect.\nCorrect: %s", strings.Join(r.Accepted, ", "))
	}
}

// Matcher compares answers against accepted translations
type Matcher struct {
	Cutoff float64
}

// NewMatcher creates a matcher with the default cutoff
func NewMatcher() *Matcher {
	return &Matcher{Cutoff: DefaultCutoff}
}

// Normalize trims surrounding whitespace and lower-cases the text
func Normalize(text string) string {
	return deck.Fold(text)
}

// Check compares the answer with every non-empty accepted translation.
// An exact match after normalization is correct. Otherwise the closest
// translation by similarity ratio is suggested when it reaches the cutoff.
func (m *Matcher) Check(answer string, accepted models.Slots) Result {
	result := Result{
		Answer:   Normalize(answer),
		Accepted: accepted.NonEmpty(),
	}

	candidates := make([]string, 0, len(result.Accepted))
	for _, a := range result.Accepted {
		candidates = append(candidates, Normalize(a))
	}

	for _, c := range candidates {
		if c == result.Answer {
			result.Verdict = Correct
			result.Similarity = 1
			return result
		}
	}

	best, score := closest(result.Answer, candidates, m.Cutoff)
	if best != "" {
		result.Verdict = NearMiss
		result.Suggestion = best
		result.Similarity = score
		return result
	}

	result.Verdict = Incorrect
	return result
}

// closest returns the candidate with the highest ratio at or above cutoff.
// On a tie the candidate that sorts last wins, as with difflib's
// get_close_matches.
func closest(word string, candidates []string, cutoff float64) (string, float64) {
	var (
		best  string
		score float64
		found bool
	)
	target := runes(word)
	for _, c := range candidates {
		m := difflib.NewMatcher(runes(c), target)
		if m.RealQuickRatio() < cutoff || m.QuickRatio() < cutoff {
			continue
		}
		ratio := m.Ratio()
		if ratio < cutoff {
			continue
		}
		if !found || ratio > score || (ratio == score && c > best) {
			best, score, found = c, ratio, true
		}
	}
	return best, score
}

func runes(s string) []string {
	return strings.Split(s, "")
}
