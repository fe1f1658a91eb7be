// Package practice runs quiz passes over the flashcard collection.
package practice

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"time"

	"github.com/example/wortkarten/pkg/models"
	"github.com/google/uuid"
)

// ErrNothingToPractice is returned when a session is requested for an empty collection
var ErrNothingToPractice = errors.New("no flashcards to practice")

// Stats counts the outcomes of a pass
type Stats struct {
	Correct   int
	NearMiss  int
	Incorrect int
	Skipped   int
}

// Answered returns the number of scored cards
func (s Stats) Answered() int {
	return s.Correct + s.NearMiss + s.Incorrect
}

// Summary renders the counts shown at the end of a pass
func (s Stats) Summary() string {
	return fmt.Sprintf("🏁 Pass complete: %d correct, %d almost, %d incorrect, %d skipped.",
		s.Correct, s.NearMiss, s.Incorrect, s.Skipped)
}

// Option configures a session
type Option func(*Session)

// WithSeed makes the card order reproducible
func WithSeed(seed int64) Option {
	return func(s *Session) {
		s.rnd = rand.New(rand.NewSource(seed))
	}
}

// WithCutoff sets the similarity ratio needed for a "did you mean" hint
func WithCutoff(cutoff float64) Option {
	return func(s *Session) {
		if cutoff > 0 && cutoff <= 1 {
			s.matcher.Cutoff = cutoff
		}
	}
}

// Session is one pass over a shuffled copy of the cards. Every card is
// visited exactly once.
type Session struct {
	id      string
	cards   []*models.Flashcard
	pos     int
	last    *Result
	stats   Stats
	matcher *Matcher
	rnd     *rand.Rand
}

// NewSession shuffles the cards once and starts a pass
func NewSession(cards []*models.Flashcard, opts ...Option) (*Session, error) {
	if len(cards) == 0 {
		return nil, ErrNothingToPractice
	}

	s := &Session{
		id:      uuid.NewString(),
		cards:   make([]*models.Flashcard, len(cards)),
		matcher: NewMatcher(),
	}
	copy(s.cards, cards)
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s.rnd.Shuffle(len(s.cards), func(i, j int) {
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	})
	return s, nil
}

// ID identifies the session so adapters can ignore stale input
func (s *Session) ID() string {
	return s.id
}

// Current returns the card being asked, or false once the pass is over
func (s *Session) Current() (*models.Flashcard, bool) {
	if s.Done() {
		return nil, false
	}
	return s.cards[s.pos], true
}

// Answer checks the answer for the current card. An empty answer is a skip
// and returns false. The session stays on the card until Next is called.
func (s *Session) Answer(answer string) (Result, bool) {
	card, ok := s.Current()
	if !ok {
		return Result{}, false
	}
	if s.last != nil {
		return *s.last, true
	}
	if strings.TrimSpace(answer) == "" {
		s.Skip()
		return Result{}, false
	}

	result := s.matcher.Check(answer, card.English)
	s.last = &result
	switch result.Verdict {
	case Correct:
		s.stats.Correct++
	case NearMiss:
		s.stats.NearMiss++
	default:
		s.stats.Incorrect++
	}
	return result, true
}

// Answered reports whether the current card has been scored and waits for
// acknowledgment
func (s *Session) Answered() bool {
	return s.last != nil
}

// LastResult returns the result for the current card if it was answered
func (s *Session) LastResult() (Result, bool) {
	if s.last == nil {
		return Result{}, false
	}
	return *s.last, true
}

// Skip moves past the current card without scoring it
func (s *Session) Skip() {
	if s.Done() {
		return
	}
	if s.last == nil {
		s.stats.Skipped++
	}
	s.advance()
}

// Next moves to the next card after the user acknowledged the feedback. An
// unanswered card counts as skipped. It returns false when the pass is over.
func (s *Session) Next() bool {
	s.Skip()
	return !s.Done()
}

// Drop takes card out of the rest of the pass. Cards already answered or
// skipped stay counted.
func (s *Session) Drop(card *models.Flashcard) {
	i := slices.Index(s.cards, card)
	if i < s.pos || (i == s.pos && s.last != nil) {
		return
	}
	s.cards = slices.Delete(s.cards, i, i+1)
}

// Done reports whether every card has been visited
func (s *Session) Done() bool {
	return s.pos >= len(s.cards)
}

// Position returns the 1-based index of the current card
func (s *Session) Position() int {
	return s.pos + 1
}

// Total returns the number of cards in the pass
func (s *Session) Total() int {
	return len(s.cards)
}

// Stats returns the outcome counts so far
func (s *Session) Stats() Stats {
	return s.stats
}

func (s *Session) advance() {
	s.pos++
	s.last = nil
}

// ExampleLines returns the card's example sentences, omitting empty slots
func ExampleLines(card *models.Flashcard) []string {
	return card.Examples.NonEmpty()
}
