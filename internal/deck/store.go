// Package deck owns the in-memory flashcard collection and its persistence.
package deck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/example/wortkarten/pkg/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Backend persists the whole collection at once
type Backend interface {
	// Load reads every stored card in order. A missing collection is empty.
	Load(ctx context.Context) ([]models.Flashcard, error)
	// Save overwrites the stored collection with cards.
	Save(ctx context.Context, cards []models.Flashcard) error
}

// Store is the ordered in-memory collection of flashcards
type Store struct {
	backend Backend
	logger  *slog.Logger
	cards   []*models.Flashcard
}

// NewStore creates an empty store persisted through backend
func NewStore(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend: backend,
		logger:  logger,
	}
}

// Load replaces the in-memory collection with the persisted one.
// On failure the store is left empty and the error is returned for the
// caller to report.
func (s *Store) Load(ctx context.Context) ([]*models.Flashcard, error) {
	s.cards = nil

	loaded, err := s.backend.Load(ctx)
	if err != nil {
		s.logger.Warn("could not load flashcards, starting with an empty collection",
			"error", err,
			"malformed", errors.Is(err, ErrMalformed))
		return nil, err
	}

	s.cards = make([]*models.Flashcard, 0, len(loaded))
	for i := range loaded {
		card := loaded[i]
		s.cards = append(s.cards, &card)
	}
	s.logger.Debug("flashcards loaded", "count", len(s.cards))
	return s.Cards(), nil
}

// Save writes the full collection through the backend
func (s *Store) Save(ctx context.Context) error {
	snapshot := make([]models.Flashcard, len(s.cards))
	for i, card := range s.cards {
		snapshot[i] = *card
	}
	if err := s.backend.Save(ctx, snapshot); err != nil {
		s.logger.Error("failed to save flashcards", "error", err)
		return fmt.Errorf("failed to save flashcards: %w", err)
	}
	s.logger.Debug("flashcards saved", "count", len(snapshot))
	return nil
}

// FindByGerman returns the first card whose German word matches case-insensitively
func (s *Store) FindByGerman(word string) (*models.Flashcard, bool) {
	key := Fold(word)
	for _, card := range s.cards {
		if Fold(card.German) == key {
			return card, true
		}
	}
	return nil, false
}

// Lookup is FindByGerman returning ErrNotFound on a miss
func (s *Store) Lookup(word string) (*models.Flashcard, error) {
	card, ok := s.FindByGerman(word)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, strings.TrimSpace(word))
	}
	return card, nil
}

// ListSorted returns all cards ordered by their German word, ignoring case
func (s *Store) ListSorted() []*models.Flashcard {
	sorted := s.Cards()
	sort.SliceStable(sorted, func(i, j int) bool {
		return Fold(sorted[i].German) < Fold(sorted[j].German)
	})
	return sorted
}

// Add appends a card. The caller saves.
func (s *Store) Add(card *models.Flashcard) {
	s.cards = append(s.cards, card)
}

// Remove deletes the given card from the collection. The caller saves.
func (s *Store) Remove(card *models.Flashcard) bool {
	i := slices.Index(s.cards, card)
	if i < 0 {
		return false
	}
	s.cards = slices.Delete(s.cards, i, i+1)
	return true
}

// AddAndSave appends card and persists the collection. When the save fails
// the card is taken out again.
func (s *Store) AddAndSave(ctx context.Context, card *models.Flashcard) error {
	s.Add(card)
	if err := s.Save(ctx); err != nil {
		s.Remove(card)
		return err
	}
	return nil
}

// RemoveAndSave deletes card and persists the collection. When the save fails
// the card is put back at its old position. It reports whether card was in
// the collection.
func (s *Store) RemoveAndSave(ctx context.Context, card *models.Flashcard) (bool, error) {
	i := slices.Index(s.cards, card)
	if i < 0 {
		return false, nil
	}
	s.cards = slices.Delete(s.cards, i, i+1)
	if err := s.Save(ctx); err != nil {
		s.cards = slices.Insert(s.cards, i, card)
		return false, err
	}
	return true, nil
}

// Update applies patch to card and persists the collection. When the save
// fails the card gets its previous values back.
func (s *Store) Update(ctx context.Context, card *models.Flashcard, patch models.Draft) error {
	before := *card
	card.Apply(patch)
	if err := s.Save(ctx); err != nil {
		*card = before
		return err
	}
	return nil
}

// Cards returns the collection in stored order
func (s *Store) Cards() []*models.Flashcard {
	out := make([]*models.Flashcard, len(s.cards))
	copy(out, s.cards)
	return out
}

// Len returns the number of cards
func (s *Store) Len() int {
	return len(s.cards)
}

// Fold trims and lower-cases a word using German casing rules
func Fold(word string) string {
	return cases.Lower(language.German).String(strings.TrimSpace(word))
}
