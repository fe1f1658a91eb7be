package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/wortkarten/internal/deck"
	"github.com/example/wortkarten/pkg/models"
	"github.com/jmoiron/sqlx"
)

// flashcardRow is the stored form of a card. Slots are JSON arrays.
type flashcardRow struct {
	Position int    `db:"position"`
	German   string `db:"german"`
	English  string `db:"english"`
	Examples string `db:"examples"`
}

// FlashcardRepository persists the collection in the flashcards table.
// It implements deck.Backend.
type FlashcardRepository struct {
	db *sqlx.DB
}

// NewFlashcardRepository creates a new repository instance
func NewFlashcardRepository(db *sqlx.DB) *FlashcardRepository {
	return &FlashcardRepository{db: db}
}

// Load returns all cards in stored order
func (r *FlashcardRepository) Load(ctx context.Context) ([]models.Flashcard, error) {
	var rows []flashcardRow
	err := r.db.SelectContext(ctx, &rows, "SELECT position, german, english, examples FROM flashcards ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to get flashcards: %v", err)
	}

	cards := make([]models.Flashcard, 0, len(rows))
	for _, row := range rows {
		card, err := row.flashcard()
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", deck.ErrMalformed, row.Position, err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// Save replaces every stored row in one transaction
func (r *FlashcardRepository) Save(ctx context.Context, cards []models.Flashcard) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM flashcards"); err != nil {
		return fmt.Errorf("failed to clear flashcards: %v", err)
	}

	query := tx.Rebind("INSERT INTO flashcards (position, german, english, examples) VALUES (?, ?, ?, ?)")
	for i, card := range cards {
		row, err := newFlashcardRow(i+1, card)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, row.Position, row.German, row.English, row.Examples); err != nil {
			return fmt.Errorf("failed to insert flashcard %q: %v", card.German, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit flashcards: %v", err)
	}
	return nil
}

func newFlashcardRow(position int, card models.Flashcard) (flashcardRow, error) {
	english, err := json.Marshal(card.English)
	if err != nil {
		return flashcardRow{}, fmt.Errorf("failed to encode translations: %v", err)
	}
	examples, err := json.Marshal(card.Examples)
	if err != nil {
		return flashcardRow{}, fmt.Errorf("failed to encode examples: %v", err)
	}
	return flashcardRow{
		Position: position,
		German:   card.German,
		English:  string(english),
		Examples: string(examples),
	}, nil
}

func (row flashcardRow) flashcard() (models.Flashcard, error) {
	if strings.TrimSpace(row.German) == "" {
		return models.Flashcard{}, fmt.Errorf("empty german word")
	}
	english, err := decodeSlots(row.English)
	if err != nil {
		return models.Flashcard{}, err
	}
	examples, err := decodeSlots(row.Examples)
	if err != nil {
		return models.Flashcard{}, err
	}
	return models.Flashcard{German: row.German, English: english, Examples: examples}, nil
}

// decodeSlots reads a JSON slot list. Plain text that is not JSON is a
// legacy single value.
func decodeSlots(value string) (models.Slots, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return models.Slots{}, nil
	}
	if !strings.HasPrefix(trimmed, "[") && !strings.HasPrefix(trimmed, `"`) && trimmed != "null" {
		return models.Slots{value}, nil
	}

	var s models.Slots
	if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
		return models.Slots{}, err
	}
	return s, nil
}
