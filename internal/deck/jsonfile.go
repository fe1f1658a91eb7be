package deck

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/wortkarten/pkg/models"
)

// JSONFile stores the collection as an indented UTF-8 JSON document
type JSONFile struct {
	Path string
}

// NewJSONFile creates a backend for the file at path
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{Path: path}
}

// Load reads the file. A file that does not exist yet is an empty collection.
func (f *JSONFile) Load(_ context.Context) ([]models.Flashcard, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	return Decode(data)
}

// Save overwrites the file with the full collection.
// The data goes to a temporary file first and is renamed into place.
func (f *JSONFile) Save(_ context.Context, cards []models.Flashcard) error {
	data, err := Encode(cards)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write flashcards: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write flashcards: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", f.Path, err)
	}
	return nil
}

// Encode renders cards as an indented JSON list with non-ASCII kept literally
func Encode(cards []models.Flashcard) ([]byte, error) {
	if cards == nil {
		cards = []models.Flashcard{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(cards); err != nil {
		return nil, fmt.Errorf("failed to encode flashcards: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a JSON list of flashcards, accepting legacy scalar fields
func Decode(data []byte) ([]models.Flashcard, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var cards []models.Flashcard
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for i, card := range cards {
		if strings.TrimSpace(card.German) == "" {
			return nil, fmt.Errorf("%w: record %d has no german word", ErrMalformed, i+1)
		}
	}
	return cards, nil
}
