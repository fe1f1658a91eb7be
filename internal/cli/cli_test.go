package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/wortkarten/internal/deck"
	"github.com/example/wortkarten/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store *deck.Store
	file  *deck.JSONFile
}

func newFixture(t *testing.T, cards ...*models.Flashcard) fixture {
	t.Helper()
	file := deck.NewJSONFile(filepath.Join(t.TempDir(), "flashcards.json"))
	store := deck.NewStore(file, slog.New(slog.NewTextHandler(io.Discard, nil)))
	for _, c := range cards {
		store.Add(c)
	}
	return fixture{store: store, file: file}
}

func (f fixture) run(t *testing.T, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	c := New(f.store, in, &out, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, c.Run(context.Background()))
	return out.String()
}

func (f fixture) persisted(t *testing.T) []models.Flashcard {
	t.Helper()
	cards, err := f.file.Load(context.Background())
	require.NoError(t, err)
	return cards
}

func hund() *models.Flashcard {
	return &models.Flashcard{
		German:   "Hund",
		English:  models.Slots{"dog", "hound", ""},
		Examples: models.Slots{"Der Hund bellt.", "Mein Hund schläft.", ""},
	}
}

func TestAddFlashcard(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "1", "Katze", "cat", "", "", "Die Katze schläft.", "Sie miaut.", "", "7")

	assert.Contains(t, out, "✅ Flashcard 'Katze' saved.")
	saved := f.persisted(t)
	require.Len(t, saved, 1)
	assert.Equal(t, "Katze", saved[0].German)
	assert.Equal(t, models.Slots{"cat", "", ""}, saved[0].English)
	assert.Equal(t, models.Slots{"Die Katze schläft.", "Sie miaut.", ""}, saved[0].Examples)
}

func TestAddRejectsMissingExamples(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "1", "Katze", "cat", "", "", "Die Katze schläft.", "", "", "7")

	assert.Contains(t, out, "❗ The flashcard was not saved: missing example 2.")
	assert.Equal(t, 0, f.store.Len())
	assert.Empty(t, f.persisted(t))
}

func TestShowAllAndListWords(t *testing.T) {
	f := newFixture(t, hund(), &models.Flashcard{German: "Apfel", English: models.Slots{"apple"}, Examples: models.Slots{"a", "b"}})
	out := f.run(t, "2", "6", "7")

	assert.Contains(t, out, "🗒️  Hund → dog, hound")
	assert.Contains(t, out, "  → Example 2: Mein Hund schläft.")
	assert.NotContains(t, out, "Example 3")
	assert.Contains(t, out, "1. Apfel\n2. Hund\n")
}

func TestEmptyCollection(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "2", "5", "7")

	assert.Contains(t, out, "📭 No flashcards yet.")
	assert.Contains(t, out, "📭 No flashcards to practice.")
}

func TestEditKeepsEmptyFields(t *testing.T) {
	f := newFixture(t, hund())
	out := f.run(t, "3", "HUND", "", "", "canine", "", "", "", "Er wedelt.", "7")

	assert.Contains(t, out, "English 1 (dog): ")
	assert.Contains(t, out, "✅ Flashcard updated.")
	saved := f.persisted(t)
	require.Len(t, saved, 1)
	assert.Equal(t, "Hund", saved[0].German)
	assert.Equal(t, models.Slots{"dog", "canine", ""}, saved[0].English)
	assert.Equal(t, models.Slots{"Der Hund bellt.", "Mein Hund schläft.", "Er wedelt."}, saved[0].Examples)
}

func TestEditUnknownWord(t *testing.T) {
	f := newFixture(t, hund())
	out := f.run(t, "3", "Katze", "7")
	assert.Contains(t, out, "❌ Word not found.")
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	f := newFixture(t, hund())

	out := f.run(t, "4", "hund", "no", "7")
	assert.Contains(t, out, "🚫 Cancelled.")
	assert.Equal(t, 1, f.store.Len())

	out = f.run(t, "4", "hund", "yes", "7")
	assert.Contains(t, out, "✅ Flashcard deleted.")
	assert.Equal(t, 0, f.store.Len())
	assert.Empty(t, f.persisted(t))
}

func TestPractice(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   string
	}{
		{name: "correct", answer: "  Dog ", want: "✅ Correct!"},
		{name: "near miss", answer: "doog", want: "❌ Not quite. Did you mean: 'dog'?\n\nCorrect: dog, hound"},
		{name: "incorrect", answer: "cat", want: "❌ Incorrect.\nCorrect: dog, hound"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, hund())
			out := f.run(t, "5", tt.answer, "", "7")

			assert.Contains(t, out, "(1/1) What is the meaning of 'Hund'?")
			assert.Contains(t, out, tt.want)
			assert.Contains(t, out, "  • Der Hund bellt.")
			assert.Contains(t, out, "Press Enter for the next card.")
			assert.Contains(t, out, "🏁 Pass complete")
		})
	}
}

func TestPracticeSkip(t *testing.T) {
	f := newFixture(t, hund())
	out := f.run(t, "5", "", "7")

	assert.Contains(t, out, "⏭️ Skipped.")
	assert.NotContains(t, out, "Press Enter")
	assert.Contains(t, out, "0 correct, 0 almost, 0 incorrect, 1 skipped.")
}

func TestInputEndsRun(t *testing.T) {
	f := newFixture(t)
	var out bytes.Buffer
	c := New(f.store, strings.NewReader(""), &out, nil)
	c.Warn("could not load flashcards")

	require.NoError(t, c.Run(context.Background()))
	assert.Contains(t, out.String(), "⚠️ could not load flashcards")
	assert.Contains(t, out.String(), "👋 Bye.")
}

func TestInvalidChoice(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "9", "7")
	assert.Contains(t, out, "❌ Invalid choice.")
}

type fullDisk struct{}

func (fullDisk) Load(context.Context) ([]models.Flashcard, error) { return nil, nil }

func (fullDisk) Save(context.Context, []models.Flashcard) error { return errors.New("disk full") }

func TestFailedSaveLeavesCollectionUnchanged(t *testing.T) {
	store := deck.NewStore(fullDisk{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	original := hund()
	store.Add(original)
	f := fixture{store: store}

	out := f.run(t, "1", "Katze", "cat", "", "", "Die Katze schläft.", "Sie miaut.", "", "7")
	assert.Contains(t, out, "⚠️ Could not save flashcards: failed to save flashcards: disk full")
	assert.NotContains(t, out, "saved.")
	_, found := store.FindByGerman("Katze")
	assert.False(t, found)

	out = f.run(t, "3", "hund", "Hündin", "", "", "", "", "", "", "7")
	assert.NotContains(t, out, "✅ Flashcard updated.")
	assert.Equal(t, "Hund", original.German)

	out = f.run(t, "4", "hund", "yes", "7")
	assert.NotContains(t, out, "✅ Flashcard deleted.")
	require.Equal(t, 1, store.Len())
	assert.Same(t, original, store.Cards()[0])
}
