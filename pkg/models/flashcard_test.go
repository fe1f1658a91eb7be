package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotsUnmarshalJSON(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected Slots
		wantErr  bool
	}{
		{name: "legacy scalar goes to slot 0", input: `"dog"`, expected: Slots{"dog", "", ""}},
		{name: "null is all empty", input: `null`, expected: Slots{}},
		{name: "short list is padded", input: `["dog", "hound"]`, expected: Slots{"dog", "hound", ""}},
		{name: "full list kept", input: `["a", "b", "c"]`, expected: Slots{"a", "b", "c"}},
		{name: "empty list", input: `[]`, expected: Slots{}},
		{name: "trailing empties beyond three dropped", input: `["a", "", "c", "", " "]`, expected: Slots{"a", "", "c"}},
		{name: "too many meaningful entries", input: `["a", "b", "c", "d"]`, wantErr: true},
		{name: "numbers are rejected", input: `[1, 2]`, wantErr: true},
		{name: "object is rejected", input: `{"a": 1}`, wantErr: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var s Slots
			err := json.Unmarshal([]byte(tc.input), &s)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidSlots)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, s)
		})
	}
}

func TestFlashcardLegacyRecord(t *testing.T) {
	t.Parallel()

	var card Flashcard
	err := json.Unmarshal([]byte(`{"german": "Hund", "english": "dog", "examples": "Der Hund bellt."}`), &card)
	require.NoError(t, err)

	assert.Equal(t, "Hund", card.German)
	assert.Equal(t, Slots{"dog", "", ""}, card.English)
	assert.Equal(t, Slots{"Der Hund bellt.", "", ""}, card.Examples)
}

func TestFlashcardMissingOptionalFields(t *testing.T) {
	t.Parallel()

	var card Flashcard
	require.NoError(t, json.Unmarshal([]byte(`{"german": "Katze"}`), &card))
	assert.Equal(t, Slots{}, card.English)
	assert.Equal(t, Slots{}, card.Examples)
}

func TestFlashcardMarshalAlwaysThreeSlots(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Flashcard{German: "Haus", English: Slots{"house"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"german":"Haus","english":["house","",""],"examples":["","",""]}`, string(data))
}

func TestDraftFlashcard(t *testing.T) {
	t.Parallel()

	t.Run("valid draft is trimmed and padded", func(t *testing.T) {
		t.Parallel()
		card, err := Draft{
			German:   "  Straße ",
			English1: "street",
			Example1: "Die Straße ist lang.",
			Example2: "Ich wohne in dieser Straße.",
		}.Flashcard()
		require.NoError(t, err)
		assert.Equal(t, "Straße", card.German)
		assert.Equal(t, Slots{"street", "", ""}, card.English)
		assert.Equal(t, Slots{"Die Straße ist lang.", "Ich wohne in dieser Straße.", ""}, card.Examples)
	})

	t.Run("both required examples empty", func(t *testing.T) {
		t.Parallel()
		card, err := Draft{German: "Hund", English1: "dog", Example3: "x"}.Flashcard()
		assert.Nil(t, card)
		require.ErrorIs(t, err, ErrInvalidFlashcard)
		assert.Contains(t, err.Error(), "Example1")
		assert.Contains(t, err.Error(), "Example2")
	})

	t.Run("whitespace only german", func(t *testing.T) {
		t.Parallel()
		_, err := Draft{German: "   ", Example1: "a", Example2: "b"}.Flashcard()
		require.ErrorIs(t, err, ErrInvalidFlashcard)
		assert.Contains(t, err.Error(), "German")
	})
}

func TestFlashcardApply(t *testing.T) {
	t.Parallel()

	card := Flashcard{
		German:   "Hund",
		English:  Slots{"dog", "hound", ""},
		Examples: Slots{"Der Hund bellt.", "Mein Hund schläft.", ""},
	}

	card.Apply(Draft{English2: " ", English3: "mutt", Example1: "Der Hund läuft."})

	assert.Equal(t, "Hund", card.German)
	assert.Equal(t, Slots{"dog", "hound", "mutt"}, card.English)
	assert.Equal(t, Slots{"Der Hund läuft.", "Mein Hund schläft.", ""}, card.Examples)

	card.Apply(Draft{})
	assert.Equal(t, Slots{"dog", "hound", "mutt"}, card.English)
}

func TestDraftOf(t *testing.T) {
	t.Parallel()

	card := Flashcard{German: "Baum", English: Slots{"tree"}, Examples: Slots{"a", "b", "c"}}
	d := DraftOf(card)
	rebuilt, err := d.Flashcard()
	require.NoError(t, err)
	assert.Equal(t, card, *rebuilt)
}

func TestSlotsNonEmpty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"a", "c"}, Slots{"a", " ", "c"}.NonEmpty())
	assert.Empty(t, Slots{}.NonEmpty())
}
