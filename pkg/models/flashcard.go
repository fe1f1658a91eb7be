package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SlotCount is the fixed number of translation and example slots per card
const SlotCount = 3

var (
	// ErrInvalidFlashcard is returned when user input cannot form a card
	ErrInvalidFlashcard = errors.New("invalid flashcard")
	// ErrInvalidSlots is returned when a persisted slot field cannot be normalized
	ErrInvalidSlots = errors.New("invalid slot list")
)

// Slots holds exactly three ordered values. Unused slots are empty strings.
type Slots [SlotCount]string

// NormalizeSlots turns any number of values into Slots.
// Missing values are padded with empty strings. Trailing empty values beyond
// the third slot are dropped; more than three meaningful values is an error.
func NormalizeSlots(values ...string) (Slots, error) {
	var s Slots
	for len(values) > SlotCount && strings.TrimSpace(values[len(values)-1]) == "" {
		values = values[:len(values)-1]
	}
	if len(values) > SlotCount {
		return s, fmt.Errorf("%w: %d entries, at most %d allowed", ErrInvalidSlots, len(values), SlotCount)
	}
	copy(s[:], values)
	return s, nil
}

// NonEmpty returns the slots that hold a value, in order
func (s Slots) NonEmpty() []string {
	out := make([]string, 0, SlotCount)
	for _, v := range s {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

// UnmarshalJSON accepts null, a single string (legacy format) or a list of strings
func (s *Slots) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = Slots{}
		return nil
	}

	if data[0] == '"' {
		var scalar string
		if err := json.Unmarshal(data, &scalar); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSlots, err)
		}
		*s = Slots{scalar}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSlots, err)
	}
	normalized, err := NormalizeSlots(list...)
	if err != nil {
		return err
	}
	*s = normalized
	return nil
}

// MarshalJSON always writes the full three-element list
func (s Slots) MarshalJSON() ([]byte, error) {
	return json.Marshal([SlotCount]string(s))
}

// Flashcard represents a German word with its English translations and
// example sentences
type Flashcard struct {
	German   string `json:"german"`
	English  Slots  `json:"english"`
	Examples Slots  `json:"examples"`
}

// Apply updates the card field by field. Empty fields of the patch keep the
// current value.
func (f *Flashcard) Apply(patch Draft) {
	patch = patch.trimmed()
	if patch.German != "" {
		f.German = patch.German
	}
	for i, v := range patch.english() {
		if v != "" {
			f.English[i] = v
		}
	}
	for i, v := range patch.examples() {
		if v != "" {
			f.Examples[i] = v
		}
	}
}

// Draft is the raw input for one flashcard as typed into a prompt or a form
type Draft struct {
	German   string `validate:"required"`
	English1 string
	English2 string
	English3 string
	Example1 string `validate:"required"`
	Example2 string `validate:"required"`
	Example3 string
}

var validate = validator.New()

// DraftOf returns a draft prefilled with the card's current values
func DraftOf(card Flashcard) Draft {
	return Draft{
		German:   card.German,
		English1: card.English[0],
		English2: card.English[1],
		English3: card.English[2],
		Example1: card.Examples[0],
		Example2: card.Examples[1],
		Example3: card.Examples[2],
	}
}

// Validate checks that the German word and the first two examples are present
func (d Draft) Validate() error {
	err := validate.Struct(d.trimmed())
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return fmt.Errorf("%w: missing %s", ErrInvalidFlashcard, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", ErrInvalidFlashcard, err)
}

// Flashcard validates the draft and builds a new card from it
func (d Draft) Flashcard() (*Flashcard, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	d = d.trimmed()
	return &Flashcard{
		German:   d.German,
		English:  d.english(),
		Examples: d.examples(),
	}, nil
}

func (d Draft) english() Slots {
	return Slots{d.English1, d.English2, d.English3}
}

func (d Draft) examples() Slots {
	return Slots{d.Example1, d.Example2, d.Example3}
}

func (d Draft) trimmed() Draft {
	return Draft{
		German:   strings.TrimSpace(d.German),
		English1: strings.TrimSpace(d.English1),
		English2: strings.TrimSpace(d.English2),
		English3: strings.TrimSpace(d.English3),
		Example1: strings.TrimSpace(d.Example1),
		Example2: strings.TrimSpace(d.Example2),
		Example3: strings.TrimSpace(d.Example3),
	}
}
