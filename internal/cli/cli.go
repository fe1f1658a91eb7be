// Package cli is the line-based prompt interface.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/example/wortkarten/internal/deck"
	"github.com/example/wortkarten/internal/practice"
	"github.com/example/wortkarten/pkg/models"
)

// CLI drives the store and practice sessions from a text prompt
type CLI struct {
	store   *deck.Store
	in      *bufio.Scanner
	out     io.Writer
	logger  *slog.Logger
	opts    []practice.Option
	notices []string
}

// New creates the prompt interface reading from in and writing to out
func New(store *deck.Store, in io.Reader, out io.Writer, logger *slog.Logger, opts ...practice.Option) *CLI {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLI{
		store:  store,
		in:     bufio.NewScanner(in),
		out:    out,
		logger: logger,
		opts:   opts,
	}
}

// Warn queues a message shown before the first menu
func (c *CLI) Warn(msg string) {
	c.notices = append(c.notices, msg)
}

// Run shows the menu until the user quits or the input ends
func (c *CLI) Run(ctx context.Context) error {
	for _, n := range c.notices {
		c.println("⚠️ " + n)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.println("\n===== Flashcard Menu =====")
		c.println("1. Add flashcard")
		c.println("2. Show all flashcards")
		c.println("3. Edit flashcard")
		c.println("4. Delete flashcard")
		c.println("5. Practice")
		c.println("6. List words")
		c.println("7. Quit")

		choice, ok := c.prompt("Choose an option: ")
		if !ok {
			c.println("\n👋 Bye.")
			return nil
		}

		switch choice {
		case "1":
			c.add(ctx)
		case "2":
			c.showAll()
		case "3":
			c.edit(ctx)
		case "4":
			c.delete(ctx)
		case "5":
			c.practice()
		case "6":
			c.listWords()
		case "7", "q", "quit":
			c.println("👋 Bye.")
			return nil
		default:
			c.println("❌ Invalid choice. Please try again.")
		}
	}
}

func (c *CLI) add(ctx context.Context) {
	var d models.Draft
	d.German, _ = c.prompt("🔹 German word: ")
	d.English1, _ = c.prompt("🔸 English meaning 1: ")
	d.English2, _ = c.prompt("🔸 English meaning 2 (optional): ")
	d.English3, _ = c.prompt("🔸 English meaning 3 (optional): ")
	d.Example1, _ = c.prompt(" → Example 1 (required, a German sentence): ")
	d.Example2, _ = c.prompt(" → Example 2 (required, a German sentence): ")
	d.Example3, _ = c.prompt(" → Example 3 (optional): ")

	card, err := d.Flashcard()
	if err != nil {
		c.logger.Debug("flashcard rejected", "error", err)
		c.printf("❗ The flashcard was not saved: %s.\n", describe(err))
		return
	}

	if c.saved(c.store.AddAndSave(ctx, card)) {
		c.logger.Info("flashcard added", "word", card.German)
		c.printf("✅ Flashcard '%s' saved.\n", card.German)
	}
}

func (c *CLI) showAll() {
	cards := c.store.Cards()
	if len(cards) == 0 {
		c.println("\n📭 No flashcards yet.")
		return
	}

	c.println("\n📚 Your flashcards:")
	for _, card := range cards {
		c.showCard(card)
	}
}

func (c *CLI) showCard(card *models.Flashcard) {
	c.printf("\n 🗒️  %s → %s\n", card.German, strings.Join(card.English.NonEmpty(), ", "))
	for i, ex := range card.Examples {
		if strings.TrimSpace(ex) != "" {
			c.printf("  → Example %d: %s\n", i+1, ex)
		}
	}
}

func (c *CLI) listWords() bool {
	cards := c.store.ListSorted()
	if len(cards) == 0 {
		c.println("\n📭 No flashcards yet.")
		return false
	}

	c.println("\n🔠 Available words:")
	for i, card := range cards {
		c.printf("%d. %s\n", i+1, card.German)
	}
	return true
}

func (c *CLI) edit(ctx context.Context) {
	card, ok := c.pick("\n🔍 Which German word do you want to edit? ")
	if !ok {
		return
	}

	c.println("✏️ Enter new values (press Enter to keep the current value):")
	cur := models.DraftOf(*card)
	var d models.Draft
	d.German, _ = c.prompt(fmt.Sprintf("German word (%s): ", cur.German))
	d.English1, _ = c.prompt(fmt.Sprintf("English 1 (%s): ", cur.English1))
	d.English2, _ = c.prompt(fmt.Sprintf("English 2 (%s): ", cur.English2))
	d.English3, _ = c.prompt(fmt.Sprintf("English 3 (%s): ", cur.English3))
	d.Example1, _ = c.prompt(fmt.Sprintf("Example 1 (%s): ", cur.Example1))
	d.Example2, _ = c.prompt(fmt.Sprintf("Example 2 (%s): ", cur.Example2))
	d.Example3, _ = c.prompt(fmt.Sprintf("Example 3 (%s): ", cur.Example3))

	if c.saved(c.store.Update(ctx, card, d)) {
		c.logger.Info("flashcard updated", "word", card.German)
		c.println("✅ Flashcard updated.")
	}
}

func (c *CLI) delete(ctx context.Context) {
	card, ok := c.pick("\n❌ Which German word do you want to delete? ")
	if !ok {
		return
	}

	answer, _ := c.prompt(fmt.Sprintf("Are you sure you want to delete '%s'? (yes/no): ", card.German))
	switch strings.ToLower(answer) {
	case "y", "yes", "j", "ja":
	default:
		c.println("🚫 Cancelled.")
		return
	}

	if _, err := c.store.RemoveAndSave(ctx, card); c.saved(err) {
		c.logger.Info("flashcard deleted", "word", card.German)
		c.println("✅ Flashcard deleted.")
	}
}

// pick lists the words and asks for one of them
func (c *CLI) pick(question string) (*models.Flashcard, bool) {
	if !c.listWords() {
		return nil, false
	}

	word, _ := c.prompt(question)
	card, err := c.store.Lookup(word)
	if err != nil {
		c.logger.Debug("lookup failed", "error", err)
		c.println("❌ Word not found.")
		return nil, false
	}
	return card, true
}

func (c *CLI) practice() {
	session, err := practice.NewSession(c.store.Cards(), c.opts...)
	if errors.Is(err, practice.ErrNothingToPractice) {
		c.println("\n📭 No flashcards to practice.")
		return
	}

	c.println("\n📚▶️  Practice started! Leave the answer empty to skip a card.")
	for !session.Done() {
		card, _ := session.Current()
		c.printf("\n🔹 (%d/%d) What is the meaning of '%s'?\n", session.Position(), session.Total(), card.German)

		answer, _ := c.prompt("Your answer: ")
		result, answered := session.Answer(answer)
		if !answered {
			c.println("⏭️ Skipped.")
			continue
		}

		c.println(result.Feedback())
		if lines := practice.ExampleLines(card); len(lines) > 0 {
			c.println("\nExamples:")
			for _, line := range lines {
				c.println("  • " + line)
			}
		}

		c.prompt("\nPress Enter for the next card.")
		session.Next()
	}

	c.println("\n" + session.Stats().Summary())
}

// saved reports the outcome of a store write
func (c *CLI) saved(err error) bool {
	if err != nil {
		c.printf("⚠️ Could not save flashcards: %v\n", err)
		return false
	}
	return true
}

// prompt prints the question and reads one trimmed line.
// It returns false when the input has ended.
func (c *CLI) prompt(question string) (string, bool) {
	fmt.Fprint(c.out, question)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *CLI) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *CLI) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

// describe turns a validation error into a short user message
func describe(err error) string {
	if errors.Is(err, models.ErrInvalidFlashcard) {
		msg := strings.TrimPrefix(err.Error(), models.ErrInvalidFlashcard.Error()+": ")
		return strings.NewReplacer(
			"German", "German word",
			"Example1", "example 1",
			"Example2", "example 2",
		).Replace(msg)
	}
	return err.Error()
}
