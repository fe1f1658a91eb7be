package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/wortkarten/internal/practice"
	"github.com/example/wortkarten/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

// Constants for callback data
const (
	callbackDelete = "delete"
	callbackKeep   = "keep"
	callbackSkip   = "skip"
	callbackNext   = "next"
)

// Form actions
const (
	actionAdd  = "add"
	actionEdit = "edit"
)

// emptyMark leaves an optional field empty in /add and keeps the current
// value in /edit
const emptyMark = "-"

const helpText = `📚 Wortkarten, your German flashcards

/list - list all words
/show <word> - show one flashcard
/add - add a flashcard step by step
/edit <word> - edit a flashcard
/delete <word> - delete a flashcard
/practice - practice every card once in random order
/cancel - cancel the current action`

// pendingDelete is a /delete waiting for the confirmation button. The button
// carries the short token instead of the word, which may not fit in
// Telegram's 64 bytes of callback data.
type pendingDelete struct {
	token string
	card  *models.Flashcard
}

// UserState is a half-finished /add or /edit form
type UserState struct {
	Action    string
	Step      int
	Word      string
	Draft     models.Draft
	Timestamp time.Time
}

// formField is one question of the /add and /edit forms
type formField struct {
	label    string
	required bool
	set      func(d *models.Draft, v string)
	current  func(c *models.Flashcard) string
}

var formFields = []formField{
	{"German word", true, func(d *models.Draft, v string) { d.German = v }, func(c *models.Flashcard) string { return c.German }},
	{"English meaning 1", false, func(d *models.Draft, v string) { d.English1 = v }, func(c *models.Flashcard) string { return c.English[0] }},
	{"English meaning 2", false, func(d *models.Draft, v string) { d.English2 = v }, func(c *models.Flashcard) string { return c.English[1] }},
	{"English meaning 3", false, func(d *models.Draft, v string) { d.English3 = v }, func(c *models.Flashcard) string { return c.English[2] }},
	{"Example sentence 1", true, func(d *models.Draft, v string) { d.Example1 = v }, func(c *models.Flashcard) string { return c.Examples[0] }},
	{"Example sentence 2", true, func(d *models.Draft, v string) { d.Example2 = v }, func(c *models.Flashcard) string { return c.Examples[1] }},
	{"Example sentence 3", false, func(d *models.Draft, v string) { d.Example3 = v }, func(c *models.Flashcard) string { return c.Examples[2] }},
}

// handleCommand handles bot commands. Any command abandons a pending form.
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	args := strings.TrimSpace(message.CommandArguments())

	if message.Command() != "cancel" {
		delete(b.states, chatID)
	}

	switch message.Command() {
	case "start", "help":
		b.handleHelp(chatID)
	case "list":
		b.handleList(chatID)
	case "show":
		b.handleShow(chatID, args)
	case "add":
		b.handleAdd(chatID)
	case "edit":
		b.handleEdit(chatID, args)
	case "delete":
		b.handleDelete(chatID, args)
	case "practice":
		b.handlePractice(chatID)
	case "cancel":
		b.handleCancel(chatID)
	default:
		b.send(chatID, "Unknown command. Use /help to see what I can do.")
	}
}

func (b *Bot) handleHelp(chatID int64) {
	text := helpText
	for _, n := range b.notices {
		text = "⚠️ " + n + "\n\n" + text
	}
	b.send(chatID, text)
}

func (b *Bot) handleList(chatID int64) {
	cards := b.store.ListSorted()
	if len(cards) == 0 {
		b.send(chatID, "📭 No flashcards yet. Use /add to create one.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🔠 Available words:\n")
	for i, card := range cards {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, card.German)
	}
	b.send(chatID, strings.TrimRight(sb.String(), "\n"))
}

func (b *Bot) handleShow(chatID int64, word string) {
	if word == "" {
		b.send(chatID, "Usage: /show <word>")
		return
	}
	card, ok := b.lookup(chatID, word)
	if !ok {
		return
	}
	b.send(chatID, formatCard(card))
}

func (b *Bot) handleAdd(chatID int64) {
	st := &UserState{Action: actionAdd, Timestamp: time.Now()}
	b.states[chatID] = st
	b.send(chatID, "➕ New flashcard. Send /cancel to stop.")
	b.askField(chatID, st, nil)
}

func (b *Bot) handleEdit(chatID int64, word string) {
	if word == "" {
		b.send(chatID, "Usage: /edit <word>")
		return
	}
	card, ok := b.lookup(chatID, word)
	if !ok {
		return
	}

	st := &UserState{Action: actionEdit, Word: card.German, Timestamp: time.Now()}
	b.states[chatID] = st
	b.send(chatID, fmt.Sprintf("✏️ Editing '%s'. Send %s to keep a value.", card.German, emptyMark))
	b.askField(chatID, st, card)
}

func (b *Bot) handleDelete(chatID int64, word string) {
	if word == "" {
		b.send(chatID, "Usage: /delete <word>")
		return
	}
	card, ok := b.lookup(chatID, word)
	if !ok {
		return
	}

	pending := &pendingDelete{token: uuid.NewString()[:8], card: card}
	b.deletes[chatID] = pending
	b.send(chatID, fmt.Sprintf("Are you sure you want to delete '%s'?", card.German), []MenuButton{
		{Text: "🗑️ Yes, delete", CallbackData: callbackDelete + ":" + pending.token},
		{Text: "No", CallbackData: callbackKeep},
	})
}

func (b *Bot) handleCancel(chatID int64) {
	_, hadState := b.states[chatID]
	_, hadSession := b.sessions[chatID]
	delete(b.states, chatID)
	delete(b.sessions, chatID)
	delete(b.deletes, chatID)

	if hadState || hadSession {
		b.send(chatID, "🚫 Cancelled.")
		return
	}
	b.send(chatID, "Nothing to cancel.")
}

// handleText routes plain messages to a pending form or practice session
func (b *Bot) handleText(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	if st, ok := b.state(chatID); ok {
		b.handleFormInput(ctx, chatID, st, text)
		return
	}
	if session, ok := b.sessions[chatID]; ok {
		b.handleAnswer(chatID, session, text)
		return
	}
	b.send(chatID, "I don't understand. Use /help to see what I can do.")
}

func (b *Bot) handleFormInput(ctx context.Context, chatID int64, st *UserState, text string) {
	var card *models.Flashcard
	if st.Action == actionEdit {
		var ok bool
		if card, ok = b.store.FindByGerman(st.Word); !ok {
			delete(b.states, chatID)
			b.send(chatID, "❌ Word not found.")
			return
		}
	}

	field := formFields[st.Step]
	if text == emptyMark {
		text = ""
	}
	if text == "" && field.required && st.Action == actionAdd {
		b.send(chatID, fmt.Sprintf("❗ %s is required.", field.label))
		b.askField(chatID, st, card)
		return
	}

	field.set(&st.Draft, text)
	st.Step++
	st.Timestamp = time.Now()
	if st.Step < len(formFields) {
		b.askField(chatID, st, card)
		return
	}

	delete(b.states, chatID)
	if st.Action == actionEdit {
		if b.saved(chatID, b.store.Update(ctx, card, st.Draft)) {
			b.logger.Info("flashcard updated", "word", card.German)
			b.send(chatID, "✅ Flashcard updated.\n\n"+formatCard(card))
		}
		return
	}

	created, err := st.Draft.Flashcard()
	if err != nil {
		b.send(chatID, fmt.Sprintf("❗ The flashcard was not saved: %v", err))
		return
	}
	if b.saved(chatID, b.store.AddAndSave(ctx, created)) {
		b.logger.Info("flashcard added", "word", created.German)
		b.send(chatID, fmt.Sprintf("✅ Flashcard '%s' saved.", created.German))
	}
}

func (b *Bot) askField(chatID int64, st *UserState, card *models.Flashcard) {
	field := formFields[st.Step]
	prompt := field.label
	switch {
	case card != nil:
		current := field.current(card)
		if current == "" {
			current = "empty"
		}
		prompt = fmt.Sprintf("%s (current: %s)", field.label, current)
	case !field.required:
		prompt = fmt.Sprintf("%s (optional, %s to leave empty)", field.label, emptyMark)
	}
	b.send(chatID, fmt.Sprintf("(%d/%d) %s:", st.Step+1, len(formFields), prompt))
}

func (b *Bot) handlePractice(chatID int64) {
	session, err := practice.NewSession(b.store.Cards(), b.opts...)
	if errors.Is(err, practice.ErrNothingToPractice) {
		delete(b.sessions, chatID)
		b.send(chatID, "📭 No flashcards to practice.")
		return
	}

	b.sessions[chatID] = session
	b.logger.Debug("practice started", "chat", chatID, "session", session.ID())
	b.send(chatID, "📚▶️ Practice started! Reply with the English meaning.")
	b.askCard(chatID, session)
}

func (b *Bot) askCard(chatID int64, session *practice.Session) {
	card, ok := session.Current()
	if !ok {
		delete(b.sessions, chatID)
		b.send(chatID, session.Stats().Summary())
		return
	}
	b.send(chatID,
		fmt.Sprintf("🔹 (%d/%d) What is the meaning of '%s'?", session.Position(), session.Total(), card.German),
		[]MenuButton{{Text: "⏭️ Skip", CallbackData: callbackSkip + ":" + session.ID()}},
	)
}

func (b *Bot) handleAnswer(chatID int64, session *practice.Session, text string) {
	if session.Answered() {
		b.send(chatID, "Press Next to continue.", nextButton(session))
		return
	}

	card, _ := session.Current()
	result, answered := session.Answer(text)
	if !answered {
		b.send(chatID, "⏭️ Skipped.")
		b.askCard(chatID, session)
		return
	}

	reply := result.Feedback()
	if lines := practice.ExampleLines(card); len(lines) > 0 {
		reply += "\n\nExamples:\n• " + strings.Join(lines, "\n• ")
	}
	b.send(chatID, reply, nextButton(session))
}

func nextButton(session *practice.Session) []MenuButton {
	return []MenuButton{{Text: "➡️ Next", CallbackData: callbackNext + ":" + session.ID()}}
}

// handleCallbackQuery handles callback queries from buttons
func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.Error("failed to answer callback", "error", err)
	}
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID

	action, arg, _ := strings.Cut(callback.Data, ":")
	switch action {
	case callbackDelete:
		b.confirmDelete(ctx, chatID, arg)
	case callbackKeep:
		delete(b.deletes, chatID)
		b.send(chatID, "🚫 Cancelled.")
	case callbackSkip, callbackNext:
		session, ok := b.sessions[chatID]
		if !ok || session.ID() != arg {
			b.send(chatID, "This practice session is over. Use /practice to start a new one.")
			return
		}
		if action == callbackSkip {
			if session.Answered() {
				// already scored
				session.Next()
			} else {
				session.Skip()
				b.send(chatID, "⏭️ Skipped.")
			}
		} else {
			if !session.Answered() {
				b.send(chatID, "Reply with your answer first, or press Skip.")
				return
			}
			session.Next()
		}
		b.askCard(chatID, session)
	default:
		b.logger.Warn("unknown callback", "data", callback.Data)
	}
}

// confirmDelete removes the card the chat's pending confirmation refers to
func (b *Bot) confirmDelete(ctx context.Context, chatID int64, token string) {
	pending, ok := b.deletes[chatID]
	if !ok || pending.token != token {
		b.send(chatID, "This confirmation has expired. Use /delete <word> again.")
		return
	}
	delete(b.deletes, chatID)

	card := pending.card
	removed, err := b.store.RemoveAndSave(ctx, card)
	if !b.saved(chatID, err) {
		return
	}
	if !removed {
		b.send(chatID, "❌ Word not found.")
		return
	}
	b.logger.Info("flashcard deleted", "word", card.German)
	b.send(chatID, fmt.Sprintf("✅ Flashcard '%s' deleted.", card.German))
	b.dropFromSessions(card)
}

// dropFromSessions takes a deleted card out of every running pass. A chat
// that was being asked about it gets the next card.
func (b *Bot) dropFromSessions(card *models.Flashcard) {
	for chatID, session := range b.sessions {
		before, _ := session.Current()
		session.Drop(card)
		if after, _ := session.Current(); after != before {
			b.askCard(chatID, session)
		}
	}
}

func (b *Bot) lookup(chatID int64, word string) (*models.Flashcard, bool) {
	card, err := b.store.Lookup(word)
	if err != nil {
		b.logger.Debug("lookup failed", "error", err)
		b.send(chatID, "❌ Word not found.")
		return nil, false
	}
	return card, true
}

func formatCard(card *models.Flashcard) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🗒️ %s → %s", card.German, strings.Join(card.English.NonEmpty(), ", "))
	for i, ex := range card.Examples {
		if strings.TrimSpace(ex) != "" {
			fmt.Fprintf(&sb, "\n  → Example %d: %s", i+1, ex)
		}
	}
	return sb.String()
}
