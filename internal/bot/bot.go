// Package bot is the Telegram interface to the flashcard collection.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/wortkarten/internal/deck"
	"github.com/example/wortkarten/internal/practice"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// botAPI is the part of tgbotapi.BotAPI the bot uses
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot represents the Telegram bot application
type Bot struct {
	mu       sync.Mutex
	api      botAPI
	store    *deck.Store
	logger   *slog.Logger
	config   *BotConfig
	chatID   int64
	lastChat int64
	opts     []practice.Option
	states   map[int64]*UserState
	sessions map[int64]*practice.Session
	deletes  map[int64]*pendingDelete
	notices  []string
}

// Connect authorizes against the Telegram API with token
func Connect(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	return api, nil
}

// New creates a bot serving store. When chatID is non-zero only that chat is
// answered and reminders go there.
func New(api botAPI, store *deck.Store, chatID int64, logger *slog.Logger, opts ...practice.Option) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		api:      api,
		store:    store,
		logger:   logger,
		config:   DefaultConfig(),
		chatID:   chatID,
		opts:     opts,
		states:   make(map[int64]*UserState),
		sessions: make(map[int64]*practice.Session),
		deletes:  make(map[int64]*pendingDelete),
	}
}

// Warn queues a message included in the next /start or /help reply
func (b *Bot) Warn(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, msg)
}

// Start receives updates and handles them one at a time until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.UpdateTimeout

	updates := b.api.GetUpdatesChan(updateConfig)
	b.logger.Info("bot started, waiting for updates")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// SendReminder implements scheduler.Notifier
func (b *Bot) SendReminder() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := b.store.Len()
	if count < b.config.MinReminderCards {
		b.logger.Debug("no flashcards, skipping reminder")
		return nil
	}

	chatID := b.chatID
	if chatID == 0 {
		chatID = b.lastChat
	}
	if chatID == 0 {
		b.logger.Debug("no chat to remind yet")
		return nil
	}

	text := fmt.Sprintf("⏰ Time to practice! You have %d flashcards. Send /practice to start a pass.", count)
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}
	b.logger.Info("reminder sent", "chat", chatID, "cards", count)
	return nil
}

// HandleUpdate handles one incoming update from Telegram
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	b.mu.Lock()
	defer b.mu.Unlock()

	chat := updateChat(update)
	if chat == nil {
		return
	}
	if b.chatID != 0 && chat.ID != b.chatID {
		b.logger.Warn("ignoring update from unknown chat", "chat", chat.ID)
		return
	}
	b.lastChat = chat.ID

	switch {
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.Message != nil:
		b.handleText(ctx, update.Message)
	}
}

// updateChat returns the chat an update belongs to, nil for updates the bot
// does not handle
func updateChat(update tgbotapi.Update) *tgbotapi.Chat {
	switch {
	case update.Message != nil:
		return update.Message.Chat
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.Message.Chat
	}
	return nil
}

func (b *Bot) send(chatID int64, text string, keyboard ...[]MenuButton) {
	msg := tgbotapi.NewMessage(chatID, text)
	if len(keyboard) > 0 {
		msg.ReplyMarkup = createKeyboard(keyboard)
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send message", "chat", chatID, "error", err)
	}
}

// saved reports the outcome of a store write to the chat
func (b *Bot) saved(chatID int64, err error) bool {
	if err != nil {
		b.send(chatID, fmt.Sprintf("⚠️ Could not save flashcards: %v", err))
		return false
	}
	b.notices = nil
	return true
}

// state returns the pending form for chatID, dropping it when expired
func (b *Bot) state(chatID int64) (*UserState, bool) {
	st, ok := b.states[chatID]
	if !ok {
		return nil, false
	}
	if time.Since(st.Timestamp) > b.config.StateTTL {
		delete(b.states, chatID)
		return nil, false
	}
	return st, true
}
