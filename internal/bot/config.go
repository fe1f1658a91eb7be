package bot

import (
	"time"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Long polling timeout in seconds
	UpdateTimeout int
	// A half-finished /add or /edit is dropped after this long
	StateTTL time.Duration
	// Reminders are only sent when at least this many cards exist
	MinReminderCards int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		UpdateTimeout:    60,
		StateTTL:         time.Hour * 1,
		MinReminderCards: 1,
	}
}
