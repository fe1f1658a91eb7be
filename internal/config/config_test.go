package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ModeCLI, cfg.Mode)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, BackendJSON, cfg.Deck.Backend)
	assert.Equal(t, "flashcards.json", cfg.Deck.Path)
	assert.Equal(t, "127.0.0.1:8080", cfg.Web.Addr)
	assert.Equal(t, int64(0), cfg.Practice.Seed)
	assert.InDelta(t, 0.75, cfg.Practice.Cutoff, 0.0001)
	assert.Empty(t, cfg.Bot.Reminder)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("WORTKARTEN_DECK_PATH", "/tmp/karten.json")
	t.Setenv("WORTKARTEN_LOG_LEVEL", "debug")
	t.Setenv("WORTKARTEN_PRACTICE_SEED", "99")
	t.Setenv("WORTKARTEN_BOT_CHAT_ID", "12345")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/karten.json", cfg.Deck.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, int64(99), cfg.Practice.Seed)
	assert.Equal(t, int64(12345), cfg.Bot.ChatID)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("WORTKARTEN_DECK_PATH", "/tmp/from-env.json")

	fs := Flags()
	require.NoError(t, fs.Parse([]string{"--deck", "/tmp/from-flag.json", "--mode", "web", "--seed", "7"}))

	cfg, err := Load(fs)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/from-flag.json", cfg.Deck.Path)
	assert.Equal(t, ModeWeb, cfg.Mode)
	assert.Equal(t, int64(7), cfg.Practice.Seed)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wortkarten.yaml")
	content := `
mode: web
deck:
  backend: sqlite
  path: karten.db
web:
  addr: ":9090"
practice:
  cutoff: 0.8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	fs := Flags()
	require.NoError(t, fs.Parse([]string{"--config", path}))

	cfg, err := Load(fs)
	require.NoError(t, err)

	assert.Equal(t, ModeWeb, cfg.Mode)
	assert.Equal(t, BackendSQLite, cfg.Deck.Backend)
	assert.Equal(t, "karten.db", cfg.DatabaseDSN())
	assert.Equal(t, ":9090", cfg.Web.Addr)
	assert.InDelta(t, 0.8, cfg.Practice.Cutoff, 0.0001)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown mode", env: map[string]string{"WORTKARTEN_MODE": "gui"}},
		{name: "unknown backend", env: map[string]string{"WORTKARTEN_DECK_BACKEND": "redis"}},
		{name: "cutoff out of range", env: map[string]string{"WORTKARTEN_PRACTICE_CUTOFF": "1.5"}},
		{name: "bot without token", env: map[string]string{"WORTKARTEN_MODE": "bot"}},
		{name: "postgres without dsn", env: map[string]string{"WORTKARTEN_DECK_BACKEND": "postgres"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			cfg, err := Load(nil)
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestDatabaseDSNPrefersExplicitValue(t *testing.T) {
	cfg := &Config{Deck: DeckConfig{Path: "karten.db"}, Database: DatabaseConfig{DSN: "postgres://localhost/karten"}}
	assert.Equal(t, "postgres://localhost/karten", cfg.DatabaseDSN())
}
