package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/wortkarten/internal/bot"
	"github.com/example/wortkarten/internal/cli"
	"github.com/example/wortkarten/internal/config"
	"github.com/example/wortkarten/internal/database"
	"github.com/example/wortkarten/internal/deck"
	"github.com/example/wortkarten/internal/excel"
	"github.com/example/wortkarten/internal/logger"
	"github.com/example/wortkarten/internal/practice"
	"github.com/example/wortkarten/internal/scheduler"
	"github.com/example/wortkarten/internal/web"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("wortkarten failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := config.Flags()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, closer, err := openBackend(cfg, log)
	if err != nil {
		return err
	}
	defer closer.Close()

	store := deck.NewStore(backend, log)
	var warning string
	_, loadErr := store.Load(ctx)
	if loadErr != nil {
		warning = fmt.Sprintf("Could not load flashcards (%v). Starting with an empty collection.", loadErr)
	}

	if cfg.ImportPath != "" || cfg.ExportPath != "" {
		if loadErr != nil {
			return fmt.Errorf("refusing to exchange an unreadable collection: %w", loadErr)
		}
		return exchange(ctx, cfg, store, log)
	}

	opts := []practice.Option{practice.WithCutoff(cfg.Practice.Cutoff)}
	if cfg.Practice.Seed != 0 {
		opts = append(opts, practice.WithSeed(cfg.Practice.Seed))
	}

	log.Info("starting", "mode", cfg.Mode, "backend", cfg.Deck.Backend, "cards", store.Len())
	switch cfg.Mode {
	case config.ModeWeb:
		return runWeb(ctx, cfg, store, log, warning, opts)
	case config.ModeBot:
		return runBot(ctx, cfg, store, log, warning, opts)
	default:
		return runCLI(ctx, store, log, warning, opts)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openBackend returns the persistence backend selected in the configuration
func openBackend(cfg *config.Config, log *slog.Logger) (deck.Backend, io.Closer, error) {
	switch cfg.Deck.Backend {
	case config.BackendSQLite, config.BackendPostgres:
		driver := database.DriverSQLite
		if cfg.Deck.Backend == config.BackendPostgres {
			driver = database.DriverPostgres
		}
		db, err := database.Connect(driver, cfg.DatabaseDSN(), log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return database.NewFlashcardRepository(db), db, nil
	default:
		return deck.NewJSONFile(cfg.Deck.Path), nopCloser{}, nil
	}
}

// exchange runs a one-shot spreadsheet import and/or export
func exchange(ctx context.Context, cfg *config.Config, store *deck.Store, log *slog.Logger) error {
	if cfg.ImportPath != "" {
		result, err := excel.Import(store, excel.DefaultImportConfig(cfg.ImportPath))
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		for _, msg := range result.Errors {
			log.Warn("row skipped", "detail", msg)
		}
		if err := store.Save(ctx); err != nil {
			return err
		}
		fmt.Printf("Imported %s: %d created, %d updated, %d skipped.\n",
			cfg.ImportPath, result.Created, result.Updated, result.Skipped)
	}

	if cfg.ExportPath != "" {
		if err := excel.Export(store.Cards(), cfg.ExportPath); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		fmt.Printf("Exported %d flashcards to %s.\n", store.Len(), cfg.ExportPath)
	}
	return nil
}

func runCLI(ctx context.Context, store *deck.Store, log *slog.Logger, warning string, opts []practice.Option) error {
	c := cli.New(store, os.Stdin, os.Stdout, log, opts...)
	if warning != "" {
		c.Warn(warning)
	}

	// stdin reads cannot be interrupted, so a signal ends the program here
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		fmt.Println()
		return nil
	}
}

func runWeb(ctx context.Context, cfg *config.Config, store *deck.Store, log *slog.Logger, warning string, opts []practice.Option) error {
	srv, err := web.New(store, log, opts...)
	if err != nil {
		return err
	}
	if warning != "" {
		srv.Warn(warning)
	}
	return srv.Run(ctx, cfg.Web.Addr)
}

func runBot(ctx context.Context, cfg *config.Config, store *deck.Store, log *slog.Logger, warning string, opts []practice.Option) error {
	api, err := bot.Connect(cfg.Bot.Token)
	if err != nil {
		return err
	}
	log.Info("authorized on account", "username", api.Self.UserName)

	b := bot.New(api, store, cfg.Bot.ChatID, log, opts...)
	if warning != "" {
		b.Warn(warning)
	}

	if cfg.Bot.Reminder != "" {
		s := scheduler.New(b, log)
		if err := s.Start(cfg.Bot.Reminder); err != nil {
			return err
		}
		defer s.Stop()
	}

	return b.Start(ctx)
}
