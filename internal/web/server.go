// Package web serves the flashcard forms and practice pages over HTTP.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/example/wortkarten/internal/deck"
	"github.com/example/wortkarten/internal/practice"
	"github.com/example/wortkarten/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"index", "form", "delete", "practice", "error"}

var funcs = template.FuncMap{
	"cardURL":  cardURL,
	"meanings": func(s models.Slots) string { return strings.Join(s.NonEmpty(), ", ") },
}

// Server holds the store and the active practice session. Handlers run one
// at a time.
type Server struct {
	mu        sync.Mutex
	store     *deck.Store
	logger    *slog.Logger
	opts      []practice.Option
	session   *practice.Session
	notices   []string
	templates map[string]*template.Template
}

// New creates the web interface for store
func New(store *deck.Store, logger *slog.Logger, opts ...practice.Option) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[name] = t
	}

	return &Server{
		store:     store,
		logger:    logger,
		opts:      opts,
		templates: templates,
	}, nil
}

// Warn shows msg on the overview page until the next successful save
func (s *Server) Warn(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, msg)
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			s.logger.Error("failed to write health check response", "error", err)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(s.serialize)

		r.Get("/", s.index)
		r.Get("/export.xlsx", s.export)

		r.Route("/cards", func(r chi.Router) {
			r.Get("/new", s.newCard)
			r.Post("/", s.createCard)
			r.Get("/edit", s.editCard)
			r.Post("/edit", s.updateCard)
			r.Get("/delete", s.confirmDelete)
			r.Post("/delete", s.deleteCard)
		})

		r.Route("/practice", func(r chi.Router) {
			r.Get("/", s.showPractice)
			r.Post("/", s.startPractice)
			r.Post("/answer", s.answer)
			r.Post("/skip", s.skip)
			r.Post("/next", s.next)
		})
	})

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web interface", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("web server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down web interface")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) serialize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// render executes a page into a buffer so template errors become a 500
func (s *Server) render(w http.ResponseWriter, status int, name string, data page) {
	var buf bytes.Buffer
	if err := s.templates[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("failed to render page", "page", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) fail(w http.ResponseWriter, status int, msg string) {
	s.render(w, status, "error", page{Title: "Error", Error: msg})
}

// saved passes through the outcome of a store write, clearing the load
// notices once the collection is on disk
func (s *Server) saved(err error) error {
	if err != nil {
		return err
	}
	s.notices = nil
	return nil
}
