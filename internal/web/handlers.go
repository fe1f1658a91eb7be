package web

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"

	"github.com/example/wortkarten/internal/excel"
	"github.com/example/wortkarten/internal/practice"
	"github.com/example/wortkarten/pkg/models"
)

// page is the data passed to every template
type page struct {
	Title    string
	Notices  []string
	Error    string
	Cards    []*models.Flashcard
	Card     *models.Flashcard
	Draft    models.Draft
	Action   string
	Practice *practiceView
}

type practiceView struct {
	ID       string
	Word     string
	Position int
	Total    int
	Answered bool
	Feedback string
	Examples []string
	Done     bool
	Summary  string
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "index", page{
		Title:   "Flashcards",
		Notices: s.notices,
		Cards:   s.store.ListSorted(),
	})
}

func (s *Server) newCard(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "form", page{Title: "Add flashcard", Action: "/cards"})
}

func (s *Server) createCard(w http.ResponseWriter, r *http.Request) {
	draft := draftFromForm(r)
	card, err := draft.Flashcard()
	if err != nil {
		s.render(w, http.StatusUnprocessableEntity, "form", page{
			Title:  "Add flashcard",
			Action: "/cards",
			Draft:  draft,
			Error:  err.Error(),
		})
		return
	}

	if err := s.saved(s.store.AddAndSave(r.Context(), card)); err != nil {
		s.fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("flashcard added", "word", card.German)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) editCard(w http.ResponseWriter, r *http.Request) {
	card, ok := s.lookup(w, r.URL.Query().Get("word"))
	if !ok {
		return
	}
	s.render(w, http.StatusOK, "form", page{
		Title:  "Edit " + card.German,
		Action: "/cards/edit",
		Card:   card,
	})
}

func (s *Server) updateCard(w http.ResponseWriter, r *http.Request) {
	card, ok := s.lookup(w, r.PostFormValue("word"))
	if !ok {
		return
	}

	if err := s.saved(s.store.Update(r.Context(), card, draftFromForm(r))); err != nil {
		s.fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("flashcard updated", "word", card.German)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) confirmDelete(w http.ResponseWriter, r *http.Request) {
	card, ok := s.lookup(w, r.URL.Query().Get("word"))
	if !ok {
		return
	}
	s.render(w, http.StatusOK, "delete", page{Title: "Delete " + card.German, Card: card})
}

func (s *Server) deleteCard(w http.ResponseWriter, r *http.Request) {
	card, ok := s.lookup(w, r.PostFormValue("word"))
	if !ok {
		return
	}

	if _, err := s.store.RemoveAndSave(r.Context(), card); s.saved(err) != nil {
		s.fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	if s.session != nil {
		s.session.Drop(card)
	}
	s.logger.Info("flashcard deleted", "word", card.German)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := excel.WriteXLSX(s.store.Cards(), &buf); err != nil {
		s.logger.Error("export failed", "error", err)
		s.fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="flashcards.xlsx"`)
	_, _ = buf.WriteTo(w)
}

func (s *Server) startPractice(w http.ResponseWriter, r *http.Request) {
	session, err := practice.NewSession(s.store.Cards(), s.opts...)
	if errors.Is(err, practice.ErrNothingToPractice) {
		s.session = nil
		s.render(w, http.StatusOK, "practice", page{Title: "Practice"})
		return
	}
	s.session = session
	s.logger.Debug("practice started", "session", session.ID(), "cards", session.Total())
	http.Redirect(w, r, "/practice", http.StatusSeeOther)
}

func (s *Server) showPractice(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "practice", page{Title: "Practice", Practice: s.view()})
}

func (s *Server) answer(w http.ResponseWriter, r *http.Request) {
	if !s.activeSession(w, r) {
		return
	}
	s.session.Answer(r.PostFormValue("answer"))
	http.Redirect(w, r, "/practice", http.StatusSeeOther)
}

func (s *Server) skip(w http.ResponseWriter, r *http.Request) {
	if !s.activeSession(w, r) {
		return
	}
	s.session.Skip()
	http.Redirect(w, r, "/practice", http.StatusSeeOther)
}

func (s *Server) next(w http.ResponseWriter, r *http.Request) {
	if !s.activeSession(w, r) {
		return
	}
	if s.session.Answered() {
		s.session.Next()
	}
	http.Redirect(w, r, "/practice", http.StatusSeeOther)
}

// activeSession rejects forms that belong to a finished or replaced session
func (s *Server) activeSession(w http.ResponseWriter, r *http.Request) bool {
	if s.session == nil || s.session.ID() != r.PostFormValue("session") {
		s.logger.Debug("stale practice form", "session", r.PostFormValue("session"))
		http.Redirect(w, r, "/practice", http.StatusSeeOther)
		return false
	}
	return true
}

func (s *Server) view() *practiceView {
	if s.session == nil {
		return nil
	}

	v := &practiceView{
		ID:       s.session.ID(),
		Position: s.session.Position(),
		Total:    s.session.Total(),
	}
	card, ok := s.session.Current()
	if !ok {
		v.Done = true
		v.Summary = s.session.Stats().Summary()
		return v
	}

	v.Word = card.German
	if result, ok := s.session.LastResult(); ok {
		v.Answered = true
		v.Feedback = result.Feedback()
		v.Examples = practice.ExampleLines(card)
	}
	return v
}

func (s *Server) lookup(w http.ResponseWriter, word string) (*models.Flashcard, bool) {
	card, err := s.store.Lookup(word)
	if err != nil {
		s.logger.Debug("lookup failed", "error", err)
		s.fail(w, http.StatusNotFound, "Word not found.")
		return nil, false
	}
	return card, true
}

func draftFromForm(r *http.Request) models.Draft {
	return models.Draft{
		German:   r.PostFormValue("german"),
		English1: r.PostFormValue("english1"),
		English2: r.PostFormValue("english2"),
		English3: r.PostFormValue("english3"),
		Example1: r.PostFormValue("example1"),
		Example2: r.PostFormValue("example2"),
		Example3: r.PostFormValue("example3"),
	}
}

// cardURL links to a per-word page such as /cards/edit
func cardURL(path, word string) string {
	return path + "?word=" + url.QueryEscape(word)
}
