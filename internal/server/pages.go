package server

import (
	"bytes"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"codeberg.org/snonux/cardcreator/internal/lookup"
	"codeberg.org/snonux/cardcreator/internal/ui"
)

// Form actions of the card creation page
const (
	ActionAddSentence = "add_sentence"
	ActionCreateCards = "create_cards"
	ActionSave        = "save"
	ActionBack        = "back"
	ActionReset       = "reset"
)

type indexPage struct {
	Word    string
	Notice  string
	Version string
}

type createPage struct {
	State     *ui.State
	CardsJSON string
	Version   string
}

type wordPage struct {
	Result  *lookup.Result
	Version string
}

// render executes a template into a buffer first so a failing template
// does not leave a half written page
func (s *Server) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.log.Error("template failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (s *Server) renderLookupError(w http.ResponseWriter, word string, err error) {
	status := lookupStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("lookup failed", zap.String("word", word), zap.Error(err))
	}
	s.render(w, status, "index.html", indexPage{Word: word, Notice: err.Error(), Version: s.cfg.Version})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "index.html", indexPage{Version: s.cfg.Version})
}

func (s *Server) handleCreateRedirect(w http.ResponseWriter, r *http.Request) {
	word := strings.TrimSpace(r.URL.Query().Get("word"))
	if word == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/create/"+url.PathEscape(word), http.StatusSeeOther)
}

func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	word := r.PathValue("word")
	result, err := s.cfg.Lookup.Lookup(r.Context(), word)
	if err != nil {
		s.renderLookupError(w, word, err)
		return
	}
	s.renderCreate(w, http.StatusOK, ui.New(result))
}

func (s *Server) handleCreateAction(w http.ResponseWriter, r *http.Request) {
	word := r.PathValue("word")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.cfg.Lookup.Lookup(r.Context(), word)
	if err != nil {
		s.renderLookupError(w, word, err)
		return
	}

	state, err := ui.FromForm(result, r.PostForm)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	status := http.StatusOK
	switch action := r.PostForm.Get("action"); action {
	case ActionAddSentence:
		state.AddPendingSentence()
	case ActionCreateCards:
		// A missing selection only sets the notice
		state.CreateCards()
	case ActionBack:
		state.Back()
	case ActionReset:
		state.Reset()
	case ActionSave:
		if len(state.Cards) == 0 {
			state.Back()
			state.Notice = ui.NoSelectionNotice
			break
		}
		if err := s.cfg.Store.Append(state.Cards); err != nil {
			s.log.Error("saving cards failed", zap.String("word", state.Word), zap.Error(err))
			state.SaveFailed(err)
			status = http.StatusInternalServerError
			break
		}
		s.log.Info("saved cards", zap.String("word", state.Word), zap.Int("count", len(state.Cards)))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	default:
		http.Error(w, "unknown action "+action, http.StatusBadRequest)
		return
	}

	s.renderCreate(w, status, state)
}

func (s *Server) renderCreate(w http.ResponseWriter, status int, state *ui.State) {
	page := createPage{State: state, Version: s.cfg.Version}
	if state.Mode == ui.ModeCreateCards {
		raw, err := state.CardsJSON()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		page.CardsJSON = raw
	}
	s.render(w, status, "create.html", page)
}

func (s *Server) handleWordPage(w http.ResponseWriter, r *http.Request) {
	word := r.PathValue("word")
	result, err := s.cfg.Lookup.Lookup(r.Context(), word)
	if err != nil {
		s.renderLookupError(w, word, err)
		return
	}
	s.render(w, http.StatusOK, "word.html", wordPage{Result: result, Version: s.cfg.Version})
}
