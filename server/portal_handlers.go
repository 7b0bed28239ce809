package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-mindcare-client/assessment"
	"github.com/jrsteele09/go-mindcare-client/auth"
	"github.com/jrsteele09/go-mindcare-client/backend"
	"github.com/jrsteele09/go-mindcare-client/crisis"
	"github.com/jrsteele09/go-mindcare-client/internal/config"
	apperrors "github.com/jrsteele09/go-mindcare-client/internal/errors"
	"github.com/jrsteele09/go-mindcare-client/sessions"
	"github.com/rs/zerolog/log"
)

const (
	moodStatsDays  = 7
	resourcesLimit = 50
)

func (s *Server) isAdminApp() bool {
	return s.mode == config.AppModeAdmin
}

func registrationFromForm(r *http.Request) backend.Registration {
	return backend.Registration{
		Name:            strings.TrimSpace(r.PostFormValue("name")),
		Email:           strings.TrimSpace(r.PostFormValue("email")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
		Role:            sessions.RoleClient,
	}
}

// HomeView is the landing page after login
type HomeView struct {
	Assessments []assessment.Definition
	Helplines   []crisis.Helpline
}

func (s *Server) HomeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, http.StatusOK, pageHome, s.newPage(r, HomeView{
			Assessments: assessment.Definitions(),
			Helplines:   crisis.Helplines(),
		}))
	}
}

// CrisisHandler lists the helplines. It needs no session.
func (s *Server) CrisisHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, http.StatusOK, pageCrisis, s.newPage(r, crisis.Helplines()))
	}
}

func (s *Server) TherapistsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		therapists, err := s.backend.ListTherapists(r.Context())
		page := s.newPage(r, therapists)
		if err != nil {
			log.Err(err).Msg("Failed to list therapists")
			page.Error = auth.UserMessage(err)
		}
		s.render(w, http.StatusOK, pageTherapists, page)
	}
}

// ResourcesView is the library filtered by search and category
type ResourcesView struct {
	Search     string
	Category   string
	Categories []string
	Resources  []backend.Resource
}

func (s *Server) ResourcesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		view := ResourcesView{
			Search:   strings.TrimSpace(q.Get("search")),
			Category: q.Get("category"),
		}

		page := s.newPage(r, nil)
		categories, err := s.backend.ResourceCategories(r.Context())
		if err != nil {
			log.Err(err).Msg("Failed to list resource categories")
		}
		view.Categories = categories

		query := backend.ResourceQuery{Search: view.Search, Category: view.Category, Limit: resourcesLimit}
		if view.Resources, err = s.backend.ListResources(r.Context(), query); err != nil {
			log.Err(err).Msg("Failed to list resources")
			page.Error = auth.UserMessage(err)
		}

		page.Data = view
		s.render(w, http.StatusOK, pageResources, page)
	}
}

// MoodView is the mood form with the last week's summary
type MoodView struct {
	Days  int
	Stats *backend.MoodStats
	Value int
	Notes string
}

func (s *Server) moodPage(r *http.Request, view MoodView) PageData {
	view.Days = moodStatsDays
	page := s.newPage(r, nil)
	stats, err := s.backend.MoodStats(r.Context(), moodStatsDays)
	if err != nil {
		log.Err(err).Msg("Failed to load mood stats")
	}
	view.Stats = stats
	page.Data = view
	return page
}

func (s *Server) MoodPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := s.moodPage(r, MoodView{})
		if r.URL.Query().Get("saved") != "" {
			page.Notice = "Mood logged"
		}
		s.render(w, http.StatusOK, pageMood, page)
	}
}

func (s *Server) MoodSubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		// A missing or unreadable value stays 0 and fails validation
		value, _ := strconv.Atoi(r.PostFormValue("value"))
		entry := backend.MoodEntry{Value: value, Notes: strings.TrimSpace(r.PostFormValue("notes"))}

		if _, err := s.backend.LogMood(r.Context(), entry); err != nil {
			log.Warn().Err(err).Msg("Failed to log mood")
			page := s.moodPage(r, MoodView{Value: entry.Value, Notes: entry.Notes})
			page.Error = auth.FormMessage(err)
			s.render(w, http.StatusBadRequest, pageMood, page)
			return
		}
		redirectSuccess(w, r, RouteMood+"?saved=1")
	}
}

// ChatView is one exchange with the support assistant
type ChatView struct {
	Message string
	Reply   *backend.ChatReply
}

func (s *Server) ChatPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, http.StatusOK, pageChat, s.newPage(r, ChatView{}))
	}
}

func (s *Server) ChatSubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		view := ChatView{Message: strings.TrimSpace(r.PostFormValue("message"))}
		var userID string
		if snap, ok := SessionFromContext(r.Context()); ok && snap.User != nil {
			userID = snap.User.Email
		}

		reply, err := s.backend.Chat(r.Context(), view.Message, userID)
		view.Reply = reply
		page := s.newPage(r, view)
		status := http.StatusOK
		if err != nil {
			log.Warn().Err(err).Msg("Chat failed")
			page.Error = auth.FormMessage(err)
			status = http.StatusBadGateway
			if apperrors.Is(err, apperrors.ErrInvalidRequest) {
				status = http.StatusBadRequest
			}
		}
		s.render(w, status, pageChat, page)
	}
}
