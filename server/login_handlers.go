package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-mindcare-client/auth"
	apperrors "github.com/jrsteele09/go-mindcare-client/internal/errors"
	"github.com/jrsteele09/go-mindcare-client/routeguard"
	"github.com/rs/zerolog/log"
)

// LoginView contains data for rendering the login page
type LoginView struct {
	Email      string // Preserve email on error
	From       string
	ShowSignUp bool
}

// LoginPageHandler displays the login page (GET /login). A live session
// skips straight to where the user was going.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		from := q.Get(routeguard.FromParam)

		if s.store.IsAuthenticated() {
			redirectSuccess(w, r, routeguard.LoginRedirectTarget(from))
			return
		}

		page := s.newPage(r, LoginView{
			Email:      q.Get("email"),
			From:       from,
			ShowSignUp: !s.isAdminApp(),
		})
		if q.Get("registered") != "" {
			page.Notice = "Account created. Please log in."
		}
		s.render(w, http.StatusOK, pageLogin, page)
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := r.FormValue("email")
		password := r.FormValue("password")
		from := r.FormValue(routeguard.FromParam)

		if err := s.store.Authenticate(r.Context(), email, password); err != nil {
			log.Warn().Err(err).Str("email", email).Msg("Login failed")
			page := s.newPage(r, LoginView{Email: email, From: from, ShowSignUp: !s.isAdminApp()})
			page.Error = auth.UserMessage(err)
			s.render(w, loginFailureStatus(err), pageLogin, page)
			return
		}

		redirectSuccess(w, r, routeguard.LoginRedirectTarget(from))
	}
}

func loginFailureStatus(err error) int {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidCredentialsShape):
		return http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrLoginInProgress):
		return http.StatusConflict
	case apperrors.Is(err, apperrors.ErrAuthRejected):
		return http.StatusUnauthorized
	case apperrors.Is(err, apperrors.ErrForbiddenRole):
		return http.StatusForbidden
	case apperrors.Is(err, apperrors.ErrNetworkFailure), apperrors.Is(err, apperrors.ErrServer):
		return http.StatusBadGateway
	}
	return http.StatusBadRequest
}

// LogoutHandler clears the session and returns to the login screen
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.store.Logout(r.Context())
		redirectSuccess(w, r, RouteLogin)
	}
}

// SignupView keeps what was typed when registration fails
type SignupView struct {
	Name  string
	Email string
}

// SignupPageHandler renders the signup page
func (s *Server) SignupPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, http.StatusOK, pageSignup, s.newPage(r, SignupView{}))
	}
}

// SignupSubmissionHandler registers a client account with the backend and
// sends the user to log in with it.
func (s *Server) SignupSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		in := registrationFromForm(r)
		if _, err := s.backend.Register(r.Context(), in); err != nil {
			log.Warn().Err(err).Str("email", in.Email).Msg("Registration failed")
			page := s.newPage(r, SignupView{Name: in.Name, Email: in.Email})
			page.Error = auth.FormMessage(err)
			s.render(w, http.StatusBadRequest, pageSignup, page)
			return
		}

		log.Info().Str("email", in.Email).Msg("Account registered")
		redirectSuccess(w, r, RouteLogin+"?registered=1&email="+url.QueryEscape(in.Email))
	}
}
