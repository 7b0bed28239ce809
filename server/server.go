package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-mindcare-client/auth"
	"github.com/jrsteele09/go-mindcare-client/backend"
	"github.com/jrsteele09/go-mindcare-client/internal/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
)

// Backend is the part of the backend client the views call
type Backend interface {
	Register(ctx context.Context, in backend.Registration) (string, error)
	Health(ctx context.Context) (*backend.Health, error)
	ListResources(ctx context.Context, q backend.ResourceQuery) ([]backend.Resource, error)
	ResourceCategories(ctx context.Context) ([]string, error)
	CreateResource(ctx context.Context, in backend.ResourceInput) (*backend.Resource, error)
	DeleteResource(ctx context.Context, id string) error
	ListTherapists(ctx context.Context) ([]backend.Therapist, error)
	DeleteTherapist(ctx context.Context, id string) error
	ListAccounts(ctx context.Context) ([]backend.Account, error)
	UpdateAccount(ctx context.Context, id string, in backend.AccountUpdate) (*backend.Account, error)
	DeleteAccount(ctx context.Context, id string) error
	LogMood(ctx context.Context, entry backend.MoodEntry) (string, error)
	MoodStats(ctx context.Context, days int) (*backend.MoodStats, error)
	Chat(ctx context.Context, text, userID string) (*backend.ChatReply, error)
}

var _ Backend = (*backend.Client)(nil)

// Server is the app shell: it renders the patient portal, or the admin
// dashboard when the app mode is admin, for the one session held by store.
type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	appName string
	mode    config.AppMode
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	store   *auth.SessionStore
	backend Backend
	pages   map[string]*template.Template
}

func New(cfg config.Config, store *auth.SessionStore, be Backend) (*Server, error) {
	if store == nil || be == nil {
		return nil, errors.New("[Server New] session store and backend are required")
	}

	pages, err := parsePages()
	if err != nil {
		return nil, errors.Wrap(err, "[Server New] failed to parse templates")
	}

	s := &Server{
		env:     cfg.GetEnv(),
		appName: cfg.GetAppName(),
		mode:    cfg.GetAppMode(),
		mux:     http.NewServeMux(),
		config:  cfg,
		store:   store,
		backend: be,
		pages:   pages,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes lists the registered patterns in registration order
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func colouredMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colouredMethod(method), path)
}

func logError(method, path, error string) {
	log.Error().Msgf("[%-19s] %s %s", colouredMethod(method), path, Red+error+ResetColor)
}
