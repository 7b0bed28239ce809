package server

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-mindcare-client/auth"
	"github.com/jrsteele09/go-mindcare-client/internal/config"
	"github.com/jrsteele09/go-mindcare-client/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*
var templateFiles embed.FS

const layoutTemplate = "layout.html"

const (
	pageLogin           = "login.html"
	pageSignup          = "signup.html"
	pageLoading         = "loading.html"
	pageHome            = "home.html"
	pageAssessments     = "assessments.html"
	pageAssessment      = "assessment.html"
	pageTherapists      = "therapists.html"
	pageResources       = "resources.html"
	pageMood            = "mood.html"
	pageChat            = "chat.html"
	pageCrisis          = "crisis.html"
	pageAdminDashboard  = "admin_dashboard.html"
	pageAdminUsers      = "admin_users.html"
	pageAdminTherapists = "admin_therapists.html"
	pageAdminResources  = "admin_resources.html"
)

var pageNames = []string{
	pageLogin, pageSignup, pageLoading, pageHome, pageAssessments, pageAssessment,
	pageTherapists, pageResources, pageMood, pageChat, pageCrisis,
	pageAdminDashboard, pageAdminUsers, pageAdminTherapists, pageAdminResources,
}

var templateFuncs = template.FuncMap{
	"join":      strings.Join,
	"add":       func(a, b int) int { return a + b },
	"title":     func(s string) string { return strings.ToUpper(s[:min(1, len(s))]) + s[min(1, len(s)):] },
	"moodScale": func() []int { return []int{1, 2, 3, 4, 5} },
}

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// parsePages pairs every page with the layout. A page defines "content"
// and optionally "title".
func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(layoutTemplate).Funcs(templateFuncs).ParseFS(TemplateFilesFS(), layoutTemplate, name)
		if err != nil {
			return nil, errors.Wrapf(err, "[parsePages] %s", name)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// PageData is what every page receives. Data holds the page's own view.
type PageData struct {
	AppName string
	Admin   bool
	User    *sessions.User
	Error   string
	Notice  string
	Data    any
}

// newPage starts the data for a page, taking the user from the guarded
// request context or, on public pages, from a live session.
func (s *Server) newPage(r *http.Request, data any) PageData {
	page := PageData{
		AppName: s.appName,
		Admin:   s.mode == config.AppModeAdmin,
		Error:   r.URL.Query().Get("error"),
		Data:    data,
	}
	if snap, ok := SessionFromContext(r.Context()); ok {
		page.User = snap.User
	} else if snap := s.store.Snapshot(); snap.Status == auth.StatusAuthenticated {
		page.User = snap.User
	}
	return page
}

func (s *Server) render(w http.ResponseWriter, status int, name string, page PageData) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Error().Str("page", name).Msg("Unknown page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutTemplate, page); err != nil {
		log.Err(err).Str("page", name).Msg("Failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
