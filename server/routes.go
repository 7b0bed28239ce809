package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-mindcare-client/internal/config"
	"github.com/jrsteele09/go-mindcare-client/routeguard"
	"github.com/jrsteele09/go-mindcare-client/sessions"
)

func (s *Server) initRoutes() {
	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	if s.mode == config.AppModeAdmin {
		s.initAdminRoutes()
	} else {
		s.initPatientRoutes()
	}

	// API routes
	s.RegisterRouteHandler("GET "+RouteAPISession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPISessionResume, ChainMiddleware(s.ResumeHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RouteAPI, ChainMiddleware(http.NotFound, s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))

	static := s.HTMLMiddleWare(s.CompressionMiddleware, s.CacheMiddleware)
	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), static...))
	s.RegisterRouteHandler("GET "+RouteStaticJS, ChainMiddleware(s.serveFileHandler(), static...))
}

func (s *Server) initPatientRoutes() {
	guarded := s.HTMLMiddleWare(s.RequireSession(routeguard.CanEnter))

	s.RegisterRouteHandler("GET "+RouteSignup, ChainMiddleware(s.SignupPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteSignup, ChainMiddleware(s.SignupSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteCrisis, ChainMiddleware(s.CrisisHandler(), s.HTMLMiddleWare()...))

	s.RegisterRouteHandler("GET "+RouteHome+"{$}", ChainMiddleware(s.HomeHandler(), guarded...))
	s.RegisterRouteHandler("GET "+RouteAssessments, ChainMiddleware(s.AssessmentsHandler(), guarded...))
	s.RegisterRouteHandler("GET "+RouteAssessment, ChainMiddleware(s.AssessmentFormHandler(), guarded...))
	s.RegisterRouteHandler("POST "+RouteAssessment, ChainMiddleware(s.AssessmentSubmitHandler(), guarded...))
	s.RegisterRouteHandler("GET "+RouteTherapists, ChainMiddleware(s.TherapistsHandler(), guarded...))
	s.RegisterRouteHandler("GET "+RouteResources, ChainMiddleware(s.ResourcesHandler(), guarded...))
	s.RegisterRouteHandler("GET "+RouteMood, ChainMiddleware(s.MoodPageHandler(), guarded...))
	s.RegisterRouteHandler("POST "+RouteMood, ChainMiddleware(s.MoodSubmitHandler(), guarded...))
	s.RegisterRouteHandler("GET "+RouteChat, ChainMiddleware(s.ChatPageHandler(), guarded...))
	s.RegisterRouteHandler("POST "+RouteChat, ChainMiddleware(s.ChatSubmitHandler(), guarded...))
}

func (s *Server) initAdminRoutes() {
	admin := s.HTMLMiddleWare(s.RequireSession(routeguard.RequireRole(sessions.RoleAdmin)))

	s.RegisterRouteHandler("GET "+RouteHome+"{$}", ChainMiddleware(s.AdminDashboardHandler(), admin...))
	s.RegisterRouteHandler("GET "+RouteAdmin, ChainMiddleware(s.AdminDashboardHandler(), admin...))
	s.RegisterRouteHandler("GET "+RouteAdminUsers, ChainMiddleware(s.AdminUsersHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteAdminUserStatus, ChainMiddleware(s.AdminUserStatusHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteAdminUserDelete, ChainMiddleware(s.AdminUserDeleteHandler(), admin...))
	s.RegisterRouteHandler("GET "+RouteAdminTherapists, ChainMiddleware(s.AdminTherapistsHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteAdminTherapistDelete, ChainMiddleware(s.AdminTherapistDeleteHandler(), admin...))
	s.RegisterRouteHandler("GET "+RouteAdminResources, ChainMiddleware(s.AdminResourcesHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteAdminResources, ChainMiddleware(s.AdminResourceCreateHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteAdminResourceDelete, ChainMiddleware(s.AdminResourceDeleteHandler(), admin...))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, "/")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		err := StreamFile(w, r, filePath)
		if err != nil {
			logError(r.Method, filePath, err.Error())
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}
