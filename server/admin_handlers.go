package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-mindcare-client/auth"
	"github.com/jrsteele09/go-mindcare-client/backend"
	"github.com/jrsteele09/go-mindcare-client/internal/utils"
	"github.com/jrsteele09/go-mindcare-client/users"
	"github.com/rs/zerolog/log"
)

// DashboardView counts what the admin manages. A count is -1 when its
// list could not be loaded.
type DashboardView struct {
	Users      int
	Therapists int
	Resources  int
}

func countOf[T any](items []T, err error) int {
	if err != nil {
		return -1
	}
	return len(items)
}

func (s *Server) AdminDashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		accounts, accountsErr := s.backend.ListAccounts(ctx)
		therapists, therapistsErr := s.backend.ListTherapists(ctx)
		resources, resourcesErr := s.backend.ListResources(ctx, backend.ResourceQuery{})

		page := s.newPage(r, DashboardView{
			Users:      countOf(accounts, accountsErr),
			Therapists: countOf(therapists, therapistsErr),
			Resources:  countOf(resources, resourcesErr),
		})
		for _, err := range []error{accountsErr, therapistsErr, resourcesErr} {
			if err != nil {
				log.Err(err).Msg("Dashboard list failed")
				page.Error = auth.UserMessage(err)
			}
		}
		s.render(w, http.StatusOK, pageAdminDashboard, page)
	}
}

func (s *Server) AdminUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts, err := s.backend.ListAccounts(r.Context())
		page := s.newPage(r, accounts)
		if err != nil {
			log.Err(err).Msg("Failed to list accounts")
			page.Error = auth.UserMessage(err)
		}
		s.render(w, http.StatusOK, pageAdminUsers, page)
	}
}

// AdminUserStatusHandler activates or deactivates an account
func (s *Server) AdminUserStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		status := users.Status(r.PostFormValue("status"))
		update := backend.AccountUpdate{Status: utils.Ptr(string(status))}
		if _, err := s.backend.UpdateAccount(r.Context(), r.PathValue("id"), update); err != nil {
			log.Warn().Err(err).Str("id", r.PathValue("id")).Msg("Failed to update account status")
			redirectWithError(w, r, RouteAdminUsers, auth.FormMessage(err))
			return
		}
		log.Info().Str("id", r.PathValue("id")).Str("status", utils.Value(update.Status)).Msg("Account status changed")
		redirectSuccess(w, r, RouteAdminUsers)
	}
}

func (s *Server) AdminUserDeleteHandler() http.HandlerFunc {
	return s.deleteHandler(RouteAdminUsers, "account", s.backend.DeleteAccount)
}

func (s *Server) AdminTherapistsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		therapists, err := s.backend.ListTherapists(r.Context())
		page := s.newPage(r, therapists)
		if err != nil {
			log.Err(err).Msg("Failed to list therapists")
			page.Error = auth.UserMessage(err)
		}
		s.render(w, http.StatusOK, pageAdminTherapists, page)
	}
}

func (s *Server) AdminTherapistDeleteHandler() http.HandlerFunc {
	return s.deleteHandler(RouteAdminTherapists, "therapist", s.backend.DeleteTherapist)
}

// AdminResourcesView is the library with the form for a new resource
type AdminResourcesView struct {
	Resources []backend.Resource
	Input     backend.ResourceInput
}

func (s *Server) adminResourcesPage(r *http.Request, input backend.ResourceInput) PageData {
	resources, err := s.backend.ListResources(r.Context(), backend.ResourceQuery{})
	page := s.newPage(r, AdminResourcesView{Resources: resources, Input: input})
	if err != nil {
		log.Err(err).Msg("Failed to list resources")
		page.Error = auth.UserMessage(err)
	}
	return page
}

func (s *Server) AdminResourcesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, http.StatusOK, pageAdminResources, s.adminResourcesPage(r, backend.ResourceInput{}))
	}
}

func (s *Server) AdminResourceCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		input := backend.ResourceInput{
			Title:       strings.TrimSpace(r.PostFormValue("title")),
			Type:        strings.TrimSpace(r.PostFormValue("type")),
			Category:    strings.TrimSpace(r.PostFormValue("category")),
			Source:      strings.TrimSpace(r.PostFormValue("source")),
			URL:         strings.TrimSpace(r.PostFormValue("url")),
			Description: strings.TrimSpace(r.PostFormValue("description")),
		}
		created, err := s.backend.CreateResource(r.Context(), input)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to create resource")
			page := s.adminResourcesPage(r, input)
			page.Error = auth.FormMessage(err)
			s.render(w, http.StatusBadRequest, pageAdminResources, page)
			return
		}
		log.Info().Str("id", created.ID).Str("title", created.Title).Msg("Resource created")
		redirectSuccess(w, r, RouteAdminResources)
	}
}

func (s *Server) AdminResourceDeleteHandler() http.HandlerFunc {
	return s.deleteHandler(RouteAdminResources, "resource", s.backend.DeleteResource)
}

func (s *Server) deleteHandler(listRoute, kind string, del func(ctx context.Context, id string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := del(r.Context(), id); err != nil {
			log.Warn().Err(err).Str(kind, id).Msg("Delete failed")
			redirectWithError(w, r, listRoute, auth.FormMessage(err))
			return
		}
		log.Info().Str(kind, id).Msg("Deleted")
		redirectSuccess(w, r, listRoute)
	}
}
