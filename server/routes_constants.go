package server

import "github.com/jrsteele09/go-mindcare-client/routeguard"

// Route path constants
const (
	RouteHome = "/"

	// Session
	RouteLogin      = routeguard.LoginPath
	RouteAuthLogin  = "/auth/login"
	RouteAuthLogout = "/auth/logout"
	RouteSignup     = "/signup"

	// Patient portal
	RouteAssessments = "/assessments"
	RouteAssessment  = "/assessments/{id}"
	RouteTherapists  = "/therapists"
	RouteResources   = "/resources"
	RouteMood        = "/mood"
	RouteChat        = "/chat"
	RouteCrisis      = "/crisis"

	// Admin dashboard
	RouteAdmin                = "/admin"
	RouteAdminUsers           = "/admin/users"
	RouteAdminUserStatus      = "/admin/users/{id}/status"
	RouteAdminUserDelete      = "/admin/users/{id}/delete"
	RouteAdminTherapists      = "/admin/therapists"
	RouteAdminTherapistDelete = "/admin/therapists/{id}/delete"
	RouteAdminResources       = "/admin/resources"
	RouteAdminResourceDelete  = "/admin/resources/{id}/delete"

	// API
	RouteAPI              = "/api/"
	RouteAPISession       = "/api/session"
	RouteAPISessionResume = "/api/session/resume"
	RouteHealth           = "/healthz"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
	RouteStaticJS  = "/js/{file}"
)
