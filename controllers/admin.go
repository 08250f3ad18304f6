package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"go-storefront/middleware"
	"go-storefront/services"
)

// AdminController handles the back office user and dashboard requests
type AdminController struct {
	admin   *services.AdminService
	metrics *middleware.Metrics
}

// NewAdminController creates a new AdminController. metrics may be nil.
func NewAdminController(admin *services.AdminService, metrics *middleware.Metrics) *AdminController {
	return &AdminController{admin: admin, metrics: metrics}
}

// GetUsers lists users, filtered by ?role= and ?q=
func (ac *AdminController) GetUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	users, err := ac.admin.ListUsers(ctx, r.URL.Query().Get("role"), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// AddUser creates a user with a role
func (ac *AdminController) AddUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if !decodeJSON(r, &body) {
		invalidInput(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, err := ac.admin.AddUser(ctx, body.Email, body.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// UpdateUserRole changes a user's role
func (ac *AdminController) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Role string `json:"role"`
	}
	if !decodeJSON(r, &body) {
		invalidInput(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, err := ac.admin.SetRole(ctx, mux.Vars(r)["id"], body.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// GetDashboard returns the sales summary
func (ac *AdminController) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	d, err := ac.admin.Dashboard(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// GetMetrics returns per-route latency percentiles
func (ac *AdminController) GetMetrics(w http.ResponseWriter, r *http.Request) {
	if ac.metrics == nil {
		writeJSON(w, http.StatusOK, []middleware.RouteStats{})
		return
	}
	writeJSON(w, http.StatusOK, ac.metrics.Snapshot())
}
