package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SachyamKarki/Karki-Scrapper/internal/domain"
)

// handleAdminDashboard serves role-dependent moderation data: superadmins
// get the account list and counters, admins get recent leads to moderate.
func (a *API) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := CurrentUser(r)

	if user.IsSuperadmin() {
		users, err := a.userStore.List(ctx)
		if err != nil {
			writeFailure(w, err)
			return
		}
		totalUsers, err := a.userStore.Count(ctx)
		if err != nil {
			writeFailure(w, err)
			return
		}
		totalLeads, err := a.leadStore.Count(ctx)
		if err != nil {
			writeFailure(w, err)
			return
		}
		approved, err := a.leadStore.CountByStatus(ctx, domain.StatusApproved)
		if err != nil {
			writeFailure(w, err)
			return
		}
		writeSuccess(w, map[string]interface{}{
			"users": users,
			"stats": map[string]interface{}{
				"total_users":    totalUsers,
				"total_leads":    totalLeads,
				"approved_leads": approved,
			},
		})
		return
	}

	leads, err := a.leadStore.Recent(ctx, 100)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"places": leads})
}

func (a *API) handleSetUserRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !domain.ValidRole(req.Role) {
		writeError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	id := chi.URLParam(r, "id")
	if id == CurrentUser(r).HexID() {
		writeError(w, http.StatusBadRequest, "Cannot change your own role")
		return
	}
	if err := a.userStore.UpdateRole(r.Context(), id, req.Role); err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"role": req.Role})
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == CurrentUser(r).HexID() {
		writeError(w, http.StatusBadRequest, "Cannot delete your own account")
		return
	}
	if err := a.userStore.Delete(r.Context(), id); err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, nil)
}
