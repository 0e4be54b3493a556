package rest

import (
	"net/http"
	"time"

	"github.com/SachyamKarki/Karki-Scrapper/internal/auth"
	"github.com/SachyamKarki/Karki-Scrapper/internal/domain"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := a.users.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		writeFailure(w, err)
		return
	}

	// Signup logs the account straight in.
	if err := a.setSession(w, user); err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"user": user})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := a.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if err := a.setSession(w, user); err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"user": user})
}

func (a *API) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)
	if user == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"authenticated": true, "user": user})
}

func (a *API) handleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeSuccess(w, nil)
}

func (a *API) setSession(w http.ResponseWriter, user *domain.User) error {
	token, err := a.sessions.Issue(user.HexID(), user.Email, user.Role)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(a.sessions.TTL()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
