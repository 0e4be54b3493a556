package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (a *API) handleTeamHistory(w http.ResponseWriter, r *http.Request) {
	msgs, err := a.chat.TeamHistory(r.Context(), CurrentUser(r))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"messages": msgs})
}

func (a *API) handleDirectHistory(w http.ResponseWriter, r *http.Request) {
	msgs, other, err := a.chat.DirectHistory(r.Context(), CurrentUser(r), chi.URLParam(r, "userID"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{
		"messages": msgs,
		"user": map[string]interface{}{
			"id":    other.HexID(),
			"email": other.Email,
			"role":  other.Role,
		},
	})
}

func (a *API) handleConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := a.chat.Conversations(r.Context(), CurrentUser(r))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"conversations": convs})
}

func (a *API) handleStaffRoster(w http.ResponseWriter, r *http.Request) {
	roster, err := a.chat.StaffRoster(r.Context(), CurrentUser(r))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"admins": roster})
}

// handleSendDirect is the REST fallback for clients without a live socket.
// The message still fans out over the room subject.
func (a *API) handleSendDirect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RecipientID string `json:"recipient_id"`
		Message     string `json:"message"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	msg, err := a.chat.SendDirectMessage(r.Context(), CurrentUser(r), req.RecipientID, req.Message)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"message": msg})
}

func (a *API) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	deleted, err := a.chat.DeleteConversation(r.Context(), CurrentUser(r), req.UserID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"deleted": deleted})
}
