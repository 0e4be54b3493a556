package ws

import (
	"net/http"

	gws "github.com/gorilla/websocket"

	"github.com/SachyamKarki/Karki-Scrapper/internal/auth"
	"github.com/SachyamKarki/Karki-Scrapper/internal/port"
	"github.com/SachyamKarki/Karki-Scrapper/internal/websocket"
	"github.com/SachyamKarki/Karki-Scrapper/pkg/logger"
)

var upgrader = gws.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket authenticates the session cookie, upgrades the connection
// and hands it to the hub. Rejections happen before the upgrade so the
// client sees a plain 401.
func HandleWebSocket(
	hub *websocket.Hub,
	sessions *auth.SessionManager,
	users port.UserStore,
	chat port.ChatService,
	presence port.Presence,
	logg logger.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(auth.SessionCookieName)
		if err != nil {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		claims, err := sessions.Validate(cookie.Value)
		if err != nil {
			http.Error(w, "Invalid session", http.StatusUnauthorized)
			return
		}
		user, err := users.ByID(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "Invalid session", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logg.Errorf("upgrade error: %v", err)
			return
		}

		if err := presence.Connected(r.Context(), user.Email); err != nil {
			logg.Warnf("failed to record presence for %s: %v", user.Email, err)
		}

		client := websocket.NewConnection(conn, hub, user, chat, presence, logg)
		hub.Register <- client
		logg.Infof("new connection from %s (user=%s)", conn.RemoteAddr(), user.Email)

		go client.ReadPump()
		go client.WritePump()
	}
}
