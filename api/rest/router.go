package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/SachyamKarki/Karki-Scrapper/internal/auth"
	"github.com/SachyamKarki/Karki-Scrapper/internal/mongo"
	"github.com/SachyamKarki/Karki-Scrapper/internal/port"
	"github.com/SachyamKarki/Karki-Scrapper/pkg/logger"
	"github.com/SachyamKarki/Karki-Scrapper/service"
)

// API bundles the dependencies of the REST handlers.
type API struct {
	sessions   *auth.SessionManager
	users      *service.UserService
	userStore  port.UserStore
	chat       port.ChatService
	leads      *service.LeadService
	leadStore  port.LeadStore
	analyzer   port.Analyzer
	sentEmails port.SentEmailStore
	db         *mongo.Client
	logger     logger.Logger
}

func NewAPI(
	sessions *auth.SessionManager,
	users *service.UserService,
	userStore port.UserStore,
	chat port.ChatService,
	leads *service.LeadService,
	leadStore port.LeadStore,
	analyzer port.Analyzer,
	sentEmails port.SentEmailStore,
	db *mongo.Client,
	log logger.Logger,
) *API {
	return &API{
		sessions:   sessions,
		users:      users,
		userStore:  userStore,
		chat:       chat,
		leads:      leads,
		leadStore:  leadStore,
		analyzer:   analyzer,
		sentEmails: sentEmails,
		db:         db,
		logger:     log.WithModule("rest"),
	}
}

// Router assembles the REST surface. The websocket endpoint is mounted
// separately by the app so the hub can own its lifecycle.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(RequestLogger(a.logger))
	r.Use(SessionAuth(a.sessions, a.userStore))

	r.Get("/health", a.handleHealth)
	r.Get("/db_check", a.handleDBCheck)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", a.handleSignup)
		r.Post("/login", a.handleLogin)
		r.Get("/user", a.handleCurrentUser)
		r.Post("/logout", a.handleLogout)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireUser)

		r.Get("/leads", a.handleListLeads)
		r.Get("/updates", a.handleLeadUpdates)
		r.Post("/leads/status", a.handleSetLeadStatus)
		r.Post("/leads/delete", a.handleDeleteLeads)
		r.Post("/leads/{id}/note", a.handleSaveNote)
		r.Get("/leads/{id}/note", a.handleGetNote)
		r.Post("/leads/{id}/analyze", a.handleAnalyzeLead)
		r.Get("/leads/{id}/analysis", a.handleGetAnalysis)
		r.Post("/scrape", a.handleScrape)
		r.Post("/analyze_link", a.handleAnalyzeLink)
		r.Post("/generate_email", a.handleGenerateEmail)
		r.Post("/sent_email", a.handleSaveSentEmail)
		r.Get("/sent_emails", a.handleListSentEmails)

		r.Route("/messages", func(r chi.Router) {
			r.Get("/history", a.handleTeamHistory)
			r.Get("/dm/{userID}", a.handleDirectHistory)
			r.Post("/dm/send", a.handleSendDirect)
			r.Get("/conversations", a.handleConversations)
			r.Post("/conversations/delete", a.handleDeleteConversation)
			r.Get("/admins", a.handleStaffRoster)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(RequireStaff)
		r.Get("/dashboard", a.handleAdminDashboard)

		r.Group(func(r chi.Router) {
			r.Use(RequireSuperadmin)
			r.Post("/users/{id}/role", a.handleSetUserRole)
			r.Post("/users/{id}/delete", a.handleDeleteUser)
		})
	})

	return r
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

func (a *API) handleDBCheck(w http.ResponseWriter, r *http.Request) {
	if err := a.db.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	writeSuccess(w, map[string]interface{}{"database": "ok"})
}
