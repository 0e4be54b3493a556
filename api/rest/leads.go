package rest

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/SachyamKarki/Karki-Scrapper/internal/domain"
)

func (a *API) handleListLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))

	filter := domain.LeadFilter{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Page:   page,
	}
	leads, pagination, err := a.leads.List(r.Context(), filter)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"places":     leads,
		"pagination": pagination,
	})
}

// handleLeadUpdates serves the dashboard poll: every lead inserted after
// last_id, oldest first.
func (a *API) handleLeadUpdates(w http.ResponseWriter, r *http.Request) {
	leads, err := a.leads.Updates(r.Context(), r.URL.Query().Get("last_id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"places": leads})
}

func (a *API) handleSetLeadStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !domain.ValidStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}
	if err := a.leads.SetStatus(r.Context(), req.ID, req.Status); err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"status": req.Status})
}

func (a *API) handleDeleteLeads(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	deleted, err := a.leads.Delete(r.Context(), req.IDs)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"deleted": deleted})
}

func (a *API) handleSaveNote(w http.ResponseWriter, r *http.Request) {
	var note domain.Note
	if err := decodeBody(r, &note); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := a.leads.SaveNote(r.Context(), chi.URLParam(r, "id"), note); err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, nil)
}

func (a *API) handleGetNote(w http.ResponseWriter, r *http.Request) {
	lead, err := a.leads.ByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"note": lead.Note})
}

func (a *API) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	batchID, err := a.leads.EnqueueScrape(r.Context(), req.Query)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"batch_id": batchID})
}

func (a *API) handleAnalyzeLead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URLType string `json:"url_type"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.URLType == "" {
		req.URLType = "website"
	}

	lead, err := a.leads.ByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	url := leadURL(lead, req.URLType)
	if url == "" {
		writeError(w, http.StatusBadRequest, "Lead has no URL to analyze")
		return
	}

	report, err := a.analyzer.AnalyzeURL(r.Context(), url, lead.Name, lead.Category, req.URLType)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if err := a.leads.SaveAnalysis(r.Context(), lead.ID.Hex(), report); err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"status": report["status"]})
}

func (a *API) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	lead, err := a.leads.ByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	if len(lead.Analysis) == 0 {
		writeError(w, http.StatusNotFound, "No analysis for this lead")
		return
	}
	writeSuccess(w, map[string]interface{}{"analysis": lead.Analysis})
}

// handleAnalyzeLink runs an ad-hoc analysis without storing the report.
func (a *API) handleAnalyzeLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL     string `json:"url"`
		URLType string `json:"url_type"`
	}
	if err := decodeBody(r, &req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	report, err := a.analyzer.AnalyzeURL(r.Context(), req.URL, "", "", req.URLType)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"analysis": report})
}

func (a *API) handleGenerateEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID       string `json:"item_id"`
		TemplateType int    `json:"template_type"`
		CustomPrompt string `json:"custom_prompt"`
	}
	if err := decodeBody(r, &req); err != nil || req.ItemID == "" {
		writeError(w, http.StatusBadRequest, "item_id is required")
		return
	}

	lead, err := a.leads.ByID(r.Context(), req.ItemID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	var noteText string
	if lead.Note != nil {
		noteText = lead.Note.Text
	}

	subject, body, err := a.analyzer.GenerateEmail(r.Context(), lead, lead.Analysis, noteText, req.TemplateType, req.CustomPrompt)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"subject": subject, "body": body})
}

func (a *API) handleSaveSentEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		To       string `json:"to"`
		Subject  string `json:"subject"`
		Body     string `json:"body"`
		LeadName string `json:"lead_name"`
		LeadID   string `json:"lead_id"`
	}
	if err := decodeBody(r, &req); err != nil || req.To == "" || req.Subject == "" {
		writeError(w, http.StatusBadRequest, "to and subject are required")
		return
	}

	user := CurrentUser(r)
	email := &domain.SentEmail{
		UserID:    user.HexID(),
		UserEmail: user.Email,
		To:        req.To,
		Subject:   req.Subject,
		Body:      req.Body,
		LeadName:  req.LeadName,
		LeadID:    req.LeadID,
	}
	if err := a.sentEmails.Insert(r.Context(), email); err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"id": email.ID.Hex()})
}

func (a *API) handleListSentEmails(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	emails, pagination, err := a.sentEmails.ListByUser(r.Context(), CurrentUser(r).HexID(), page, leadsPageSize)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"emails": emails, "pagination": pagination})
}

const leadsPageSize = 50

// leadURL picks the link to analyze for the requested url type.
func leadURL(lead *domain.Lead, urlType string) string {
	switch urlType {
	case "facebook", "instagram":
		return socialLink(lead.SocialLinks, urlType)
	default:
		if lead.Website != "" {
			return lead.Website
		}
		return lead.URL
	}
}

// socialLink finds the link for a platform in the scraped social_links
// field, which holds whitespace or comma separated URLs.
func socialLink(links, platform string) string {
	for _, link := range strings.FieldsFunc(links, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n'
	}) {
		if strings.Contains(strings.ToLower(link), platform+".com") {
			return link
		}
	}
	return ""
}
