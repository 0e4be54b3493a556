package port

import (
	"context"

	"github.com/SachyamKarki/Karki-Scrapper/internal/domain"
)

// LeadStore persists and queries scraped business listings.
type LeadStore interface {
	List(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, domain.Pagination, error)
	Since(ctx context.Context, lastID string) ([]domain.Lead, error)
	ByID(ctx context.Context, id string) (*domain.Lead, error)
	UpdateStatus(ctx context.Context, id, status string) (bool, error)
	// DeletePending removes the given leads, skipping any that moved past
	// pending.
	DeletePending(ctx context.Context, ids []string) (int64, error)
	SetNote(ctx context.Context, id string, note domain.Note) error
	SetAnalysis(ctx context.Context, id string, analysis map[string]interface{}) error
	// Replace deletes any lead with the same name/address and inserts the
	// given one fresh, so re-scraped listings surface at the top of the
	// dashboard.
	Replace(ctx context.Context, lead *domain.Lead) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	Recent(ctx context.Context, limit int) ([]domain.Lead, error)
}

// SentEmailStore persists the outreach emails users report as sent.
type SentEmailStore interface {
	Insert(ctx context.Context, email *domain.SentEmail) error
	ListByUser(ctx context.Context, userID string, page, perPage int) ([]domain.SentEmail, domain.Pagination, error)
}

// JobQueue hands scrape jobs to the worker pool.
type JobQueue interface {
	PublishScrapeJob(ctx context.Context, job domain.ScrapeJob) error
}

// Analyzer produces the AI report for a URL and drafts outreach emails.
type Analyzer interface {
	AnalyzeURL(ctx context.Context, url, businessName, businessCategory, urlType string) (map[string]interface{}, error)
	GenerateEmail(ctx context.Context, lead *domain.Lead, analysis map[string]interface{}, noteText string, templateType int, customPrompt string) (subject, body string, err error)
}
