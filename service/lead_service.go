package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/SachyamKarki/Karki-Scrapper/internal/domain"
	"github.com/SachyamKarki/Karki-Scrapper/internal/port"
	"github.com/SachyamKarki/Karki-Scrapper/pkg/logger"
)

const leadsPerPage = 50

// LeadService drives the lead dashboard: listing, moderation, notes and
// scrape job dispatch.
type LeadService struct {
	leads  port.LeadStore
	queue  port.JobQueue
	logger logger.Logger
}

func NewLeadService(leads port.LeadStore, queue port.JobQueue, log logger.Logger) *LeadService {
	return &LeadService{leads: leads, queue: queue, logger: log.WithModule("leads")}
}

func (s *LeadService) List(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, domain.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = leadsPerPage
	}
	filter.Search = strings.TrimSpace(filter.Search)
	return s.leads.List(ctx, filter)
}

// Updates returns leads inserted after lastID, oldest first, so the
// dashboard can poll for fresh scrape results.
func (s *LeadService) Updates(ctx context.Context, lastID string) ([]domain.Lead, error) {
	return s.leads.Since(ctx, lastID)
}

func (s *LeadService) ByID(ctx context.Context, id string) (*domain.Lead, error) {
	return s.leads.ByID(ctx, id)
}

func (s *LeadService) SetStatus(ctx context.Context, id, status string) error {
	if !domain.ValidStatus(status) {
		return fmt.Errorf("invalid status %q", status)
	}
	found, err := s.leads.UpdateStatus(ctx, id, status)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the given leads, refusing any that moved past pending.
func (s *LeadService) Delete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.leads.DeletePending(ctx, ids)
}

func (s *LeadService) SaveNote(ctx context.Context, id string, note domain.Note) error {
	return s.leads.SetNote(ctx, id, note)
}

func (s *LeadService) SaveAnalysis(ctx context.Context, id string, analysis map[string]interface{}) error {
	return s.leads.SetAnalysis(ctx, id, analysis)
}

// EnqueueScrape publishes a scrape job for the worker and returns its batch id.
func (s *LeadService) EnqueueScrape(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("query is required")
	}

	job := domain.ScrapeJob{Query: query, BatchID: uuid.NewString()}
	if err := s.queue.PublishScrapeJob(ctx, job); err != nil {
		return "", fmt.Errorf("failed to queue scrape job: %w", err)
	}
	s.logger.Infof("queued scrape %q batch %s", query, job.BatchID)
	return job.BatchID, nil
}
