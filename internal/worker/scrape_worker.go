package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SachyamKarki/Karki-Scrapper/internal/domain"
	"github.com/SachyamKarki/Karki-Scrapper/internal/mq"
	"github.com/SachyamKarki/Karki-Scrapper/internal/nats"
	"github.com/SachyamKarki/Karki-Scrapper/internal/port"
	"github.com/SachyamKarki/Karki-Scrapper/pkg/logger"
)

// ScrapeWorker consumes scrape jobs, asks the scraper service for listings
// and stores each one, announcing it on the lead update stream.
type ScrapeWorker struct {
	queue      *mq.Client
	leads      port.LeadStore
	natsClient *nats.NATSClient
	scraperURL string
	httpClient *http.Client
	logger     logger.Logger
}

func NewScrapeWorker(queue *mq.Client, leads port.LeadStore, natsClient *nats.NATSClient, scraperURL string, log logger.Logger) *ScrapeWorker {
	return &ScrapeWorker{
		queue:      queue,
		leads:      leads,
		natsClient: natsClient,
		scraperURL: scraperURL,
		httpClient: &http.Client{Timeout: 10 * time.Minute},
		logger:     log.WithModule("scrapeworker"),
	}
}

// Run blocks consuming jobs until the context is cancelled.
func (w *ScrapeWorker) Run(ctx context.Context) error {
	w.logger.Infof("waiting for scrape jobs")
	return w.queue.ConsumeScrapeJobs(ctx, w.process)
}

func (w *ScrapeWorker) process(ctx context.Context, job domain.ScrapeJob) error {
	w.logger.Infof("scraping %q (batch %s)", job.Query, job.BatchID)

	listings, err := w.fetchListings(ctx, job)
	if err != nil {
		return err
	}

	stored := 0
	for i := range listings {
		lead := &listings[i]
		if lead.Name == "" {
			continue
		}
		lead.ID = primitive.NilObjectID
		lead.BatchID = job.BatchID
		if lead.ScrapedAt.IsZero() {
			lead.ScrapedAt = time.Now().UTC()
		}

		// Replace keeps re-scraped listings fresh: the old document goes
		// away and the new one gets a new id, surfacing it on top.
		if err := w.leads.Replace(ctx, lead); err != nil {
			w.logger.Errorf("failed to store %q: %v", lead.Name, err)
			continue
		}
		stored++

		if err := w.natsClient.PublishLeadUpdate(*lead); err != nil {
			w.logger.Warnf("failed to announce %q: %v", lead.Name, err)
		}
	}

	w.logger.Infof("batch %s done: %d/%d listings stored", job.BatchID, stored, len(listings))
	return nil
}

func (w *ScrapeWorker) fetchListings(ctx context.Context, job domain.ScrapeJob) ([]domain.Lead, error) {
	payload, err := json.Marshal(map[string]string{
		"query":    job.Query,
		"batch_id": job.BatchID,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.scraperURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build scraper request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scraper request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("scraper returned status %d: %s", resp.StatusCode, body)
	}

	var parsed struct {
		Places []domain.Lead `json:"places"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode scraper response: %w", err)
	}
	return parsed.Places, nil
}
