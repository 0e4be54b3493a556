package mq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/SachyamKarki/Karki-Scrapper/internal/domain"
)

const scrapeQueue = "scrape_jobs"

// Client wraps the RabbitMQ connection used to hand scrape jobs from the API
// server to the scrape worker.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewClient(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if _, err := channel.QueueDeclare(scrapeQueue, true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}
	return &Client{conn: conn, channel: channel}, nil
}

// PublishScrapeJob enqueues one scrape request. Jobs are persistent so a
// worker restart does not lose them.
func (c *Client) PublishScrapeJob(ctx context.Context, job domain.ScrapeJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to serialize scrape job: %w", err)
	}
	return c.channel.PublishWithContext(ctx, "", scrapeQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// ConsumeScrapeJobs delivers queued jobs to the handler until the context is
// cancelled. Jobs are acked only after the handler returns without error so
// a crashed worker leaves the job requeued.
func (c *Client) ConsumeScrapeJobs(ctx context.Context, handle func(context.Context, domain.ScrapeJob) error) error {
	deliveries, err := c.channel.Consume(scrapeQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume queue: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			var job domain.ScrapeJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				_ = d.Nack(false, false) // Unparseable, drop it
				continue
			}
			if err := handle(ctx, job); err != nil {
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Client) Close() {
	c.channel.Close()
	c.conn.Close()
}
