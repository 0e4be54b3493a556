package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	collUsers      = "users"
	collLeads      = "places"
	collMessages   = "messages"
	collSentEmails = "sent_emails"
)

// Client wraps the driver client and the application database.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewClient(ctx context.Context, url, database string) (*Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Client{client: client, db: client.Database(database)}, nil
}

func (c *Client) Users() *UserStore {
	return &UserStore{coll: c.db.Collection(collUsers)}
}

func (c *Client) Leads() *LeadStore {
	return &LeadStore{coll: c.db.Collection(collLeads)}
}

func (c *Client) Messages() *MessageStore {
	return &MessageStore{coll: c.db.Collection(collMessages)}
}

func (c *Client) SentEmails() *SentEmailStore {
	return &SentEmailStore{coll: c.db.Collection(collSentEmails)}
}

// Ping verifies the connection, used by the /db_check probe.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Drop removes the whole application database. Test helper.
func (c *Client) Drop(ctx context.Context) error {
	return c.db.Drop(ctx)
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
