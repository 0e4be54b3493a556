package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lead statuses. A lead with no status field counts as pending.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusApproved   = "approved"
	StatusRejected   = "rejected"
)

// ValidStatus reports whether status is one of the known lead statuses.
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusInProgress, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Lead is one scraped business listing ("place"). Analysis is the raw report
// produced by the analyzer and is stored as-is.
type Lead struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	Address      string             `bson:"address,omitempty" json:"address,omitempty"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Website      string             `bson:"website,omitempty" json:"website,omitempty"`
	Email        string             `bson:"email,omitempty" json:"email,omitempty"`
	SocialLinks  string             `bson:"social_links,omitempty" json:"social_links,omitempty"`
	Rating       float64            `bson:"rating,omitempty" json:"rating,omitempty"`
	ReviewsCount int                `bson:"reviews_count,omitempty" json:"reviews_count,omitempty"`
	Category     string             `bson:"category,omitempty" json:"category,omitempty"`
	BatchID      string             `bson:"batch_id,omitempty" json:"batch_id,omitempty"`
	URL          string             `bson:"url,omitempty" json:"url,omitempty"`
	Status       string             `bson:"status,omitempty" json:"status,omitempty"`
	Note         *Note              `bson:"note,omitempty" json:"note,omitempty"`
	Analysis     bson.M             `bson:"analysis,omitempty" json:"analysis,omitempty"`
	ScrapedAt    time.Time          `bson:"scraped_at,omitempty" json:"scraped_at,omitempty"`
}

// Note is a free-form annotation on a lead; Image holds an inline data URL.
type Note struct {
	Text  string `bson:"text" json:"text"`
	Image string `bson:"image,omitempty" json:"image,omitempty"`
}

// Pagination describes one page of a lead listing.
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
}

// LeadFilter selects leads for the dashboard listing.
type LeadFilter struct {
	Search  string
	Status  string
	Page    int
	PerPage int
}

// ScrapeJob is one queued scrape request, carried over the job queue to the
// scrape worker.
type ScrapeJob struct {
	Query   string `json:"query"`
	BatchID string `json:"batch_id"`
}
