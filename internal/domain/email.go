package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SentEmail records an outreach email the user reports as sent. The CRM does
// not deliver mail itself.
type SentEmail struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	UserEmail string             `bson:"user_email" json:"user_email"`
	To        string             `bson:"to" json:"to"`
	Subject   string             `bson:"subject" json:"subject"`
	Body      string             `bson:"body" json:"body"`
	LeadName  string             `bson:"lead_name,omitempty" json:"lead_name,omitempty"`
	LeadID    string             `bson:"lead_id,omitempty" json:"lead_id,omitempty"`
	SentAt    time.Time          `bson:"sent_at" json:"sent_at"`
}
