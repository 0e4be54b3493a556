package nats

import (
	"encoding/json"
	"fmt"

	"github.com/SachyamKarki/Karki-Scrapper/internal/domain"
)

const leadUpdatesSubject = "leads.updates"

func roomSubject(roomKey string) string {
	return "chat.room." + roomKey
}

// PublishRoom fans one event out to every process holding members of the
// room.
func (c *NATSClient) PublishRoom(roomKey string, ev domain.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}
	return c.conn.Publish(roomSubject(roomKey), data)
}

// PublishLeadUpdate announces a freshly stored lead to interested consumers,
// such as dashboards tailing scrape progress.
func (c *NATSClient) PublishLeadUpdate(lead domain.Lead) error {
	data, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("failed to serialize lead: %w", err)
	}
	return c.conn.Publish(leadUpdatesSubject, data)
}
