package nats

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/SachyamKarki/Karki-Scrapper/internal/domain"
)

// SubscribeRoom attaches the handler to a room's subject. Repeated calls for
// the same room share the existing subscription and only bump its refcount;
// the first caller's handler delivers for everyone, which is safe because
// there is exactly one hub per process.
func (c *NATSClient) SubscribeRoom(roomKey string, handle func(domain.Event)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rs, exists := c.subs[roomKey]; exists {
		rs.refs++
		return nil
	}

	sub, err := c.conn.Subscribe(roomSubject(roomKey), func(msg *nats.Msg) {
		var ev domain.Event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return // Skip invalid payloads
		}
		handle(ev)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to room %s: %w", roomKey, err)
	}

	c.subs[roomKey] = &roomSub{sub: sub, refs: 1}
	return nil
}

// UnsubscribeRoom drops one reference to the room subscription and
// unsubscribes from NATS when the last local member leaves.
func (c *NATSClient) UnsubscribeRoom(roomKey string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rs, exists := c.subs[roomKey]
	if !exists {
		return nil
	}
	rs.refs--
	if rs.refs > 0 {
		return nil
	}
	delete(c.subs, roomKey)
	if err := rs.sub.Unsubscribe(); err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	return nil
}
