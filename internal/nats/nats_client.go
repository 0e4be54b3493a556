package nats

import (
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
)

// NATSClient carries the room fan-out between server processes. Room
// subscriptions are refcounted: several local connections in the same room
// share a single NATS subscription.
type NATSClient struct {
	conn *nats.Conn

	mu   sync.Mutex
	subs map[string]*roomSub
}

type roomSub struct {
	sub  *nats.Subscription
	refs int
}

func NewNATSClient(url string) (*NATSClient, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSClient{
		conn: nc,
		subs: make(map[string]*roomSub),
	}, nil
}

func (c *NATSClient) Close() {
	c.mu.Lock()
	for key, rs := range c.subs {
		_ = rs.sub.Unsubscribe()
		delete(c.subs, key)
	}
	c.mu.Unlock()
	c.conn.Close()
}
