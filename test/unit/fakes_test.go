package unit

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SachyamKarki/Karki-Scrapper/internal/domain"
)

// fakeMessageStore keeps messages in insertion order.
type fakeMessageStore struct {
	mu   sync.Mutex
	msgs []domain.ChatMessage
}

func (f *fakeMessageStore) Insert(_ context.Context, msg *domain.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg.ID = primitive.NewObjectID()
	f.msgs = append(f.msgs, *msg)
	return nil
}

func (f *fakeMessageStore) TeamHistory(_ context.Context, limit int) ([]domain.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ChatMessage
	for _, m := range f.msgs {
		if m.ConversationType == domain.ConversationTeam {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeMessageStore) DirectHistory(_ context.Context, a, b string, limit int) ([]domain.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ChatMessage
	for _, m := range f.msgs {
		if m.ConversationType == domain.ConversationDirect && pairMatches(m, a, b) {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeMessageStore) MarkRead(_ context.Context, a, b, senderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.msgs {
		m := &f.msgs[i]
		if m.ConversationType == domain.ConversationDirect && pairMatches(*m, a, b) && m.SenderID == senderID {
			m.Read = true
		}
	}
	return nil
}

func (f *fakeMessageStore) DirectPartners(_ context.Context, userID string) ([]domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byPartner := map[string]*domain.Conversation{}
	var order []string
	// Newest first, like the aggregation.
	for i := len(f.msgs) - 1; i >= 0; i-- {
		m := f.msgs[i]
		if m.ConversationType != domain.ConversationDirect || !contains(m.Participants, userID) {
			continue
		}
		other := m.Participants[0]
		if other == userID {
			other = m.Participants[1]
		}
		conv, ok := byPartner[other]
		if !ok {
			last := m
			conv = &domain.Conversation{UserID: other, LastMessage: &last}
			byPartner[other] = conv
			order = append(order, other)
		}
		if m.SenderID != userID && !m.Read {
			conv.UnreadCount++
		}
	}
	out := make([]domain.Conversation, 0, len(order))
	for _, id := range order {
		out = append(out, *byPartner[id])
	}
	return out, nil
}

func (f *fakeMessageStore) DeleteConversation(_ context.Context, a, b string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []domain.ChatMessage
	var deleted int64
	for _, m := range f.msgs {
		if m.ConversationType == domain.ConversationDirect && pairMatches(m, a, b) {
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	f.msgs = kept
	return deleted, nil
}

func pairMatches(m domain.ChatMessage, a, b string) bool {
	return contains(m.Participants, a) && contains(m.Participants, b)
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// fakeUserStore serves a fixed account set.
type fakeUserStore struct {
	users map[string]*domain.User
}

func newFakeUserStore(users ...*domain.User) *fakeUserStore {
	f := &fakeUserStore{users: map[string]*domain.User{}}
	for _, u := range users {
		f.users[u.HexID()] = u
	}
	return f
}

func (f *fakeUserStore) Create(_ context.Context, email, passwordHash, role string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return nil, domain.ErrEmailTaken
		}
	}
	u := &domain.User{ID: primitive.NewObjectID(), Email: email, PasswordHash: passwordHash, Role: role}
	f.users[u.HexID()] = u
	return u, nil
}

func (f *fakeUserStore) ByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserStore) ByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserStore) List(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserStore) Staff(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.users {
		if u.IsStaff() {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) UpdateRole(_ context.Context, id, role string) error {
	u, ok := f.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) Count(_ context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

// fakePublisher records every published event.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	Room  string
	Event domain.Event
}

func (f *fakePublisher) PublishRoom(roomKey string, ev domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{Room: roomKey, Event: ev})
	return nil
}

func (f *fakePublisher) published() []publishedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]publishedEvent(nil), f.events...)
}

// fakePresence marks a fixed set of emails online.
type fakePresence struct {
	online map[string]bool
}

func (f *fakePresence) Connected(_ context.Context, email string) error {
	if f.online == nil {
		f.online = map[string]bool{}
	}
	f.online[email] = true
	return nil
}

func (f *fakePresence) Disconnected(_ context.Context, email string) error {
	delete(f.online, email)
	return nil
}

func (f *fakePresence) IsOnline(_ context.Context, email string) (bool, error) {
	return f.online[email], nil
}

func (f *fakePresence) OnlineEmails(_ context.Context) ([]string, error) {
	var out []string
	for email := range f.online {
		out = append(out, email)
	}
	return out, nil
}

// fakeJobQueue records scrape jobs.
type fakeJobQueue struct {
	jobs []domain.ScrapeJob
}

func (f *fakeJobQueue) PublishScrapeJob(_ context.Context, job domain.ScrapeJob) error {
	f.jobs = append(f.jobs, job)
	return nil
}
