package liveevents

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	DecisionCreated  = "created"
	DecisionRejected = "rejected"
	DecisionWarned   = "warned"
	DecisionDeleted  = "deleted"
)

const (
	DefaultBufferSize       = 50
	DefaultSubscriberBuffer = 16
)

// Event describes one ingestion decision taken for a company.
type Event struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"companyId"`
	ProjectID     string    `json:"projectId"`
	ExpenseID     string    `json:"expenseId,omitempty"`
	Decision      string    `json:"decision"`
	DuplicateType string    `json:"duplicateType,omitempty"`
	Store         string    `json:"store,omitempty"`
	Amount        float64   `json:"amount,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Hub fans ingestion decisions out to in-process subscribers, one stream per company.
// Delivery is best effort: slow subscribers drop events rather than block ingestion.
type Hub struct {
	mu               sync.RWMutex
	streams          map[string]*stream
	bufferSize       int
	subscriberBuffer int
}

type stream struct {
	mu     sync.Mutex
	buffer []Event
	subs   map[uint64]chan Event
	nextID uint64
}

type Subscription struct {
	hub       *Hub
	companyID string
	id        uint64
	ch        chan Event
	once      sync.Once
}

func NewHub() *Hub {
	return &Hub{
		streams:          make(map[string]*stream),
		bufferSize:       DefaultBufferSize,
		subscriberBuffer: DefaultSubscriberBuffer,
	}
}

func (h *Hub) Publish(event Event) {
	if h == nil {
		return
	}
	companyID := strings.TrimSpace(event.CompanyID)
	if companyID == "" {
		return
	}
	if event.ID == "" {
		event.ID = ulid.Make().String()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	h.mu.RLock()
	current := h.streams[companyID]
	h.mu.RUnlock()
	if current == nil {
		return
	}

	current.mu.Lock()
	current.buffer = append(current.buffer, event)
	if len(current.buffer) > h.bufferSize {
		current.buffer = current.buffer[len(current.buffer)-h.bufferSize:]
	}
	subs := make([]chan Event, 0, len(current.subs))
	for _, ch := range current.subs {
		subs = append(subs, ch)
	}
	current.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe registers a listener and returns the recent backlog for the company.
func (h *Hub) Subscribe(companyID string) (*Subscription, []Event, error) {
	if h == nil {
		return nil, nil, errors.New("hub_unavailable")
	}
	key := strings.TrimSpace(companyID)
	if key == "" {
		return nil, nil, errors.New("invalid_company_id")
	}

	current := h.ensureStream(key)
	current.mu.Lock()
	id := current.nextID
	current.nextID++
	ch := make(chan Event, h.subscriberBuffer)
	current.subs[id] = ch
	backlog := append([]Event(nil), current.buffer...)
	current.mu.Unlock()

	return &Subscription{
		hub:       h,
		companyID: key,
		id:        id,
		ch:        ch,
	}, backlog, nil
}

func (h *Hub) ensureStream(companyID string) *stream {
	h.mu.RLock()
	current := h.streams[companyID]
	h.mu.RUnlock()
	if current != nil {
		return current
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	current = h.streams[companyID]
	if current == nil {
		current = &stream{subs: make(map[uint64]chan Event)}
		h.streams[companyID] = current
	}
	return current
}

func (h *Hub) unsubscribe(companyID string, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	current := h.streams[companyID]
	if current == nil {
		return
	}
	current.mu.Lock()
	delete(current.subs, id)
	empty := len(current.subs) == 0
	current.mu.Unlock()
	if empty {
		delete(h.streams, companyID)
	}
}

func (s *Subscription) Events() <-chan Event {
	if s == nil {
		return nil
	}
	return s.ch
}

func (s *Subscription) Close() {
	if s == nil || s.hub == nil {
		return
	}
	s.once.Do(func() {
		s.hub.unsubscribe(s.companyID, s.id)
	})
}
