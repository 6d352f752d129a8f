package events

import (
	"encoding/json"
	"sync"
	"time"

	"sparke-core-be/internal/entity"
	"sparke-core-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// SessionEvent is one status update of an insight session.
type SessionEvent struct {
	SessionId  uuid.UUID       `json:"sessionId"`
	Status     string          `json:"status"`
	Result     json.RawMessage `json:"result,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

const subscriberBuffer = 8

// Broadcaster fans session events out to per-session subscribers. Streams are
// created lazily on the first Subscribe; a terminal emit delivers the event,
// then closes every subscriber channel and forgets the session.
type Broadcaster struct {
	mu      sync.RWMutex
	streams map[uuid.UUID]map[chan SessionEvent]struct{}
	logger  logger.ILogger
}

func NewBroadcaster(log logger.ILogger) *Broadcaster {
	return &Broadcaster{
		streams: make(map[uuid.UUID]map[chan SessionEvent]struct{}),
		logger:  log,
	}
}

// Subscribe registers a listener for one session. The returned cancel func is
// safe to call more than once and after the stream has been closed.
func (b *Broadcaster) Subscribe(sessionId uuid.UUID) (<-chan SessionEvent, func()) {
	ch := make(chan SessionEvent, subscriberBuffer)

	b.mu.Lock()
	subs, ok := b.streams[sessionId]
	if !ok {
		subs = make(map[chan SessionEvent]struct{})
		b.streams[sessionId] = subs
	}
	subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs, ok := b.streams[sessionId]
		if !ok {
			return
		}
		if _, present := subs[ch]; !present {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(b.streams, sessionId)
		}
	}
	return ch, cancel
}

// Emit delivers an event to the session's subscribers. When the status is
// terminal the stream is closed and removed afterwards. A session with no
// subscribers is a no-op.
func (b *Broadcaster) Emit(event SessionEvent) {
	terminal := entity.InsightSessionStatus(event.Status).IsTerminal()

	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.streams[event.SessionId]
	if !ok {
		return
	}

	for ch := range subs {
		select {
		case ch <- event:
		default:
			b.logger.Warn("Broadcaster", "Subscriber buffer full, dropping event", map[string]interface{}{
				"session_id": event.SessionId,
				"status":     event.Status,
			})
		}
	}

	if terminal {
		for ch := range subs {
			close(ch)
		}
		delete(b.streams, event.SessionId)
	}
}

// SubscriberCount is used by tests and the health surface.
func (b *Broadcaster) SubscriberCount(sessionId uuid.UUID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.streams[sessionId])
}
