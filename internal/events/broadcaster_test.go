package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func TestBroadcasterDeliversToAllSubscribers(t *testing.T) {
	b := NewBroadcaster(nopLogger{})
	sessionId := uuid.New()

	first, cancelFirst := b.Subscribe(sessionId)
	second, cancelSecond := b.Subscribe(sessionId)
	defer cancelFirst()
	defer cancelSecond()

	assert.Equal(t, 2, b.SubscriberCount(sessionId))

	b.Emit(SessionEvent{SessionId: sessionId, Status: "PENDING", OccurredAt: time.Now()})

	for _, ch := range []<-chan SessionEvent{first, second} {
		event := <-ch
		assert.Equal(t, "PENDING", event.Status)
	}
}

func TestBroadcasterTerminalEmitClosesStream(t *testing.T) {
	b := NewBroadcaster(nopLogger{})
	sessionId := uuid.New()

	ch, cancel := b.Subscribe(sessionId)
	defer cancel()

	b.Emit(SessionEvent{SessionId: sessionId, Status: "READY", OccurredAt: time.Now()})

	event, ok := <-ch
	require.True(t, ok, "the terminal event is delivered before the close")
	assert.Equal(t, "READY", event.Status)

	_, ok = <-ch
	assert.False(t, ok)
	assert.Zero(t, b.SubscriberCount(sessionId))
}

func TestBroadcasterEmitWithoutSubscribersIsNoop(t *testing.T) {
	b := NewBroadcaster(nopLogger{})
	b.Emit(SessionEvent{SessionId: uuid.New(), Status: "READY", OccurredAt: time.Now()})
}

func TestBroadcasterCancelIsIdempotent(t *testing.T) {
	b := NewBroadcaster(nopLogger{})
	sessionId := uuid.New()

	_, cancel := b.Subscribe(sessionId)
	cancel()
	cancel()
	assert.Zero(t, b.SubscriberCount(sessionId))

	// Cancelling after a terminal emit already tore the stream down.
	_, cancelLate := b.Subscribe(sessionId)
	b.Emit(SessionEvent{SessionId: sessionId, Status: "FAILED", OccurredAt: time.Now()})
	cancelLate()
}

func TestBroadcasterIsolatesSessions(t *testing.T) {
	b := NewBroadcaster(nopLogger{})
	sessionA := uuid.New()
	sessionB := uuid.New()

	chA, cancelA := b.Subscribe(sessionA)
	_, cancelB := b.Subscribe(sessionB)
	defer cancelA()
	defer cancelB()

	b.Emit(SessionEvent{SessionId: sessionA, Status: "READY", OccurredAt: time.Now()})

	event := <-chA
	assert.Equal(t, sessionA, event.SessionId)
	assert.Equal(t, 1, b.SubscriberCount(sessionB), "the other session is untouched")
}

func TestBroadcasterDropsWhenSubscriberLagsBehind(t *testing.T) {
	b := NewBroadcaster(nopLogger{})
	sessionId := uuid.New()

	ch, cancel := b.Subscribe(sessionId)
	defer cancel()

	for i := 0; i < subscriberBuffer+3; i++ {
		b.Emit(SessionEvent{SessionId: sessionId, Status: "PENDING", OccurredAt: time.Now()})
	}

	// The buffer bounds what a lagging consumer can pile up; extra events are
	// dropped rather than blocking the emitter.
	received := 0
	for {
		select {
		case <-ch:
			received++
		default:
			assert.Equal(t, subscriberBuffer, received)
			return
		}
	}
}
