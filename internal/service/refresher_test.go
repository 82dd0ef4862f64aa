package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/events"
)

func TestRefresherPollsSelectedTicket(t *testing.T) {
	backend := &fakeBackend{
		collection: &domain.Collection{UserID: "42", UserName: "Laura"},
		tickets:    map[string]*domain.Ticket{"7": fixtureTicket("7", domain.TicketStatusPending)},
	}
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	session := NewSession(SessionDependencies{
		Backend:    backend,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
		UserID:     "42",
	})
	session.Select(context.Background(), "7")

	backend.mu.Lock()
	callsBefore := backend.fetchTicketCalls
	backend.mu.Unlock()

	notified := make(chan struct{}, 8)
	refresher := NewRefresher(RefresherDependencies{
		Session:    session,
		Dispatcher: dispatcher,
		Interval:   10 * time.Millisecond,
		Logger:     zap.NewNop(),
		Notify:     func() { notified <- struct{}{} },
	})

	ctx, cancel := context.WithCancel(context.Background())
	refresher.Start(ctx)

	select {
	case <-notified:
	case <-time.After(2 * time.Second):
		t.Fatal("poll tick never triggered a refresh")
	}
	cancel()

	backend.mu.Lock()
	callsAfter := backend.fetchTicketCalls
	backend.mu.Unlock()
	assert.Greater(t, callsAfter, callsBefore)
}

func TestRefresherTicksAreIgnoredWithoutSelection(t *testing.T) {
	backend := &fakeBackend{
		collection: &domain.Collection{UserID: "42"},
	}
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	session := NewSession(SessionDependencies{
		Backend:    backend,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
		UserID:     "42",
	})

	refresher := NewRefresher(RefresherDependencies{
		Session:    session,
		Dispatcher: dispatcher,
		Interval:   5 * time.Millisecond,
		Logger:     zap.NewNop(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	refresher.Start(ctx)
	time.Sleep(40 * time.Millisecond)
	cancel()

	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Equal(t, 0, backend.fetchTicketCalls, "no detail view open, nothing to poll")
}

func TestRefresherHandlesCollectionInvalidation(t *testing.T) {
	backend := &fakeBackend{
		collection: &domain.Collection{UserID: "42", UserName: "Laura"},
	}
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	session := NewSession(SessionDependencies{
		Backend:    backend,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
		UserID:     "42",
	})
	NewRefresher(RefresherDependencies{
		Session:    session,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	})

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:      events.EventCollectionInvalidated,
		UserID:    "42",
		Reason:    events.ReasonManual,
		Timestamp: time.Now(),
	})
	require.NoError(t, err)

	backend.mu.Lock()
	calls := backend.fetchCollectionCalls
	backend.mu.Unlock()
	assert.Equal(t, 1, calls)

	snapshot := session.Snapshot()
	require.NotNil(t, snapshot.Collection)
	assert.Equal(t, "Laura", snapshot.Collection.UserName)
}
