package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/events"
)

// Refresher keeps local state fresh through exactly one mechanism: the
// events dispatcher. The poll timer publishes a ticket invalidation
// while a detail view is open, mutation flows publish collection
// invalidations, and the refresher consumes both and re-fetches. After
// every applied refresh an optional notify callback fires so the UI
// can re-render.
type Refresher struct {
	session    *Session
	dispatcher events.Dispatcher
	interval   time.Duration
	logger     *zap.Logger
	notify     func()
}

// RefresherDependencies bundles collaborators for the refresher.
type RefresherDependencies struct {
	Session    *Session
	Dispatcher events.Dispatcher
	Interval   time.Duration
	Logger     *zap.Logger
	// Notify is invoked after each refresh pass; nil is allowed.
	Notify func()
}

// NewRefresher constructs the refresher and registers its handlers.
func NewRefresher(deps RefresherDependencies) *Refresher {
	r := &Refresher{
		session:    deps.Session,
		dispatcher: deps.Dispatcher,
		interval:   deps.Interval,
		logger:     deps.Logger,
		notify:     deps.Notify,
	}
	if r.interval <= 0 {
		r.interval = 30 * time.Second
	}

	r.dispatcher.Subscribe(events.EventTicketInvalidated, func(ctx context.Context, e events.Event) error {
		r.session.RefreshSelected(ctx)
		r.fireNotify()
		return nil
	})
	r.dispatcher.Subscribe(events.EventCollectionInvalidated, func(ctx context.Context, e events.Event) error {
		r.session.RefreshCollection(ctx)
		r.fireNotify()
		return nil
	})
	return r
}

// Start runs the poll loop until the context is cancelled. The ticker
// only publishes while a detail view is open; closing the view (or
// tearing the program down) stops state updates cleanly.
func (r *Refresher) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ticketID := r.session.SelectedID()
				if ticketID == "" {
					continue
				}
				r.logger.Debug("poll tick", zap.String("ticket_id", ticketID))
				_ = r.dispatcher.Publish(ctx, events.Event{
					Type:      events.EventTicketInvalidated,
					TicketID:  ticketID,
					Reason:    events.ReasonPollTick,
					Timestamp: time.Now(),
				})
			}
		}
	}()
}

func (r *Refresher) fireNotify() {
	if r.notify != nil {
		r.notify()
	}
}
