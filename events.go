package cqldriver

import (
	"context"

	"github.com/scylla-go/cqldriver/frame/response"
)

// SchemaEvent reports a keyspace/table/type/function change a server
// pushed over its control connection (§4.10 "Events").
type SchemaEvent = response.SchemaChange

// EventSubscription is a caller's private view onto a Session's
// SCHEMA_CHANGE stream: Next blocks until an event arrives or ctx is
// done, TryNext returns immediately either way.
type EventSubscription struct {
	ch          <-chan *SchemaEvent
	unsubscribe func()
}

// Next blocks until a schema event arrives, ctx is done, or the
// subscription's Session is closed.
func (s *EventSubscription) Next(ctx context.Context) (*SchemaEvent, bool) {
	select {
	case ev, ok := <-s.ch:
		return ev, ok
	case <-ctx.Done():
		return nil, false
	}
}

// TryNext returns the next queued event without blocking, reporting
// false if none is currently available.
func (s *EventSubscription) TryNext() (*SchemaEvent, bool) {
	select {
	case ev, ok := <-s.ch:
		return ev, ok
	default:
		return nil, false
	}
}

// Close releases the subscription. The session's event stream keeps
// running for other subscribers.
func (s *EventSubscription) Close() {
	s.unsubscribe()
}

// Events subscribes to the session's SCHEMA_CHANGE stream (§4.10).
// Callers should Close the returned subscription once done with it.
func (s *Session) Events() *EventSubscription {
	ch, unsubscribe := s.cluster.Subscribe()
	return &EventSubscription{ch: ch, unsubscribe: unsubscribe}
}
