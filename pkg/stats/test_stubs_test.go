package stats

import (
	"context"

	"github.com/famcal/famcal/pkg/event"
)

type eventListerStub struct {
	events []event.Event
}

func newEventListerStub() *eventListerStub {
	return &eventListerStub{}
}

func (s *eventListerStub) ListEvents(ctx context.Context) []event.Event {
	return s.events
}

func (s *eventListerStub) add(events ...event.Event) {
	s.events = append(s.events, events...)
}

func (s *eventListerStub) reset() {
	s.events = nil
}
