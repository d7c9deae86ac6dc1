package event

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type StubEventRepository struct {
	mu        sync.RWMutex
	events    map[uuid.UUID]Event
	ListCalls int
	FailList  error
}

func NewStubEventRepository() *StubEventRepository {
	return &StubEventRepository{events: make(map[uuid.UUID]Event)}
}

func (s *StubEventRepository) List(ctx context.Context, filter Filter) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListCalls++
	if s.FailList != nil {
		return nil, s.FailList
	}
	result := make([]Event, 0)
	for _, e := range s.events {
		if !slices.Contains(filter.GroupIDs, e.GroupId) {
			continue
		}
		if filter.EventType != nil && e.Type != *filter.EventType {
			continue
		}
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *StubEventRepository) Get(ctx context.Context, id uuid.UUID) (Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return Event{}, ErrEventNotFound
	}
	return e, nil
}

func (s *StubEventRepository) Insert(ctx context.Context, event Event) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event.Id = uuid.New()
	event.CreatedAt = time.Now().Add(time.Duration(len(s.events)) * time.Millisecond)
	event.UpdatedAt = event.CreatedAt
	s.events[event.Id] = event
	return event, nil
}

func (s *StubEventRepository) Update(ctx context.Context, event Event) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.events[event.Id]
	if !ok {
		return Event{}, ErrEventNotFound
	}
	event.GroupId = existing.GroupId
	event.UpdatedAt = time.Now()
	s.events[event.Id] = event
	return event, nil
}

func (s *StubEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return ErrEventNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *StubEventRepository) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[uuid.UUID]Event)
	s.ListCalls = 0
	s.FailList = nil
}
