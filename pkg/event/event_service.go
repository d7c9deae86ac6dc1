package event

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/famcal/famcal/internal/event_bus"
	"github.com/famcal/famcal/pkg/group"
	"github.com/famcal/famcal/pkg/scope"
	"github.com/famcal/famcal/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrTitleRequired = errors.New("title is required")
var ErrDateRequired = errors.New("event date is required")
var ErrInvalidTime = errors.New("event time must be HH:MM or HH:MM:SS")
var ErrInvalidType = errors.New("event type must be booking or task")
var ErrGroupRequired = errors.New("a group is required")
var ErrAssigneeNotMember = errors.New("the assignee is not a member of the group")
var ErrNotAllowed = errors.New("only the creator or the assignee can change this event")

type ScopeReader interface {
	Current(ctx context.Context) (scope.Scope, error)
}

type GroupReader interface {
	IsMember(ctx context.Context, groupId uuid.UUID, userId uuid.UUID) (bool, error)
	GroupIDsForUser(ctx context.Context, userId uuid.UUID) ([]uuid.UUID, error)
}

type EventService interface {
	// ListEvents returns events of the current scope. Failures are logged and yield an empty list.
	ListEvents(ctx context.Context) []Event
	ListTodos(ctx context.Context) []Event
	CreateEvent(ctx context.Context, event Event) (Event, error)
	// CreateTodo creates an event of TypeTask whatever type the caller set.
	CreateTodo(ctx context.Context, event Event) (Event, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, update Update) (Event, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error
}

type EventServiceImpl struct {
	repo   EventRepository
	scopes ScopeReader
	groups GroupReader
	bus    *event_bus.EventBus
}

func NewEventService(repo EventRepository, scopes ScopeReader, groups GroupReader, bus *event_bus.EventBus) *EventServiceImpl {
	return &EventServiceImpl{
		repo:   repo,
		scopes: scopes,
		groups: groups,
		bus:    bus,
	}
}

func (s *EventServiceImpl) ListEvents(ctx context.Context) []Event {
	return s.list(ctx, nil)
}

func (s *EventServiceImpl) ListTodos(ctx context.Context) []Event {
	task := TypeTask
	return s.list(ctx, &task)
}

func (s *EventServiceImpl) list(ctx context.Context, eventType *Type) []Event {
	groupIds, err := s.scopeGroupIDs(ctx)
	if err != nil {
		log.Errorf("failed to resolve group scope: %v", err)
		return []Event{}
	}
	if len(groupIds) == 0 {
		return []Event{}
	}

	events, err := s.repo.List(ctx, Filter{GroupIDs: groupIds, EventType: eventType})
	if err != nil {
		log.Errorf("failed to fetch events: %v", err)
		return []Event{}
	}
	return events
}

// scopeGroupIDs returns the active group, or all groups of the user in the personal overview.
func (s *EventServiceImpl) scopeGroupIDs(ctx context.Context) ([]uuid.UUID, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	current, err := s.scopes.Current(ctx)
	if err != nil {
		return nil, err
	}
	if !current.IsPersonalOverview() {
		return []uuid.UUID{*current.ActiveGroupID}, nil
	}
	return s.groups.GroupIDsForUser(ctx, userId)
}

func (s *EventServiceImpl) CreateEvent(ctx context.Context, event Event) (Event, error) {
	if event.Type == "" {
		event.Type = TypeBooking
	}
	return s.create(ctx, event)
}

func (s *EventServiceImpl) CreateTodo(ctx context.Context, event Event) (Event, error) {
	event.Type = TypeTask
	return s.create(ctx, event)
}

func (s *EventServiceImpl) create(ctx context.Context, event Event) (Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := normalize(&event); err != nil {
		return Event{}, err
	}

	if event.GroupId == uuid.Nil {
		current, err := s.scopes.Current(ctx)
		if err != nil {
			return Event{}, err
		}
		if current.IsPersonalOverview() {
			return Event{}, ErrGroupRequired
		}
		event.GroupId = *current.ActiveGroupID
	}
	if err := s.requireMember(ctx, event.GroupId, userId, group.ErrNotAMember); err != nil {
		return Event{}, err
	}
	if event.AssigneeId != nil {
		if err := s.requireMember(ctx, event.GroupId, *event.AssigneeId, ErrAssigneeNotMember); err != nil {
			return Event{}, err
		}
	}

	event.CreatedBy = userId
	created, err := s.repo.Insert(ctx, event)
	if err != nil {
		return Event{}, fmt.Errorf("failed to create event: %w", err)
	}
	s.publish(ctx, created, event_bus.OpCreated)
	return created, nil
}

func (s *EventServiceImpl) UpdateEvent(ctx context.Context, id uuid.UUID, update Update) (Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current user: %w", err)
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if !existing.IsEditableBy(userId) {
		return Event{}, ErrNotAllowed
	}

	changed := existing
	if update.Title != nil {
		changed.Title = *update.Title
	}
	if update.Description != nil {
		changed.Description = update.Description
	}
	if update.Date != nil {
		changed.Date = *update.Date
	}
	if update.Time != nil {
		changed.Time = update.Time
	}
	if update.Type != nil {
		changed.Type = *update.Type
	}
	if update.Category != nil {
		changed.Category = update.Category
	}
	if update.ClearAssignee {
		changed.AssigneeId = nil
		changed.Assignee = nil
	} else if update.AssigneeId != nil && (existing.AssigneeId == nil || *existing.AssigneeId != *update.AssigneeId) {
		if err := s.requireMember(ctx, existing.GroupId, *update.AssigneeId, ErrAssigneeNotMember); err != nil {
			return Event{}, err
		}
		changed.AssigneeId = update.AssigneeId
		changed.Assignee = nil
	}
	if err := normalize(&changed); err != nil {
		return Event{}, err
	}

	updated, err := s.repo.Update(ctx, changed)
	if err != nil {
		return Event{}, fmt.Errorf("failed to update event: %w", err)
	}
	s.publish(ctx, updated, event_bus.OpUpdated)
	return updated, nil
}

func (s *EventServiceImpl) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !existing.IsEditableBy(userId) {
		return ErrNotAllowed
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	s.publish(ctx, existing, event_bus.OpDeleted)
	return nil
}

func (s *EventServiceImpl) requireMember(ctx context.Context, groupId uuid.UUID, userId uuid.UUID, notMember error) error {
	isMember, err := s.groups.IsMember(ctx, groupId, userId)
	if err != nil {
		return err
	}
	if !isMember {
		return notMember
	}
	return nil
}

func (s *EventServiceImpl) publish(ctx context.Context, e Event, op event_bus.ChangeOp) {
	if s.bus == nil {
		return
	}
	err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.EventChangedType, event_bus.EventChanged{
		GroupID: e.GroupId,
		EventID: e.Id,
		Op:      op,
	}))
	if err != nil {
		log.Warnf("publishing %s failed: %v", event_bus.EventChangedType, err)
	}
}

func normalize(event *Event) error {
	event.Title = strings.TrimSpace(event.Title)
	if event.Title == "" {
		return ErrTitleRequired
	}
	if event.Date.IsZero() {
		return ErrDateRequired
	}
	if !event.Type.Valid() {
		return ErrInvalidType
	}
	event.Description = emptyToNil(event.Description)
	event.Category = emptyToNil(event.Category)
	event.Time = emptyToNil(event.Time)
	if event.Time != nil {
		_, errShort := time.Parse("15:04", *event.Time)
		_, errLong := time.Parse(time.TimeOnly, *event.Time)
		if errShort != nil && errLong != nil {
			return ErrInvalidTime
		}
	}
	return nil
}

func emptyToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
