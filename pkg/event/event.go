package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeBooking Type = "booking"
	TypeTask    Type = "task"
)

const DateLayout = "2006-01-02"

func (t Type) Valid() bool {
	return t == TypeBooking || t == TypeTask
}

type Assignee struct {
	FullName string
	Email    string
}

// Event is a calendar entry of a group. A todo is an Event of TypeTask.
type Event struct {
	Id          uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Title       string
	Description *string
	Date        time.Time
	Time        *string
	Type        Type
	CreatedBy   uuid.UUID
	AssigneeId  *uuid.UUID
	GroupId     uuid.UUID
	Category    *string
	Assignee    *Assignee
}

// Update holds the fields to change. Nil fields are left untouched. The group cannot be changed.
type Update struct {
	Title       *string
	Description *string
	Date        *time.Time
	Time        *string
	Type        *Type
	AssigneeId  *uuid.UUID
	Category    *string

	// ClearAssignee removes the assignee and takes precedence over AssigneeId.
	ClearAssignee bool
}

// Filter selects events of the given groups. An empty GroupIDs matches nothing.
type Filter struct {
	GroupIDs  []uuid.UUID
	EventType *Type
}

func (e Event) IsEditableBy(userId uuid.UUID) bool {
	return e.CreatedBy == userId || (e.AssigneeId != nil && *e.AssigneeId == userId)
}
