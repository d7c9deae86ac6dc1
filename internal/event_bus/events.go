package event_bus

import "github.com/google/uuid"

const (
	EventChangedType      EventType = "event.changed"
	GroupChangedType      EventType = "group.changed"
	InvitationChangedType EventType = "invitation.changed"
)

type ChangeOp string

const (
	OpCreated ChangeOp = "created"
	OpUpdated ChangeOp = "updated"
	OpDeleted ChangeOp = "deleted"
)

// EventChanged is published after an event or todo row was written.
type EventChanged struct {
	GroupID uuid.UUID
	EventID uuid.UUID
	Op      ChangeOp
}

// GroupChanged is published after a group was created or deleted. MemberIDs holds the users
// affected, captured before a delete removes the memberships.
type GroupChanged struct {
	GroupID   uuid.UUID
	Op        ChangeOp
	MemberIDs []uuid.UUID
}

// InvitationChanged is published after an invitation was created, accepted or declined.
type InvitationChanged struct {
	InvitationID  uuid.UUID
	GroupID       uuid.UUID
	InvitedUserID uuid.NullUUID
	Status        string
	ActorID       uuid.UUID
}
