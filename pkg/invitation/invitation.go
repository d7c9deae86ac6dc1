package invitation

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)

type Invitation struct {
	Id            uuid.UUID
	GroupId       uuid.UUID
	InvitedUserId *uuid.UUID
	InvitedEmail  string
	InvitedBy     uuid.UUID
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// display joins
	GroupName        string
	GroupDescription *string
	InviterName      string
	InviterEmail     string
}

// InviteResult describes a created invitation. InviteLink is always set so the caller can share it
// manually when EmailWarning is not empty.
type InviteResult struct {
	UserExists   bool
	InvitationId uuid.UUID
	InviteLink   string
	Message      string
	EmailSent    bool
	EmailWarning string
}
