package group

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// UnknownMemberName is shown for members without a profile name.
const UnknownMemberName = "Unknown user"

type Group struct {
	Id          uuid.UUID
	Name        string
	Description *string
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	MemberCount int
}

type Member struct {
	UserId   uuid.UUID
	FullName string
	Email    string
	Role     Role
	JoinedAt time.Time
}
