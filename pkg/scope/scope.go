package scope

import "github.com/google/uuid"

// Scope is the group the user is looking at. A nil ActiveGroupID means the personal overview
// across all groups of the user.
type Scope struct {
	ActiveGroupID *uuid.UUID
}

func (s Scope) IsPersonalOverview() bool {
	return s.ActiveGroupID == nil
}

func PersonalOverview() Scope {
	return Scope{}
}

func Group(groupId uuid.UUID) Scope {
	return Scope{ActiveGroupID: &groupId}
}
