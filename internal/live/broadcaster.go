package live

import (
	"context"

	"github.com/famcal/famcal/internal/event_bus"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	eventQueries      = []string{"events", "todos"}
	groupQueries      = []string{"groups"}
	invitationQueries = []string{"groups", "invitations"}
)

type MemberLister interface {
	MemberIDs(ctx context.Context, groupId uuid.UUID) ([]uuid.UUID, error)
}

// Broadcaster turns bus events into invalidation messages for the affected users.
type Broadcaster struct {
	hub     *Hub
	members MemberLister
}

func NewBroadcaster(hub *Hub, members MemberLister) *Broadcaster {
	return &Broadcaster{hub: hub, members: members}
}

func (b *Broadcaster) Subscribe(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped[event_bus.EventChanged](bus, event_bus.EventChangedType, b.onEventChanged)
	event_bus.SubscribeTyped[event_bus.GroupChanged](bus, event_bus.GroupChangedType, b.onGroupChanged)
	event_bus.SubscribeTyped[event_bus.InvitationChanged](bus, event_bus.InvitationChangedType, b.onInvitationChanged)
}

func (b *Broadcaster) onEventChanged(e event_bus.EventT[event_bus.EventChanged]) error {
	memberIds, err := b.members.MemberIDs(e.Context(), e.Data.GroupID)
	if err != nil {
		log.Errorf("could not resolve members of group %s: %v", e.Data.GroupID, err)
		return err
	}
	groupId := e.Data.GroupID
	b.hub.SendToUsers(memberIds, Message{Type: TypeInvalidate, QueryKeys: eventQueries, GroupID: &groupId})
	return nil
}

func (b *Broadcaster) onGroupChanged(e event_bus.EventT[event_bus.GroupChanged]) error {
	groupId := e.Data.GroupID
	b.hub.SendToUsers(e.Data.MemberIDs, Message{Type: TypeInvalidate, QueryKeys: groupQueries, GroupID: &groupId})
	return nil
}

func (b *Broadcaster) onInvitationChanged(e event_bus.EventT[event_bus.InvitationChanged]) error {
	recipients := []uuid.UUID{e.Data.ActorID}
	if e.Data.InvitedUserID.Valid {
		recipients = append(recipients, e.Data.InvitedUserID.UUID)
	}
	memberIds, err := b.members.MemberIDs(e.Context(), e.Data.GroupID)
	if err != nil {
		log.Warnf("could not resolve members of group %s: %v", e.Data.GroupID, err)
	}
	recipients = append(recipients, memberIds...)

	groupId := e.Data.GroupID
	b.hub.SendToUsers(unique(recipients), Message{Type: TypeInvalidate, QueryKeys: invitationQueries, GroupID: &groupId})
	return nil
}

func unique(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	result := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}
