package group

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/famcal/famcal/internal/event_bus"
	"github.com/famcal/famcal/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrGroupNameRequired = errors.New("group name is required")
var ErrGroupNotCreated = errors.New("could not create group")
var ErrMembershipNotCreated = errors.New("could not add the creator as group admin")
var ErrGroupNotDeleted = errors.New("group could not be deleted")

// ProfileEnsurer creates the current user's profile when it is missing.
type ProfileEnsurer interface {
	EnsureProfile(ctx context.Context) (user.Profile, error)
}

type Service interface {
	// FetchGroups never fails: errors are logged and an empty list is returned.
	FetchGroups(ctx context.Context) []Group
	CreateGroup(ctx context.Context, name string, description string) (Group, error)
	DeleteGroup(ctx context.Context, groupId uuid.UUID) error
	GetMembers(ctx context.Context, groupId uuid.UUID) ([]Member, error)
	GetGroup(ctx context.Context, groupId uuid.UUID) (Group, error)
	IsMember(ctx context.Context, groupId uuid.UUID, userId uuid.UUID) (bool, error)
	GroupIDsForUser(ctx context.Context, userId uuid.UUID) ([]uuid.UUID, error)
	MemberIDs(ctx context.Context, groupId uuid.UUID) ([]uuid.UUID, error)
}

type ServiceImpl struct {
	repo     Repository
	profiles ProfileEnsurer
	bus      *event_bus.EventBus
}

func NewService(repo Repository, profiles ProfileEnsurer, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{
		repo:     repo,
		profiles: profiles,
		bus:      bus,
	}
}

func (s *ServiceImpl) FetchGroups(ctx context.Context) []Group {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return []Group{}
	}
	groups, err := s.repo.ListForUser(ctx, userId)
	if err != nil {
		log.Errorf("failed to fetch groups for user %s: %v", userId, err)
		return []Group{}
	}
	return groups
}

func (s *ServiceImpl) CreateGroup(ctx context.Context, name string, description string) (Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Group{}, ErrGroupNameRequired
	}
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Group{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if _, err := s.profiles.EnsureProfile(ctx); err != nil {
		return Group{}, err
	}

	var desc *string
	if trimmed := strings.TrimSpace(description); trimmed != "" {
		desc = &trimmed
	}

	created, err := s.repo.InsertGroup(ctx, Group{
		Name:        name,
		Description: desc,
		CreatedBy:   userId,
	})
	if err != nil {
		return Group{}, fmt.Errorf("%w: %w", ErrGroupNotCreated, err)
	}

	if err := s.repo.InsertMember(ctx, created.Id, userId, RoleAdmin); err != nil {
		if delErr := s.repo.DeleteGroupRow(ctx, created.Id); delErr != nil {
			log.Errorf("failed to remove group %s after membership error: %v", created.Id, delErr)
		}
		return Group{}, fmt.Errorf("%w: %w", ErrMembershipNotCreated, err)
	}
	created.MemberCount = 1

	s.publish(ctx, event_bus.GroupChangedType, event_bus.GroupChanged{
		GroupID:   created.Id,
		Op:        event_bus.OpCreated,
		MemberIDs: []uuid.UUID{userId},
	})
	return created, nil
}

func (s *ServiceImpl) DeleteGroup(ctx context.Context, groupId uuid.UUID) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	memberIds, err := s.repo.MemberIDs(ctx, groupId)
	if err != nil {
		log.Warnf("could not load members of group %s before delete: %v", groupId, err)
	}

	deleted, err := s.repo.DeleteGroup(ctx, groupId, userId)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if !deleted {
		return ErrGroupNotDeleted
	}

	s.publish(ctx, event_bus.GroupChangedType, event_bus.GroupChanged{
		GroupID:   groupId,
		Op:        event_bus.OpDeleted,
		MemberIDs: memberIds,
	})
	return nil
}

func (s *ServiceImpl) GetMembers(ctx context.Context, groupId uuid.UUID) ([]Member, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if _, err := s.repo.GetRole(ctx, groupId, userId); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, groupId)
}

func (s *ServiceImpl) GetGroup(ctx context.Context, groupId uuid.UUID) (Group, error) {
	return s.repo.GetGroup(ctx, groupId)
}

func (s *ServiceImpl) IsMember(ctx context.Context, groupId uuid.UUID, userId uuid.UUID) (bool, error) {
	_, err := s.repo.GetRole(ctx, groupId, userId)
	if errors.Is(err, ErrNotAMember) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *ServiceImpl) GroupIDsForUser(ctx context.Context, userId uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.GroupIDsForUser(ctx, userId)
}

func (s *ServiceImpl) MemberIDs(ctx context.Context, groupId uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.MemberIDs(ctx, groupId)
}

func (s *ServiceImpl) publish(ctx context.Context, eventType event_bus.EventType, data any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(event_bus.NewEvent(ctx, eventType, data)); err != nil {
		log.Warnf("publishing %s failed: %v", eventType, err)
	}
}
