package scope

import (
	"context"
	"fmt"

	"github.com/famcal/famcal/pkg/group"
	"github.com/famcal/famcal/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type MembershipChecker interface {
	IsMember(ctx context.Context, groupId uuid.UUID, userId uuid.UUID) (bool, error)
}

type ProfileEnsurer interface {
	EnsureProfile(ctx context.Context) (user.Profile, error)
}

type Service interface {
	Current(ctx context.Context) (Scope, error)
	// Select is the only way to change the active group. A nil groupId selects the personal overview.
	Select(ctx context.Context, groupId *uuid.UUID) (Scope, error)
}

type ServiceImpl struct {
	repo     Repository
	groups   MembershipChecker
	profiles ProfileEnsurer
}

func NewService(repo Repository, groups MembershipChecker, profiles ProfileEnsurer) *ServiceImpl {
	return &ServiceImpl{repo: repo, groups: groups, profiles: profiles}
}

func (s *ServiceImpl) Current(ctx context.Context) (Scope, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Scope{}, fmt.Errorf("failed to get current user: %w", err)
	}
	groupId, err := s.repo.FindSelection(ctx, userId)
	if err != nil {
		return Scope{}, err
	}
	if groupId == nil {
		return PersonalOverview(), nil
	}

	isMember, err := s.groups.IsMember(ctx, *groupId, userId)
	if err != nil {
		return Scope{}, err
	}
	if !isMember {
		log.Debugf("user %s is no longer a member of selected group %s, using personal overview", userId, *groupId)
		return PersonalOverview(), nil
	}
	return Group(*groupId), nil
}

func (s *ServiceImpl) Select(ctx context.Context, groupId *uuid.UUID) (Scope, error) {
	profile, err := s.profiles.EnsureProfile(ctx)
	if err != nil {
		return Scope{}, err
	}
	if groupId != nil {
		isMember, err := s.groups.IsMember(ctx, *groupId, profile.Id)
		if err != nil {
			return Scope{}, err
		}
		if !isMember {
			return Scope{}, group.ErrNotAMember
		}
	}
	if err := s.repo.ReplaceSelection(ctx, profile.Id, groupId); err != nil {
		return Scope{}, err
	}
	return Scope{ActiveGroupID: groupId}, nil
}
