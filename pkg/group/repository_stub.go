package group

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type RepositoryStub struct {
	mu      sync.RWMutex
	groups  map[uuid.UUID]Group
	members map[uuid.UUID]map[uuid.UUID]Member // groupId -> userId -> member

	FailInsertGroup  error
	FailInsertMember error
	FailList         error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		groups:  make(map[uuid.UUID]Group),
		members: make(map[uuid.UUID]map[uuid.UUID]Member),
	}
}

func (r *RepositoryStub) ListForUser(ctx context.Context, userId uuid.UUID) ([]Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailList != nil {
		return nil, r.FailList
	}

	result := make([]Group, 0, len(r.groups))
	for id, g := range r.groups {
		_, isMember := r.members[id][userId]
		if g.CreatedBy == userId || isMember {
			g.MemberCount = len(r.members[id])
			result = append(result, g)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *RepositoryStub) GetGroup(ctx context.Context, groupId uuid.UUID) (Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[groupId]
	if !ok {
		return Group{}, ErrGroupNotFound
	}
	g.MemberCount = len(r.members[groupId])
	return g, nil
}

func (r *RepositoryStub) InsertGroup(ctx context.Context, group Group) (Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailInsertGroup != nil {
		return Group{}, r.FailInsertGroup
	}
	group.Id = uuid.New()
	group.CreatedAt = time.Now().Add(time.Duration(len(r.groups)) * time.Millisecond)
	r.groups[group.Id] = group
	return group, nil
}

func (r *RepositoryStub) InsertMember(ctx context.Context, groupId uuid.UUID, userId uuid.UUID, role Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailInsertMember != nil {
		return r.FailInsertMember
	}
	if _, ok := r.groups[groupId]; !ok {
		return ErrGroupNotFound
	}
	if r.members[groupId] == nil {
		r.members[groupId] = make(map[uuid.UUID]Member)
	}
	if _, exists := r.members[groupId][userId]; exists {
		return errors.New("duplicate key value violates unique constraint")
	}
	r.members[groupId][userId] = Member{UserId: userId, FullName: UnknownMemberName, Role: role, JoinedAt: time.Now()}
	return nil
}

func (r *RepositoryStub) DeleteGroupRow(ctx context.Context, groupId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.groups, groupId)
	return nil
}

func (r *RepositoryStub) DeleteGroup(ctx context.Context, groupId uuid.UUID, userId uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[groupId]
	if !ok || g.CreatedBy != userId {
		return false, nil
	}
	delete(r.groups, groupId)
	delete(r.members, groupId)
	return true, nil
}

func (r *RepositoryStub) ListMembers(ctx context.Context, groupId uuid.UUID) ([]Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Member, 0, len(r.members[groupId]))
	for _, m := range r.members[groupId] {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].JoinedAt.Before(result[j].JoinedAt) })
	return result, nil
}

func (r *RepositoryStub) GetRole(ctx context.Context, groupId uuid.UUID, userId uuid.UUID) (Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[groupId][userId]
	if !ok {
		return "", ErrNotAMember
	}
	return m.Role, nil
}

func (r *RepositoryStub) GroupIDsForUser(ctx context.Context, userId uuid.UUID) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]uuid.UUID, 0)
	for groupId, members := range r.members {
		if _, ok := members[userId]; ok {
			ids = append(ids, groupId)
		}
	}
	return ids, nil
}

func (r *RepositoryStub) MemberIDs(ctx context.Context, groupId uuid.UUID) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(r.members[groupId]))
	for userId := range r.members[groupId] {
		ids = append(ids, userId)
	}
	return ids, nil
}

// AddMember puts userId into groupId without any checks.
func (r *RepositoryStub) AddMember(groupId uuid.UUID, userId uuid.UUID, role Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.members[groupId] == nil {
		r.members[groupId] = make(map[uuid.UUID]Member)
	}
	r.members[groupId][userId] = Member{UserId: userId, FullName: UnknownMemberName, Role: role, JoinedAt: time.Now()}
}

// HasGroup reports whether a group row exists.
func (r *RepositoryStub) HasGroup(groupId uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.groups[groupId]
	return ok
}

func (r *RepositoryStub) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups = make(map[uuid.UUID]Group)
	r.members = make(map[uuid.UUID]map[uuid.UUID]Member)
	r.FailInsertGroup = nil
	r.FailInsertMember = nil
	r.FailList = nil
}
