package invitation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/famcal/famcal/pkg/group"
	"github.com/google/uuid"
)

// RepositoryStub keeps invitations in memory. Accepting adds the member to the backing group stub.
type RepositoryStub struct {
	mu          sync.RWMutex
	invitations map[uuid.UUID]Invitation
	groups      *group.RepositoryStub

	FailCreate error
	FailList   error
}

func NewRepositoryStub(groups *group.RepositoryStub) *RepositoryStub {
	return &RepositoryStub{
		invitations: make(map[uuid.UUID]Invitation),
		groups:      groups,
	}
}

func (r *RepositoryStub) HasPending(ctx context.Context, groupId uuid.UUID, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, i := range r.invitations {
		if i.GroupId == groupId && i.InvitedEmail == email && i.Status == StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *RepositoryStub) Create(ctx context.Context, invitation Invitation) (Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCreate != nil {
		return Invitation{}, r.FailCreate
	}
	for _, i := range r.invitations {
		if i.GroupId == invitation.GroupId && i.InvitedEmail == invitation.InvitedEmail && i.Status == StatusPending {
			return Invitation{}, ErrInvitationExists
		}
	}
	invitation.Id = uuid.New()
	invitation.Status = StatusPending
	invitation.CreatedAt = time.Now().Add(time.Duration(len(r.invitations)) * time.Millisecond)
	invitation.UpdatedAt = invitation.CreatedAt
	r.invitations[invitation.Id] = invitation
	return invitation, nil
}

func (r *RepositoryStub) Get(ctx context.Context, id uuid.UUID) (Invitation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.invitations[id]
	if !ok {
		return Invitation{}, ErrInvitationNotFound
	}
	return r.withGroup(ctx, i), nil
}

func (r *RepositoryStub) ListPendingFor(ctx context.Context, userId uuid.UUID, email string) ([]Invitation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailList != nil {
		return nil, r.FailList
	}
	result := make([]Invitation, 0)
	for _, i := range r.invitations {
		if i.Status == StatusPending && r.addressedTo(i, userId, email) {
			result = append(result, r.withGroup(ctx, i))
		}
	}
	sort.Slice(result, func(a, b int) bool { return result[a].CreatedAt.After(result[b].CreatedAt) })
	return result, nil
}

func (r *RepositoryStub) Accept(ctx context.Context, id uuid.UUID, userId uuid.UUID, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.invitations[id]
	if !ok || i.Status != StatusPending || !r.addressedTo(i, userId, email) {
		return false, nil
	}
	i.Status = StatusAccepted
	i.InvitedUserId = &userId
	i.UpdatedAt = time.Now()
	r.invitations[id] = i
	if r.groups != nil {
		if _, err := r.groups.GetRole(ctx, i.GroupId, userId); err != nil {
			r.groups.AddMember(i.GroupId, userId, group.RoleMember)
		}
	}
	return true, nil
}

func (r *RepositoryStub) Decline(ctx context.Context, id uuid.UUID, userId uuid.UUID, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.invitations[id]
	if !ok || i.Status != StatusPending || !r.addressedTo(i, userId, email) {
		return false, nil
	}
	i.Status = StatusDeclined
	i.UpdatedAt = time.Now()
	r.invitations[id] = i
	return true, nil
}

// Count returns the number of stored invitations regardless of status.
func (r *RepositoryStub) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.invitations)
}

func (r *RepositoryStub) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invitations = make(map[uuid.UUID]Invitation)
	r.FailCreate = nil
	r.FailList = nil
}

func (r *RepositoryStub) addressedTo(i Invitation, userId uuid.UUID, email string) bool {
	return i.InvitedEmail == email || (i.InvitedUserId != nil && *i.InvitedUserId == userId)
}

func (r *RepositoryStub) withGroup(ctx context.Context, i Invitation) Invitation {
	if r.groups == nil {
		return i
	}
	if g, err := r.groups.GetGroup(ctx, i.GroupId); err == nil {
		i.GroupName = g.Name
		i.GroupDescription = g.Description
	}
	return i
}
