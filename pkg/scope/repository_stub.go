package scope

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type RepositoryStub struct {
	mu         sync.RWMutex
	selections map[uuid.UUID]*uuid.UUID // userId -> groupId

	FailFind error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{selections: make(map[uuid.UUID]*uuid.UUID)}
}

func (r *RepositoryStub) FindSelection(ctx context.Context, userId uuid.UUID) (*uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailFind != nil {
		return nil, r.FailFind
	}
	return r.selections[userId], nil
}

func (r *RepositoryStub) ReplaceSelection(ctx context.Context, userId uuid.UUID, groupId *uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selections[userId] = groupId
	return nil
}

func (r *RepositoryStub) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selections = make(map[uuid.UUID]*uuid.UUID)
	r.FailFind = nil
}
