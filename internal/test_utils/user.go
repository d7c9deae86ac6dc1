package test_utils

import (
	"context"
	"strings"

	"github.com/famcal/famcal/pkg/user"
	"github.com/google/uuid"
)

// NewTestUser returns a signed-in user named name with the address <name>@example.com.
func NewTestUser(name string) user.User {
	return user.User{
		Id:          uuid.New(),
		Email:       strings.ToLower(name) + "@example.com",
		DisplayName: name,
	}
}

// ContextFor returns a background context carrying u as the current user.
func ContextFor(u user.User) context.Context {
	return user.WithUser(context.Background(), u)
}
