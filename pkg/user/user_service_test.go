package user

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var repoStub = NewStubUserRepo()

var service Service

var currentUser = User{
	Id:          uuid.MustParse("6c8f2a8e-0f5c-4d59-9a43-1e5bb6d3f1a1"),
	Email:       "Anna@Example.com ",
	DisplayName: "Anna Andersson",
}

var ctx = WithUser(context.Background(), currentUser)

func setup(t *testing.T) func() {
	service = NewUserService(repoStub)
	return func() {
		repoStub.Cleanup()
	}
}

func TestServiceImpl_EnsureProfile(t *testing.T) {
	t.Run("should create missing profile from session data", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		profile, err := service.EnsureProfile(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, currentUser.Id, profile.Id)
		assert.Equal(t, "anna@example.com", profile.Email)
		assert.Equal(t, "Anna Andersson", profile.FullName)
	})

	t.Run("should fall back to email when display name is empty", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		noName := WithUser(context.Background(), User{Id: uuid.New(), Email: "bo@example.com"})

		// when
		profile, err := service.EnsureProfile(noName)

		// then
		require.NoError(t, err)
		assert.Equal(t, "bo@example.com", profile.FullName)
	})

	t.Run("should return existing profile untouched", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, err := repoStub.CreateProfile(ctx, Profile{Id: currentUser.Id, Email: "anna@example.com", FullName: "Anna A."})
		require.NoError(t, err)

		// when
		profile, err := service.EnsureProfile(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, "Anna A.", profile.FullName)
	})

	t.Run("should report distinct error when profile cannot be created", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		repoStub.CreateErr = errors.New("insert failed")

		// when
		_, err := service.EnsureProfile(ctx)

		// then
		assert.ErrorIs(t, err, ErrProfileNotCreated)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.EnsureProfile(context.Background())

		// then
		assert.ErrorIs(t, err, ErrNoUser)
		assert.Contains(t, err.Error(), "failed to get current user")
	})
}

func TestServiceImpl_GetByEmail(t *testing.T) {
	t.Run("should find profile by normalized email", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, err := service.EnsureProfile(ctx)
		require.NoError(t, err)

		// when
		profile, err := service.GetByEmail(ctx, "  ANNA@example.COM")

		// then
		require.NoError(t, err)
		assert.Equal(t, currentUser.Id, profile.Id)
	})

	t.Run("should return not found for unknown email", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.GetByEmail(ctx, "nobody@example.com")

		// then
		assert.ErrorIs(t, err, ErrProfileNotFound)
	})
}

func TestServiceImpl_UpdateFullName(t *testing.T) {
	t.Run("should update trimmed full name", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		profile, err := service.UpdateFullName(ctx, "  Anna Svensson ")

		// then
		require.NoError(t, err)
		assert.Equal(t, "Anna Svensson", profile.FullName)
	})

	t.Run("should reject empty full name", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.UpdateFullName(ctx, "   ")

		// then
		assert.ErrorIs(t, err, ErrFullNameRequired)
	})
}
