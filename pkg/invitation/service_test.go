package invitation

import (
	"context"
	"errors"
	"testing"

	"github.com/famcal/famcal/internal/event_bus"
	"github.com/famcal/famcal/pkg/group"
	"github.com/famcal/famcal/pkg/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentInvite struct {
	To         string
	InviteLink string
	GroupName  string
}

type notifierStub struct {
	sent []sentInvite
	err  error
}

func (n *notifierStub) SendInvite(ctx context.Context, to string, inviteLink string, groupName string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentInvite{To: to, InviteLink: inviteLink, GroupName: groupName})
	return nil
}

var anna = user.User{Id: uuid.New(), Email: "anna@example.com", DisplayName: "Anna Andersson"}
var bo = user.User{Id: uuid.New(), Email: "b@example.com", DisplayName: "Bo"}

var annaCtx = user.WithUser(context.Background(), anna)
var boCtx = user.WithUser(context.Background(), bo)

var groupRepoStub = group.NewRepositoryStub()
var profileRepoStub = user.NewStubUserRepo()
var repoStub = NewRepositoryStub(groupRepoStub)

var notifier *notifierStub
var groupService *group.ServiceImpl
var service *ServiceImpl
var published []event_bus.InvitationChanged

func setup(t *testing.T) func() {
	bus := event_bus.NewEventBus()
	published = nil
	event_bus.SubscribeTyped[event_bus.InvitationChanged](bus, event_bus.InvitationChangedType, func(e event_bus.EventT[event_bus.InvitationChanged]) error {
		published = append(published, e.Data)
		return nil
	})
	notifier = &notifierStub{}
	profiles := user.NewUserService(profileRepoStub)
	groupService = group.NewService(groupRepoStub, profiles, bus)
	service = NewService(repoStub, groupService, profiles, notifier, bus, "http://localhost:5173/")
	return func() {
		repoStub.Cleanup()
		groupRepoStub.Cleanup()
		profileRepoStub.Cleanup()
	}
}

func createFamily(t *testing.T) group.Group {
	t.Helper()
	g, err := groupService.CreateGroup(annaCtx, "Andersson Family", "")
	require.NoError(t, err)
	return g
}

func registerBo(t *testing.T) {
	t.Helper()
	_, err := user.NewUserService(profileRepoStub).EnsureProfile(boCtx)
	require.NoError(t, err)
}

func TestServiceImpl_Invite(t *testing.T) {
	t.Run("should invite unknown email and send link", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		family := createFamily(t)

		// when
		result, err := service.Invite(annaCtx, family.Id, "  B@Example.com ")

		// then
		require.NoError(t, err)
		assert.False(t, result.UserExists)
		assert.NotEqual(t, uuid.Nil, result.InvitationId)
		assert.Equal(t, "http://localhost:5173/auth?invite="+result.InvitationId.String(), result.InviteLink)
		assert.True(t, result.EmailSent)
		assert.Empty(t, result.EmailWarning)

		require.Len(t, notifier.sent, 1)
		assert.Equal(t, "b@example.com", notifier.sent[0].To)
		assert.Contains(t, notifier.sent[0].InviteLink, "invite="+result.InvitationId.String())
		assert.Equal(t, "Andersson Family", notifier.sent[0].GroupName)

		require.Len(t, published, 1)
		assert.False(t, published[0].InvitedUserID.Valid)
	})

	t.Run("should invite existing user without email", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		family := createFamily(t)
		registerBo(t)

		// when
		result, err := service.Invite(annaCtx, family.Id, "b@example.com")

		// then
		require.NoError(t, err)
		assert.True(t, result.UserExists)
		assert.False(t, result.EmailSent)
		assert.Empty(t, notifier.sent)
		require.Len(t, published, 1)
		assert.Equal(t, bo.Id, published[0].InvitedUserID.UUID)
	})

	t.Run("should reject second pending invitation", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		family := createFamily(t)
		_, err := service.Invite(annaCtx, family.Id, "b@example.com")
		require.NoError(t, err)

		// when
		_, err = service.Invite(annaCtx, family.Id, "B@example.com")

		// then
		assert.ErrorIs(t, err, ErrInvitationExists)
		assert.Equal(t, 1, repoStub.Count())
		assert.Len(t, notifier.sent, 1)
	})

	t.Run("should reject existing member", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		family := createFamily(t)
		registerBo(t)
		groupRepoStub.AddMember(family.Id, bo.Id, group.RoleMember)

		// when
		_, err := service.Invite(annaCtx, family.Id, "b@example.com")

		// then
		assert.ErrorIs(t, err, ErrAlreadyMember)
		assert.Equal(t, 0, repoStub.Count())
	})

	t.Run("should keep invitation when email fails", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		family := createFamily(t)
		notifier.err = errors.New("provider down")

		// when
		result, err := service.Invite(annaCtx, family.Id, "b@example.com")

		// then
		require.NoError(t, err)
		assert.False(t, result.EmailSent)
		assert.NotEmpty(t, result.EmailWarning)
		assert.NotEmpty(t, result.InviteLink)
		assert.Equal(t, 1, repoStub.Count())
	})

	t.Run("should skip email when insert fails", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		family := createFamily(t)
		repoStub.FailCreate = errors.New("insert failed")

		// when
		_, err := service.Invite(annaCtx, family.Id, "b@example.com")

		// then
		assert.ErrorIs(t, err, ErrInvitationNotCreated)
		assert.Empty(t, notifier.sent)
		assert.Empty(t, published)
	})

	t.Run("should reject invalid email", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		family := createFamily(t)

		// when
		_, err := service.Invite(annaCtx, family.Id, "   ")

		// then
		assert.ErrorIs(t, err, ErrInvalidEmail)
	})

	t.Run("should reject unknown group", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Invite(annaCtx, uuid.New(), "b@example.com")

		// then
		assert.ErrorIs(t, err, group.ErrGroupNotFound)
	})

	t.Run("should reject inviter outside the group", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		family := createFamily(t)

		// when
		_, err := service.Invite(boCtx, family.Id, "c@example.com")

		// then
		assert.ErrorIs(t, err, group.ErrNotAMember)
	})
}

func TestServiceImpl_Accept(t *testing.T) {
	t.Run("should make invitee a member", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		family := createFamily(t)
		result, err := service.Invite(annaCtx, family.Id, "b@example.com")
		require.NoError(t, err)

		// when
		err = service.Accept(boCtx, result.InvitationId)

		// then
		require.NoError(t, err)
		groups := groupService.FetchGroups(boCtx)
		require.Len(t, groups, 1)
		assert.Equal(t, "Andersson Family", groups[0].Name)
		role, err := groupRepoStub.GetRole(boCtx, family.Id, bo.Id)
		require.NoError(t, err)
		assert.Equal(t, group.RoleMember, role)

		accepted, err := repoStub.Get(boCtx, result.InvitationId)
		require.NoError(t, err)
		assert.Equal(t, StatusAccepted, accepted.Status)
		assert.Empty(t, service.ListPending(boCtx))

		require.Len(t, published, 2)
		assert.Equal(t, string(StatusAccepted), published[1].Status)
		assert.Equal(t, family.Id, published[1].GroupID)
	})

	t.Run("should not accept twice", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		family := createFamily(t)
		result, err := service.Invite(annaCtx, family.Id, "b@example.com")
		require.NoError(t, err)
		require.NoError(t, service.Accept(boCtx, result.InvitationId))

		// when
		err = service.Accept(boCtx, result.InvitationId)

		// then
		assert.ErrorIs(t, err, ErrInvitationNotAccepted)
	})

	t.Run("should match session email when profile email is outdated", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		oldCtx := user.WithUser(context.Background(), user.User{Id: bo.Id, Email: "old-bo@example.com", DisplayName: "Bo"})
		_, err := user.NewUserService(profileRepoStub).EnsureProfile(oldCtx)
		require.NoError(t, err)
		family := createFamily(t)
		result, err := service.Invite(annaCtx, family.Id, "b@example.com")
		require.NoError(t, err)

		// when
		err = service.Accept(boCtx, result.InvitationId)

		// then
		require.NoError(t, err)
		role, err := groupRepoStub.GetRole(boCtx, family.Id, bo.Id)
		require.NoError(t, err)
		assert.Equal(t, group.RoleMember, role)
	})

	t.Run("should not accept somebody else's invitation", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		family := createFamily(t)
		result, err := service.Invite(annaCtx, family.Id, "c@example.com")
		require.NoError(t, err)

		// when
		err = service.Accept(boCtx, result.InvitationId)

		// then
		assert.ErrorIs(t, err, ErrInvitationNotAccepted)
		assert.Empty(t, groupService.FetchGroups(boCtx))
	})
}

func TestServiceImpl_Decline(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	// given
	family := createFamily(t)
	result, err := service.Invite(annaCtx, family.Id, "b@example.com")
	require.NoError(t, err)

	// when
	err = service.Decline(boCtx, result.InvitationId)

	// then
	require.NoError(t, err)
	assert.Empty(t, groupService.FetchGroups(boCtx))
	assert.Empty(t, service.ListPending(boCtx))
	assert.ErrorIs(t, service.Accept(boCtx, result.InvitationId), ErrInvitationNotAccepted)
}

func TestServiceImpl_ListPending(t *testing.T) {
	t.Run("should list newest first with group name", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		family := createFamily(t)
		other, err := groupService.CreateGroup(annaCtx, "Neighbours", "")
		require.NoError(t, err)
		_, err = service.Invite(annaCtx, family.Id, "b@example.com")
		require.NoError(t, err)
		_, err = service.Invite(annaCtx, other.Id, "b@example.com")
		require.NoError(t, err)

		// when
		pending := service.ListPending(boCtx)

		// then
		require.Len(t, pending, 2)
		assert.Equal(t, "Neighbours", pending[0].GroupName)
		assert.Equal(t, "Andersson Family", pending[1].GroupName)
	})

	t.Run("should find invitation by user id after email change", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		family := createFamily(t)
		registerBo(t)
		_, err := service.Invite(annaCtx, family.Id, "b@example.com")
		require.NoError(t, err)
		renamed := user.WithUser(context.Background(), user.User{Id: bo.Id, Email: "bo.new@example.com"})

		// when
		pending := service.ListPending(renamed)

		// then
		assert.Len(t, pending, 1)
	})

	t.Run("should return empty list on storage error", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		repoStub.FailList = errors.New("connection refused")

		// when
		pending := service.ListPending(boCtx)

		// then
		assert.NotNil(t, pending)
		assert.Empty(t, pending)
	})
}
