//go:build integration

package invitation

import (
	"context"
	"os"
	"testing"

	"github.com/famcal/famcal/internal/event_bus"
	"github.com/famcal/famcal/internal/test_utils"
	"github.com/famcal/famcal/pkg/group"
	"github.com/famcal/famcal/pkg/user"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var pgContainer *postgres.PostgresContainer
var openDb func() *pgxpool.Pool

func TestMain(m *testing.M) {
	pgContainer, openDb = test_utils.TestWithDB()
	code := m.Run()
	if err := testcontainers.TerminateContainer(pgContainer); err != nil {
		log.Errorf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

type postgresServices struct {
	groups      *group.ServiceImpl
	invitations *ServiceImpl
	repo        *RepositoryImpl
}

func setupPostgres(t *testing.T) postgresServices {
	ctx := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})

	bus := event_bus.NewEventBus()
	profiles := user.NewUserService(user.NewUserRepo(db))
	groups := group.NewService(group.NewRepository(db), profiles, bus)
	repo := NewRepository(db)
	return postgresServices{
		groups:      groups,
		invitations: NewService(repo, groups, profiles, &notifierStub{}, bus, "http://localhost:5173"),
		repo:        repo,
	}
}

func TestInvitationFlow_Postgres(t *testing.T) {
	t.Run("should accept invitation and join the group", func(t *testing.T) {
		// given
		s := setupPostgres(t)
		owner := test_utils.NewTestUser("Owner")
		guest := test_utils.NewTestUser("Guest")
		ownerCtx, guestCtx := test_utils.ContextFor(owner), test_utils.ContextFor(guest)
		family, err := s.groups.CreateGroup(ownerCtx, "Family", "our home")
		require.NoError(t, err)

		// when
		result, err := s.invitations.Invite(ownerCtx, family.Id, "GUEST@example.com")
		require.NoError(t, err)
		pending := s.invitations.ListPending(guestCtx)
		err = s.invitations.Accept(guestCtx, result.InvitationId)

		// then
		require.NoError(t, err)
		assert.False(t, result.UserExists)
		require.Len(t, pending, 1)
		assert.Equal(t, "Family", pending[0].GroupName)
		assert.Equal(t, "our home", *pending[0].GroupDescription)
		assert.Equal(t, "Owner", pending[0].InviterName)

		groups := s.groups.FetchGroups(guestCtx)
		require.Len(t, groups, 1)
		assert.Equal(t, family.Id, groups[0].Id)
		assert.Empty(t, s.invitations.ListPending(guestCtx))

		_, err = s.invitations.Invite(ownerCtx, family.Id, "guest@example.com")
		assert.ErrorIs(t, err, ErrAlreadyMember)
	})

	t.Run("should reject second pending invitation", func(t *testing.T) {
		// given
		s := setupPostgres(t)
		owner := test_utils.NewTestUser("Owner")
		ownerCtx := test_utils.ContextFor(owner)
		family, err := s.groups.CreateGroup(ownerCtx, "Family", "")
		require.NoError(t, err)
		_, err = s.invitations.Invite(ownerCtx, family.Id, "guest@example.com")
		require.NoError(t, err)

		// when
		_, err = s.repo.Create(ownerCtx, Invitation{GroupId: family.Id, InvitedEmail: "guest@example.com", InvitedBy: owner.Id})

		// then
		assert.ErrorIs(t, err, ErrInvitationExists)
	})

	t.Run("should not let another user accept", func(t *testing.T) {
		// given
		s := setupPostgres(t)
		owner := test_utils.NewTestUser("Owner")
		stranger := test_utils.NewTestUser("Stranger")
		ownerCtx, strangerCtx := test_utils.ContextFor(owner), test_utils.ContextFor(stranger)
		family, err := s.groups.CreateGroup(ownerCtx, "Family", "")
		require.NoError(t, err)
		result, err := s.invitations.Invite(ownerCtx, family.Id, "guest@example.com")
		require.NoError(t, err)

		// when
		err = s.invitations.Accept(strangerCtx, result.InvitationId)

		// then
		assert.ErrorIs(t, err, ErrInvitationNotAccepted)
		assert.Empty(t, s.groups.FetchGroups(strangerCtx))
	})

	t.Run("should decline and drop from pending", func(t *testing.T) {
		// given
		s := setupPostgres(t)
		owner := test_utils.NewTestUser("Owner")
		guest := test_utils.NewTestUser("Guest")
		ownerCtx, guestCtx := test_utils.ContextFor(owner), test_utils.ContextFor(guest)
		family, err := s.groups.CreateGroup(ownerCtx, "Family", "")
		require.NoError(t, err)
		result, err := s.invitations.Invite(ownerCtx, family.Id, "guest@example.com")
		require.NoError(t, err)

		// when
		err = s.invitations.Decline(guestCtx, result.InvitationId)

		// then
		require.NoError(t, err)
		assert.Empty(t, s.invitations.ListPending(guestCtx))
		declined, err := s.repo.Get(ownerCtx, result.InvitationId)
		require.NoError(t, err)
		assert.Equal(t, StatusDeclined, declined.Status)
	})
}
