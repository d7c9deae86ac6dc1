package invitation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/famcal/famcal/internal/event_bus"
	"github.com/famcal/famcal/pkg/group"
	"github.com/famcal/famcal/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidEmail = errors.New("a valid email is required")
var ErrAlreadyMember = errors.New("the user is already a member of the group")
var ErrInvitationNotCreated = errors.New("could not create invitation")
var ErrInvitationNotAccepted = errors.New("the invitation could not be accepted")
var ErrInvitationNotDeclined = errors.New("the invitation could not be declined")

const (
	messageMemberInvited = "The user has been invited to the group"
	messageEmailSent     = "An invitation email has been sent"
	messageEmailFailed   = "The invitation was created but the email could not be sent. Copy the link and send it manually."
)

type GroupReader interface {
	GetGroup(ctx context.Context, groupId uuid.UUID) (group.Group, error)
	IsMember(ctx context.Context, groupId uuid.UUID, userId uuid.UUID) (bool, error)
}

type ProfileLookup interface {
	EnsureProfile(ctx context.Context) (user.Profile, error)
	GetByEmail(ctx context.Context, email string) (user.Profile, error)
}

// Notifier delivers the invitation link to someone without an account.
type Notifier interface {
	SendInvite(ctx context.Context, to string, inviteLink string, groupName string) error
}

type Service interface {
	Invite(ctx context.Context, groupId uuid.UUID, email string) (InviteResult, error)
	Accept(ctx context.Context, invitationId uuid.UUID) error
	Decline(ctx context.Context, invitationId uuid.UUID) error
	// ListPending never fails: errors are logged and an empty list is returned.
	ListPending(ctx context.Context) []Invitation
}

type ServiceImpl struct {
	repo     Repository
	groups   GroupReader
	profiles ProfileLookup
	notifier Notifier
	bus      *event_bus.EventBus
	origin   string
}

func NewService(repo Repository, groups GroupReader, profiles ProfileLookup, notifier Notifier, bus *event_bus.EventBus, origin string) *ServiceImpl {
	return &ServiceImpl{
		repo:     repo,
		groups:   groups,
		profiles: profiles,
		notifier: notifier,
		bus:      bus,
		origin:   strings.TrimRight(origin, "/"),
	}
}

// InviteLink is the deep link the sign-in page uses to accept an invitation.
func (s *ServiceImpl) InviteLink(invitationId uuid.UUID) string {
	return fmt.Sprintf("%s/auth?invite=%s", s.origin, invitationId)
}

func (s *ServiceImpl) Invite(ctx context.Context, groupId uuid.UUID, email string) (InviteResult, error) {
	email = user.NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return InviteResult{}, ErrInvalidEmail
	}
	inviter, err := s.profiles.EnsureProfile(ctx)
	if err != nil {
		return InviteResult{}, err
	}

	g, err := s.groups.GetGroup(ctx, groupId)
	if err != nil {
		return InviteResult{}, err
	}
	isMember, err := s.groups.IsMember(ctx, groupId, inviter.Id)
	if err != nil {
		return InviteResult{}, err
	}
	if !isMember {
		return InviteResult{}, group.ErrNotAMember
	}

	var invitedUserId *uuid.UUID
	profile, err := s.profiles.GetByEmail(ctx, email)
	switch {
	case err == nil:
		invitedUserId = &profile.Id
	case errors.Is(err, user.ErrProfileNotFound):
	default:
		return InviteResult{}, err
	}
	userExists := invitedUserId != nil

	if userExists {
		alreadyMember, err := s.groups.IsMember(ctx, groupId, *invitedUserId)
		if err != nil {
			return InviteResult{}, err
		}
		if alreadyMember {
			return InviteResult{}, ErrAlreadyMember
		}
	}

	pending, err := s.repo.HasPending(ctx, groupId, email)
	if err != nil {
		return InviteResult{}, fmt.Errorf("%w: %w", ErrInvitationNotCreated, err)
	}
	if pending {
		return InviteResult{}, ErrInvitationExists
	}

	created, err := s.repo.Create(ctx, Invitation{
		GroupId:       groupId,
		InvitedUserId: invitedUserId,
		InvitedEmail:  email,
		InvitedBy:     inviter.Id,
	})
	if errors.Is(err, ErrInvitationExists) {
		return InviteResult{}, err
	}
	if err != nil {
		return InviteResult{}, fmt.Errorf("%w: %w", ErrInvitationNotCreated, err)
	}

	result := InviteResult{
		UserExists:   userExists,
		InvitationId: created.Id,
		InviteLink:   s.InviteLink(created.Id),
		Message:      messageMemberInvited,
	}
	if !userExists {
		if err := s.notifier.SendInvite(ctx, email, result.InviteLink, g.Name); err != nil {
			log.Warnf("invitation %s created but email to %s failed: %v", created.Id, email, err)
			result.EmailWarning = messageEmailFailed
		} else {
			result.EmailSent = true
			result.Message = messageEmailSent
		}
	}

	changed := event_bus.InvitationChanged{
		InvitationID: created.Id,
		GroupID:      groupId,
		Status:       string(StatusPending),
		ActorID:      inviter.Id,
	}
	if invitedUserId != nil {
		changed.InvitedUserID = uuid.NullUUID{UUID: *invitedUserId, Valid: true}
	}
	s.publish(ctx, changed)
	return result, nil
}

func (s *ServiceImpl) Accept(ctx context.Context, invitationId uuid.UUID) error {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	// the membership row references the profile, the stored email may be stale
	profile, err := s.profiles.EnsureProfile(ctx)
	if err != nil {
		return err
	}
	ok, err := s.repo.Accept(ctx, invitationId, profile.Id, user.NormalizeEmail(current.Email))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvitationNotAccepted, err)
	}
	if !ok {
		return ErrInvitationNotAccepted
	}
	s.publishResolved(ctx, invitationId, profile.Id, StatusAccepted)
	return nil
}

func (s *ServiceImpl) Decline(ctx context.Context, invitationId uuid.UUID) error {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	ok, err := s.repo.Decline(ctx, invitationId, current.Id, user.NormalizeEmail(current.Email))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvitationNotDeclined, err)
	}
	if !ok {
		return ErrInvitationNotDeclined
	}
	s.publishResolved(ctx, invitationId, current.Id, StatusDeclined)
	return nil
}

func (s *ServiceImpl) ListPending(ctx context.Context) []Invitation {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return []Invitation{}
	}
	invitations, err := s.repo.ListPendingFor(ctx, current.Id, user.NormalizeEmail(current.Email))
	if err != nil {
		log.Errorf("failed to fetch invitations for user %s: %v", current.Id, err)
		return []Invitation{}
	}
	return invitations
}

func (s *ServiceImpl) publishResolved(ctx context.Context, invitationId uuid.UUID, actorId uuid.UUID, status Status) {
	invitation, err := s.repo.Get(ctx, invitationId)
	if err != nil {
		log.Warnf("could not load resolved invitation %s: %v", invitationId, err)
		return
	}
	s.publish(ctx, event_bus.InvitationChanged{
		InvitationID:  invitationId,
		GroupID:       invitation.GroupId,
		InvitedUserID: uuid.NullUUID{UUID: actorId, Valid: true},
		Status:        string(status),
		ActorID:       actorId,
	})
}

func (s *ServiceImpl) publish(ctx context.Context, data event_bus.InvitationChanged) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.InvitationChangedType, data)); err != nil {
		log.Warnf("publishing %s failed: %v", event_bus.InvitationChangedType, err)
	}
}
