package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

var ErrProfileNotCreated = errors.New("could not create profile")
var ErrFullNameRequired = errors.New("full name is required")

type Service interface {
	// EnsureProfile returns the current user's profile, creating it from session data when missing.
	EnsureProfile(ctx context.Context) (Profile, error)
	GetCurrentProfile(ctx context.Context) (Profile, error)
	GetByEmail(ctx context.Context, email string) (Profile, error)
	UpdateFullName(ctx context.Context, fullName string) (Profile, error)
}

type ServiceImpl struct {
	repo Repo
}

func NewUserService(repo Repo) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) EnsureProfile(ctx context.Context) (Profile, error) {
	current, err := CurrentUser(ctx)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to get current user: %w", err)
	}

	profile, err := s.repo.GetProfile(ctx, current.Id)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return Profile{}, err
	}

	fullName := strings.TrimSpace(current.DisplayName)
	if fullName == "" {
		fullName = current.Email
	}
	log.Infof("creating missing profile for user %s", current.Id)
	profile, err = s.repo.CreateProfile(ctx, Profile{
		Id:       current.Id,
		Email:    NormalizeEmail(current.Email),
		FullName: fullName,
	})
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrProfileNotCreated, err)
	}
	return profile, nil
}

func (s *ServiceImpl) GetCurrentProfile(ctx context.Context) (Profile, error) {
	return s.EnsureProfile(ctx)
}

func (s *ServiceImpl) GetByEmail(ctx context.Context, email string) (Profile, error) {
	return s.repo.GetProfileByEmail(ctx, NormalizeEmail(email))
}

func (s *ServiceImpl) UpdateFullName(ctx context.Context, fullName string) (Profile, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return Profile{}, ErrFullNameRequired
	}
	profile, err := s.EnsureProfile(ctx)
	if err != nil {
		return Profile{}, err
	}
	return s.repo.UpdateFullName(ctx, profile.Id, fullName)
}
