package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type StubUserRepo struct {
	profiles  map[uuid.UUID]Profile
	CreateErr error
}

func NewStubUserRepo() *StubUserRepo {
	return &StubUserRepo{
		profiles: make(map[uuid.UUID]Profile),
	}
}

func (s *StubUserRepo) GetProfile(ctx context.Context, id uuid.UUID) (Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return Profile{}, ErrProfileNotFound
	}
	return p, nil
}

func (s *StubUserRepo) GetProfileByEmail(ctx context.Context, email string) (Profile, error) {
	for _, p := range s.profiles {
		if NormalizeEmail(p.Email) == email {
			return p, nil
		}
	}
	return Profile{}, ErrProfileNotFound
}

func (s *StubUserRepo) CreateProfile(ctx context.Context, profile Profile) (Profile, error) {
	if s.CreateErr != nil {
		return Profile{}, s.CreateErr
	}
	if existing, ok := s.profiles[profile.Id]; ok {
		return existing, nil
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}
	s.profiles[profile.Id] = profile
	return profile, nil
}

func (s *StubUserRepo) UpdateFullName(ctx context.Context, id uuid.UUID, fullName string) (Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return Profile{}, ErrProfileNotFound
	}
	p.FullName = fullName
	s.profiles[id] = p
	return p, nil
}

// Cleanup removes all stored profiles.
func (s *StubUserRepo) Cleanup() {
	s.profiles = make(map[uuid.UUID]Profile)
	s.CreateErr = nil
}
