package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/famcal/famcal/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

var ErrProfileNotFound = errors.New("profile not found")

type Repo interface {
	GetProfile(ctx context.Context, id uuid.UUID) (Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (Profile, error)
	CreateProfile(ctx context.Context, profile Profile) (Profile, error)
	UpdateFullName(ctx context.Context, id uuid.UUID, fullName string) (Profile, error)
}

type RepoImpl struct {
	db database.Pool
}

func NewUserRepo(db database.Pool) *RepoImpl {
	return &RepoImpl{db: db}
}

const profileColumns = `id, email, coalesce(full_name, ''), created_at`

func (r *RepoImpl) GetProfile(ctx context.Context, id uuid.UUID) (Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// GetProfileByEmail matches email case-insensitively. Callers pass a normalized address.
func (r *RepoImpl) GetProfileByEmail(ctx context.Context, email string) (Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE lower(email) = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, email))
}

// CreateProfile inserts the profile; an existing row with the same id is returned unchanged.
func (r *RepoImpl) CreateProfile(ctx context.Context, profile Profile) (Profile, error) {
	query := `INSERT INTO profiles (id, email, full_name) VALUES ($1, $2, $3)
				ON CONFLICT (id) DO UPDATE SET email = profiles.email
				RETURNING ` + profileColumns
	created, err := r.scanOne(r.db.QueryRow(ctx, query, profile.Id, profile.Email, profile.FullName))
	if err != nil {
		err := fmt.Errorf("could not create profile: %w", err)
		log.Error(err)
		return Profile{}, err
	}
	return created, nil
}

func (r *RepoImpl) UpdateFullName(ctx context.Context, id uuid.UUID, fullName string) (Profile, error) {
	query := `UPDATE profiles SET full_name = $1 WHERE id = $2 RETURNING ` + profileColumns
	updated, err := r.scanOne(r.db.QueryRow(ctx, query, fullName, id))
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		err := fmt.Errorf("could not update profile: %w", err)
		log.Error(err)
		return Profile{}, err
	}
	return updated, err
}

func (r *RepoImpl) scanOne(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.Id, &p.Email, &p.FullName, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrProfileNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return Profile{}, err
	}
	return p, nil
}
