package invitation

import (
	"context"
	"errors"
	"fmt"

	"github.com/famcal/famcal/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
)

var ErrInvitationNotFound = errors.New("invitation not found")
var ErrInvitationExists = errors.New("an invitation for this email already exists")

const uniqueViolation = "23505"

type Repository interface {
	HasPending(ctx context.Context, groupId uuid.UUID, email string) (bool, error)
	Create(ctx context.Context, invitation Invitation) (Invitation, error)
	Get(ctx context.Context, id uuid.UUID) (Invitation, error)
	// ListPendingFor returns pending invitations addressed to userId or to email, newest first.
	ListPendingFor(ctx context.Context, userId uuid.UUID, email string) ([]Invitation, error)
	Accept(ctx context.Context, id uuid.UUID, userId uuid.UUID, email string) (bool, error)
	Decline(ctx context.Context, id uuid.UUID, userId uuid.UUID, email string) (bool, error)
}

type RepositoryImpl struct {
	db database.Pool
}

func NewRepository(db database.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) HasPending(ctx context.Context, groupId uuid.UUID, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM group_invitations WHERE group_id = $1 AND invited_email = $2 AND status = 'pending')`

	var exists bool
	if err := r.db.QueryRow(ctx, query, groupId, email).Scan(&exists); err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	return exists, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, invitation Invitation) (Invitation, error) {
	query := `INSERT INTO group_invitations (group_id, invited_user_id, invited_email, invited_by, status)
			  VALUES ($1, $2, $3, $4, 'pending')
			  RETURNING id, status, created_at, updated_at`

	var status string
	err := r.db.QueryRow(ctx, query, invitation.GroupId, invitation.InvitedUserId, invitation.InvitedEmail, invitation.InvitedBy).
		Scan(&invitation.Id, &status, &invitation.CreatedAt, &invitation.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Invitation{}, ErrInvitationExists
		}
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return Invitation{}, err
	}
	invitation.Status = Status(status)
	return invitation, nil
}

const selectInvitation = `SELECT i.id, i.group_id, i.invited_user_id, i.invited_email, i.invited_by, i.status,
       i.created_at, i.updated_at, g.name, g.description, coalesce(p.full_name, ''), coalesce(p.email, '')
FROM group_invitations i
JOIN groups g ON g.id = i.group_id
LEFT JOIN profiles p ON p.id = i.invited_by`

func (r *RepositoryImpl) Get(ctx context.Context, id uuid.UUID) (Invitation, error) {
	invitation, err := scanInvitation(r.db.QueryRow(ctx, selectInvitation+` WHERE i.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Invitation{}, ErrInvitationNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return Invitation{}, err
	}
	return invitation, nil
}

func (r *RepositoryImpl) ListPendingFor(ctx context.Context, userId uuid.UUID, email string) ([]Invitation, error) {
	query := selectInvitation + ` WHERE i.status = 'pending' AND (i.invited_user_id = $1 OR i.invited_email = $2)
		ORDER BY i.created_at DESC`

	rows, err := r.db.Query(ctx, query, userId, email)
	if err != nil {
		err := fmt.Errorf("could not query invitations: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	invitations := make([]Invitation, 0, 4)
	for rows.Next() {
		invitation, err := scanInvitation(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		invitations = append(invitations, invitation)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over invitations: %w", err)
		log.Error(err)
		return nil, err
	}
	return invitations, nil
}

func (r *RepositoryImpl) Accept(ctx context.Context, id uuid.UUID, userId uuid.UUID, email string) (bool, error) {
	return r.resolve(ctx, `SELECT accept_group_invitation($1, $2, $3)`, id, userId, email)
}

func (r *RepositoryImpl) Decline(ctx context.Context, id uuid.UUID, userId uuid.UUID, email string) (bool, error) {
	return r.resolve(ctx, `SELECT decline_group_invitation($1, $2, $3)`, id, userId, email)
}

func (r *RepositoryImpl) resolve(ctx context.Context, query string, id uuid.UUID, userId uuid.UUID, email string) (bool, error) {
	var ok bool
	if err := r.db.QueryRow(ctx, query, id, userId, email).Scan(&ok); err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	return ok, nil
}

func scanInvitation(row pgx.Row) (Invitation, error) {
	var i Invitation
	var status string
	err := row.Scan(&i.Id, &i.GroupId, &i.InvitedUserId, &i.InvitedEmail, &i.InvitedBy, &status,
		&i.CreatedAt, &i.UpdatedAt, &i.GroupName, &i.GroupDescription, &i.InviterName, &i.InviterEmail)
	if err != nil {
		return Invitation{}, err
	}
	i.Status = Status(status)
	return i, nil
}
