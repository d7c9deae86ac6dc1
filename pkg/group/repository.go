package group

import (
	"context"
	"errors"
	"fmt"

	"github.com/famcal/famcal/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

var ErrGroupNotFound = errors.New("group not found")
var ErrNotAMember = errors.New("user is not a member of the group")

type Repository interface {
	// ListForUser returns groups created by userId or having userId as a member.
	ListForUser(ctx context.Context, userId uuid.UUID) ([]Group, error)
	GetGroup(ctx context.Context, groupId uuid.UUID) (Group, error)
	InsertGroup(ctx context.Context, group Group) (Group, error)
	InsertMember(ctx context.Context, groupId uuid.UUID, userId uuid.UUID, role Role) error
	// DeleteGroupRow removes only the group row. It undoes InsertGroup when the creator membership fails.
	DeleteGroupRow(ctx context.Context, groupId uuid.UUID) error
	// DeleteGroup cascades the group with its members, events and invitations when userId created it.
	DeleteGroup(ctx context.Context, groupId uuid.UUID, userId uuid.UUID) (bool, error)
	ListMembers(ctx context.Context, groupId uuid.UUID) ([]Member, error)
	GetRole(ctx context.Context, groupId uuid.UUID, userId uuid.UUID) (Role, error)
	GroupIDsForUser(ctx context.Context, userId uuid.UUID) ([]uuid.UUID, error)
	MemberIDs(ctx context.Context, groupId uuid.UUID) ([]uuid.UUID, error)
}

type RepositoryImpl struct {
	db database.Pool
}

func NewRepository(db database.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) ListForUser(ctx context.Context, userId uuid.UUID) ([]Group, error) {
	query := `SELECT g.id, g.name, g.description, g.created_by, g.created_at,
       			(SELECT count(*) FROM group_members c WHERE c.group_id = g.id) AS member_count
			  FROM groups g
			  WHERE g.created_by = $1
			     OR EXISTS (SELECT 1 FROM group_members m WHERE m.group_id = g.id AND m.user_id = $1)
			  ORDER BY g.created_at`

	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query groups: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	groups := make([]Group, 0, 4)
	for rows.Next() {
		var g Group
		var memberCount int64
		if err := rows.Scan(&g.Id, &g.Name, &g.Description, &g.CreatedBy, &g.CreatedAt, &memberCount); err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		g.MemberCount = int(memberCount)
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over groups: %w", err)
		log.Error(err)
		return nil, err
	}
	return groups, nil
}

func (r *RepositoryImpl) GetGroup(ctx context.Context, groupId uuid.UUID) (Group, error) {
	query := `SELECT g.id, g.name, g.description, g.created_by, g.created_at,
       			(SELECT count(*) FROM group_members c WHERE c.group_id = g.id) AS member_count
			  FROM groups g WHERE g.id = $1`

	var g Group
	var memberCount int64
	err := r.db.QueryRow(ctx, query, groupId).Scan(&g.Id, &g.Name, &g.Description, &g.CreatedBy, &g.CreatedAt, &memberCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return Group{}, ErrGroupNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return Group{}, err
	}
	g.MemberCount = int(memberCount)
	return g, nil
}

func (r *RepositoryImpl) InsertGroup(ctx context.Context, group Group) (Group, error) {
	query := `INSERT INTO groups (name, description, created_by) VALUES ($1, $2, $3) RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query, group.Name, group.Description, group.CreatedBy).Scan(&group.Id, &group.CreatedAt)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return Group{}, err
	}
	return group, nil
}

func (r *RepositoryImpl) InsertMember(ctx context.Context, groupId uuid.UUID, userId uuid.UUID, role Role) error {
	query := `INSERT INTO group_members (group_id, user_id, role) VALUES ($1, $2, $3)`

	_, err := r.db.Exec(ctx, query, groupId, userId, string(role))
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) DeleteGroupRow(ctx context.Context, groupId uuid.UUID) error {
	query := `DELETE FROM groups WHERE id = $1`

	_, err := r.db.Exec(ctx, query, groupId)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) DeleteGroup(ctx context.Context, groupId uuid.UUID, userId uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.QueryRow(ctx, `SELECT delete_group($1, $2)`, groupId, userId).Scan(&deleted)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	return deleted, nil
}

func (r *RepositoryImpl) ListMembers(ctx context.Context, groupId uuid.UUID) ([]Member, error) {
	query := `SELECT m.user_id, coalesce(p.full_name, ''), coalesce(p.email, ''), m.role, m.created_at
			  FROM group_members m
			  LEFT JOIN profiles p ON p.id = m.user_id
			  WHERE m.group_id = $1
			  ORDER BY m.created_at`

	rows, err := r.db.Query(ctx, query, groupId)
	if err != nil {
		err := fmt.Errorf("could not query group members: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	members := make([]Member, 0, 4)
	for rows.Next() {
		var m Member
		var role string
		if err := rows.Scan(&m.UserId, &m.FullName, &m.Email, &role, &m.JoinedAt); err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		m.Role = Role(role)
		if m.FullName == "" {
			m.FullName = UnknownMemberName
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over group members: %w", err)
		log.Error(err)
		return nil, err
	}
	return members, nil
}

func (r *RepositoryImpl) GetRole(ctx context.Context, groupId uuid.UUID, userId uuid.UUID) (Role, error) {
	query := `SELECT role FROM group_members WHERE group_id = $1 AND user_id = $2`

	var role string
	err := r.db.QueryRow(ctx, query, groupId, userId).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotAMember
	}
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return "", err
	}
	return Role(role), nil
}

func (r *RepositoryImpl) GroupIDsForUser(ctx context.Context, userId uuid.UUID) ([]uuid.UUID, error) {
	return r.queryIds(ctx, `SELECT group_id FROM group_members WHERE user_id = $1 ORDER BY created_at`, userId)
}

func (r *RepositoryImpl) MemberIDs(ctx context.Context, groupId uuid.UUID) ([]uuid.UUID, error) {
	return r.queryIds(ctx, `SELECT user_id FROM group_members WHERE group_id = $1`, groupId)
}

func (r *RepositoryImpl) queryIds(ctx context.Context, query string, arg uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0, 4)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
