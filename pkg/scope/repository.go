package scope

import (
	"context"
	"errors"
	"fmt"

	"github.com/famcal/famcal/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// FindSelection returns nil when the user never selected a group or cleared the selection.
	FindSelection(ctx context.Context, userId uuid.UUID) (*uuid.UUID, error)
	ReplaceSelection(ctx context.Context, userId uuid.UUID, groupId *uuid.UUID) error
}

type RepositoryImpl struct {
	db database.Pool
}

func NewRepository(db database.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) FindSelection(ctx context.Context, userId uuid.UUID) (*uuid.UUID, error) {
	query := `SELECT group_id FROM active_group_selections WHERE user_id = $1`

	var groupId *uuid.UUID
	err := r.db.QueryRow(ctx, query, userId).Scan(&groupId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		err := fmt.Errorf("failed when trying to find active group: %w", err)
		log.Error(err)
		return nil, err
	}
	return groupId, nil
}

func (r *RepositoryImpl) ReplaceSelection(ctx context.Context, userId uuid.UUID, groupId *uuid.UUID) error {
	query := `INSERT INTO active_group_selections (user_id, group_id, updated_at)
				VALUES ($1, $2, now())
				ON CONFLICT (user_id) DO UPDATE SET
					group_id = EXCLUDED.group_id,
					updated_at = EXCLUDED.updated_at`

	if _, err := r.db.Exec(ctx, query, userId, groupId); err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	return nil
}
