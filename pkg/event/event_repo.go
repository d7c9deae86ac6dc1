package event

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/famcal/famcal/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

var ErrEventNotFound = errors.New("event not found")

type EventRepository interface {
	List(ctx context.Context, filter Filter) ([]Event, error)
	Get(ctx context.Context, id uuid.UUID) (Event, error)
	Insert(ctx context.Context, event Event) (Event, error)
	Update(ctx context.Context, event Event) (Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type EventRepositoryImpl struct {
	db database.Pool
}

func NewEventRepo(db database.Pool) *EventRepositoryImpl {
	return &EventRepositoryImpl{db: db}
}

const eventColumns = `e.id, e.created_at, e.updated_at, e.title, e.description, e.event_date, e.event_time,
       e.event_type, e.created_by, e.assignee_id, e.group_id, e.category, a.full_name, a.email`

const selectEvent = `SELECT ` + eventColumns + `
FROM events e
LEFT JOIN profiles a ON a.id = e.assignee_id`

func (r *EventRepositoryImpl) List(ctx context.Context, filter Filter) ([]Event, error) {
	conditions := []string{"e.group_id = ANY($1)"}
	args := []any{filter.GroupIDs}
	if filter.EventType != nil {
		args = append(args, string(*filter.EventType))
		conditions = append(conditions, fmt.Sprintf("e.event_type = $%d", len(args)))
	}
	query := selectEvent + " WHERE " + strings.Join(conditions, " AND ") +
		" ORDER BY e.event_date, e.event_time NULLS FIRST, e.created_at"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0, 16)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over events: %w", err)
		log.Error(err)
		return nil, err
	}
	return events, nil
}

func (r *EventRepositoryImpl) Get(ctx context.Context, id uuid.UUID) (Event, error) {
	event, err := scanEvent(r.db.QueryRow(ctx, selectEvent+" WHERE e.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrEventNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return Event{}, err
	}
	return event, nil
}

// Insert stores event and returns the stored row including the assignee's profile.
func (r *EventRepositoryImpl) Insert(ctx context.Context, event Event) (Event, error) {
	query := `WITH e AS (
			      INSERT INTO events (title, description, event_date, event_time, event_type, created_by, assignee_id, group_id, category)
			      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			      RETURNING *)
			  SELECT ` + eventColumns + `
			  FROM e
			  LEFT JOIN profiles a ON a.id = e.assignee_id`

	created, err := scanEvent(r.db.QueryRow(ctx, query, event.Title, event.Description, event.Date, event.Time,
		string(event.Type), event.CreatedBy, event.AssigneeId, event.GroupId, event.Category))
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return Event{}, err
	}
	return created, nil
}

// Update writes the mutable fields of event. group_id is never part of the statement.
func (r *EventRepositoryImpl) Update(ctx context.Context, event Event) (Event, error) {
	query := `WITH e AS (
			      UPDATE events
			      SET title = $2, description = $3, event_date = $4, event_time = $5, event_type = $6,
			          assignee_id = $7, category = $8, updated_at = now()
			      WHERE id = $1
			      RETURNING *)
			  SELECT ` + eventColumns + `
			  FROM e
			  LEFT JOIN profiles a ON a.id = e.assignee_id`

	updated, err := scanEvent(r.db.QueryRow(ctx, query, event.Id, event.Title, event.Description, event.Date, event.Time,
		string(event.Type), event.AssigneeId, event.Category))
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrEventNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return Event{}, err
	}
	return updated, nil
}

func (r *EventRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, "DELETE FROM events WHERE id = $1", id)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func scanEvent(row pgx.Row) (Event, error) {
	var e Event
	var eventType string
	var assigneeName, assigneeEmail *string
	err := row.Scan(&e.Id, &e.CreatedAt, &e.UpdatedAt, &e.Title, &e.Description, &e.Date, &e.Time,
		&eventType, &e.CreatedBy, &e.AssigneeId, &e.GroupId, &e.Category, &assigneeName, &assigneeEmail)
	if err != nil {
		return Event{}, err
	}
	e.Type = Type(eventType)
	if e.AssigneeId != nil {
		e.Assignee = &Assignee{}
		if assigneeName != nil {
			e.Assignee.FullName = *assigneeName
		}
		if assigneeEmail != nil {
			e.Assignee.Email = *assigneeEmail
		}
	}
	return e, nil
}
