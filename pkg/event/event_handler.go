package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/famcal/famcal/internal/rest"
	"github.com/famcal/famcal/pkg/group"
	"github.com/famcal/famcal/pkg/user"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type AssigneeDTO struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type EventDTO struct {
	Id          string       `json:"id"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	EventDate   string       `json:"eventDate"`
	EventTime   *string      `json:"eventTime"`
	EventType   Type         `json:"eventType"`
	CreatedBy   string       `json:"createdBy"`
	AssigneeId  *string      `json:"assigneeId"`
	GroupId     string       `json:"groupId"`
	Category    *string      `json:"category"`
	Assignee    *AssigneeDTO `json:"assignee"`
}

type CreateEventDTO struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	EventDate   string  `json:"eventDate"`
	EventTime   *string `json:"eventTime"`
	EventType   Type    `json:"eventType"`
	AssigneeId  *string `json:"assigneeId"`
	GroupId     *string `json:"groupId"`
	Category    *string `json:"category"`
}

type UpdateEventDTO struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	EventDate   *string `json:"eventDate"`
	EventTime   *string `json:"eventTime"`
	EventType   *Type   `json:"eventType"`
	Category    *string `json:"category"`

	// AssigneeId null or "" removes the assignee, an absent field keeps it.
	AssigneeId OptionalString `json:"assigneeId" swaggertype:"string"`
}

// OptionalString tells an explicit JSON null apart from an absent field.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	o.Value = &value
	return nil
}

type EventHandler struct {
	eventService EventService
}

func NewEventHandler(eventService EventService) *EventHandler {
	return &EventHandler{eventService}
}

// ListEvents godoc
// @Summary List events
// @Description Events of the active group, or of all the user's groups in the personal overview
// @Tags Event
// @Produce json
// @Success 200 {array} EventDTO
// @Router /api/events [get]
// @Security BearerAuth
func (e *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	writeEvents(w, e.eventService.ListEvents(r.Context()))
}

// ListTodos godoc
// @Summary List todos
// @Description Events of type task in the current scope
// @Tags Event
// @Produce json
// @Success 200 {array} EventDTO
// @Router /api/todos [get]
// @Security BearerAuth
func (e *EventHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	writeEvents(w, e.eventService.ListTodos(r.Context()))
}

// CreateEvent godoc
// @Summary Create event
// @Description Creates an event in the given group, or in the active group when groupId is omitted
// @Tags Event
// @Accept json
// @Produce json
// @Param event body CreateEventDTO true "Event"
// @Success 201 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 403 {object} rest.ErrorResponse "Not a member"
// @Router /api/events [post]
// @Security BearerAuth
func (e *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	event, ok := decodeCreate(w, r)
	if !ok {
		return
	}
	created, err := e.eventService.CreateEvent(r.Context(), event)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, eventToDTO(created))
}

// CreateTodo godoc
// @Summary Create todo
// @Description Creates an event of type task regardless of the eventType sent
// @Tags Event
// @Accept json
// @Produce json
// @Param todo body CreateEventDTO true "Todo"
// @Success 201 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/todos [post]
// @Security BearerAuth
func (e *EventHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	event, ok := decodeCreate(w, r)
	if !ok {
		return
	}
	created, err := e.eventService.CreateTodo(r.Context(), event)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, eventToDTO(created))
}

// UpdateEvent godoc
// @Summary Update event
// @Description Partial update. Only the creator or the assignee may change an event.
// @Tags Event
// @Accept json
// @Produce json
// @Param eventId path string true "Event ID"
// @Param event body UpdateEventDTO true "Changes"
// @Success 200 {object} EventDTO
// @Failure 403 {object} rest.ErrorResponse "Not allowed"
// @Failure 404 {object} rest.ErrorResponse "Not found"
// @Router /api/events/{eventId} [put]
// @Security BearerAuth
func (e *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventId, ok := eventIdFromPath(w, r)
	if !ok {
		return
	}
	var dto UpdateEventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	update := Update{
		Title:       dto.Title,
		Description: dto.Description,
		Time:        dto.EventTime,
		Type:        dto.EventType,
		Category:    dto.Category,
	}
	if dto.EventDate != nil {
		date, err := time.Parse(DateLayout, *dto.EventDate)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid event date", "Event date must be in YYYY-MM-DD format")
			return
		}
		update.Date = &date
	}
	if dto.AssigneeId.Set {
		if dto.AssigneeId.Value == nil || *dto.AssigneeId.Value == "" {
			update.ClearAssignee = true
		} else {
			assigneeId, err := uuid.Parse(*dto.AssigneeId.Value)
			if err != nil {
				rest.WriteError(w, http.StatusBadRequest, "Invalid assignee id", err.Error())
				return
			}
			update.AssigneeId = &assigneeId
		}
	}

	updated, err := e.eventService.UpdateEvent(r.Context(), eventId, update)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, eventToDTO(updated))
}

// DeleteEvent godoc
// @Summary Delete event
// @Tags Event
// @Param eventId path string true "Event ID"
// @Success 204
// @Failure 403 {object} rest.ErrorResponse "Not allowed"
// @Failure 404 {object} rest.ErrorResponse "Not found"
// @Router /api/events/{eventId} [delete]
// @Security BearerAuth
func (e *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventId, ok := eventIdFromPath(w, r)
	if !ok {
		return
	}
	if err := e.eventService.DeleteEvent(r.Context(), eventId); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeCreate(w http.ResponseWriter, r *http.Request) (Event, bool) {
	var dto CreateEventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return Event{}, false
	}
	log.Debug("New event request: ", dto)

	date, err := time.Parse(DateLayout, dto.EventDate)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event date", "Event date must be in YYYY-MM-DD format")
		return Event{}, false
	}
	event := Event{
		Title:       dto.Title,
		Description: dto.Description,
		Date:        date,
		Time:        dto.EventTime,
		Type:        dto.EventType,
		Category:    dto.Category,
	}
	if dto.GroupId != nil && *dto.GroupId != "" {
		groupId, err := uuid.Parse(*dto.GroupId)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid group id", err.Error())
			return Event{}, false
		}
		event.GroupId = groupId
	}
	if dto.AssigneeId != nil && *dto.AssigneeId != "" {
		assigneeId, err := uuid.Parse(*dto.AssigneeId)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid assignee id", err.Error())
			return Event{}, false
		}
		event.AssigneeId = &assigneeId
	}
	return event, true
}

func eventIdFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	eventId, err := uuid.Parse(mux.Vars(r)["eventId"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event id", err.Error())
		return uuid.Nil, false
	}
	return eventId, true
}

func writeEvents(w http.ResponseWriter, events []Event) {
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventToDTO(e))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusUnauthorized, "Not signed in", "")
	case errors.Is(err, ErrTitleRequired), errors.Is(err, ErrDateRequired), errors.Is(err, ErrInvalidTime),
		errors.Is(err, ErrInvalidType), errors.Is(err, ErrGroupRequired), errors.Is(err, ErrAssigneeNotMember):
		rest.WriteError(w, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, group.ErrNotAMember):
		rest.WriteError(w, http.StatusForbidden, "You are not a member of this group", "")
	case errors.Is(err, ErrNotAllowed):
		rest.WriteError(w, http.StatusForbidden, "Only the creator or the assignee can change this event", "")
	case errors.Is(err, ErrEventNotFound):
		rest.WriteError(w, http.StatusNotFound, "Event not found", "")
	default:
		log.Errorf("event request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Something went wrong", err.Error())
	}
}

func eventToDTO(e Event) EventDTO {
	dto := EventDTO{
		Id:          e.Id.String(),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		Title:       e.Title,
		Description: e.Description,
		EventDate:   e.Date.Format(DateLayout),
		EventTime:   e.Time,
		EventType:   e.Type,
		CreatedBy:   e.CreatedBy.String(),
		GroupId:     e.GroupId.String(),
		Category:    e.Category,
	}
	if e.AssigneeId != nil {
		id := e.AssigneeId.String()
		dto.AssigneeId = &id
	}
	if e.Assignee != nil {
		dto.Assignee = &AssigneeDTO{FullName: e.Assignee.FullName, Email: e.Assignee.Email}
	}
	return dto
}
