package group

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/famcal/famcal/internal/rest"
	"github.com/famcal/famcal/pkg/user"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type GroupDTO struct {
	Id          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	MemberCount int       `json:"memberCount"`
}

type CreateGroupDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type MemberDTO struct {
	UserId   string    `json:"userId"`
	FullName string    `json:"fullName"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

type Handler struct {
	groupService Service
}

func NewHandler(groupService Service) *Handler {
	return &Handler{groupService: groupService}
}

// ListGroups godoc
// @Summary List groups
// @Description Groups created by the signed-in user or having them as a member, with member counts
// @Tags Group
// @Produce json
// @Success 200 {array} GroupDTO
// @Router /api/groups [get]
// @Security BearerAuth
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups := h.groupService.FetchGroups(r.Context())

	dtos := make([]GroupDTO, 0, len(groups))
	for _, g := range groups {
		dtos = append(dtos, groupToDTO(g))
	}
	log.Tracef("Groups returned: %d", len(dtos))
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// CreateGroup godoc
// @Summary Create group
// @Description Creates a group with the signed-in user as its admin member
// @Tags Group
// @Accept json
// @Produce json
// @Param group body CreateGroupDTO true "Group"
// @Success 201 {object} GroupDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 500 {object} rest.ErrorResponse "Group could not be created"
// @Router /api/groups [post]
// @Security BearerAuth
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var dto CreateGroupDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	created, err := h.groupService.CreateGroup(r.Context(), dto.Name, dto.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, groupToDTO(created))
}

// DeleteGroup godoc
// @Summary Delete group
// @Description Deletes a group with its members, events and invitations. Only the creator may do this.
// @Tags Group
// @Param groupId path string true "Group ID"
// @Success 204
// @Failure 403 {object} rest.ErrorResponse "Group could not be deleted"
// @Router /api/groups/{groupId} [delete]
// @Security BearerAuth
func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupId, ok := groupIdFromPath(w, r)
	if !ok {
		return
	}
	if err := h.groupService.DeleteGroup(r.Context(), groupId); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMembers godoc
// @Summary List group members
// @Tags Group
// @Produce json
// @Param groupId path string true "Group ID"
// @Success 200 {array} MemberDTO
// @Failure 403 {object} rest.ErrorResponse "Not a member"
// @Router /api/groups/{groupId}/members [get]
// @Security BearerAuth
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	groupId, ok := groupIdFromPath(w, r)
	if !ok {
		return
	}
	members, err := h.groupService.GetMembers(r.Context(), groupId)
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]MemberDTO, 0, len(members))
	for _, m := range members {
		dtos = append(dtos, MemberDTO{
			UserId:   m.UserId.String(),
			FullName: m.FullName,
			Email:    m.Email,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func groupIdFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	groupId, err := uuid.Parse(mux.Vars(r)["groupId"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid group id", err.Error())
		return uuid.Nil, false
	}
	return groupId, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusUnauthorized, "Not signed in", "")
	case errors.Is(err, ErrGroupNameRequired):
		rest.WriteError(w, http.StatusBadRequest, "Group name is required", "")
	case errors.Is(err, ErrNotAMember):
		rest.WriteError(w, http.StatusForbidden, "You are not a member of this group", "")
	case errors.Is(err, ErrGroupNotFound):
		rest.WriteError(w, http.StatusNotFound, "Group not found", "")
	case errors.Is(err, ErrGroupNotDeleted):
		rest.WriteError(w, http.StatusForbidden, "The group could not be deleted", "")
	case errors.Is(err, user.ErrProfileNotCreated):
		rest.WriteError(w, http.StatusInternalServerError, "Could not create your profile", err.Error())
	case errors.Is(err, ErrMembershipNotCreated):
		rest.WriteError(w, http.StatusInternalServerError, "Could not add you as group admin", err.Error())
	case errors.Is(err, ErrGroupNotCreated):
		rest.WriteError(w, http.StatusInternalServerError, "Could not create group", err.Error())
	default:
		log.Errorf("group request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Something went wrong", err.Error())
	}
}

func groupToDTO(g Group) GroupDTO {
	return GroupDTO{
		Id:          g.Id.String(),
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy.String(),
		CreatedAt:   g.CreatedAt,
		MemberCount: g.MemberCount,
	}
}
