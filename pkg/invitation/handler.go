package invitation

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

type InviteRequestDTO struct {
	Email string `json:"email"`
}

type InviteResultDTO struct {
	UserExists   bool   `json:"userExists"`
	InvitationId string `json:"invitationId"`
	InviteLink   string `json:"inviteLink"`
	Message      string `json:"message"`
	EmailSent    bool   `json:"emailSent"`
	EmailWarning string `json:"emailWarning,omitempty"`
}

type InvitationDTO struct {
	Id           string    `json:"id"`
	GroupId      string    `json:"groupId"`
	InvitedEmail string    `json:"invitedEmail"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	Group        struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	} `json:"group"`
	Inviter struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
	} `json:"inviter"`
}

type Handler struct {
	invitationService Service
}

func NewHandler(invitationService Service) *Handler {
	return &Handler{invitationService: invitationService}
}

// Invite godoc
// @Summary Invite to group
// @Description Invites an email address to the group. People without an account get an email with the invitation link.
// @Tags Invitation
// @Accept json
// @Produce json
// @Param groupId path string true "Group ID"
// @Param invitation body InviteRequestDTO true "Invitee"
// @Success 201 {object} InviteResultDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 409 {object} rest.ErrorResponse "Already a member or already invited"
// @Router /api/groups/{groupId}/invitations [post]
// @Security BearerAuth
func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	groupId, ok := idFromPath(w, r, "groupId")
	if !ok {
		return
	}
	var dto InviteRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	result, err := h.invitationService.Invite(r.Context(), groupId, dto.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, InviteResultDTO{
		UserExists:   result.UserExists,
		InvitationId: result.InvitationId.String(),
		InviteLink:   result.InviteLink,
		Message:      result.Message,
		EmailSent:    result.EmailSent,
		EmailWarning: result.EmailWarning,
	})
}

// ListPending godoc
// @Summary List pending invitations
// @Description Pending invitations addressed to the signed-in user, newest first
// @Tags Invitation
// @Produce json
// @Success 200 {array} InvitationDTO
// @Router /api/invitations [get]
// @Security BearerAuth
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	invitations := h.invitationService.ListPending(r.Context())

	dtos := make([]InvitationDTO, 0, len(invitations))
	for _, i := range invitations {
		dtos = append(dtos, invitationToDTO(i))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Accept godoc
// @Summary Accept invitation
// @Description Accepts the invitation and adds the signed-in user to the group
// @Tags Invitation
// @Param invitationId path string true "Invitation ID"
// @Success 204
// @Failure 400 {object} rest.ErrorResponse "The invitation could not be accepted"
// @Router /api/invitations/{invitationId}/accept [post]
// @Security BearerAuth
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	invitationId, ok := idFromPath(w, r, "invitationId")
	if !ok {
		return
	}
	if err := h.invitationService.Accept(r.Context(), invitationId); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Decline godoc
// @Summary Decline invitation
// @Tags Invitation
// @Param invitationId path string true "Invitation ID"
// @Success 204
// @Failure 400 {object} rest.ErrorResponse "The invitation could not be declined"
// @Router /api/invitations/{invitationId}/decline [post]
// @Security BearerAuth
func (h *Handler) Decline(w http.ResponseWriter, r *http.Request) {
	invitationId, ok := idFromPath(w, r, "invitationId")
	if !ok {
		return
	}
	if err := h.invitationService.Decline(r.Context(), invitationId); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func idFromPath(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid "+name, err.Error())
		return uuid.Nil, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusUnauthorized, "Not signed in", "")
	case errors.Is(err, ErrInvalidEmail):
		rest.WriteError(w, http.StatusBadRequest, "A valid email is required", "")
	case errors.Is(err, group.ErrGroupNotFound):
		rest.WriteError(w, http.StatusNotFound, "Group not found", "")
	case errors.Is(err, group.ErrNotAMember):
		rest.WriteError(w, http.StatusForbidden, "You are not a member of this group", "")
	case errors.Is(err, ErrAlreadyMember):
		rest.WriteError(w, http.StatusConflict, "The user is already a member of the group", "")
	case errors.Is(err, ErrInvitationExists):
		rest.WriteError(w, http.StatusConflict, "An invitation for this email already exists", "")
	case errors.Is(err, ErrInvitationNotAccepted):
		rest.WriteError(w, http.StatusBadRequest, "The invitation could not be accepted", "")
	case errors.Is(err, ErrInvitationNotDeclined):
		rest.WriteError(w, http.StatusBadRequest, "The invitation could not be declined", "")
	case errors.Is(err, ErrInvitationNotCreated):
		rest.WriteError(w, http.StatusInternalServerError, "Could not create invitation", err.Error())
	case errors.Is(err, user.ErrProfileNotCreated):
		rest.WriteError(w, http.StatusInternalServerError, "Could not create your profile", err.Error())
	default:
		log.Errorf("invitation request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Something went wrong", err.Error())
	}
}

func invitationToDTO(i Invitation) InvitationDTO {
	dto := InvitationDTO{
		Id:           i.Id.String(),
		GroupId:      i.GroupId.String(),
		InvitedEmail: i.InvitedEmail,
		Status:       i.Status,
		CreatedAt:    i.CreatedAt,
	}
	dto.Group.Name = i.GroupName
	dto.Group.Description = i.GroupDescription
	dto.Inviter.FullName = i.InviterName
	dto.Inviter.Email = i.InviterEmail
	return dto
}
