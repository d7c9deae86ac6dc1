package scope

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/famcal/famcal/internal/rest"
	"github.com/famcal/famcal/pkg/group"
	"github.com/famcal/famcal/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type ScopeDTO struct {
	GroupId          *string `json:"groupId"`
	PersonalOverview bool    `json:"personalOverview"`
}

type SelectScopeDTO struct {
	GroupId *string `json:"groupId"`
}

type Handler struct {
	scopeService Service
}

func NewHandler(scopeService Service) *Handler {
	return &Handler{scopeService: scopeService}
}

// GetScope godoc
// @Summary Get active group
// @Description The group the signed-in user is looking at, or the personal overview
// @Tags Scope
// @Produce json
// @Success 200 {object} ScopeDTO
// @Router /api/scope [get]
// @Security BearerAuth
func (h *Handler) GetScope(w http.ResponseWriter, r *http.Request) {
	current, err := h.scopeService.Current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, scopeToDTO(current))
}

// SelectScope godoc
// @Summary Select active group
// @Description Selects a group, or the personal overview when groupId is null
// @Tags Scope
// @Accept json
// @Produce json
// @Param scope body SelectScopeDTO true "Selection"
// @Success 200 {object} ScopeDTO
// @Failure 403 {object} rest.ErrorResponse "Not a member"
// @Router /api/scope [put]
// @Security BearerAuth
func (h *Handler) SelectScope(w http.ResponseWriter, r *http.Request) {
	var dto SelectScopeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	var groupId *uuid.UUID
	if dto.GroupId != nil {
		parsed, err := uuid.Parse(*dto.GroupId)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid group id", err.Error())
			return
		}
		groupId = &parsed
	}

	selected, err := h.scopeService.Select(r.Context(), groupId)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, scopeToDTO(selected))
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusUnauthorized, "Not signed in", "")
	case errors.Is(err, group.ErrNotAMember):
		rest.WriteError(w, http.StatusForbidden, "You are not a member of this group", "")
	default:
		log.Errorf("scope request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Something went wrong", err.Error())
	}
}

func scopeToDTO(s Scope) ScopeDTO {
	dto := ScopeDTO{PersonalOverview: s.IsPersonalOverview()}
	if s.ActiveGroupID != nil {
		id := s.ActiveGroupID.String()
		dto.GroupId = &id
	}
	return dto
}
