package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/famcal/famcal/internal/rest"
	log "github.com/sirupsen/logrus"
)

type ProfileDTO struct {
	Id        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
}

type UpdateProfileDTO struct {
	FullName string `json:"fullName"`
}

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{
		userService: userService,
	}
}

// CurrentProfile godoc
// @Summary Get current profile
// @Description Returns the profile of the signed-in user, creating it on first access
// @Tags Profile
// @Produce json
// @Success 200 {object} ProfileDTO
// @Failure 401 {object} rest.ErrorResponse "Not signed in"
// @Router /api/profile [get]
// @Security BearerAuth
func (h *Handler) CurrentProfile(w http.ResponseWriter, r *http.Request) {
	log.Trace("Getting current profile")

	profile, err := h.userService.GetCurrentProfile(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ProfileToDTO(profile))
}

// UpdateProfile godoc
// @Summary Update current profile
// @Description Changes the full name of the signed-in user
// @Tags Profile
// @Accept json
// @Produce json
// @Param profile body UpdateProfileDTO true "Profile"
// @Success 200 {object} ProfileDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/profile [put]
// @Security BearerAuth
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var dto UpdateProfileDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	profile, err := h.userService.UpdateFullName(r.Context(), dto.FullName)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ProfileToDTO(profile))
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoUser):
		rest.WriteError(w, http.StatusUnauthorized, "Not signed in", "")
	case errors.Is(err, ErrFullNameRequired):
		rest.WriteError(w, http.StatusBadRequest, "Full name is required", "")
	case errors.Is(err, ErrProfileNotCreated):
		rest.WriteError(w, http.StatusInternalServerError, "Could not create profile", err.Error())
	default:
		rest.WriteError(w, http.StatusInternalServerError, "Could not load profile", err.Error())
	}
}

func ProfileToDTO(p Profile) ProfileDTO {
	return ProfileDTO{
		Id:        p.Id.String(),
		Email:     p.Email,
		FullName:  p.FullName,
		CreatedAt: p.CreatedAt,
	}
}
