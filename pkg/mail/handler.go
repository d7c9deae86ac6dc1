package mail

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/famcal/famcal/internal/rest"
	log "github.com/sirupsen/logrus"
)

type InviteEmailDTO struct {
	To         string `json:"to"`
	InviteLink string `json:"inviteLink"`
	GroupName  string `json:"groupName"`
}

type SuccessDTO struct {
	Success bool `json:"success"`
}

type InviteSender interface {
	Configured() bool
	SendInvite(ctx context.Context, to string, inviteLink string, groupName string) error
}

type Handler struct {
	mailer InviteSender
}

func NewHandler(mailer InviteSender) *Handler {
	return &Handler{mailer: mailer}
}

// SendInviteEmail godoc
// @Summary Send invitation email
// @Description Emails an invitation link for a group
// @Tags Mail
// @Accept json
// @Produce json
// @Param email body InviteEmailDTO true "Invitation email"
// @Success 200 {object} SuccessDTO
// @Failure 400 {object} rest.ErrorResponse "Missing fields"
// @Failure 405
// @Failure 500 {object} rest.ErrorResponse "Resend config missing / Resend error"
// @Router /api/send-invite-email [post]
// @Security BearerAuth
func (h *Handler) SendInviteEmail(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Errorf("sending invitation email panicked: %v", rec)
			rest.WriteError(w, http.StatusInternalServerError, "Kunde inte skicka e-post", "")
		}
	}()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var dto InviteEmailDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		log.Debugf("invalid invitation email body: %v", err)
	}
	if strings.TrimSpace(dto.To) == "" || strings.TrimSpace(dto.InviteLink) == "" || strings.TrimSpace(dto.GroupName) == "" {
		rest.WriteError(w, http.StatusBadRequest, "Missing fields", "")
		return
	}
	if !h.mailer.Configured() {
		rest.WriteError(w, http.StatusInternalServerError, "Resend config missing", "")
		return
	}

	err := h.mailer.SendInvite(r.Context(), dto.To, dto.InviteLink, dto.GroupName)
	switch {
	case err == nil:
		rest.WriteJSON(w, http.StatusOK, SuccessDTO{Success: true})
	case errors.Is(err, ErrNotConfigured):
		rest.WriteError(w, http.StatusInternalServerError, "Resend config missing", "")
	case errors.Is(err, ErrRejected):
		rest.WriteError(w, http.StatusInternalServerError, "Resend error", strings.TrimPrefix(err.Error(), ErrRejected.Error()+": "))
	default:
		log.Errorf("sending invitation email failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Kunde inte skicka e-post", "")
	}
}
