package mail

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"

	"github.com/famcal/famcal/internal/config"
	log "github.com/sirupsen/logrus"
)

// ErrNotConfigured is returned when no provider API key is set.
var ErrNotConfigured = errors.New("mail provider is not configured")

//go:embed templates/*.html
var templates embed.FS

var inviteTemplate = template.Must(template.ParseFS(templates, "templates/invite.html"))

type Mailer struct {
	sender Sender
	from   string
}

// NewMailer uses Resend when an API key is configured. Without one every send fails with ErrNotConfigured.
func NewMailer(cfg config.Mail) *Mailer {
	var sender Sender
	if cfg.ResendApiKey != "" {
		sender = NewResendSender(cfg.ResendApiKey)
	} else {
		log.Warn("no Resend API key configured, invitation emails are disabled")
	}
	return NewMailerWithSender(sender, cfg.From)
}

func NewMailerWithSender(sender Sender, from string) *Mailer {
	return &Mailer{sender: sender, from: from}
}

func (m *Mailer) Configured() bool {
	return m.sender != nil
}

func InviteSubject(groupName string) string {
	return fmt.Sprintf("Invitation to the group %s", groupName)
}

func RenderInvite(groupName string, inviteLink string) (string, error) {
	var body bytes.Buffer
	err := inviteTemplate.Execute(&body, struct {
		GroupName  string
		InviteLink string
	}{GroupName: groupName, InviteLink: inviteLink})
	if err != nil {
		return "", fmt.Errorf("could not render invitation email: %w", err)
	}
	return body.String(), nil
}

func (m *Mailer) SendInvite(ctx context.Context, to string, inviteLink string, groupName string) error {
	if !m.Configured() {
		return ErrNotConfigured
	}
	html, err := RenderInvite(groupName, inviteLink)
	if err != nil {
		return err
	}
	log.Infof("sending invitation email for group %q to %s", groupName, to)
	return m.sender.Send(ctx, Message{
		From:    m.from,
		To:      to,
		Subject: InviteSubject(groupName),
		Html:    html,
	})
}
