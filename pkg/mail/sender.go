package mail

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/resend/resend-go/v2"
	log "github.com/sirupsen/logrus"
)

// ErrRejected means the provider answered but refused the message.
var ErrRejected = errors.New("mail provider rejected the message")

// ErrUnreachable means the provider could not be reached.
var ErrUnreachable = errors.New("mail provider could not be reached")

type Message struct {
	From    string
	To      string
	Subject string
	Html    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type ResendSender struct {
	client *resend.Client
}

func NewResendSender(apiKey string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey)}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.Html,
	})
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return fmt.Errorf("%w: %w", ErrUnreachable, err)
		}
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}
	log.Debugf("invitation email to %s accepted by provider with id %s", msg.To, sent.Id)
	return nil
}
