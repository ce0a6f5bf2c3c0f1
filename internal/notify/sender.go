package notify

import (
	"context"
	"fmt"
	"net/smtp"
)

// Sender is the outbound transport primitive: deliver one message to one
// address, success or failure. The worker records the outcome on the job and
// moves on; retries are not this layer's business.
type Sender interface {
	Send(ctx context.Context, address, subject, body string) error
}

// SMTPSender delivers through a plain SMTP relay.
type SMTPSender struct {
	Addr string // host:port
	From string
}

func (s *SMTPSender) Send(ctx context.Context, address, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.From, address, subject, body)
	if err := smtp.SendMail(s.Addr, nil, s.From, []string{address}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", address, err)
	}
	return nil
}
