package email

import (
	"context"
	"errors"
	"time"
)

// Sender define la interfaz para envio de correos transaccionales.
type Sender interface {
	SendVerificationEmail(ctx context.Context, toEmail string, link string, expiresAt time.Time) error
	SendPasswordResetEmail(ctx context.Context, toEmail string, link string, expiresAt time.Time) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendVerificationEmail(_ context.Context, _ string, _ string, _ time.Time) error {
	return s.err()
}

func (s *disabledSender) SendPasswordResetEmail(_ context.Context, _ string, _ string, _ time.Time) error {
	return s.err()
}

func (s *disabledSender) err() error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
