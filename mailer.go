package auth

import (
	"context"
)

// logMailer writes outbound mail to the log instead of delivering it. It is
// the default when the host wires no real Mailer, and what tests observe.
type logMailer struct {
	logger Logger
}

// NewLogMailer returns a Mailer that only logs.
func NewLogMailer(logger Logger) Mailer {
	if logger == nil {
		logger = defLogger{}
	}
	return &logMailer{logger: logger}
}

func (m *logMailer) SendResetEmail(ctx context.Context, email, token string) error {
	m.logger.Info("password reset email", "to", email, "link", "/account/reset-password/"+token)
	return nil
}

func (m *logMailer) SendVerificationEmail(ctx context.Context, email, token string) error {
	m.logger.Info("verification email", "to", email, "link", "/account/verify-email/"+token)
	return nil
}
