package auth

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds auth options. Implementations are expected to be cheap to
// call; the signing secret in particular is read fresh on every use so the
// package carries no mutable global state.
type Config interface {
	GetSigningSecret() string
	GetDomain() string
	GetEmailRequired() bool
	GetDevelopment() bool
	GetMinPasswordLength() int
}

// Mailer dispatches outbound email. Delivery is an external, fire-and-forget
// concern; implementations may fail and callers decide whether that failure
// is surfaced or swallowed.
type Mailer interface {
	SendResetEmail(ctx context.Context, email, token string) error
	SendVerificationEmail(ctx context.Context, email, token string) error
}

// ConfigObject is a plain-struct Config for hosts and tests.
type ConfigObject struct {
	SigningSecret     string
	Domain            string
	EmailRequired     bool
	Development       bool
	MinPasswordLength int
}

var _ Config = ConfigObject{}

func (c ConfigObject) GetSigningSecret() string { return c.SigningSecret }
func (c ConfigObject) GetDomain() string        { return c.Domain }
func (c ConfigObject) GetEmailRequired() bool   { return c.EmailRequired }
func (c ConfigObject) GetDevelopment() bool     { return c.Development }

func (c ConfigObject) GetMinPasswordLength() int {
	if c.MinPasswordLength <= 0 {
		return DefaultMinPasswordLength
	}
	return c.MinPasswordLength
}

// DefaultMinPasswordLength applies when the host does not configure one.
const DefaultMinPasswordLength = 8

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
