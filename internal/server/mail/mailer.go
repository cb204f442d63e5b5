// Package mail abstracts outbound verification-code delivery.
package mail

import (
	"context"

	"github.com/askgita/askgita/internal/logging"
)

// Mailer delivers a verification code to an address.
type Mailer interface {
	SendOTP(ctx context.Context, to, code, purpose string) error
}

// LogMailer writes codes to the log instead of sending email. It is the
// development default; deployments plug in a real provider.
type LogMailer struct {
	log logging.Logger
}

func NewLogMailer(log logging.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendOTP(ctx context.Context, to, code, purpose string) error {
	m.log.Info(ctx, "verification code issued", "to", to, "purpose", purpose, "code", code)
	return nil
}
