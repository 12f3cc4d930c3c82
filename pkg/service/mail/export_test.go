package mail

import "time"

// SendFunc is exported for testing
type SendFunc = sendFunc

// NewWithSender creates a Notifier that hands messages to send instead of an SMTP relay
func NewWithSender(cfg Config, send SendFunc, now func() time.Time) *Notifier {
	return &Notifier{cfg: cfg, send: send, now: now}
}
