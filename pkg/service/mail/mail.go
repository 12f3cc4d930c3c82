package mail

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
	"github.com/secmon-lab/usersreport/pkg/utils/logging"
)

// DefaultPort is the SMTP submission port
const DefaultPort = 587

// Config holds the SMTP relay settings
type Config struct {
	Host     string
	Port     int
	Username string
	Password string

	// TLS dials with implicit TLS; StartTLS upgrades a plain connection
	TLS                bool
	StartTLS           bool
	InsecureSkipVerify bool

	// From is the sender when the notification has no author
	From string
}

// LogValue hides the password from logs
func (x Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("host", x.Host),
		slog.Int("port", x.Port),
		slog.String("username", x.Username),
		slog.Bool("tls", x.TLS),
		slog.Bool("starttls", x.StartTLS),
		slog.String("from", x.From),
	)
}

type sendFunc func(ctx context.Context, from string, rcpt []string, raw []byte) error

// Notifier sends the report email with the CSV attached through an SMTP relay
type Notifier struct {
	cfg  Config
	send sendFunc
	now  func() time.Time
}

// New creates a mail Notifier
func New(cfg Config) (*Notifier, error) {
	if cfg.Host == "" {
		return nil, goerr.New("SMTP host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}

	n := &Notifier{cfg: cfg, now: time.Now}
	n.send = n.sendSMTP
	return n, nil
}

// Name returns the notifier name used in logs
func (x *Notifier) Name() string {
	return "mail"
}

// Notify composes the message and submits it to the relay
func (x *Notifier) Notify(ctx context.Context, n *model.Notification) error {
	author := n.Author
	if author == "" {
		author = x.cfg.From
	}
	if author == "" {
		return goerr.New("sender address is not configured")
	}

	from, err := mail.ParseAddress(author)
	if err != nil {
		return goerr.Wrap(err, "invalid sender address", goerr.V("from", author))
	}

	to := make([]*mail.Address, 0, len(n.Recipients))
	rcpt := make([]string, 0, len(n.Recipients))
	for _, r := range n.Recipients {
		addr, err := mail.ParseAddress(strings.TrimSpace(r))
		if err != nil {
			return goerr.Wrap(err, "invalid recipient address", goerr.V("recipient", r))
		}
		to = append(to, addr)
		rcpt = append(rcpt, addr.Address)
	}
	if len(to) == 0 {
		return goerr.New("no recipients")
	}

	var replyTo *mail.Address
	if n.ReplyTo != "" {
		if replyTo, err = mail.ParseAddress(n.ReplyTo); err != nil {
			return goerr.Wrap(err, "invalid reply-to address", goerr.V("reply_to", n.ReplyTo))
		}
	}

	raw, err := buildMessage(n, from, to, replyTo, x.now())
	if err != nil {
		return err
	}

	if err := x.send(ctx, from.Address, rcpt, raw); err != nil {
		return goerr.Wrap(err, "failed to send mail",
			goerr.V("host", x.cfg.Host),
			goerr.V("recipients", len(rcpt)))
	}

	logging.From(ctx).Debug("Mail submitted", "recipients", len(rcpt), "size", len(raw))
	return nil
}
