package mail

import (
	"context"
	"crypto/tls"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

const defaultDialTimeout = 10 * time.Second

func (x *Notifier) sendSMTP(ctx context.Context, from string, rcpt []string, raw []byte) error {
	addr := net.JoinHostPort(x.cfg.Host, strconv.Itoa(x.cfg.Port))
	tlsConfig := &tls.Config{ServerName: x.cfg.Host, InsecureSkipVerify: x.cfg.InsecureSkipVerify}

	dialer := &net.Dialer{Timeout: defaultDialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return goerr.Wrap(err, "failed to connect SMTP relay", goerr.V("addr", addr))
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if x.cfg.TLS {
		conn = tls.Client(conn, tlsConfig)
	}

	client, err := smtp.NewClient(conn, x.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return goerr.Wrap(err, "failed to start SMTP session", goerr.V("addr", addr))
	}
	defer func() { _ = client.Close() }()

	if x.cfg.StartTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				return goerr.Wrap(err, "STARTTLS failed")
			}
		}
	}

	if x.cfg.Username != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", x.cfg.Username, x.cfg.Password, x.cfg.Host)
			if err := client.Auth(auth); err != nil {
				return goerr.Wrap(err, "SMTP authentication failed", goerr.V("username", x.cfg.Username))
			}
		}
	}

	if err := client.Mail(from); err != nil {
		return goerr.Wrap(err, "MAIL FROM rejected", goerr.V("from", from))
	}
	for _, r := range rcpt {
		if err := client.Rcpt(r); err != nil {
			return goerr.Wrap(err, "RCPT TO rejected", goerr.V("recipient", r))
		}
	}

	wc, err := client.Data()
	if err != nil {
		return goerr.Wrap(err, "DATA rejected")
	}
	if _, err := wc.Write(raw); err != nil {
		return goerr.Wrap(err, "failed to write message")
	}
	if err := wc.Close(); err != nil {
		return goerr.Wrap(err, "message rejected")
	}
	return client.Quit()
}
