package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// SMTPSender delivers over implicit TLS (port 465 style).
type SMTPSender struct {
	Host string
	Port string
	User string
	Pass string
	From string

	// DialTimeout bounds the connect; delivery inherits the request context
	// deadline through it. Zero means 10s.
	DialTimeout time.Duration
}

func NewSMTPSender(host, port, user, pass, from string) *SMTPSender {
	return &SMTPSender{Host: host, Port: port, User: user, Pass: pass, From: from}
}

func (e *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	sp, _ := tracer.StartSpanFromContext(ctx, "smtp.send", tracer.Tag("to", to))
	defer sp.Finish()

	err := e.send(ctx, to, subject, htmlBody)
	if err != nil {
		sp.SetTag("error", err)
	}
	return err
}

func (e *SMTPSender) send(ctx context.Context, to, subject, htmlBody string) error {
	msg := []byte(
		fmt.Sprintf("From: %s\r\n", e.From) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			htmlBody,
	)

	timeout := e.DialTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	dialer := &net.Dialer{Timeout: timeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", e.Host+":"+e.Port, &tls.Config{ServerName: e.Host})
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()

	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}

	client, err := smtp.NewClient(conn, e.Host)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Quit()

	// relays without AUTH (or with no credentials configured) still accept mail
	if e.User != "" {
		auth := smtp.PlainAuth("", e.User, e.Pass, e.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(e.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}
