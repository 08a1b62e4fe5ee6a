package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/mail.v2"
)

// Dialer is the part of *mail.Dialer the Email notifier needs.
type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type EmailConfig struct {
	Sender   string
	Receiver string
	Password string
	Host     string
	Port     int
}

// Email sends a plain text alert with an HTML alternative over SMTP.
// Port 465 uses implicit TLS.
type Email struct {
	from   string
	to     string
	dialer Dialer
	now    func() time.Time
}

func NewEmail(cfg EmailConfig) *Email {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Sender, cfg.Password)
	d.Timeout = 20 * time.Second
	return &Email{
		from:   cfg.Sender,
		to:     cfg.Receiver,
		dialer: d,
		now:    time.Now,
	}
}

var emailTmpl = template.Must(template.New("email").Parse(`<html><body style="font-family: monospace; background:#f4f7fb; padding:2rem;">
  <div style="max-width:520px; margin:auto; background:#fff; border:1px solid #dae3ed; border-radius:4px; padding:2rem;">
    <h2 style="color:#0f1f30; margin-top:0;">{{.Subject}}</h2>
    <pre style="background:#f4f7fb; padding:1rem; border-radius:4px; font-size:.85rem; color:#0f1f30;">{{.Body}}</pre>
    <p style="color:#6b8aaa; font-size:.75rem; margin-bottom:0;">Site Monitor · {{.Stamp}}</p>
  </div>
</body></html>`))

func (e *Email) render(subject, body string) (string, error) {
	var buf bytes.Buffer
	err := emailTmpl.Execute(&buf, struct {
		Subject, Body, Stamp string
	}{subject, body, e.now().Format(TimeLayout)})
	return buf.String(), err
}

func (e *Email) Send(ctx context.Context, subject, body string) error {
	html, err := e.render(subject, body)
	if err != nil {
		return fmt.Errorf("render email: %w", err)
	}

	m := mail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", e.to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	m.AddAlternative("text/html", html)

	// DialAndSend has no context; don't let it hold the caller past ctx.
	done := make(chan error, 1)
	go func() { done <- e.dialer.DialAndSend(m) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send email: %w", ctx.Err())
	}
}
