package infra

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/smtp"

	"pasteleria/internal/config"

	"github.com/jordan-wright/email"
)

// ErrSMTPNoConfigurado is returned when SMTP_HOST is empty.
var ErrSMTPNoConfigurado = errors.New("smtp no configurado")

// Adjunto is an in-memory email attachment.
type Adjunto struct {
	Nombre      string
	ContentType string
	Datos       []byte
}

// Mailer wraps SMTP configuration for sending the daily report.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Enviar delivers one message. ctx is only checked before dialing; net/smtp
// has no cancellation hook.
func (m *Mailer) Enviar(ctx context.Context, para []string, asunto, cuerpo string, adjuntos ...Adjunto) error {
	if m.host == "" {
		return ErrSMTPNoConfigurado
	}
	if len(para) == 0 {
		return errors.New("mailer: sin destinatarios")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = m.user
	e.To = para
	e.Subject = asunto
	e.Text = []byte(cuerpo)

	for _, a := range adjuntos {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		if _, err := e.Attach(bytes.NewReader(a.Datos), a.Nombre, ct); err != nil {
			return fmt.Errorf("mailer: attach %s: %w", a.Nombre, err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}
