package clients

import (
	"fmt"
	"html"
	"time"

	"github.com/wneessen/go-mail"
)

// MailSender defines the interface for outbound email
type MailSender interface {
	SendWelcomeEmail(to, representativeName, companyName string) error
}

// SMTPConfig holds the SMTP connection settings loaded from SSM
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// SMTPMailSender sends email through a plain SMTP relay
type SMTPMailSender struct {
	cfg SMTPConfig
}

// NewSMTPMailSender creates a new SMTP mail sender
func NewSMTPMailSender(cfg SMTPConfig) *SMTPMailSender {
	return &SMTPMailSender{cfg: cfg}
}

// SendWelcomeEmail sends the one-time welcome message after a company space
// becomes verified.
func (s *SMTPMailSender) SendWelcomeEmail(to, representativeName, companyName string) error {
	if companyName == "" {
		companyName = "IKARIS"
	}
	if representativeName == "" {
		representativeName = "equipo"
	}

	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}
	msg.Subject(fmt.Sprintf("Bienvenido a IKARIS, %s", companyName))
	msg.SetBodyString(mail.TypeTextHTML, fmt.Sprintf(`
  <div style="font-family:Arial,sans-serif; line-height:1.5; color:#111;">
    <h2>Bienvenido a IKARIS</h2>
    <p>Hola <b>%s</b>,</p>
    <p>Tu espacio de empresa <b>%s</b> ya está listo.</p>
    <p>Ya puedes crear formularios, gestionar roles y operar con trazabilidad.</p>
    <br/>
    <p style="font-size:12px; opacity:.7">— IKARIS TECH</p>
  </div>
	`, html.EscapeString(representativeName), html.EscapeString(companyName)))
	msg.SetCharset(mail.CharsetUTF8)

	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithUsername(s.cfg.User),
		mail.WithPassword(s.cfg.Pass),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithTimeout(12*time.Second),
	)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return client.DialAndSend(msg)
}
