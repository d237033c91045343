package infra

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/mail"
	"net/smtp"
	"path/filepath"

	"github.com/orhanozan33/epicebuhara-sub000/internal/config"

	"github.com/jordan-wright/email"
)

// ErrMailerNotConfigured is returned when SMTP_HOST is empty.
var ErrMailerNotConfigured = errors.New("mailer: smtp host not configured")

// Mailer sends invoice PDFs to dealers over SMTP. Port 587 upgrades with
// STARTTLS; any other port sends in plain text (local relays, MailHog).
type Mailer struct {
	from     string
	host     string
	port     int
	user     string
	password string
}

func NewMailer(cfg *config.Config) *Mailer {
	addr := cfg.SMTPFrom
	if addr == "" {
		addr = cfg.SMTPUser
	}
	from := (&mail.Address{Name: cfg.BusinessName, Address: addr}).String()
	return &Mailer{
		from:     from,
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
	}
}

// SendInvoice mails one invoice with its PDF attached under its base name.
func (m *Mailer) SendInvoice(to, subject, body, pdfPath string) error {
	if m.host == "" {
		return ErrMailerNotConfigured
	}

	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach %s: %w", filepath.Base(pdfPath), err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	if m.port == 587 {
		return e.SendWithStartTLS(addr, auth, &tls.Config{ServerName: m.host})
	}
	return e.Send(addr, auth)
}
