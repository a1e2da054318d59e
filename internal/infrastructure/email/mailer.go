package email

import (
	"gopkg.in/gomail.v2"

	"github.com/stockdeck/marketplace-system/internal/core/ports"
)

// Config carries SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	AppName  string
}

// Mailer delivers mail over SMTP. It implements ports.Mailer.
type Mailer struct {
	cfg Config
}

func NewMailer(cfg Config) *Mailer {
	return &Mailer{cfg: cfg}
}

func (s *Mailer) Send(m ports.Mail) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", s.cfg.From, s.cfg.AppName)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/html", m.HTML)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	return d.DialAndSend(msg)
}
