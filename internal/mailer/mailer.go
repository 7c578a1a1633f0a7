package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/SashaDiz/real-estate-directory/internal/property/domain"
)

// Mailer notifies a listing's agent about incoming contact requests.
type Mailer interface {
	SendContactRequestEmail(property *domain.Property) error
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (m *SMTPMailer) SendContactRequestEmail(property *domain.Property) error {
	if property.Agent.Email == "" {
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", property.Agent.Email)
	msg.SetHeader("Subject", "New contact request")
	msg.SetBody("text/plain", fmt.Sprintf(
		"A visitor requested contact about the listing %q (%s).", property.Title, property.Location))
	return m.dialer.DialAndSend(msg)
}
