package mailingservices

import (
	"context"
	"log"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

type Mailgun struct {
	Client *mailgun.MailgunImpl
	From   string
}

func (m *Mailgun) Init(domain, apiKey, from string) {
	m.Client = mailgun.NewMailgun(domain, apiKey)
	m.From = from
	if m.From == "" {
		m.From = "no-reply@" + domain
	}
	log.Println("Mailgun client initialized")
}

// SendResetPassword mails the reset link to the user.
func (m *Mailgun) SendResetPassword(toEmail, resetLink string) (string, error) {
	subject := "Reset your password"
	body := "Click the link below to reset your password:\n\n" + resetLink +
		"\n\nThe link expires in one hour. If you didn't request this, ignore this email."

	message := m.Client.NewMessage(m.From, subject, body, toEmail)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, id, err := m.Client.Send(ctx, message)
	if err != nil {
		log.Printf("error sending reset password mail: %v", err)
		return "", err
	}
	return id, nil
}
