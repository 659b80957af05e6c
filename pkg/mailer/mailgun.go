package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"

	"github.com/oksasatya/cohesia-portal/pkg/mailer/templates"
)

// Mailgun sends mail through the Mailgun API.
type Mailgun struct {
	Sender string

	client *mg.MailgunImpl
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{Sender: sender, client: mg.NewMailgun(domain, apiKey)}
}

// Send sends an email. html is optional; when set it is used as the HTML body.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := m.client.Send(c, msg)
	return err
}

// SendTemplate renders the named template set with data and sends it to.
func (m *Mailgun) SendTemplate(ctx context.Context, to, name string, data any) error {
	subject, text, html, err := templates.Render(name, data)
	if err != nil {
		return err
	}
	return m.Send(ctx, to, subject, text, html)
}
