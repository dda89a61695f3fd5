package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"

	"ovxassist-backend/lib/scrapers/omnivox/lea"
	"ovxassist-backend/lib/telemetry"
)

var tracer = telemetry.Tracer("ovxassist.lib.mailer")

type Config struct {
	Server   string `json:"server"`
	Port     int    `json:"port"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

type Mailer struct {
	config Config
}

func New(config Config) Mailer {
	return Mailer{config: config}
}

func (m Mailer) send(mail *email.Email) error {
	addr := fmt.Sprintf("%s:%d", m.config.Server, m.config.Port)
	err := mail.Send(
		addr,
		smtp.PlainAuth("", m.config.Address, m.config.Password, m.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	return err
}

// SendDocumentAlert tells a student that new documents were posted on
// Léa for one of their classes.
func (m Mailer) SendDocumentAlert(ctx context.Context, to, className string, docs []lea.Document) error {
	ctx, span := tracer.Start(ctx, "SendDocumentAlert")
	defer span.End()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Ovx Assist <%s>", m.config.Address)
	mail.To = []string{to}
	if len(docs) == 1 {
		mail.Subject = fmt.Sprintf("New document in %s", className)
	} else {
		mail.Subject = fmt.Sprintf("%d new documents in %s", len(docs), className)
	}

	var body strings.Builder
	fmt.Fprintf(&body, "New documents were posted in %s:\n\n", className)
	for _, doc := range docs {
		if doc.Posted != "" {
			fmt.Fprintf(&body, "- %s (%s)\n", doc.Name, doc.Posted)
		} else {
			fmt.Fprintf(&body, "- %s\n", doc.Name)
		}
	}
	body.WriteString("\nYou can view them on Léa.")
	mail.Text = []byte(body.String())

	err := m.send(mail)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}
	return nil
}
