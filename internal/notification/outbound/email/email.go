package email

import (
	"context"

	"github.com/shandysiswandi/cenety/internal/pkg/instrument"
	"github.com/shandysiswandi/cenety/internal/pkg/mail"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Mail struct {
	client mail.Mail
	ins    instrument.Instrumentation
}

func New(client mail.Mail, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, ins: ins}
}

// SendAlert delivers one security alert to a single recipient.
func (m *Mail) SendAlert(ctx context.Context, to, subject, htmlBody, textBody string) error {
	ctx, span := m.ins.Tracer("notification.outbound.email").Start(ctx, "SendAlert")
	defer span.End()

	span.SetAttributes(attribute.String("mail.subject", subject))

	if err := m.client.Send(ctx, mail.Message{
		To:       []string{to},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
