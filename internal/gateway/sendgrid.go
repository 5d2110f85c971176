package gateway

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"podpal-backend/internal/logger"
)

// SendGridSender implements EmailSender on the SendGrid v3 API.
type SendGridSender struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewSendGridSender(apiKey, fromEmail, fromName string) *SendGridSender {
	return &SendGridSender{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *SendGridSender) send(ctx context.Context, toEmail, toName, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	client := sendgrid.NewSendClient(s.apiKey)
	logger.ExternalServiceCall("sendgrid", "Send", "to", toEmail, "subject", subject)
	response, err := client.SendWithContext(ctx, message)
	logger.ExternalServiceResult("sendgrid", "Send", err, "to", toEmail)

	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *SendGridSender) SendJoinRequestEmail(ctx context.Context, toEmail, toName, podTitle, applicantName string) error {
	subject := fmt.Sprintf("New join request for %s", podTitle)
	plainText := fmt.Sprintf("%s wants to join your pod %q. Open the app to review the request.", applicantName, podTitle)
	htmlContent := fmt.Sprintf(`<p><strong>%s</strong> wants to join your pod <strong>%s</strong>.</p><p>Open the app to review the request.</p>`, applicantName, podTitle)
	return s.send(ctx, toEmail, toName, subject, plainText, htmlContent)
}

func (s *SendGridSender) SendPodCanceledEmail(ctx context.Context, toEmail, toName, podTitle string) error {
	subject := fmt.Sprintf("Pod %s was canceled", podTitle)
	plainText := fmt.Sprintf("The pod %q you joined has been canceled by its organizer.", podTitle)
	htmlContent := fmt.Sprintf(`<p>The pod <strong>%s</strong> you joined has been canceled by its organizer.</p>`, podTitle)
	return s.send(ctx, toEmail, toName, subject, plainText, htmlContent)
}
