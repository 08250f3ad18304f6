// utils/email.go
package utils

import (
	"fmt"
	"html"
	"log"

	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"go-storefront/models"
)

// Email providers
const (
	ProviderPostmark = "postmark"
	ProviderSendGrid = "sendgrid"
)

// EmailConfig configures NewEmailService.
type EmailConfig struct {
	Provider      string
	PostmarkToken string
	SendGridKey   string
	Sender        string
	// Mailbox receives contact form notifications. Defaults to Sender.
	Mailbox string
	BaseURL string
}

type sender interface {
	send(to, subject, htmlBody string) error
}

type postmarkSender struct {
	client *postmark.Client
	from   string
}

func (s *postmarkSender) send(to, subject, htmlBody string) error {
	_, err := s.client.SendEmail(postmark.Email{
		From:     s.from,
		To:       to,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: htmlBody,
	})
	return err
}

type sendgridSender struct {
	client *sendgrid.Client
	from   string
}

func (s *sendgridSender) send(to, subject, htmlBody string) error {
	msg := mail.NewSingleEmail(mail.NewEmail("", s.from), subject, mail.NewEmail("", to), htmlBody, htmlBody)
	resp, err := s.client.Send(msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// logSender is used when no provider is configured.
type logSender struct{}

func (logSender) send(to, subject, htmlBody string) error {
	log.Printf("email disabled, dropping %q to %s", subject, to)
	return nil
}

// EmailService sends the storefront's emails through Postmark or SendGrid
type EmailService struct {
	sender  sender
	mailbox string
	baseURL string
}

// NewEmailService picks the provider from cfg. Without credentials emails are
// only logged.
func NewEmailService(cfg EmailConfig) *EmailService {
	es := &EmailService{mailbox: cfg.Mailbox, baseURL: cfg.BaseURL}
	if es.mailbox == "" {
		es.mailbox = cfg.Sender
	}
	switch {
	case cfg.Provider == ProviderSendGrid && cfg.SendGridKey != "":
		es.sender = &sendgridSender{client: sendgrid.NewSendClient(cfg.SendGridKey), from: cfg.Sender}
	case cfg.Provider != ProviderSendGrid && cfg.PostmarkToken != "":
		es.sender = &postmarkSender{client: postmark.NewClient(cfg.PostmarkToken, ""), from: cfg.Sender}
	default:
		log.Println("No email provider configured. Emails will be logged only.")
		es.sender = logSender{}
	}
	return es
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	if err := es.sender.send(toEmail, subject, htmlContent); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendVerificationEmail sends an email verification link to the user
func (es *EmailService) SendVerificationEmail(toEmail, token string) error {
	link := fmt.Sprintf("%s/verify?token=%s", es.baseURL, token)
	htmlContent := fmt.Sprintf(
		"<strong>Please verify your email by clicking on the following link:</strong> <a href=\"%s\">Verify Email</a>",
		link,
	)
	return es.SendEmail(toEmail, "Verify Your Email", htmlContent)
}

// SendOrderConfirmationEmail sends an order confirmation email to the user
func (es *EmailService) SendOrderConfirmationEmail(toEmail string, order *models.Order) error {
	htmlContent := fmt.Sprintf(
		"<strong>Dear Customer,</strong><br><br>Thank you for your purchase! Your order (ID: %s) has been placed successfully.<br><br>Total Amount: <strong>$%s</strong><br>Payment Method: <strong>%s</strong><br>Ship to: %s, %s, %s<br><br>Thank you for shopping with us!",
		order.ID,
		order.Total.StringFixed(2),
		order.PaymentMethod,
		html.EscapeString(order.ShippingAddress.Name),
		html.EscapeString(order.ShippingAddress.City),
		html.EscapeString(order.ShippingAddress.Country),
	)
	return es.SendEmail(toEmail, "Order Confirmation", htmlContent)
}

// SendContactNotification forwards a contact form message to the store mailbox
func (es *EmailService) SendContactNotification(msg *models.ContactMessage) error {
	if es.mailbox == "" {
		return nil
	}
	htmlContent := fmt.Sprintf(
		"<strong>New message from %s</strong> (%s)<br><br><strong>%s</strong><br>%s",
		html.EscapeString(msg.Name),
		html.EscapeString(msg.Email),
		html.EscapeString(msg.Subject),
		html.EscapeString(msg.Message),
	)
	return es.SendEmail(es.mailbox, "Contact form: "+msg.Subject, htmlContent)
}
