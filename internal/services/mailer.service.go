package services

import (
	"fmt"
	"net/smtp"
	"strings"

	"pehredar/internal/models"
)

// Mailer sends one notification message. The SMTP implementation is
// used in production; tests substitute a recorder.
type Mailer interface {
	Send(server, from, to, subject, htmlBody string) error
}

// SMTPMailer delivers messages through a plain SMTP server
type SMTPMailer struct{}

// NewSMTPMailer creates an SMTP-backed mailer
func NewSMTPMailer() SMTPMailer {
	return SMTPMailer{}
}

// Send delivers a single HTML message. The server address may omit the
// port; 25 is assumed.
func (SMTPMailer) Send(server, from, to, subject, htmlBody string) error {
	addr := server
	if !strings.Contains(addr, ":") {
		addr += ":25"
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	if err := smtp.SendMail(addr, nil, from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

// alertEmailBody renders the notification body for an alert
func alertEmailBody(alert models.Alert) string {
	severity := "Warning"
	if alert.IsCritical {
		severity = "CRITICAL"
	}

	var body strings.Builder
	body.WriteString("<html><body>")
	body.WriteString("<h2>Resource monitor alert</h2>")
	fmt.Fprintf(&body, "<p><strong>Resource:</strong> %s</p>", alert.ResourceType)
	fmt.Fprintf(&body, "<p><strong>Value:</strong> %.1f%%</p>", alert.Value)
	fmt.Fprintf(&body, "<p><strong>Threshold:</strong> %.1f%%</p>", alert.Threshold)
	fmt.Fprintf(&body, "<p><strong>Time:</strong> %s</p>", alert.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&body, "<p><strong>Message:</strong> %s</p>", alert.Message)
	fmt.Fprintf(&body, "<p><strong>Severity:</strong> %s</p>", severity)
	body.WriteString("</body></html>")
	return body.String()
}
