// Package email abstracts outbound mail delivery so the reminder scheduler
// does not care which provider is behind it.
package email

import (
	"fmt"
	"net/smtp"

	log "github.com/sirupsen/logrus"
)

// Dispatcher sends a single email. Implementations must be safe for use from
// scheduled jobs; a failed send is returned as an error, never a panic.
type Dispatcher interface {
	Send(to, subject, htmlBody string) error
}

// SMTPDispatcher delivers mail through a plain SMTP relay (Gmail-style).
type SMTPDispatcher struct {
	Host     string
	Port     string
	Sender   string
	Password string
}

func NewSMTPDispatcher(host, port, sender, password string) *SMTPDispatcher {
	return &SMTPDispatcher{Host: host, Port: port, Sender: sender, Password: password}
}

// Configured reports whether credentials are present. Without them the email
// feature degrades to a disabled status instead of failing sends.
func (d *SMTPDispatcher) Configured() bool {
	return d.Host != "" && d.Sender != "" && d.Password != ""
}

// Send sends an HTML email using SMTP.
func (d *SMTPDispatcher) Send(to, subject, htmlBody string) error {
	if !d.Configured() {
		return fmt.Errorf("smtp credentials not configured")
	}

	auth := smtp.PlainAuth("", d.Sender, d.Password, d.Host)

	msg := []byte("To: " + to + "\r\n" +
		"From: Water Tracker <" + d.Sender + ">\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" + htmlBody + "\r\n")

	address := d.Host + ":" + d.Port

	if err := smtp.SendMail(address, auth, d.Sender, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

// LogDispatcher logs mail instead of sending it. Used in development and as a
// fallback when SMTP credentials are absent.
type LogDispatcher struct{}

func (LogDispatcher) Send(to, subject, htmlBody string) error {
	log.WithFields(log.Fields{
		"to":      to,
		"subject": subject,
		"bytes":   len(htmlBody),
	}).Info("Email dispatch (log only)")
	return nil
}
