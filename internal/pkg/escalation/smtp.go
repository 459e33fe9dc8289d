package escalation

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/AmeyBarve/CivicTrack/internal/pkg/env"
)

// ErrSMTPNotConfigured is returned when no SMTP host is set; drafts can
// still be composed and handed to the caller.
var ErrSMTPNotConfigured = fmt.Errorf("SMTP_HOST is not configured")

// Send delivers a composed draft via SMTP.
func Send(d *Draft) error {
	host := env.GetEnv("SMTP_HOST", "")
	if host == "" {
		return ErrSMTPNotConfigured
	}
	port := env.GetEnv("SMTP_PORT", "587")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, strings.Join(d.Recipients, ", "), d.Subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=UTF-8\r\n\r\n" +
			d.Body,
	)

	err := smtp.SendMail(addr, auth, sender, d.Recipients, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	} else {
		log.Printf("Escalation sent to %s via %s", strings.Join(d.Recipients, ", "), addr)
	}
	return err
}
