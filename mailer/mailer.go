// Package mailer sends invoices over SMTP. All transport failures surface
// as a single delivery error; the caller decides what that means for the
// invoice lifecycle.
package mailer

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"

	"github.com/satheeshds/facturation/invoice"
)

// Mailer holds the SMTP coordinates. A zero host means sending is disabled.
type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NewFromEnv reads SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASSWORD and
// SMTP_FROM_EMAIL.
func NewFromEnv() *Mailer {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if port == 0 {
		port = 587
	}
	return &Mailer{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		Username: os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM_EMAIL"),
	}
}

// Enabled reports whether an SMTP host is configured.
func (m *Mailer) Enabled() bool {
	return m.Host != ""
}

// Attachment is a file sent along with a message.
type Attachment struct {
	Filename string
	Bytes    []byte
	MIMEType string
}

// Message is one outbound email.
type Message struct {
	FromName    string
	To          string
	Bcc         string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Send delivers msg. Any transport failure is wrapped as
// invoice.ErrEmailDelivery.
func (m *Mailer) Send(msg Message) error {
	if !m.Enabled() {
		return fmt.Errorf("%w: SMTP is not configured", invoice.ErrEmailDelivery)
	}

	out := gomail.NewMessage()
	out.SetAddressHeader("From", m.From, msg.FromName)
	out.SetHeader("To", msg.To)
	if msg.Bcc != "" {
		out.SetHeader("Bcc", msg.Bcc)
	}
	out.SetHeader("Subject", msg.Subject)
	out.SetBody("text/plain", msg.Body)

	for _, att := range msg.Attachments {
		data := att.Bytes
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		}
		if att.MIMEType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{
				"Content-Type": {att.MIMEType},
			}))
		}
		out.Attach(att.Filename, settings...)
	}

	dialer := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	if err := dialer.DialAndSend(out); err != nil {
		return fmt.Errorf("%w: %v", invoice.ErrEmailDelivery, err)
	}
	return nil
}
