package wonderfloyd

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer delivers contact-form submissions over authenticated SMTP:
// one message to the site admin, one acknowledgement back to the sender.
// Delivery is synchronous with no retries; a failure surfaces as a single
// opaque error the handler reports to the visitor.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	adminTo  string
	siteName string
}

// NewMailer creates a Mailer. An empty host disables delivery: SendContact
// then returns an error so submissions are never silently dropped.
func NewMailer(host, port, username, password, from, adminTo, siteName string) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		adminTo:  adminTo,
		siteName: siteName,
	}
}

// SendContact forwards a contact submission to the admin and sends the
// visitor an auto-acknowledgement.
func (m *Mailer) SendContact(name, email, message string) error {
	if m.host == "" {
		return fmt.Errorf("send contact mail: no SMTP host configured")
	}

	// Header-bound values come from the visitor; strip CR/LF so a crafted
	// name cannot smuggle extra headers into the message.
	name = sanitizeHeader(name)
	email = sanitizeHeader(email)

	adminSubject := fmt.Sprintf("[%s] New contact message from %s", m.siteName, name)
	adminBody := fmt.Sprintf("Name: %s\nEmail: %s\n\n%s", name, email, message)
	if err := m.send(m.adminTo, adminSubject, adminBody); err != nil {
		return fmt.Errorf("send contact mail: %w", err)
	}

	ackSubject := fmt.Sprintf("We received your message - %s", m.siteName)
	ackBody := fmt.Sprintf(`Hi %s,

Thanks for getting in touch! Your message has been received and we will
reply as soon as we can.

For reference, here is what you sent:

%s

The %s team`, name, message, m.siteName)
	if err := m.send(email, ackSubject, ackBody); err != nil {
		return fmt.Errorf("send acknowledgement mail: %w", err)
	}
	return nil
}

func (m *Mailer) send(to, subject, body string) error {
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	return smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{to}, buildMessage(m.from, to, subject, body))
}

// buildMessage assembles the wire message. Every header value is sanitized
// again here so no caller can emit a folded or injected header line.
func buildMessage(from, to, subject, body string) []byte {
	return []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		sanitizeHeader(from), sanitizeHeader(to), sanitizeHeader(subject), body))
}

// sanitizeHeader removes CR and LF from a value destined for a message
// header, closing off header injection via form input.
func sanitizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return strings.TrimSpace(s)
}
