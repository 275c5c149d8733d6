// Package mailer delivers contact-form messages through the Resend API.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/mail"
	"strings"

	"github.com/resend/resend-go/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// ErrDisabled is returned when no API key or recipient is configured
	ErrDisabled = errors.New("mailer is not configured")
	// ErrInvalidMessage wraps every validation failure
	ErrInvalidMessage = errors.New("invalid message")
)

// Message is one contact-form submission
type Message struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Validate trims every field and checks that all are present and the
// address parses.
func (m *Message) Validate() error {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Message = strings.TrimSpace(m.Message)

	if m.Name == "" || m.Email == "" || m.Message == "" {
		return fmt.Errorf("%w: name, email and message are required", ErrInvalidMessage)
	}
	if _, err := mail.ParseAddress(m.Email); err != nil {
		return fmt.Errorf("%w: email %q is not a valid address", ErrInvalidMessage, m.Email)
	}
	return nil
}

// Sender is the part of the Resend client used to deliver mail
type Sender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Mailer renders and sends contact messages to a fixed recipient
type Mailer struct {
	sender Sender
	from   string
	to     string
}

// New creates a mailer backed by the Resend API. It is disabled when apiKey
// or to is empty.
func New(apiKey, from, to string) *Mailer {
	if apiKey == "" {
		return NewWithSender(nil, from, to)
	}
	return NewWithSender(resend.NewClient(apiKey).Emails, from, to)
}

// NewWithSender creates a mailer over an arbitrary sender
func NewWithSender(s Sender, from, to string) *Mailer {
	return &Mailer{
		sender: s,
		from:   from,
		to:     to,
	}
}

// Enabled reports whether Send can deliver
func (m *Mailer) Enabled() bool {
	return m != nil && m.sender != nil && m.to != ""
}

// Send validates msg, renders it and returns the provider's message id
func (m *Mailer) Send(ctx context.Context, msg Message) (string, error) {
	if !m.Enabled() {
		return "", ErrDisabled
	}
	if err := msg.Validate(); err != nil {
		return "", err
	}

	body, err := Render(msg)
	if err != nil {
		return "", err
	}

	resp, err := m.sender.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{m.to},
		ReplyTo: msg.Email,
		Subject: m.Subject(msg),
		Html:    body,
	})
	if err != nil {
		return "", fmt.Errorf("sending email: %w", err)
	}
	if resp == nil {
		return "", errors.New("sending email: empty response")
	}

	return resp.Id, nil
}

// Subject returns the subject line for msg
func (m *Mailer) Subject(msg Message) string {
	// Casers keep state between calls
	title := cases.Title(language.Und)
	return fmt.Sprintf("New message from %s - Contact", title.String(strings.TrimSpace(msg.Name)))
}

var bodyTemplate = template.Must(template.New("contact").Parse(`<div>
  <h2>New contact message</h2>
  <p><strong>Name:</strong> {{.Name}}</p>
  <p><strong>Email:</strong> {{.Email}}</p>
  <h3>Message:</h3>
  <p>{{range $i, $line := .Lines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
</div>
`))

// Render returns the escaped HTML body of msg; newlines become <br>.
func Render(msg Message) (string, error) {
	data := struct {
		Name  string
		Email string
		Lines []string
	}{
		Name:  msg.Name,
		Email: msg.Email,
		Lines: strings.Split(strings.ReplaceAll(msg.Message, "\r\n", "\n"), "\n"),
	}

	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering email: %w", err)
	}
	return buf.String(), nil
}
