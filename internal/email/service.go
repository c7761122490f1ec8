// Package email sends owner notifications for contact and follow submissions via SMTP.
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"
)

// Config holds SMTP configuration
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
	// NotifyTo receives every notification. Defaults to From.
	NotifyTo string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Service provides email sending
type Service struct {
	config Config
	server string
	auth   smtp.Auth
	send   sendFunc
}

// NewService creates a new email service
func NewService(config Config) *Service {
	var auth smtp.Auth
	if config.Username != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}
	if config.NotifyTo == "" {
		config.NotifyTo = config.From
	}

	return &Service{
		config: config,
		server: config.Host + ":" + config.Port,
		auth:   auth,
		send:   smtp.SendMail,
	}
}

// IsConfigured returns true if email is configured
func (s *Service) IsConfigured() bool {
	return s.config.Host != "" && s.config.Port != "" && s.config.From != ""
}

// SendHTMLEmail sends a multipart text/HTML email
func (s *Service) SendHTMLEmail(to []string, subject, textBody, htmlBody string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	var body bytes.Buffer
	parts := multipart.NewWriter(&body)
	for _, part := range []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=UTF-8", textBody},
		{"text/html; charset=UTF-8", htmlBody},
	} {
		w, err := parts.CreatePart(textproto.MIMEHeader{"Content-Type": {part.contentType}})
		if err != nil {
			return fmt.Errorf("create mime part: %w", err)
		}
		if _, err := io.WriteString(w, part.content); err != nil {
			return fmt.Errorf("write mime part: %w", err)
		}
	}
	if err := parts.Close(); err != nil {
		return fmt.Errorf("close mime body: %w", err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "Subject: %s\r\n", sanitizeHeader(subject))
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n", parts.Boundary())
	fmt.Fprintf(&msg, "\r\n")
	msg.Write(body.Bytes())

	return s.send(s.server, s.auth, s.config.From, to, msg.Bytes())
}

type ContactData struct {
	Name    string
	Email   string
	Message string
}

type FollowData struct {
	Name  string
	Email string
}

// NotifyContact tells the site owner about a new contact message.
func (s *Service) NotifyContact(name, email, message string) error {
	data := ContactData{Name: name, Email: email, Message: message}
	html, err := renderTemplate(contactEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("render contact template: %w", err)
	}
	text := fmt.Sprintf("From: %s <%s>\n\n%s", name, email, message)
	return s.SendHTMLEmail([]string{s.config.NotifyTo}, "New contact message from "+name, text, html)
}

// NotifyFollow tells the site owner about a new follower.
func (s *Service) NotifyFollow(name, email string) error {
	data := FollowData{Name: name, Email: email}
	html, err := renderTemplate(followEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("render follow template: %w", err)
	}
	text := fmt.Sprintf("%s <%s> started following the portfolio.", name, email)
	return s.SendHTMLEmail([]string{s.config.NotifyTo}, "New follower: "+name, text, html)
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

func renderTemplate(tmpl string, data interface{}) (string, error) {
	t := template.Must(template.New("email").Parse(tmpl))
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const contactEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New contact message</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .meta { color: #666; font-size: 14px; }
        .message { white-space: pre-wrap; background: #f6f8fa; padding: 12px; border-radius: 4px; }
    </style>
</head>
<body>
    <h2>New contact message</h2>
    <p class="meta">From {{.Name}} &lt;{{.Email}}&gt;</p>
    <div class="message">{{.Message}}</div>
</body>
</html>`

const followEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New follower</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
    </style>
</head>
<body>
    <h2>New follower</h2>
    <p>{{.Name}} ({{.Email}}) asked to follow your updates.</p>
</body>
</html>`
