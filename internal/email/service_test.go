package email

import (
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/smtp"
	"strings"
	"testing"
)

func TestServiceIsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected bool
	}{
		{
			name:     "empty config",
			config:   Config{},
			expected: false,
		},
		{
			name: "missing host",
			config: Config{
				Port: "587",
				From: "site@example.com",
			},
			expected: false,
		},
		{
			name: "missing from",
			config: Config{
				Host: "smtp.example.com",
				Port: "587",
			},
			expected: false,
		},
		{
			name: "fully configured",
			config: Config{
				Host: "smtp.example.com",
				Port: "587",
				From: "site@example.com",
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.config)
			if svc.IsConfigured() != tt.expected {
				t.Errorf("IsConfigured() = %v, want %v", svc.IsConfigured(), tt.expected)
			}
		})
	}
}

type captured struct {
	addr string
	from string
	to   []string
	msg  string
}

func newCapturingService(cfg Config) (*Service, *captured) {
	svc := NewService(cfg)
	c := &captured{}
	svc.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		c.addr, c.from, c.to, c.msg = addr, from, to, string(msg)
		return nil
	}
	return svc, c
}

func TestNotifyContact(t *testing.T) {
	svc, c := newCapturingService(Config{
		Host:     "smtp.example.com",
		Port:     "587",
		From:     "site@example.com",
		FromName: "Portfolio",
		NotifyTo: "owner@example.com",
	})

	if err := svc.NotifyContact("Ada", "ada@example.com", "<b>hi</b> there"); err != nil {
		t.Fatalf("NotifyContact: %v", err)
	}
	if c.addr != "smtp.example.com:587" {
		t.Errorf("addr = %q", c.addr)
	}
	if len(c.to) != 1 || c.to[0] != "owner@example.com" {
		t.Errorf("to = %v", c.to)
	}
	if !strings.Contains(c.msg, "From: Portfolio <site@example.com>") {
		t.Error("message should carry the display sender")
	}
	if !strings.Contains(c.msg, "Subject: New contact message from Ada") {
		t.Error("message should carry the subject")
	}
	if !strings.Contains(c.msg, "&lt;b&gt;hi&lt;/b&gt;") {
		t.Error("html part should escape the visitor message")
	}
}

func TestNotifyFollowDefaultsRecipientToSender(t *testing.T) {
	svc, c := newCapturingService(Config{Host: "smtp.example.com", Port: "25", From: "site@example.com"})

	if err := svc.NotifyFollow("Grace", "grace@example.com"); err != nil {
		t.Fatalf("NotifyFollow: %v", err)
	}
	if len(c.to) != 1 || c.to[0] != "site@example.com" {
		t.Errorf("to = %v", c.to)
	}
	if !strings.Contains(c.msg, "grace@example.com") {
		t.Error("message should mention the follower email")
	}
}

func TestSubjectHeaderInjectionIsStripped(t *testing.T) {
	svc, c := newCapturingService(Config{Host: "h", Port: "25", From: "site@example.com"})

	if err := svc.NotifyFollow("Eve\r\nBcc: x@example.com", "eve@example.com"); err != nil {
		t.Fatalf("NotifyFollow: %v", err)
	}
	headers, _, ok := strings.Cut(c.msg, "\r\n\r\n")
	if !ok {
		t.Fatalf("message has no header block: %q", c.msg)
	}
	if strings.Contains(headers, "\r\nBcc:") {
		t.Errorf("subject injected a header: %q", headers)
	}
	if !strings.Contains(headers, "Subject: New follower: Eve  Bcc: x@example.com") {
		t.Errorf("subject should keep the name on one line: %q", headers)
	}
}

func TestVisitorMessageCannotForgeMimeParts(t *testing.T) {
	svc, c := newCapturingService(Config{Host: "h", Port: "25", From: "site@example.com"})

	forged := "hello\r\n--boundary-portfolio\r\nContent-Type: text/html\r\n\r\n<a href=x>click</a>"
	if err := svc.NotifyContact("Mallory", "m@example.com", forged); err != nil {
		t.Fatalf("NotifyContact: %v", err)
	}

	msg, err := mail.ReadMessage(strings.NewReader(c.msg))
	if err != nil {
		t.Fatalf("read message: %v", err)
	}
	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	if err != nil {
		t.Fatalf("parse content type: %v", err)
	}
	if mediaType != "multipart/alternative" || params["boundary"] == "" {
		t.Fatalf("content type = %s %v", mediaType, params)
	}
	if strings.Contains(forged, params["boundary"]) {
		t.Fatalf("boundary %q occurs in the visitor message", params["boundary"])
	}

	reader := multipart.NewReader(msg.Body, params["boundary"])
	var types []string
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("next part: %v", err)
		}
		types = append(types, part.Header.Get("Content-Type"))
	}
	if len(types) != 2 || !strings.HasPrefix(types[0], "text/plain") || !strings.HasPrefix(types[1], "text/html") {
		t.Fatalf("expected text and html parts only, got %v", types)
	}
}

func TestNotifyWithoutConfig(t *testing.T) {
	svc := NewService(Config{})
	if err := svc.NotifyContact("a", "b", "c"); err == nil {
		t.Error("expected error when email is not configured")
	}
}
