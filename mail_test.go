package wonderfloyd

import (
	"strings"
	"testing"
)

func TestBuildMessageStripsHeaderBreaks(t *testing.T) {
	msg := string(buildMessage(
		"site@example.com",
		"admin@example.com",
		"[Blog] New contact message from Ada\r\nBcc: victim@example.com",
		"Name: Ada\nEmail: ada@example.com\n\nhello",
	))

	headers, body, ok := strings.Cut(msg, "\r\n\r\n")
	if !ok {
		t.Fatal("message has no header/body separator")
	}
	for _, line := range strings.Split(headers, "\r\n") {
		if strings.HasPrefix(line, "Bcc:") {
			t.Errorf("injected header line survived: %q", line)
		}
	}
	if !strings.Contains(headers, "Subject: [Blog] New contact message from AdaBcc: victim@example.com") {
		t.Errorf("subject not flattened to a single header line:\n%s", headers)
	}
	if !strings.Contains(body, "hello") {
		t.Errorf("body lost in assembly: %q", body)
	}
}

func TestSanitizeHeader(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Ada Lovelace", "Ada Lovelace"},
		{"Ada\r\nBcc: victim@example.com", "AdaBcc: victim@example.com"},
		{"line\nbreak", "linebreak"},
		{"  padded  ", "padded"},
	}
	for _, tc := range cases {
		if got := sanitizeHeader(tc.in); got != tc.want {
			t.Errorf("sanitizeHeader(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSendContactWithoutHostFails(t *testing.T) {
	m := NewMailer("", "587", "", "", "site@example.com", "admin@example.com", "Blog")
	if err := m.SendContact("Ada", "ada@example.com", "hello"); err == nil {
		t.Fatal("expected error when no SMTP host is configured")
	}
}
