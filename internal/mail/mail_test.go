package mail

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNewReturnsNoopWhenDisabled(t *testing.T) {
	sender := New(Config{Enabled: false, Host: "smtp.example.com"})
	if _, ok := sender.(Noop); !ok {
		t.Fatalf("expected Noop sender, got %T", sender)
	}
	if err := sender.Send(context.Background(), Message{To: []string{"a@example.com"}}); !errors.Is(err, ErrMailDisabled) {
		t.Fatalf("expected ErrMailDisabled, got %v", err)
	}
}

func TestSMTPSenderValidatesBeforeDialing(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		msg  Message
		want error
	}{
		{
			name: "missing host",
			cfg:  Config{Enabled: true, Port: 25, From: "site@example.com"},
			msg:  Message{To: []string{"a@example.com"}},
			want: ErrMailNotConfigured,
		},
		{
			name: "no recipients",
			cfg:  Config{Enabled: true, Host: "smtp.example.com", Port: 25, From: "site@example.com"},
			msg:  Message{},
			want: ErrInvalidRecipient,
		},
		{
			name: "bad recipient",
			cfg:  Config{Enabled: true, Host: "smtp.example.com", Port: 25, From: "site@example.com"},
			msg:  Message{To: []string{"not-an-email"}},
			want: ErrInvalidRecipient,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := NewSMTPSender(tc.cfg).Send(context.Background(), tc.msg)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestBuildMessageHeaders(t *testing.T) {
	payload := string(buildMessage(buildFromAddress("site@example.com", "Site"), Message{
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "You're Welcome!",
		Body:    "Hello, \n Thank you.",
	}))

	for _, want := range []string{
		"From: \"Site\" <site@example.com>\r\n",
		"To: a@example.com, b@example.com\r\n",
		"Subject: You're Welcome!\r\n",
		"Content-Type: text/plain; charset=UTF-8\r\n",
		"\r\n\r\nHello, \r\n Thank you.",
	} {
		if !strings.Contains(payload, want) {
			t.Fatalf("expected payload to contain %q, got %q", want, payload)
		}
	}
}

func TestValidateAddress(t *testing.T) {
	got, err := ValidateAddress(" Jane <jane@example.com> ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "jane@example.com" {
		t.Fatalf("expected bare address, got %q", got)
	}
}
