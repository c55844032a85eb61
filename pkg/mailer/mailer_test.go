package mailer

import (
	"context"
	"strings"
	"testing"

	"github.com/serviprohq/servipro-backend/pkg/config"
)

func TestNewSMTPValidatesConfig(t *testing.T) {
	if _, err := NewSMTP(context.Background(), config.SMTPConfig{Port: 587}, nil); err == nil {
		t.Fatal("expected error for missing host")
	}
	if _, err := NewSMTP(context.Background(), config.SMTPConfig{Host: "smtp.example.com", Port: 0}, nil); err == nil {
		t.Fatal("expected error for missing port")
	}
	if _, err := NewSMTP(context.Background(), config.SMTPConfig{Host: "smtp.example.com", Port: 587}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBuildPayloadHeaders(t *testing.T) {
	payload := string(buildPayload(Message{
		FromName:  "ServiPro",
		FromEmail: "no-reply@servipro.com",
		To:        "contacto@servipro.com",
		ReplyTo:   "maria@example.com",
		Subject:   "Hola",
		Body:      "Cuerpo del mensaje",
	}))

	for _, want := range []string{
		"From: ServiPro <no-reply@servipro.com>\r\n",
		"To: contacto@servipro.com\r\n",
		"Reply-To: maria@example.com\r\n",
		"Subject: Hola\r\n",
		"Content-Type: text/plain; charset=utf-8\r\n",
		"\r\nCuerpo del mensaje\r\n",
	} {
		if !strings.Contains(payload, want) {
			t.Fatalf("payload missing %q:\n%s", want, payload)
		}
	}
}

func TestBuildPayloadEncodesNonASCIISubject(t *testing.T) {
	payload := string(buildPayload(Message{
		FromEmail: "no-reply@servipro.com",
		To:        "x@example.com",
		Subject:   "Hemos recibido tu mensaje - ServiPró",
		Body:      "hola",
	}))

	if !strings.Contains(payload, "=?utf-8?q?") {
		t.Fatalf("expected q-encoded subject:\n%s", payload)
	}
}

func TestBuildPayloadOmitsReplyToWhenEmpty(t *testing.T) {
	payload := string(buildPayload(Message{
		FromEmail: "no-reply@servipro.com",
		To:        "x@example.com",
		Subject:   "Hola",
		Body:      "hola",
	}))
	if strings.Contains(payload, "Reply-To:") {
		t.Fatal("unexpected Reply-To header")
	}
}
