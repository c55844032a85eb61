package contact

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/serviprohq/servipro-backend/pkg/config"
	pkgerrors "github.com/serviprohq/servipro-backend/pkg/errors"
	"github.com/serviprohq/servipro-backend/pkg/mailer"
)

type fakeMailer struct {
	sent    []mailer.Message
	failNth int
	calls   int
}

func (f *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	f.calls++
	if f.failNth != 0 && f.calls == f.failNth {
		return errors.New("smtp down")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func testConfig() config.ContactConfig {
	return config.ContactConfig{
		OperatorEmail: "contacto@servipro.com",
		FromEmail:     "no-reply@servipro.com",
		FromName:      "ServiPro",
	}
}

func validInput() Input {
	return Input{
		Name:    "María García",
		Email:   "Maria@Example.com ",
		Subject: "Consulta sobre un servicio",
		Message: "Hola, me gustaría más información.",
	}
}

func TestNewNotifierValidatesDeps(t *testing.T) {
	if _, err := NewNotifier(nil, testConfig(), nil); err == nil {
		t.Fatal("expected error for nil mailer")
	}
	if _, err := NewNotifier(&fakeMailer{}, config.ContactConfig{}, nil); err == nil {
		t.Fatal("expected error for missing operator email")
	}
	if _, err := NewNotifier(&fakeMailer{}, testConfig(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNotifySendsOperatorMailAndAutoReply(t *testing.T) {
	mail := &fakeMailer{}
	n, err := NewNotifier(mail, testConfig(), nil)
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}

	if err := n.Notify(context.Background(), validInput()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(mail.sent) != 2 {
		t.Fatalf("expected 2 mails, got %d", len(mail.sent))
	}

	operator := mail.sent[0]
	if operator.To != "contacto@servipro.com" {
		t.Fatalf("operator mail went to %q", operator.To)
	}
	if operator.ReplyTo != "maria@example.com" {
		t.Fatalf("reply-to should be the lowercased sender, got %q", operator.ReplyTo)
	}
	if !strings.HasPrefix(operator.Subject, "[Contacto] ") {
		t.Fatalf("unexpected operator subject %q", operator.Subject)
	}
	if !strings.Contains(operator.Body, "María García") {
		t.Fatalf("operator body missing sender name:\n%s", operator.Body)
	}

	reply := mail.sent[1]
	if reply.To != "maria@example.com" {
		t.Fatalf("auto-reply went to %q", reply.To)
	}
	if reply.Subject != autoReplySubject {
		t.Fatalf("unexpected auto-reply subject %q", reply.Subject)
	}
	if reply.ReplyTo != "" {
		t.Fatalf("auto-reply must not carry a reply-to, got %q", reply.ReplyTo)
	}
}

func TestNotifyOperatorFailureIsDependencyError(t *testing.T) {
	mail := &fakeMailer{failNth: 1}
	n, _ := NewNotifier(mail, testConfig(), nil)

	err := n.Notify(context.Background(), validInput())
	if err == nil {
		t.Fatal("expected error when operator mail fails")
	}

	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if mail.calls != 2 {
		t.Fatalf("auto-reply must still be attempted, got %d sends", mail.calls)
	}
	if len(mail.sent) != 1 {
		t.Fatalf("expected only the auto-reply to land, got %d", len(mail.sent))
	}
	if mail.sent[0].To != "maria@example.com" || mail.sent[0].Subject != autoReplySubject {
		t.Fatalf("surviving mail should be the auto-reply, got %+v", mail.sent[0])
	}
}

func TestNotifyAutoReplyFailureIsSwallowed(t *testing.T) {
	mail := &fakeMailer{failNth: 2}
	n, _ := NewNotifier(mail, testConfig(), nil)

	if err := n.Notify(context.Background(), validInput()); err != nil {
		t.Fatalf("auto-reply failure must not surface, got %v", err)
	}
	if len(mail.sent) != 1 {
		t.Fatalf("expected only the operator mail to land, got %d", len(mail.sent))
	}
}

func TestNotifyValidation(t *testing.T) {
	mail := &fakeMailer{}
	n, _ := NewNotifier(mail, testConfig(), nil)

	cases := []struct {
		name  string
		input Input
	}{
		{"empty name", Input{Email: "a@b.com", Subject: "x", Message: "y"}},
		{"empty email", Input{Name: "a", Subject: "x", Message: "y"}},
		{"empty subject", Input{Name: "a", Email: "a@b.com", Message: "y"}},
		{"empty message", Input{Name: "a", Email: "a@b.com", Subject: "x"}},
		{"long message", Input{Name: "a", Email: "a@b.com", Subject: "x", Message: strings.Repeat("m", 1001)}},
		{"long subject", Input{Name: "a", Email: "a@b.com", Subject: strings.Repeat("s", 256), Message: "y"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := n.Notify(context.Background(), tc.input)
			var appErr *pkgerrors.Error
			if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if len(mail.sent) != 0 {
		t.Fatal("invalid submissions must not send mail")
	}
}

func TestNormalizeCollectsAllFailures(t *testing.T) {
	_, err := normalize(Input{})
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"name", "email", "subject", "message"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error should mention %q: %v", want, err)
		}
	}
}
