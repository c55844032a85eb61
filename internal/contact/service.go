package contact

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/serviprohq/servipro-backend/pkg/config"
	pkgerrors "github.com/serviprohq/servipro-backend/pkg/errors"
	"github.com/serviprohq/servipro-backend/pkg/logger"
	"github.com/serviprohq/servipro-backend/pkg/mailer"
)

const autoReplySubject = "Hemos recibido tu mensaje - ServiPro"

// Input is a visitor's contact form submission.
type Input struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Notifier forwards contact submissions to the site operator.
type Notifier interface {
	Notify(ctx context.Context, input Input) error
}

type notifier struct {
	mail mailer.Mailer
	cfg  config.ContactConfig
	logg *logger.Logger
}

// NewNotifier constructs the contact notifier.
func NewNotifier(mail mailer.Mailer, cfg config.ContactConfig, logg *logger.Logger) (Notifier, error) {
	if mail == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if cfg.OperatorEmail == "" {
		return nil, fmt.Errorf("operator email required")
	}
	return &notifier{mail: mail, cfg: cfg, logg: logg}, nil
}

// Notify delivers the submission to the operator and acknowledges the sender.
// The operator mail is authoritative; a failed auto-reply is logged only.
func (n *notifier) Notify(ctx context.Context, input Input) error {
	normalized, err := normalize(input)
	if err != nil {
		return err
	}

	operatorMsg := mailer.Message{
		FromName:  n.cfg.FromName,
		FromEmail: n.cfg.FromEmail,
		To:        n.cfg.OperatorEmail,
		ReplyTo:   normalized.Email,
		Subject:   fmt.Sprintf("[Contacto] %s", normalized.Subject),
		Body:      operatorBody(normalized),
	}
	operatorErr := n.mail.Send(ctx, operatorMsg)

	// The two sends are independent; the auto-reply goes out even when the
	// operator delivery fails.
	replyMsg := mailer.Message{
		FromName:  n.cfg.FromName,
		FromEmail: n.cfg.FromEmail,
		To:        normalized.Email,
		Subject:   autoReplySubject,
		Body:      autoReplyBody(normalized),
	}
	if err := n.mail.Send(ctx, replyMsg); err != nil {
		if n.logg != nil {
			n.logg.Warn(ctx, "contact auto-reply failed")
		}
	}

	if operatorErr != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, operatorErr, "mail: deliver contact message")
	}
	return nil
}

func normalize(input Input) (Input, error) {
	out := Input{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.ToLower(strings.TrimSpace(input.Email)),
		Subject: strings.TrimSpace(input.Subject),
		Message: strings.TrimSpace(input.Message),
	}

	var err error
	if out.Name == "" || len([]rune(out.Name)) > 255 {
		err = multierr.Append(err, fmt.Errorf("name must be between 1 and 255 characters"))
	}
	if out.Email == "" {
		err = multierr.Append(err, fmt.Errorf("email is required"))
	}
	if out.Subject == "" || len([]rune(out.Subject)) > 255 {
		err = multierr.Append(err, fmt.Errorf("subject must be between 1 and 255 characters"))
	}
	if out.Message == "" || len([]rune(out.Message)) > 1000 {
		err = multierr.Append(err, fmt.Errorf("message must be between 1 and 1000 characters"))
	}
	if err != nil {
		return Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid contact submission")
	}
	return out, nil
}

func operatorBody(input Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Nuevo mensaje de contacto\n\n")
	fmt.Fprintf(&b, "Nombre: %s\n", input.Name)
	fmt.Fprintf(&b, "Email: %s\n", input.Email)
	fmt.Fprintf(&b, "Asunto: %s\n\n", input.Subject)
	fmt.Fprintf(&b, "%s\n", input.Message)
	return b.String()
}

func autoReplyBody(input Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hola %s,\n\n", input.Name)
	b.WriteString("Hemos recibido tu mensaje y te responderemos lo antes posible.\n\n")
	fmt.Fprintf(&b, "Tu asunto: %s\n\n", input.Subject)
	b.WriteString("Gracias por contactar con ServiPro.\n")
	return b.String()
}
