package controllers

import (
	"net/http"

	"github.com/serviprohq/servipro-backend/api/responses"
	"github.com/serviprohq/servipro-backend/api/validators"
	"github.com/serviprohq/servipro-backend/internal/contact"
	pkgerrors "github.com/serviprohq/servipro-backend/pkg/errors"
	"github.com/serviprohq/servipro-backend/pkg/logger"
)

type contactBody struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Subject string `json:"subject" validate:"required,max=255"`
	Message string `json:"message" validate:"required,max=1000"`
}

// ContactSubmit forwards a visitor's message to the site operator.
func ContactSubmit(svc contact.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact service unavailable"))
			return
		}

		var body contactBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err := svc.Notify(r.Context(), contact.Input{
			Name:    body.Name,
			Email:   body.Email,
			Subject: body.Subject,
			Message: body.Message,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "received"})
	}
}
