package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/serviprohq/servipro-backend/api/middleware"
	"github.com/serviprohq/servipro-backend/api/responses"
	"github.com/serviprohq/servipro-backend/api/validators"
	service "github.com/serviprohq/servipro-backend/internal/services"
	"github.com/serviprohq/servipro-backend/pkg/enums"
	pkgerrors "github.com/serviprohq/servipro-backend/pkg/errors"
	"github.com/serviprohq/servipro-backend/pkg/logger"
	"github.com/serviprohq/servipro-backend/pkg/pagination"
)

type serviceJSONBody struct {
	Title       string  `json:"title" validate:"required,min=3,max=255"`
	Description string  `json:"description" validate:"required,min=10,max=2000"`
	Category    string  `json:"category" validate:"required"`
	Price       string  `json:"price" validate:"required"`
	Location    *string `json:"location" validate:"omitempty,max=255"`
}

type serviceUpdateJSONBody struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string `json:"description" validate:"omitempty,min=10,max=2000"`
	Category    *string `json:"category"`
	Price       *string `json:"price"`
	Location    *string `json:"location" validate:"omitempty,max=255"`
}

// ServicesList serves the public browse page with search, filter and sort.
func ServicesList(svc service.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := paginationParams(r, service.PublicPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := service.ListFilters{
			Query: validators.SanitizeString(r.URL.Query().Get("q"), 255),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
			category, err := enums.ParseServiceCategory(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid category"))
				return
			}
			filters.Category = &category
		}

		result, err := svc.List(r.Context(), service.ListInput{
			Filters:    filters,
			Sort:       service.ParseListSort(r.URL.Query().Get("sort")),
			Pagination: params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ServicesGet serves a single listing detail.
func ServicesGet(svc service.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serviceID, err := pathUUID(r, "serviceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Get(r.Context(), serviceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

// ServicesCreate publishes a listing owned by the authenticated user.
func ServicesCreate(svc service.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := decodeCreateInput(r, maxUploadBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Create(r.Context(), userID, *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// ServicesUpdate applies a partial edit to an owned listing.
func ServicesUpdate(svc service.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		serviceID, err := pathUUID(r, "serviceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := decodeUpdateInput(r, maxUploadBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Update(r.Context(), userID, serviceID, *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

// ServicesDelete removes an owned listing.
func ServicesDelete(svc service.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		serviceID, err := pathUUID(r, "serviceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), userID, serviceID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// MyServices serves the authenticated user's listings, latest first.
func MyServices(svc service.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := paginationParams(r, service.OwnedPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListOwned(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// MyDashboard serves the authenticated user's listing stats.
func MyDashboard(svc service.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Dashboard(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}

// Home serves the public landing payload.
func Home(svc service.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Home(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}

func decodeCreateInput(r *http.Request, maxUploadBytes int64) (*service.CreateInput, error) {
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadBytes + 1<<20); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
		}

		price, err := parsePrice(r.FormValue("price"))
		if err != nil {
			return nil, err
		}
		image, err := formImage(r, "image", maxUploadBytes)
		if err != nil {
			return nil, err
		}

		input := &service.CreateInput{
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			Category:    enums.ServiceCategory(strings.TrimSpace(r.FormValue("category"))),
			Price:       price,
			Location:    optionalFormValue(r, "location"),
		}
		if image != nil {
			input.Image = &service.ImageUpload{Reader: image.Reader, Ext: image.Ext}
		}
		return input, nil
	}

	var body serviceJSONBody
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		return nil, err
	}
	price, err := parsePrice(body.Price)
	if err != nil {
		return nil, err
	}
	return &service.CreateInput{
		Title:       body.Title,
		Description: body.Description,
		Category:    enums.ServiceCategory(strings.TrimSpace(body.Category)),
		Price:       price,
		Location:    body.Location,
	}, nil
}

func decodeUpdateInput(r *http.Request, maxUploadBytes int64) (*service.UpdateInput, error) {
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadBytes + 1<<20); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
		}

		input := &service.UpdateInput{
			Title:       optionalFormValue(r, "title"),
			Description: optionalFormValue(r, "description"),
			Location:    optionalFormValue(r, "location"),
		}
		if raw := optionalFormValue(r, "category"); raw != nil {
			category := enums.ServiceCategory(strings.TrimSpace(*raw))
			input.Category = &category
		}
		if raw := optionalFormValue(r, "price"); raw != nil {
			price, err := parsePrice(*raw)
			if err != nil {
				return nil, err
			}
			input.Price = &price
		}
		image, err := formImage(r, "image", maxUploadBytes)
		if err != nil {
			return nil, err
		}
		if image != nil {
			input.Image = &service.ImageUpload{Reader: image.Reader, Ext: image.Ext}
		}
		return input, nil
	}

	var body serviceUpdateJSONBody
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		return nil, err
	}
	input := &service.UpdateInput{
		Title:       body.Title,
		Description: body.Description,
		Location:    body.Location,
	}
	if body.Category != nil {
		category := enums.ServiceCategory(strings.TrimSpace(*body.Category))
		input.Category = &category
	}
	if body.Price != nil {
		price, err := parsePrice(*body.Price)
		if err != nil {
			return nil, err
		}
		input.Price = &price
	}
	return input, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price must be a decimal number")
	}
	return value, nil
}

func paginationParams(r *http.Request, perPage int) (pagination.Params, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Page: page, PerPage: perPage}, nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func optionalFormValue(r *http.Request, field string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[field]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier")
	}
	return id, nil
}

func currentUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid identity")
	}
	return id, nil
}
