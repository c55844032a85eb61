package service

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/serviprohq/servipro-backend/pkg/db/models"
	"github.com/serviprohq/servipro-backend/pkg/enums"
)

// ExcerptLength caps the preview text derived from a description.
const ExcerptLength = 150

// RecentWindow is how long a listing counts as recently published.
const RecentWindow = 7 * 24 * time.Hour

// ServiceDTO is the transport shape for a listing, including derived fields.
type ServiceDTO struct {
	ID          uuid.UUID             `json:"id"`
	UserID      uuid.UUID             `json:"user_id"`
	OwnerName   string                `json:"owner_name,omitempty"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Excerpt     string                `json:"excerpt"`
	Category    enums.ServiceCategory `json:"category"`
	Price       decimal.Decimal       `json:"price"`
	Location    *string               `json:"location,omitempty"`
	ImageURL    *string               `json:"image_url,omitempty"`
	HasImage    bool                  `json:"has_image"`
	IsRecent    bool                  `json:"is_recent"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// ImageResolver maps a stored image path onto a public URL.
type ImageResolver func(storedPath string) string

// FromModel converts a persisted listing into its transport shape.
func FromModel(m *models.Service, ownerName string, now time.Time, resolve ImageResolver) *ServiceDTO {
	if m == nil {
		return nil
	}

	dto := &ServiceDTO{
		ID:          m.ID,
		UserID:      m.UserID,
		OwnerName:   ownerName,
		Title:       m.Title,
		Description: m.Description,
		Excerpt:     Excerpt(m.Description),
		Category:    m.Category,
		Price:       m.Price,
		Location:    m.Location,
		IsRecent:    IsRecent(m.CreatedAt, now),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}

	if m.ImagePath != nil && *m.ImagePath != "" {
		dto.HasImage = true
		if resolve != nil {
			url := resolve(*m.ImagePath)
			dto.ImageURL = &url
		}
	}

	return dto
}

// Excerpt returns the first ExcerptLength characters of the text, appending an
// ellipsis when truncated.
func Excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= ExcerptLength {
		return text
	}
	return string(runes[:ExcerptLength]) + "..."
}

// IsRecent reports whether a listing created at the given time still falls
// inside the recent window.
func IsRecent(createdAt, now time.Time) bool {
	return now.Sub(createdAt) <= RecentWindow
}

// toDTO converts a joined listing row into its transport shape.
func (r listingRecord) toDTO(now time.Time, resolve ImageResolver) ServiceDTO {
	dto := ServiceDTO{
		ID:          r.ID,
		UserID:      r.UserID,
		OwnerName:   r.OwnerName,
		Title:       r.Title,
		Description: r.Description,
		Excerpt:     Excerpt(r.Description),
		Category:    enums.ServiceCategory(r.Category),
		Price:       r.Price,
		Location:    r.Location,
		IsRecent:    IsRecent(r.CreatedAt, now),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}

	if r.ImagePath != nil && *r.ImagePath != "" {
		dto.HasImage = true
		if resolve != nil {
			url := resolve(*r.ImagePath)
			dto.ImageURL = &url
		}
	}

	return dto
}

// ucfirst uppercases the first letter of the value, leaving the rest intact.
func ucfirst(value string) string {
	if value == "" {
		return value
	}
	r, size := utf8.DecodeRuneInString(value)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return value
	}
	return string(unicode.ToUpper(r)) + value[size:]
}

func normalizeText(value string) string {
	return ucfirst(strings.TrimSpace(value))
}

func normalizeOptionalText(value *string) *string {
	if value == nil {
		return nil
	}
	normalized := normalizeText(*value)
	if normalized == "" {
		return nil
	}
	return &normalized
}
