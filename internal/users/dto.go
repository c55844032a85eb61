package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/serviprohq/servipro-backend/pkg/db/models"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Mobile      *string    `json:"mobile,omitempty"`
	Address     *string    `json:"address,omitempty"`
	Location    *string    `json:"location,omitempty"`
	AvatarURL   *string    `json:"avatar_url,omitempty"`
	HasAvatar   bool       `json:"has_avatar"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Name         string
	Email        string
	PasswordHash string
}

// AvatarResolver maps a stored image path onto a public URL.
type AvatarResolver func(storedPath string) string

// FromModel converts a persisted user into its transport shape. The resolver
// may be nil when no avatar URL is needed.
func FromModel(u *models.User, resolve AvatarResolver) *UserDTO {
	if u == nil {
		return nil
	}

	dto := &UserDTO{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Title:       u.Title,
		Description: u.Description,
		Mobile:      u.Mobile,
		Address:     u.Address,
		Location:    u.Location,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}

	if u.ImagePath != nil && *u.ImagePath != "" {
		dto.HasAvatar = true
		if resolve != nil {
			url := resolve(*u.ImagePath)
			dto.AvatarURL = &url
		}
	}

	return dto
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Name:         c.Name,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
	}
}
