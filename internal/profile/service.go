package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/serviprohq/servipro-backend/internal/users"
	"github.com/serviprohq/servipro-backend/pkg/config"
	"github.com/serviprohq/servipro-backend/pkg/db/models"
	pkgerrors "github.com/serviprohq/servipro-backend/pkg/errors"
	"github.com/serviprohq/servipro-backend/pkg/logger"
	"github.com/serviprohq/servipro-backend/pkg/security"
	"github.com/serviprohq/servipro-backend/pkg/storage/local"
)

const avatarKind = "avatars"

var mobileAllowed = regexp.MustCompile(`[^0-9+\-\s()]`)

// UpdateInput holds the optional profile fields. Nil means untouched; a value
// that normalizes to empty is dropped rather than written as "".
type UpdateInput struct {
	Name        *string
	Email       *string
	Title       *string
	Description *string
	Mobile      *string
	Address     *string
	Location    *string
}

// ChangePasswordInput carries the credential rotation payload.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// AvatarUpload is a validated image stream ready for storage.
type AvatarUpload struct {
	Reader io.Reader
	Ext    string
}

// Service exposes the account profile operations.
type Service interface {
	Show(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error)
	Update(ctx context.Context, userID uuid.UUID, input UpdateInput) (*users.UserDTO, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error
	UploadAvatar(ctx context.Context, userID uuid.UUID, upload AvatarUpload) (*users.UserDTO, error)
	DeleteAvatar(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error)
}

type fileStore interface {
	Save(ctx context.Context, r io.Reader, kind, ext string) (string, error)
	Delete(ctx context.Context, path string) error
	PublicURL(path string) string
}

type service struct {
	repo        *users.Repository
	store       fileStore
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
}

// NewService constructs a profile service instance.
func NewService(repo *users.Repository, store fileStore, passwordCfg config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("file store required")
	}
	return &service{
		repo:        repo,
		store:       store,
		passwordCfg: passwordCfg,
		logg:        logg,
	}, nil
}

// Show returns the acting user's profile.
func (s *service) Show(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return users.FromModel(user, s.store.PublicURL), nil
}

// Update applies a partial profile edit. Field values are normalized before
// validation; anything that collapses to empty is skipped entirely.
func (s *service) Update(ctx context.Context, userID uuid.UUID, input UpdateInput) (*users.UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	values := map[string]any{}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name != "" {
			if len([]rune(name)) > 255 {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must be at most 255 characters")
			}
			values["name"] = name
		}
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != "" {
			taken, err := s.repo.EmailTakenByOther(ctx, email, userID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check email")
			}
			if taken {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			values["email"] = email
		}
	}

	if input.Mobile != nil {
		mobile := sanitizeMobile(*input.Mobile)
		if mobile != "" {
			if len(mobile) > 30 {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "mobile must be at most 30 characters")
			}
			values["mobile"] = mobile
		}
	}

	if input.Address != nil {
		address := strings.TrimSpace(*input.Address)
		if address != "" {
			if len([]rune(address)) > 255 {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "address must be at most 255 characters")
			}
			values["address"] = address
		}
	}

	for column, raw := range map[string]*string{
		"title":       input.Title,
		"description": input.Description,
		"location":    input.Location,
	} {
		if raw == nil {
			continue
		}
		value := ucfirst(strings.TrimSpace(*raw))
		if value == "" {
			continue
		}
		max := 255
		if column == "description" {
			max = 2000
		}
		if len([]rune(value)) > max {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be at most %d characters", column, max))
		}
		values[column] = value
	}

	if err := s.repo.UpdateColumns(ctx, user.ID, values); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update profile")
	}

	return s.Show(ctx, userID)
}

// ChangePassword rotates the stored credential after verifying the current one.
func (s *service) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error {
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := security.VerifyPassword(input.CurrentPassword, user.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "current password is incorrect")
	}

	if err := security.ValidatePasswordPolicy(input.NewPassword, s.passwordCfg); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	hash, err := security.HashPassword(input.NewPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	if err := s.repo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update password")
	}
	return nil
}

// UploadAvatar stores a new avatar and swaps the profile reference. The old
// file is removed only after the row points at the new one.
func (s *service) UploadAvatar(ctx context.Context, userID uuid.UUID, upload AvatarUpload) (*users.UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	path, err := s.store.Save(ctx, upload.Reader, avatarKind, upload.Ext)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage: save avatar")
	}

	if err := s.repo.UpdateImagePath(ctx, user.ID, &path); err != nil {
		if delErr := s.store.Delete(ctx, path); delErr != nil && s.logg != nil {
			s.logg.Warn(ctx, "failed to remove orphaned avatar")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update avatar")
	}

	s.removeStoredAvatar(ctx, user.ImagePath)
	return s.Show(ctx, userID)
}

// DeleteAvatar clears the profile image reference and removes the file.
func (s *service) DeleteAvatar(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateImagePath(ctx, user.ID, nil); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear avatar")
	}

	s.removeStoredAvatar(ctx, user.ImagePath)
	return s.Show(ctx, userID)
}

func (s *service) load(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}
	return user, nil
}

// removeStoredAvatar deletes a previously stored avatar file, best effort.
// External URLs carried over from imports are left alone.
func (s *service) removeStoredAvatar(ctx context.Context, path *string) {
	if path == nil || !local.IsLocal(*path) {
		return
	}
	if err := s.store.Delete(ctx, *path); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "failed to remove previous avatar")
	}
}

// sanitizeMobile strips everything except digits and common phone punctuation.
func sanitizeMobile(value string) string {
	return strings.TrimSpace(mobileAllowed.ReplaceAllString(value, ""))
}

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
