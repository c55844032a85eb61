package profile

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/serviprohq/servipro-backend/internal/users"
	"github.com/serviprohq/servipro-backend/pkg/config"
	"github.com/serviprohq/servipro-backend/pkg/db/models"
	pkgerrors "github.com/serviprohq/servipro-backend/pkg/errors"
	"github.com/serviprohq/servipro-backend/pkg/security"
)

type stubAvatarStore struct {
	saves   int
	deleted []string
}

func (f *stubAvatarStore) Save(ctx context.Context, r io.Reader, kind, ext string) (string, error) {
	f.saves++
	return fmt.Sprintf("%s/%d.%s", kind, f.saves, ext), nil
}

func (f *stubAvatarStore) Delete(ctx context.Context, path string) error {
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *stubAvatarStore) PublicURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return "/uploads/" + path
}

func setupProfileTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  title TEXT,
  description TEXT,
  mobile TEXT,
  address TEXT,
  location TEXT,
  image_path TEXT,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

const profileTestPassword = "Segura123!"

func seedProfileUser(t *testing.T, conn *gorm.DB, image *string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(profileTestPassword, config.PasswordConfig{})
	require.NoError(t, err)

	location := "Madrid"
	user := &models.User{
		ID:           uuid.New(),
		Name:         "Maria",
		Email:        fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		PasswordHash: hash,
		Location:     &location,
		ImagePath:    image,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func newProfileService(t *testing.T, conn *gorm.DB, store *stubAvatarStore) Service {
	t.Helper()
	svc, err := NewService(users.NewRepository(conn), store, config.PasswordConfig{}, nil)
	require.NoError(t, err)
	return svc
}

func requireProfileCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr, "expected typed error, got %v", err)
	assert.Equal(t, code, appErr.Code())
}

func TestProfileUpdatePartialKeepsOtherFields(t *testing.T) {
	conn := setupProfileTestDB(t)
	svc := newProfileService(t, conn, &stubAvatarStore{})
	user := seedProfileUser(t, conn, nil)
	ctx := context.Background()

	title := "fontanera profesional"
	dto, err := svc.Update(ctx, user.ID, UpdateInput{Title: &title})
	require.NoError(t, err)

	require.NotNil(t, dto.Title)
	assert.Equal(t, "Fontanera profesional", *dto.Title)
	assert.Equal(t, user.Name, dto.Name)
	assert.Equal(t, user.Email, dto.Email)
	require.NotNil(t, dto.Location)
	assert.Equal(t, "Madrid", *dto.Location)
}

func TestProfileUpdateEmptyFieldIsDropped(t *testing.T) {
	conn := setupProfileTestDB(t)
	svc := newProfileService(t, conn, &stubAvatarStore{})
	user := seedProfileUser(t, conn, nil)
	ctx := context.Background()

	blank := "   "
	dto, err := svc.Update(ctx, user.ID, UpdateInput{Location: &blank, Name: &blank})
	require.NoError(t, err)

	require.NotNil(t, dto.Location)
	assert.Equal(t, "Madrid", *dto.Location)
	assert.Equal(t, "Maria", dto.Name)
}

func TestProfileUpdateSanitizesMobileAndLowercasesEmail(t *testing.T) {
	conn := setupProfileTestDB(t)
	svc := newProfileService(t, conn, &stubAvatarStore{})
	user := seedProfileUser(t, conn, nil)
	ctx := context.Background()

	mobile := "600abc123"
	email := "  Nueva@Example.COM "
	dto, err := svc.Update(ctx, user.ID, UpdateInput{Mobile: &mobile, Email: &email})
	require.NoError(t, err)

	require.NotNil(t, dto.Mobile)
	assert.Equal(t, "600123", *dto.Mobile)
	assert.Equal(t, "nueva@example.com", dto.Email)
}

func TestProfileUpdateRejectsTakenEmail(t *testing.T) {
	conn := setupProfileTestDB(t)
	svc := newProfileService(t, conn, &stubAvatarStore{})
	user := seedProfileUser(t, conn, nil)
	other := seedProfileUser(t, conn, nil)
	ctx := context.Background()

	taken := other.Email
	_, err := svc.Update(ctx, user.ID, UpdateInput{Email: &taken})
	requireProfileCode(t, err, pkgerrors.CodeConflict)

	// Re-submitting your own address is not a conflict.
	own := user.Email
	_, err = svc.Update(ctx, user.ID, UpdateInput{Email: &own})
	require.NoError(t, err)
}

func TestProfileChangePassword(t *testing.T) {
	conn := setupProfileTestDB(t)
	svc := newProfileService(t, conn, &stubAvatarStore{})
	user := seedProfileUser(t, conn, nil)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, user.ID, ChangePasswordInput{
		CurrentPassword: "equivocada",
		NewPassword:     "NuevaClave99!",
	})
	requireProfileCode(t, err, pkgerrors.CodeUnauthorized)

	err = svc.ChangePassword(ctx, user.ID, ChangePasswordInput{
		CurrentPassword: profileTestPassword,
		NewPassword:     "NuevaClave99!",
	})
	require.NoError(t, err)

	reloaded, err := users.NewRepository(conn).FindByID(ctx, user.ID)
	require.NoError(t, err)
	ok, err := security.VerifyPassword("NuevaClave99!", reloaded.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestProfileUploadAvatarReplacesPreviousFile(t *testing.T) {
	conn := setupProfileTestDB(t)
	store := &stubAvatarStore{}
	svc := newProfileService(t, conn, store)
	previous := "avatars/old.png"
	user := seedProfileUser(t, conn, &previous)
	ctx := context.Background()

	dto, err := svc.UploadAvatar(ctx, user.ID, AvatarUpload{Reader: strings.NewReader("bytes"), Ext: "png"})
	require.NoError(t, err)

	assert.True(t, dto.HasAvatar)
	require.NotNil(t, dto.AvatarURL)
	assert.Equal(t, "/uploads/avatars/1.png", *dto.AvatarURL)
	assert.Equal(t, []string{"avatars/old.png"}, store.deleted)
}

func TestProfileUploadAvatarLeavesExternalURLAlone(t *testing.T) {
	conn := setupProfileTestDB(t)
	store := &stubAvatarStore{}
	svc := newProfileService(t, conn, store)
	external := "https://cdn.example.com/avatar.png"
	user := seedProfileUser(t, conn, &external)
	ctx := context.Background()

	dto, err := svc.UploadAvatar(ctx, user.ID, AvatarUpload{Reader: strings.NewReader("bytes"), Ext: "png"})
	require.NoError(t, err)

	assert.True(t, dto.HasAvatar)
	assert.Empty(t, store.deleted)
}

func TestProfileDeleteAvatarIsIdempotent(t *testing.T) {
	conn := setupProfileTestDB(t)
	store := &stubAvatarStore{}
	svc := newProfileService(t, conn, store)
	previous := "avatars/old.png"
	user := seedProfileUser(t, conn, &previous)
	ctx := context.Background()

	dto, err := svc.DeleteAvatar(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, dto.HasAvatar)
	assert.Equal(t, []string{"avatars/old.png"}, store.deleted)

	dto, err = svc.DeleteAvatar(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, dto.HasAvatar)
	assert.Len(t, store.deleted, 1)
}

func TestSanitizeMobile(t *testing.T) {
	cases := []struct{ in, want string }{
		{"+34 600 123 456", "+34 600 123 456"},
		{"(+34) 600-123-456", "(+34) 600-123-456"},
		{"600abc123", "600123"},
		{"  600 123 456  ", "600 123 456"},
		{"llámame", ""},
	}
	for _, tc := range cases {
		if got := sanitizeMobile(tc.in); got != tc.want {
			t.Fatalf("sanitizeMobile(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUcfirst(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"fontanero", "Fontanero"},
		{"Electricista", "Electricista"},
		{"ñapas y arreglos", "Ñapas y arreglos"},
	}
	for _, tc := range cases {
		if got := ucfirst(tc.in); got != tc.want {
			t.Fatalf("ucfirst(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
