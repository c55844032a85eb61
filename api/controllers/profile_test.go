package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/serviprohq/servipro-backend/internal/profile"
	"github.com/serviprohq/servipro-backend/internal/users"
)

type stubProfileService struct {
	passwordInput *profile.ChangePasswordInput
}

func (s *stubProfileService) Show(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID}, nil
}

func (s *stubProfileService) Update(ctx context.Context, userID uuid.UUID, input profile.UpdateInput) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID}, nil
}

func (s *stubProfileService) ChangePassword(ctx context.Context, userID uuid.UUID, input profile.ChangePasswordInput) error {
	s.passwordInput = &input
	return nil
}

func (s *stubProfileService) UploadAvatar(ctx context.Context, userID uuid.UUID, upload profile.AvatarUpload) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID}, nil
}

func (s *stubProfileService) DeleteAvatar(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID}, nil
}

func postPasswordChange(t *testing.T, svc profile.Service, body string) *httptest.ResponseRecorder {
	t.Helper()
	handler := ProfilePassword(svc, nil)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/profile/password", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler(resp, authedRequest(req, uuid.New()))
	return resp
}

func TestProfilePasswordRequiresConfirmation(t *testing.T) {
	stub := &stubProfileService{}
	resp := postPasswordChange(t, stub, `{
		"current_password": "Actual123!",
		"new_password": "NuevaClave99!"
	}`)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.passwordInput != nil {
		t.Fatal("service must not be reached without a confirmation")
	}
}

func TestProfilePasswordRejectsMismatchedConfirmation(t *testing.T) {
	stub := &stubProfileService{}
	resp := postPasswordChange(t, stub, `{
		"current_password": "Actual123!",
		"new_password": "NuevaClave99!",
		"new_password_confirmation": "Distinta99!"
	}`)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.passwordInput != nil {
		t.Fatal("service must not be reached on a mismatched confirmation")
	}
}

func TestProfilePasswordAcceptsMatchingConfirmation(t *testing.T) {
	stub := &stubProfileService{}
	resp := postPasswordChange(t, stub, `{
		"current_password": "Actual123!",
		"new_password": "NuevaClave99!",
		"new_password_confirmation": "NuevaClave99!"
	}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.passwordInput == nil || stub.passwordInput.NewPassword != "NuevaClave99!" {
		t.Fatalf("unexpected forwarded input %+v", stub.passwordInput)
	}
}
