package security_test

import (
	"testing"

	"github.com/serviprohq/servipro-backend/pkg/config"
	"github.com/serviprohq/servipro-backend/pkg/security"
)

func TestValidatePasswordPolicyLength(t *testing.T) {
	cfg := config.PasswordConfig{MinLength: 8}

	if err := security.ValidatePasswordPolicy("short", cfg); err == nil {
		t.Fatal("expected error for short password")
	}
	if err := security.ValidatePasswordPolicy("longenough", cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidatePasswordPolicyDefaultsMinLength(t *testing.T) {
	cfg := config.PasswordConfig{}
	if err := security.ValidatePasswordPolicy("1234567", cfg); err == nil {
		t.Fatal("expected default minimum of 8 to apply")
	}
}

func TestValidatePasswordPolicyCharacterClasses(t *testing.T) {
	cfg := config.PasswordConfig{
		MinLength:     8,
		RequireUpper:  true,
		RequireLower:  true,
		RequireDigit:  true,
		RequireSymbol: true,
	}

	cases := []struct {
		password string
		wantErr  bool
	}{
		{"alllowercase1!", true},
		{"ALLUPPERCASE1!", true},
		{"NoDigitsHere!", true},
		{"NoSymbols123", true},
		{"Valid123!", false},
	}
	for _, tc := range cases {
		err := security.ValidatePasswordPolicy(tc.password, cfg)
		if tc.wantErr && err == nil {
			t.Fatalf("expected error for %q", tc.password)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("unexpected error for %q: %v", tc.password, err)
		}
	}
}
