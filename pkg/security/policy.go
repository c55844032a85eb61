package security

import (
	"fmt"
	"unicode"

	"github.com/serviprohq/servipro-backend/pkg/config"
)

// ValidatePasswordPolicy checks a plaintext candidate against the configured
// strength rules. The returned error message is safe to surface to callers.
func ValidatePasswordPolicy(password string, cfg config.PasswordConfig) error {
	minLength := cfg.MinLength
	if minLength <= 0 {
		minLength = 8
	}
	if len(password) < minLength {
		return fmt.Errorf("password must be at least %d characters", minLength)
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}

	if cfg.RequireUpper && !hasUpper {
		return fmt.Errorf("password must contain an uppercase letter")
	}
	if cfg.RequireLower && !hasLower {
		return fmt.Errorf("password must contain a lowercase letter")
	}
	if cfg.RequireDigit && !hasDigit {
		return fmt.Errorf("password must contain a digit")
	}
	if cfg.RequireSymbol && !hasSymbol {
		return fmt.Errorf("password must contain a symbol")
	}
	return nil
}
