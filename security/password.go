package security

import (
	"fmt"
	"strings"
	"unicode"
)

// specialChars are the characters that satisfy a RequireSpecial rule.
const specialChars = "!@#$%^&*()_+-=[]{}|;:'\",.<>/?`~\\"

// PasswordPolicy declares the password rules enforced at registration and
// password change.
//
// PreventReuseCount and MaxAgeDays are declarative: the account layer owns
// password history and rotation bookkeeping, so this package carries the
// values but does not act on them.
type PasswordPolicy struct {
	MinLength         int
	RequireUppercase  bool
	RequireLowercase  bool
	RequireDigit      bool
	RequireSpecial    bool
	PreventReuseCount int
	MaxAgeDays        int
}

// DefaultPasswordPolicy returns the baseline policy: at least 8 characters
// with uppercase, lowercase, digit, and special character requirements.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:         8,
		RequireUppercase:  true,
		RequireLowercase:  true,
		RequireDigit:      true,
		RequireSpecial:    true,
		PreventReuseCount: 5,
		MaxAgeDays:        90,
	}
}

// PasswordValidation is the outcome of checking a password against a policy.
// Violations lists every failed rule so forms can show all problems at once
// instead of one per submission.
type PasswordValidation struct {
	Valid      bool
	Violations []string
}

// ValidatePasswordPolicy checks a password against a policy. It is a pure
// function: no state, no logging, no timing dependence on the password
// beyond its length.
func ValidatePasswordPolicy(password string, policy PasswordPolicy) PasswordValidation {
	var violations []string

	if len(password) < policy.MinLength {
		violations = append(violations,
			fmt.Sprintf("password must be at least %d characters long", policy.MinLength))
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(specialChars, r):
			hasSpecial = true
		}
	}

	if policy.RequireUppercase && !hasUpper {
		violations = append(violations, "password must contain at least one uppercase letter")
	}
	if policy.RequireLowercase && !hasLower {
		violations = append(violations, "password must contain at least one lowercase letter")
	}
	if policy.RequireDigit && !hasDigit {
		violations = append(violations, "password must contain at least one digit")
	}
	if policy.RequireSpecial && !hasSpecial {
		violations = append(violations, "password must contain at least one special character")
	}

	return PasswordValidation{
		Valid:      len(violations) == 0,
		Violations: violations,
	}
}
