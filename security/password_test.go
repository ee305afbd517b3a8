package security

import (
	"strings"
	"testing"
)

func TestValidatePasswordPolicy(t *testing.T) {
	policy := DefaultPasswordPolicy()

	tests := []struct {
		name           string
		password       string
		wantValid      bool
		wantViolations int
	}{
		{
			name:      "valid password",
			password:  "Str0ng!pass",
			wantValid: true,
		},
		{
			name:           "too short",
			password:       "S0r!t",
			wantValid:      false,
			wantViolations: 1,
		},
		{
			name:           "missing uppercase",
			password:       "weak1!pass",
			wantValid:      false,
			wantViolations: 1,
		},
		{
			name:           "missing lowercase",
			password:       "WEAK1!PASS",
			wantValid:      false,
			wantViolations: 1,
		},
		{
			name:           "missing digit",
			password:       "Weakk!pass",
			wantValid:      false,
			wantViolations: 1,
		},
		{
			name:           "missing special",
			password:       "Weak1passw",
			wantValid:      false,
			wantViolations: 1,
		},
		{
			name:           "empty password violates everything",
			password:       "",
			wantValid:      false,
			wantViolations: 5,
		},
		{
			name:           "multiple violations reported together",
			password:       "password",
			wantValid:      false,
			wantViolations: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidatePasswordPolicy(tt.password, policy)

			if got.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v (violations: %v)", got.Valid, tt.wantValid, got.Violations)
			}
			if !tt.wantValid && len(got.Violations) != tt.wantViolations {
				t.Errorf("violations = %d (%v), want %d", len(got.Violations), got.Violations, tt.wantViolations)
			}
			if tt.wantValid && len(got.Violations) != 0 {
				t.Errorf("valid password has violations: %v", got.Violations)
			}
		})
	}
}

func TestValidatePasswordPolicy_RelaxedPolicy(t *testing.T) {
	policy := PasswordPolicy{MinLength: 4}

	got := ValidatePasswordPolicy("abcd", policy)
	if !got.Valid {
		t.Errorf("Valid = false with relaxed policy, violations: %v", got.Violations)
	}
}

func TestValidatePasswordPolicy_ViolationMessages(t *testing.T) {
	policy := DefaultPasswordPolicy()

	got := ValidatePasswordPolicy("short", policy)
	if got.Valid {
		t.Fatal("Valid = true, want false")
	}

	joined := strings.Join(got.Violations, "; ")
	if !strings.Contains(joined, "at least 8 characters") {
		t.Errorf("violations missing length message: %v", got.Violations)
	}
}

func TestDefaultPasswordPolicy(t *testing.T) {
	policy := DefaultPasswordPolicy()

	if policy.MinLength != 8 {
		t.Errorf("MinLength = %d, want 8", policy.MinLength)
	}
	if !policy.RequireUppercase || !policy.RequireLowercase || !policy.RequireDigit || !policy.RequireSpecial {
		t.Error("default policy should require all four character classes")
	}
}
