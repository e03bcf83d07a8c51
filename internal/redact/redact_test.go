package redact

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Mobile Banking", "mobile banking"},
		{"card number with spaces", "card 1234 5678 9012 3456 ok", "card " + Placeholder + " ok"},
		{"card number with dashes", "1234-5678-9012-3456", Placeholder},
		{"account number", "account 123456789012 active", "account " + Placeholder + " active"},
		{"short numbers kept", "pin 1234 and code 56789", "pin 1234 and code 56789"},
		{"trims", "  hello  ", "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitize_Deterministic(t *testing.T) {
	in := "Card 1234 5678 9012 3456 expires soon"
	if Sanitize(in) != Sanitize(in) {
		t.Error("Sanitize must be deterministic")
	}
}

func TestEnforcePolicies(t *testing.T) {
	got := EnforcePolicies("your password: hunter2 is weak")
	if strings.Contains(got, "hunter2") {
		t.Errorf("password not redacted: %q", got)
	}
	if !strings.Contains(got, Placeholder) {
		t.Errorf("placeholder missing: %q", got)
	}
	clean := "activate mobile banking in settings"
	if EnforcePolicies(clean) != clean {
		t.Error("clean text should be unchanged")
	}
}
