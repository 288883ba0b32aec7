package errors

import (
	"strings"
	"testing"
)

func TestValidateProjectName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "orders", false},
		{"valid with spaces", "Order Service", false},
		{"valid with dash", "order-service", false},

		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"too long", strings.Repeat("a", 129), true},
		{"path traversal", "foo..bar", true},
		{"slash", "foo/bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProjectName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProjectName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidProject) {
				t.Errorf("ValidateProjectName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidProject)
			}
		})
	}
}

func TestValidateFeatureKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"single word", "swagger", false},
		{"camel case", "mailService", false},
		{"with digits", "i18n", false},

		{"empty", "", true},
		{"upper first", "MailService", true},
		{"kebab", "mail-service", true},
		{"snake", "mail_service", true},
		{"leading digit", "2fa", true},
		{"too long", "a" + strings.Repeat("b", 64), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFeatureKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFeatureKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTargetKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"language", "rust", false},
		{"framework with dash", "spring-boot", false},
		{"framework with digits", "actix-web", false},

		{"empty", "", true},
		{"upper", "Axum", true},
		{"trailing dash", "axum-", true},
		{"double dash", "spring--boot", true},
		{"underscore", "spring_boot", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTargetKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTargetKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
