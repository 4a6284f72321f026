package errors

import (
	"strings"
	"testing"
)

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "alice", false},
		{"with hyphen", "octo-cat", false},
		{"digits", "user123", false},
		{"surrounding space", "  bob ", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("a", 40), true},
		{"leading hyphen", "-alice", true},
		{"trailing hyphen", "alice-", true},
		{"double hyphen", "al--ice", true},
		{"path traversal", "../etc", true},
		{"slash", "alice/repo", true},
		{"null byte", "foo\x00bar", true},
		{"underscore", "foo_bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLogin(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLogin(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidLogin) {
				t.Errorf("ValidateLogin(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidLogin)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	allowed := []string{"svg", "json"}
	if err := ValidateFormat("svg", allowed); err != nil {
		t.Errorf("svg should be allowed: %v", err)
	}
	err := ValidateFormat("SVG", allowed)
	if err == nil {
		t.Fatal("formats are case-sensitive")
	}
	if !Is(err, ErrCodeInvalidFormat) {
		t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidFormat)
	}
}
