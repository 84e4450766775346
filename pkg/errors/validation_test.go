package errors

import (
	"strings"
	"testing"
)

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty is generated", "", false},
		{"simple", "ceo", false},
		{"with spaces inside", "head of sales", false},
		{"unicode", "Geschäftsführung", false},

		{"too long", strings.Repeat("a", 300), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
		{"leading space", " ceo", true},
		{"trailing space", "ceo ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidID) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidID)
			}
		})
	}
}

func TestValidateChartName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"acme", false},
		{"acme-2026", false},
		{"", true},
		{"../etc", true},
		{"a/b", true},
		{"a\\b", true},
		{"a\x01b", true},
	}

	for _, tt := range tests {
		if err := ValidateChartName(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateChartName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateDefinitionPath(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"org.json", false},
		{"org.TOML", false},
		{"dir/org.yaml", false},
		{"org.yml", false},
		{"org.xml", true},
		{"org", true},
		{"", true},
	}

	for _, tt := range tests {
		if err := ValidateDefinitionPath(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateDefinitionPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
