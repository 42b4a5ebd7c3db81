package errors

import (
	"strings"
	"testing"
)

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"simple", "KRAS", false},
		{"locus tag", "b0001", false},
		{"with spaces", "rpoD sigma", false},
		{"empty", "", true},
		{"control char", "A\nB", true},
		{"too long", strings.Repeat("a", 257), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && GetCode(err) != ErrCodeInvalidInput {
				t.Errorf("GetCode() = %v, want %v", GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateEdgeKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"A;B", false},
		{"SRC;KRAS", false},
		{"A->B", true},
		{";B", true},
		{"A;", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateEdgeKey(tt.key)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateEdgeKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
		}
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"layouts/net.json", false},
		{"net.svg", false},
		{"", true},
		{"/etc/passwd", true},
		{"../secret", true},
		{"a\\b", true},
		{"a\x00b", true},
		{strings.Repeat("a", 501), true},
	}

	for _, tt := range tests {
		err := ValidatePath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url     string
		schemes []string
		wantErr bool
	}{
		{"https://example.com", nil, false},
		{"http://localhost:8080", nil, false},
		{"nats://127.0.0.1:4222", []string{"nats", "tls"}, false},
		{"nats://127.0.0.1:4222", nil, true},
		{"ftp://example.com", nil, true},
		{"", nil, true},
	}

	for _, tt := range tests {
		err := ValidateURL(tt.url, tt.schemes...)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q, %v) error = %v, wantErr %v", tt.url, tt.schemes, err, tt.wantErr)
		}
	}
}

func TestValidateTarget(t *testing.T) {
	tests := []struct {
		target  string
		wantErr bool
	}{
		{"KRAS", false},
		{"KRAS;SOS1", false},
		{"KRAS;", true},
		{"", true},
		{"A\tB", true},
	}

	for _, tt := range tests {
		err := ValidateTarget(tt.target)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateTarget(%q) error = %v, wantErr %v", tt.target, err, tt.wantErr)
		}
		if err != nil && !IsInvalid(err) {
			t.Errorf("ValidateTarget(%q) kind = %v, want invalid", tt.target, KindOf(err))
		}
	}
}
