package application

import (
	"errors"
	"testing"
)

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		value     string
		wantErr   bool
	}{
		{
			name:      "valid value",
			fieldName: "query",
			value:     "install",
			wantErr:   false,
		},
		{
			name:      "empty string",
			fieldName: "query",
			value:     "",
			wantErr:   true,
		},
		{
			name:      "whitespace only",
			fieldName: "query",
			value:     "   ",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired(tt.fieldName, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequired() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err != nil {
				var valErr *ValidationError
				if !errors.As(err, &valErr) {
					t.Errorf("expected ValidationError, got %T", err)
				}
				if valErr.Field != tt.fieldName {
					t.Errorf("expected field %s, got %s", tt.fieldName, valErr.Field)
				}
			}
		})
	}
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "plain", raw: "1_guides/2_setup", want: "1_guides/2_setup"},
		{name: "slashes trimmed", raw: "/guides/intro/", want: "guides/intro"},
		{name: "url escaped", raw: "guides%2Fgetting%20started", want: "guides/getting started"},
		{name: "extension dropped", raw: "guides/intro.md", want: "guides/intro"},
		{name: "backslashes", raw: `guides\intro`, want: "guides/intro"},
		{name: "traversal", raw: "../etc/passwd", wantErr: true},
		{name: "escaped traversal", raw: "guides/%2e%2e/secret", wantErr: true},
		{name: "hidden", raw: ".git/config", wantErr: true},
		{name: "double slash", raw: "guides//intro", wantErr: true},
		{name: "empty", raw: "/", wantErr: true},
		{name: "bad escape", raw: "guides/%zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizePath(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SanitizePath(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidPath) {
					t.Errorf("expected ErrInvalidPath, got %v", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("SanitizePath(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestValidateRevision(t *testing.T) {
	for _, rev := range []string{"abc1234", "main", "v1.2.0", "release/2026"} {
		if err := ValidateRevision(rev); err != nil {
			t.Errorf("ValidateRevision(%q) = %v", rev, err)
		}
	}
	for _, rev := range []string{"", "a b", "x?y", "main..dev"} {
		if err := ValidateRevision(rev); err == nil {
			t.Errorf("expected %q to be rejected", rev)
		}
	}
}
