package validation

import (
	"strings"
	"testing"
)

func TestGenerateKeyRequest_Normalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantName string
		wantErr  bool
	}{
		{name: "empty", input: "", wantName: ""},
		{name: "trimmed", input: "  demo key  ", wantName: "demo key"},
		{name: "control chars removed", input: "demo\x00\x07key", wantName: "demokey"},
		{name: "exactly 100", input: strings.Repeat("a", 100), wantName: strings.Repeat("a", 100)},
		{name: "100 multibyte runes", input: strings.Repeat("é", 100), wantName: strings.Repeat("é", 100)},
		{name: "too long", input: strings.Repeat("a", 101), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := &GenerateKeyRequest{Name: tt.input}
			err := req.Normalize()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && req.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", req.Name, tt.wantName)
			}
		})
	}
}

func TestValidateRate(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"10-S", "600-M", "1000-H", " 5-D "} {
		if err := ValidateRate(ok); err != nil {
			t.Errorf("ValidateRate(%q) error = %v", ok, err)
		}
	}
	for _, bad := range []string{"", "ten-S", "10", "10-Y"} {
		if err := ValidateRate(bad); err == nil {
			t.Errorf("ValidateRate(%q) expected error", bad)
		}
	}
}

func TestValidateOrigins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		wantErr bool
	}{
		{raw: "http://localhost:3000", wantErr: false},
		{raw: "https://a.example.com, https://b.example.com", wantErr: false},
		{raw: "*", wantErr: false},
		{raw: "", wantErr: true},
		{raw: " , ", wantErr: true},
		{raw: "not a url", wantErr: true},
		{raw: "ftp://files.example.com", wantErr: true},
	}
	for _, tt := range tests {
		if err := ValidateOrigins(tt.raw); (err != nil) != tt.wantErr {
			t.Errorf("ValidateOrigins(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
		}
	}
}

func TestListParams(t *testing.T) {
	t.Parallel()

	if err := Validate.Struct(ListParams{Limit: 50}); err != nil {
		t.Errorf("valid params rejected: %v", err)
	}
	if err := Validate.Struct(ListParams{Limit: 0}); err == nil {
		t.Error("zero limit accepted")
	}
	if err := Validate.Struct(ListParams{Limit: 501}); err == nil {
		t.Error("limit above max accepted")
	}
}
