package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"patient@example.com", true},
		{"doctor.name@hospital.org", true},
		{"no-at-sign.com", false},
		{"no-dot@domain", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidEmail(tt.email))
		})
	}
}

func TestIsValidLicenseNumber(t *testing.T) {
	tests := []struct {
		name    string
		license string
		want    bool
	}{
		{"typical license", "MD-12345", true},
		{"digits only", "987654", true},
		{"lowercase letters", "md-12345", true},
		{"too short", "MD-1", false},
		{"punctuation", "MD_12345!", false},
		{"internal space", "MD 12345", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidLicenseNumber(tt.license))
		})
	}
}

func TestIsComplexPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"meets all requirements", "Str0ng!pass", true},
		{"too short", "S1!a", false},
		{"no uppercase", "str0ng!pass", false},
		{"no lowercase", "STR0NG!PASS", false},
		{"no digit", "Strong!pass", false},
		{"no special", "Str0ngpass", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsComplexPassword(tt.password))
		})
	}
}
