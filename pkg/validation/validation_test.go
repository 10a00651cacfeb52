package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  bool
	}{
		{"simple address", "user@example.com", true},
		{"subdomain", "user@mail.example.co.uk", true},
		{"plus tag", "user+travel@example.com", true},
		{"surrounding whitespace", "  user@example.com  ", true},
		{"missing tld", "user@example", false},
		{"missing at", "userexample.com", false},
		{"missing local part", "@example.com", false},
		{"single char tld", "user@example.c", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidEmail(tt.email))
		})
	}
}

func TestIsValidUsername(t *testing.T) {
	assert.True(t, IsValidUsername("abc"))
	assert.True(t, IsValidUsername("traveler42"))
	assert.False(t, IsValidUsername("ab"))
	assert.False(t, IsValidUsername("  ab  "))
	assert.False(t, IsValidUsername(""))
}

func TestIsValidPassword(t *testing.T) {
	assert.True(t, IsValidPassword("123456"))
	assert.True(t, IsValidPassword("longer-password"))
	assert.False(t, IsValidPassword("12345"))
	assert.True(t, IsValidPassword("   123456   ")) // trims to 6, still valid
}

func TestIsValidPassword_TrimmedLength(t *testing.T) {
	// Whitespace padding does not count toward the minimum.
	assert.False(t, IsValidPassword("  1234  "))
}

func TestIsValidName(t *testing.T) {
	assert.True(t, IsValidName("Ada"))
	assert.False(t, IsValidName(""))
	assert.False(t, IsValidName("   "))
}
