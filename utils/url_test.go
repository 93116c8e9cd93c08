package utils

import (
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		path     string
		query    url.Values
		expected string
	}{
		{
			name:     "base without path",
			base:     "https://api.example.com",
			path:     "/v1/feed",
			expected: "https://api.example.com/v1/feed",
		},
		{
			name:     "base with path prefix",
			base:     "https://api.example.com/api/",
			path:     "v1/profile",
			expected: "https://api.example.com/api/v1/profile",
		},
		{
			name:     "query merged into path query",
			base:     "https://api.example.com",
			path:     "/v1/feed?page=2",
			query:    url.Values{"limit": []string{"20"}},
			expected: "https://api.example.com/v1/feed?limit=20&page=2",
		},
		{
			name:     "absolute path replaces base",
			base:     "https://api.example.com",
			path:     "https://cdn.example.com/upload",
			expected: "https://cdn.example.com/upload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JoinURL(tt.base, tt.path, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestJoinURL_RelativeBase(t *testing.T) {
	_, err := JoinURL("api.example.com", "/v1/feed", nil)
	assert.Error(t, err)
}

func TestValidateURLScheme(t *testing.T) {
	assert.NoError(t, ValidateURLScheme("https://api.example.com"))
	assert.NoError(t, ValidateURLScheme("http://localhost:8080"))
	assert.Error(t, ValidateURLScheme("ftp://api.example.com"))
}

func TestCleanHost(t *testing.T) {
	host, err := CleanHost(zerolog.Nop(), " api.example.com:443/v1 ")
	require.NoError(t, err)
	assert.Equal(t, "api.example.com", host)

	_, err = CleanHost(zerolog.Nop(), "  ")
	assert.Error(t, err)
}
