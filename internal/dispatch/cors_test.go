package dispatch

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/routegrid/routegrid/internal/config"
)

func TestCORSOriginMatching(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"wildcard allows anything", []string{"*"}, "https://any.example.com", true},
		{"exact match", []string{"https://app.example.com"}, "https://app.example.com", true},
		{"exact mismatch", []string{"https://app.example.com"}, "https://evil.example.com", false},
		{"wildcard subdomain match", []string{"*.example.com"}, "https://api.example.com", true},
		{"wildcard subdomain with port", []string{"*.example.com"}, "http://api.example.com:8080", true},
		{"wildcard rejects apex", []string{"*.example.com"}, "https://example.com", false},
		{"wildcard rejects other domain", []string{"*.example.com"}, "https://example.org", false},
		{"empty origin never allowed", []string{"*"}, "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newCORSHeaders(config.CORSConfig{AllowOrigins: tt.allowed})
			assert.Equal(t, tt.want, h.isOriginAllowed(tt.origin))
		})
	}
}

func TestCORSApply(t *testing.T) {
	t.Parallel()

	h := newCORSHeaders(config.CORSConfig{
		AllowOrigins:     []string{"https://app.example.com"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Content-Type"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           600,
	})

	header := make(http.Header)
	h.apply(header, "https://app.example.com")

	assert.Equal(t, "https://app.example.com", header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", header.Get("Vary"))
	assert.Equal(t, "GET, POST", header.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", header.Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "X-Request-ID", header.Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "true", header.Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "600", header.Get("Access-Control-Max-Age"))
}

func TestCORSApplyDisallowedOrigin(t *testing.T) {
	t.Parallel()

	h := newCORSHeaders(config.CORSConfig{AllowOrigins: []string{"https://app.example.com"}})

	header := make(http.Header)
	h.apply(header, "https://evil.example.com")

	assert.Empty(t, header.Get("Access-Control-Allow-Origin"))
}

func TestCORSApplyWildcardWithoutOrigin(t *testing.T) {
	t.Parallel()

	h := newCORSHeaders(config.CORSConfig{AllowOrigins: []string{"*"}})

	header := make(http.Header)
	h.apply(header, "")

	assert.Equal(t, "*", header.Get("Access-Control-Allow-Origin"))
}
