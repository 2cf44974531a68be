package dispatch

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/routegrid/routegrid/internal/config"
)

// corsHeaders holds pre-computed CORS header values so that the hot
// path only does map lookups and header sets.
type corsHeaders struct {
	allowOrigins     map[string]bool
	wildcardPatterns []string // patterns like "*.example.com"
	allowAllOrigins  bool
	allowMethods     string
	allowHeaders     string
	exposeHeaders    string
	maxAge           string
	allowCredentials bool
	hasAllowMethods  bool
	hasAllowHeaders  bool
	hasExposeHeaders bool
	hasMaxAge        bool
	preflightStatus  int
}

// newCORSHeaders pre-computes header values from config.
func newCORSHeaders(cfg config.CORSConfig) *corsHeaders {
	allowOrigins := make(map[string]bool)
	var wildcardPatterns []string
	allowAllOrigins := false

	for _, origin := range cfg.AllowOrigins {
		switch {
		case origin == "*":
			allowAllOrigins = true
		case strings.HasPrefix(origin, "*."):
			wildcardPatterns = append(wildcardPatterns, origin)
		default:
			allowOrigins[origin] = true
		}
	}

	return &corsHeaders{
		allowOrigins:     allowOrigins,
		wildcardPatterns: wildcardPatterns,
		allowAllOrigins:  allowAllOrigins,
		allowMethods:     strings.Join(cfg.AllowMethods, ", "),
		allowHeaders:     strings.Join(cfg.AllowHeaders, ", "),
		exposeHeaders:    strings.Join(cfg.ExposeHeaders, ", "),
		maxAge:           strconv.Itoa(cfg.MaxAge),
		allowCredentials: cfg.AllowCredentials,
		hasAllowMethods:  len(cfg.AllowMethods) > 0,
		hasAllowHeaders:  len(cfg.AllowHeaders) > 0,
		hasExposeHeaders: len(cfg.ExposeHeaders) > 0,
		hasMaxAge:        cfg.MaxAge > 0,
		preflightStatus:  cfg.PreflightStatus(),
	}
}

// isOriginAllowed checks if the given origin is allowed.
func (h *corsHeaders) isOriginAllowed(origin string) bool {
	if origin == "" {
		return false
	}
	if h.allowAllOrigins {
		return true
	}
	if h.allowOrigins[origin] {
		return true
	}
	for _, pattern := range h.wildcardPatterns {
		if matchWildcardOrigin(origin, pattern) {
			return true
		}
	}
	return false
}

// matchWildcardOrigin checks if an origin matches a wildcard pattern.
// "*.example.com" matches "https://sub.example.com" and
// "http://api.example.com:8080" but not "https://example.com".
func matchWildcardOrigin(origin, pattern string) bool {
	if !strings.HasPrefix(pattern, "*.") {
		return false
	}

	suffix := pattern[1:] // ".example.com"

	host := origin
	if idx := strings.Index(host, "://"); idx != -1 {
		host = host[idx+3:]
	}
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}

	// At least one character must precede the suffix (the subdomain).
	return len(host) > len(suffix) && strings.HasSuffix(host, suffix)
}

// apply sets the CORS headers on the response for the given request
// origin. Applying overwrites any values set by a broader configuration
// earlier in the request, so per-route overrides simply re-apply.
func (h *corsHeaders) apply(header http.Header, origin string) {
	if h.isOriginAllowed(origin) {
		// Echo the specific origin; credentialed requests require it.
		header.Set("Access-Control-Allow-Origin", origin)
		header.Set("Vary", "Origin")
	} else if h.allowAllOrigins {
		header.Set("Access-Control-Allow-Origin", "*")
	}

	if h.hasAllowMethods {
		header.Set("Access-Control-Allow-Methods", h.allowMethods)
	}
	if h.hasAllowHeaders {
		header.Set("Access-Control-Allow-Headers", h.allowHeaders)
	}
	if h.hasExposeHeaders {
		header.Set("Access-Control-Expose-Headers", h.exposeHeaders)
	}
	if h.allowCredentials {
		header.Set("Access-Control-Allow-Credentials", "true")
	}
	if h.hasMaxAge {
		header.Set("Access-Control-Max-Age", h.maxAge)
	}
}
