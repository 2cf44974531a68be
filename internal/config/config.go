// Package config defines the dispatch core's configuration model and
// its YAML loading, validation, and file-watching support.
package config

import (
	"net/http"
	"time"
)

// Config is the root configuration for the router process.
type Config struct {
	Listener ListenerConfig `yaml:"listener" json:"listener"`
	CORS     CORSConfig     `yaml:"cors,omitempty" json:"cors,omitempty"`
	Security SecurityConfig `yaml:"security,omitempty" json:"security,omitempty"`
	Defaults RouteDefaults  `yaml:"defaults,omitempty" json:"defaults,omitempty"`
	Ignore   []IgnoreRule   `yaml:"ignore,omitempty" json:"ignore,omitempty"`
	Logging  LogConfig      `yaml:"logging,omitempty" json:"logging,omitempty"`
	Metrics  MetricsConfig  `yaml:"metrics,omitempty" json:"metrics,omitempty"`
}

// DefaultConfig returns a configuration with all defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Listener: DefaultListenerConfig(),
		CORS:     DefaultCORSConfig(),
		Security: DefaultSecurityConfig(),
		Defaults: DefaultRouteDefaults(),
		Logging:  DefaultLogConfig(),
		Metrics:  DefaultMetricsConfig(),
	}
}

// ListenerConfig configures the HTTP listener.
type ListenerConfig struct {
	// Address is the listen address, e.g. ":8080".
	Address string `yaml:"address" json:"address"`

	// ReadHeaderTimeout bounds reading of request headers.
	ReadHeaderTimeout Duration `yaml:"readHeaderTimeout,omitempty" json:"readHeaderTimeout,omitempty"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout Duration `yaml:"shutdownTimeout,omitempty" json:"shutdownTimeout,omitempty"`
}

// DefaultListenerConfig returns default listener configuration.
func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		Address:           ":8080",
		ReadHeaderTimeout: Duration(10 * time.Second),
		ShutdownTimeout:   Duration(15 * time.Second),
	}
}

// CORSConfig contains CORS configuration. SuccessStatus is the status
// written to answer preflight requests.
type CORSConfig struct {
	AllowOrigins     []string `yaml:"allowOrigins,omitempty" json:"allowOrigins,omitempty"`
	AllowMethods     []string `yaml:"allowMethods,omitempty" json:"allowMethods,omitempty"`
	AllowHeaders     []string `yaml:"allowHeaders,omitempty" json:"allowHeaders,omitempty"`
	ExposeHeaders    []string `yaml:"exposeHeaders,omitempty" json:"exposeHeaders,omitempty"`
	AllowCredentials bool     `yaml:"allowCredentials,omitempty" json:"allowCredentials,omitempty"`
	MaxAge           int      `yaml:"maxAge,omitempty" json:"maxAge,omitempty"`
	SuccessStatus    int      `yaml:"successStatus,omitempty" json:"successStatus,omitempty"`
}

// DefaultCORSConfig returns default CORS configuration.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		MaxAge:        86400,
		SuccessStatus: http.StatusNoContent,
	}
}

// Merge overlays a per-route override onto this configuration. Set
// fields of the override win; unset fields fall back to the receiver.
func (c CORSConfig) Merge(override *CORSConfig) CORSConfig {
	if override == nil {
		return c
	}

	merged := c
	if len(override.AllowOrigins) > 0 {
		merged.AllowOrigins = override.AllowOrigins
	}
	if len(override.AllowMethods) > 0 {
		merged.AllowMethods = override.AllowMethods
	}
	if len(override.AllowHeaders) > 0 {
		merged.AllowHeaders = override.AllowHeaders
	}
	if len(override.ExposeHeaders) > 0 {
		merged.ExposeHeaders = override.ExposeHeaders
	}
	if override.AllowCredentials {
		merged.AllowCredentials = true
	}
	if override.MaxAge > 0 {
		merged.MaxAge = override.MaxAge
	}
	if override.SuccessStatus > 0 {
		merged.SuccessStatus = override.SuccessStatus
	}
	return merged
}

// PreflightStatus returns the status used to answer preflight requests.
func (c CORSConfig) PreflightStatus() int {
	if c.SuccessStatus > 0 {
		return c.SuccessStatus
	}
	return http.StatusNoContent
}

// SecurityConfig configures the baseline security headers attached to
// every response before the first byte is written.
type SecurityConfig struct {
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// DefaultSecurityConfig returns the default baseline security headers.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		Headers: map[string]string{
			"X-Content-Type-Options": "nosniff",
			"X-Frame-Options":        "SAMEORIGIN",
			"X-XSS-Protection":       "1; mode=block",
			"Referrer-Policy":        "no-referrer",
		},
	}
}

// RouteDefaults holds per-route settings applied when a route
// declaration leaves them unset.
type RouteDefaults struct {
	// Timeout is the per-request timeout.
	Timeout Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// BodyQuota is the maximum request body size in bytes. 0 means
	// unlimited.
	BodyQuota int64 `yaml:"bodyQuota,omitempty" json:"bodyQuota,omitempty"`

	// QueryLength is the maximum raw query string length in characters.
	// 0 means unlimited.
	QueryLength int `yaml:"queryLength,omitempty" json:"queryLength,omitempty"`

	// Accepts is the accepted request content type.
	Accepts string `yaml:"accepts,omitempty" json:"accepts,omitempty"`

	// ProcessBody controls whether the pipeline reads and parses the
	// request body before invoking the handler.
	ProcessBody *bool `yaml:"processBody,omitempty" json:"processBody,omitempty"`
}

// DefaultRouteDefaults returns the built-in route defaults.
func DefaultRouteDefaults() RouteDefaults {
	processBody := true
	return RouteDefaults{
		Timeout:     Duration(30 * time.Second),
		BodyQuota:   0,
		QueryLength: 0,
		Accepts:     "application/json",
		ProcessBody: &processBody,
	}
}

// ProcessBodyEnabled reports the effective process-body setting.
func (d RouteDefaults) ProcessBodyEnabled() bool {
	if d.ProcessBody == nil {
		return true
	}
	return *d.ProcessBody
}

// IgnoreRule declares a (method set, path pattern) pair whose matching
// requests are dropped from pipeline processing with no response
// written; ownership of the connection is ceded to the host.
type IgnoreRule struct {
	// Methods restricts the rule to the listed HTTP methods. Empty or
	// containing "*" means all methods.
	Methods []string `yaml:"methods,omitempty" json:"methods,omitempty"`

	// Path is a path template in the pattern language.
	Path string `yaml:"path" json:"path"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level  string `yaml:"level,omitempty" json:"level,omitempty"`
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
	Output string `yaml:"output,omitempty" json:"output,omitempty"`
}

// DefaultLogConfig returns default logging configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}
}

// MetricsConfig configures metrics exposure.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty" json:"path,omitempty"`
}

// DefaultMetricsConfig returns default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled: true,
		Path:    "/metrics",
	}
}
