package config

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/routegrid/routegrid/internal/pattern"
	"github.com/routegrid/routegrid/internal/util"
)

// knownMethods is the fixed HTTP method set accepted in route and
// ignore declarations.
var knownMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
}

// IsKnownMethod reports whether m is in the accepted HTTP method set.
func IsKnownMethod(m string) bool {
	return knownMethods[strings.ToUpper(m)]
}

// Validate checks the configuration for errors that must be fatal at
// startup.
func Validate(cfg *Config) error {
	if cfg == nil {
		return util.NewConfigError("", "configuration is nil")
	}

	if cfg.Listener.Address == "" {
		return util.NewConfigError("listener.address", "listen address is required")
	}

	if s := cfg.CORS.SuccessStatus; s != 0 && (s < 100 || s > 599) {
		return util.NewConfigError("cors.successStatus",
			fmt.Sprintf("status %d outside valid range", s))
	}

	if cfg.Defaults.Timeout < 0 {
		return util.NewConfigError("defaults.timeout", "timeout cannot be negative")
	}
	if cfg.Defaults.BodyQuota < 0 {
		return util.NewConfigError("defaults.bodyQuota", "body quota cannot be negative")
	}
	if cfg.Defaults.QueryLength < 0 {
		return util.NewConfigError("defaults.queryLength", "query length cannot be negative")
	}

	for i, rule := range cfg.Ignore {
		field := fmt.Sprintf("ignore[%d]", i)

		if rule.Path == "" {
			return util.NewConfigError(field+".path", "ignore rule path is required")
		}
		if _, err := pattern.Compile(rule.Path); err != nil {
			return util.NewConfigErrorWithCause(field+".path", "invalid ignore pattern", err)
		}
		for _, m := range rule.Methods {
			if m != "*" && !IsKnownMethod(m) {
				return util.NewConfigError(field+".methods", "unknown HTTP method "+m)
			}
		}
	}

	switch cfg.Logging.Level {
	case "", "debug", "info", "warn", "error", "fatal":
	default:
		return util.NewConfigError("logging.level", "unknown log level "+cfg.Logging.Level)
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Path == "" {
		return util.NewConfigError("metrics.path", "metrics path is required when metrics are enabled")
	}

	return nil
}
