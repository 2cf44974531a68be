package router

import (
	"time"

	"github.com/routegrid/routegrid/internal/config"
	"github.com/routegrid/routegrid/internal/pattern"
)

// Route is an immutable route definition: the compiled pattern plus the
// effective per-route settings after defaults were merged in. Routes
// are created once during registration and never mutated afterwards.
type Route struct {
	// Name is the route's logical name, passed to hooks.
	Name string

	// Method is the HTTP method the route is registered under.
	Method string

	// Path is the full cleaned registered path template, including the
	// service prefixes.
	Path string

	// Pattern is the compiled path template.
	Pattern *pattern.Pattern

	// Service is the declaring service; for sub-service routes it is
	// the sub-service, not the top-level service.
	Service *Service

	// BodyQuota is the maximum request body size in bytes; 0 means
	// unlimited.
	BodyQuota int64

	// ProcessBody controls whether the pipeline reads and parses the
	// body before the handler runs.
	ProcessBody bool

	// Accepts is the accepted request content type.
	Accepts string

	// QueryLength is the maximum raw query string length; 0 means
	// unlimited.
	QueryLength int

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// CORS holds the per-route CORS overrides, nil when the route uses
	// the router-level settings unchanged.
	CORS *config.CORSConfig

	// Handler handles the request. A nil handler is tolerated at
	// registration and treated as not-found at dispatch time.
	Handler Handler

	hooks []HookBinding
}

// HookBinding pairs a declared hook name with its resolved function.
// Fn is nil when the name resolved against neither the owning service
// nor the top-level service; such hooks fail the request when reached.
type HookBinding struct {
	Name string
	Fn   Hook
}

// HookChain returns the route's hooks in declaration order.
func (r *Route) HookChain() []HookBinding {
	return r.hooks
}
