// Package router provides the route registration model, the two-phase
// route registry, and the per-request context/response pair consumed by
// the dispatch pipeline.
package router

import (
	"github.com/routegrid/routegrid/internal/config"
	"github.com/routegrid/routegrid/internal/pattern"
)

// Handler handles a resolved request. Returning an error synthesizes an
// error response unless the handler already ended the response itself.
type Handler func(c *Context) error

// Hook is a named pre-handler function that may veto or augment a
// request. It receives the context and the logical name of the resolved
// route. Returning false without ending the response synthesizes a
// bad-request response; returning an error synthesizes a server error.
type Hook func(c *Context, route string) (bool, error)

// Service declares a group of routes sharing a path prefix, a hook
// table, and optional lifecycle callbacks. Services form a two-level
// tree: a top-level service and its sub-services.
type Service struct {
	// Name contributes a literal segment to the service root prefix.
	Name string

	// Version is an optional version tag prefixed before the name,
	// e.g. "v2".
	Version string

	// Prefix, when non-empty, replaces the version/name derived prefix
	// for this service's routes.
	Prefix string

	// Routes are the service's route declarations, registered in order.
	Routes []RouteSpec

	// Hooks maps hook names to implementations. Hook name resolution is
	// local definition wins: a route's hook names are looked up in the
	// owning service first, then in the top-level service.
	Hooks map[string]Hook

	// Subservices are registered after this service's own routes.
	Subservices []*Service

	// PreRequest runs before route resolution (top-level service) or
	// after resolution for routes owned by a sub-service. It may end
	// the response to short-circuit the pipeline.
	PreRequest func(c *Context) error

	// NotFound, when set on the top-level service, owns unresolved
	// requests instead of the synthesized 404.
	NotFound func(c *Context) error

	// RouteError is notified of handler and hook faults after the
	// pipeline has synthesized the error response.
	RouteError func(c *Context, err error)

	// ListeningStarted is invoked once the listener accepts traffic.
	ListeningStarted func(addr string)
}

// RootPrefix returns the service's path prefix: the explicit Prefix
// override if set, otherwise the version tag joined with the name.
func (s *Service) RootPrefix() string {
	if s.Prefix != "" {
		return pattern.Clean(s.Prefix)
	}
	return pattern.Join(s.Version, s.Name)
}

// ResolveHook resolves a hook name against this service first, then the
// top-level service. It returns nil when the name never resolves.
func (s *Service) ResolveHook(name string, top *Service) Hook {
	if s != nil {
		if h, ok := s.Hooks[name]; ok {
			return h
		}
	}
	if top != nil && top != s {
		if h, ok := top.Hooks[name]; ok {
			return h
		}
	}
	return nil
}

// RouteSpec is a declarative route registration record. Unset optional
// fields inherit the registry-wide defaults.
type RouteSpec struct {
	// Method is one of the fixed HTTP method set.
	Method string

	// Path is a template in the pattern language, relative to the
	// service prefix.
	Path string

	// Name is the route's logical name, passed to hooks. Defaults to
	// "METHOD path".
	Name string

	// Hooks lists hook names executed in order before the handler.
	Hooks []string

	// BodyQuota is the maximum request body size in bytes; 0 means
	// unlimited. Nil inherits the default.
	BodyQuota *int64

	// ProcessBody controls body acquisition and parsing. Nil inherits
	// the default.
	ProcessBody *bool

	// Accepts is the accepted request content type. Empty inherits the
	// default.
	Accepts string

	// QueryLength is the maximum raw query string length; 0 means
	// unlimited. Nil inherits the default.
	QueryLength *int

	// Timeout is the per-request timeout. Zero inherits the default.
	Timeout config.Duration

	// CORS overrides router-level CORS settings for this route.
	CORS *config.CORSConfig

	// Handler handles the request once all stages pass.
	Handler Handler
}
