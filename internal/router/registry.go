package router

import (
	"strings"

	"github.com/routegrid/routegrid/internal/config"
	"github.com/routegrid/routegrid/internal/observability"
	"github.com/routegrid/routegrid/internal/pattern"
	"github.com/routegrid/routegrid/internal/util"
)

// Registry stores the compiled routes of a service tree. It is built
// once during startup and is read-only for the remainder of the
// process's life, so lookups take no locks.
//
// Each method maps to two structures: an exact-path map for O(1) lookup
// of fully literal routes, and an insertion-ordered slice scanned as a
// fallback. Ordering is a documented tie-break: of two patterns
// matching the same path, the first registered wins.
type Registry struct {
	exact   map[string]map[string]*Route
	ordered map[string][]*Route
	top     *Service
	logger  observability.Logger
}

// NewRegistry compiles and registers every route of the service tree.
// Any malformed template, unknown method, or similar declaration
// problem is a configuration error: the registry is not built and the
// caller should treat the error as fatal.
func NewRegistry(top *Service, defaults config.RouteDefaults, logger observability.Logger) (*Registry, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}

	reg := &Registry{
		exact:   make(map[string]map[string]*Route),
		ordered: make(map[string][]*Route),
		top:     top,
		logger:  logger,
	}

	if top == nil {
		return reg, nil
	}

	if err := reg.registerService(top, top.RootPrefix(), defaults); err != nil {
		return nil, err
	}

	for _, sub := range top.Subservices {
		prefix := pattern.Join(top.RootPrefix(), sub.RootPrefix())
		if err := reg.registerService(sub, prefix, defaults); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

// registerService registers one service's own routes under prefix.
func (reg *Registry) registerService(svc *Service, prefix string, defaults config.RouteDefaults) error {
	for i := range svc.Routes {
		if err := reg.registerRoute(svc, prefix, &svc.Routes[i], defaults); err != nil {
			return err
		}
	}
	return nil
}

// registerRoute compiles one route declaration and appends it to the
// per-method structures.
func (reg *Registry) registerRoute(svc *Service, prefix string, spec *RouteSpec, defaults config.RouteDefaults) error {
	method := strings.ToUpper(spec.Method)
	if !config.IsKnownMethod(method) {
		return util.NewConfigError("route "+spec.Path, "unknown HTTP method "+spec.Method)
	}

	fullPath := pattern.Join(prefix, spec.Path)
	compiled, err := pattern.Compile(fullPath)
	if err != nil {
		return err
	}

	route := &Route{
		Name:        spec.Name,
		Method:      method,
		Path:        fullPath,
		Pattern:     compiled,
		Service:     svc,
		Accepts:     spec.Accepts,
		Timeout:     spec.Timeout.Duration(),
		CORS:        spec.CORS,
		Handler:     spec.Handler,
		ProcessBody: defaults.ProcessBodyEnabled(),
		BodyQuota:   defaults.BodyQuota,
		QueryLength: defaults.QueryLength,
	}

	if route.Name == "" {
		route.Name = method + " " + fullPath
	}
	if spec.ProcessBody != nil {
		route.ProcessBody = *spec.ProcessBody
	}
	if spec.BodyQuota != nil {
		route.BodyQuota = *spec.BodyQuota
	}
	if spec.QueryLength != nil {
		route.QueryLength = *spec.QueryLength
	}
	if route.Accepts == "" {
		route.Accepts = defaults.Accepts
	}
	if route.Timeout == 0 {
		route.Timeout = defaults.Timeout.Duration()
	}
	if route.Timeout < 0 {
		return util.NewConfigError("route "+route.Name, "negative timeout")
	}

	route.hooks = reg.resolveHooks(svc, route.Name, spec.Hooks)

	if compiled.IsStatic() {
		byPath, ok := reg.exact[method]
		if !ok {
			byPath = make(map[string]*Route)
			reg.exact[method] = byPath
		}
		if _, exists := byPath[fullPath]; exists {
			// First-registered-wins also holds for exact paths.
			reg.logger.Warn("duplicate exact route ignored for exact lookup",
				observability.String("method", method),
				observability.String("path", fullPath),
			)
		} else {
			byPath[fullPath] = route
		}
	}

	// Static routes join the ordered sequence too: the exact phase is
	// case-sensitive, so a case-different request still needs to find
	// them through the case-insensitive ordered phase.
	reg.ordered[method] = append(reg.ordered[method], route)

	reg.logger.Debug("route registered",
		observability.String("method", method),
		observability.String("path", fullPath),
		observability.String("name", route.Name),
	)

	return nil
}

// resolveHooks binds declared hook names, owning service first, then
// the top-level service. Names that never resolve are a configuration
// warning; the binding is kept with a nil function and fails the
// request when reached.
func (reg *Registry) resolveHooks(svc *Service, routeName string, names []string) []HookBinding {
	if len(names) == 0 {
		return nil
	}

	bindings := make([]HookBinding, 0, len(names))
	for _, name := range names {
		fn := svc.ResolveHook(name, reg.top)
		if fn == nil {
			reg.logger.Warn("hook name never resolves",
				observability.String("hook", name),
				observability.String("route", routeName),
			)
		}
		bindings = append(bindings, HookBinding{Name: name, Fn: fn})
	}
	return bindings
}

// Top returns the top-level service of the registry.
func (reg *Registry) Top() *Service {
	return reg.top
}

// Routes returns all registered routes for a method in registration
// order.
func (reg *Registry) Routes(method string) []*Route {
	return reg.ordered[strings.ToUpper(method)]
}

// AllRoutes returns every registered route across all methods. The
// order across methods is unspecified; within a method it is
// registration order.
func (reg *Registry) AllRoutes() []*Route {
	var routes []*Route
	for _, byMethod := range reg.ordered {
		routes = append(routes, byMethod...)
	}
	return routes
}

// Resolve maps a (method, path) pair to a route and its extracted
// parameters.
//
// The exact phase compares the cleaned path case-sensitively and
// returns an empty parameter bag on a hit. The ordered phase scans in
// registration order with case-insensitive literal comparison and
// returns the first success. The case-sensitivity asymmetry between the
// two phases is documented behavior, kept intentionally.
func (reg *Registry) Resolve(method, path string) (*Route, pattern.Values, bool) {
	cleaned := pattern.Clean(path)

	if byPath, ok := reg.exact[method]; ok {
		if route, ok := byPath[cleaned]; ok {
			return route, pattern.Values{}, true
		}
	}

	for _, route := range reg.ordered[method] {
		if vals, ok := route.Pattern.Match(cleaned, true); ok {
			return route, vals, true
		}
	}

	return nil, pattern.Values{}, false
}
