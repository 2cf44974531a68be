// Package dispatch implements the request pipeline: the fixed, ordered
// stage sequence that turns an incoming HTTP request into exactly one
// response through the single-write response guard. Stages either pass
// the request along or end the response; once the response is ended,
// every later write attempt is dropped.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/routegrid/routegrid/internal/config"
	"github.com/routegrid/routegrid/internal/observability"
	"github.com/routegrid/routegrid/internal/router"
	"github.com/routegrid/routegrid/internal/util"
)

// HeaderRequestID carries the request correlation ID on both the
// request and the response.
const HeaderRequestID = "X-Request-ID"

// Pipeline dispatches requests against a built registry. It is safe
// for concurrent use: the registry, the ignore rules, and the
// pre-computed CORS headers are read-only after construction; all
// per-request state lives in the context/response pair.
type Pipeline struct {
	registry  *router.Registry
	baseCORS  *corsHeaders
	routeCORS map[*router.Route]*corsHeaders
	security  map[string]string
	ignore    []ignoreRule
	logger    observability.Logger
	metrics   *observability.Metrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger observability.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// New builds a Pipeline from a registry and configuration. Per-route
// CORS merges are pre-computed here; a malformed ignore rule is a
// startup error.
func New(reg *router.Registry, cfg *config.Config, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		registry:  reg,
		baseCORS:  newCORSHeaders(cfg.CORS),
		routeCORS: make(map[*router.Route]*corsHeaders),
		security:  cfg.Security.Headers,
		logger:    observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = observability.NewMetrics("routegrid")
	}

	ignore, err := compileIgnoreRules(cfg.Ignore)
	if err != nil {
		return nil, err
	}
	p.ignore = ignore

	for _, rt := range reg.AllRoutes() {
		if rt.CORS != nil {
			p.routeCORS[rt] = newCORSHeaders(cfg.CORS.Merge(rt.CORS))
		}
	}
	return p, nil
}

// ServeHTTP runs the stage sequence. Any stage may end the response;
// later stages observe that through the guard and back off. Nothing
// written here escapes as a panic to the listener.
func (p *Pipeline) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	rw := router.NewResponseWriter(w, p.security, p.logger)
	rw.OnDrop(p.metrics.RecordDroppedWrite)

	requestID := r.Header.Get(HeaderRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	rw.SetHeader(HeaderRequestID, requestID)
	r = r.WithContext(observability.ContextWithRequestID(r.Context(), requestID))

	c := router.NewContext(r, rw)
	origin := r.Header.Get("Origin")
	p.baseCORS.apply(rw.Header(), origin)

	routeName := ""
	ignored := false
	defer func() {
		if ignored {
			return
		}
		p.metrics.RecordRequest(r.Method, routeName, rw.Status(), time.Since(start))
	}()

	// Preflight answers with headers only, before resolution.
	if r.Method == http.MethodOptions {
		rw.EndStatus(p.baseCORS.preflightStatus)
		return
	}

	if !p.runPreRequest(p.registry.Top(), c) {
		return
	}

	if matchIgnore(p.ignore, r.Method, r.URL.Path) {
		// Ownership ceded: no response is written here.
		ignored = true
		p.metrics.RecordIgnored()
		p.logger.Debug("request ignored",
			observability.String("method", r.Method),
			observability.String("path", r.URL.Path),
		)
		return
	}

	route, vals, ok := p.registry.Resolve(r.Method, r.URL.Path)
	if !ok {
		p.notFound(c)
		return
	}
	routeName = route.Name

	// Per-route CORS overrides re-apply over the router-level set.
	if h, ok := p.routeCORS[route]; ok {
		h.apply(rw.Header(), origin)
	}

	if route.Service != p.registry.Top() {
		if !p.runPreRequest(route.Service, c) {
			return
		}
	}

	if route.Handler == nil {
		p.notFound(c)
		return
	}

	if route.Timeout > 0 {
		timer := time.AfterFunc(route.Timeout, func() {
			if rw.EndError(http.StatusRequestTimeout, "request timed out") {
				p.metrics.RecordTimeout()
				p.logger.Warn("request timed out",
					observability.String("route", route.Name),
					observability.Duration("timeout", route.Timeout),
				)
			}
		})
		defer timer.Stop()
		// Client disconnect disarms the timer too.
		stop := context.AfterFunc(r.Context(), func() { timer.Stop() })
		defer stop()
	}

	c.BindValues(vals)

	if route.QueryLength > 0 && len(r.URL.RawQuery) > route.QueryLength {
		p.metrics.RecordBodyRejected(reasonQueryLength)
		rw.EndError(http.StatusRequestEntityTooLarge, "query string exceeds limit")
		return
	}

	if rej := processBody(c, route); rej != nil {
		p.metrics.RecordBodyRejected(rej.reason)
		p.logger.Debug("request body rejected",
			observability.String("route", route.Name),
			observability.String("reason", rej.reason),
			observability.Error(rej.err),
		)
		rw.EndError(rej.status, rej.message)
		return
	}

	if !p.runHooks(c, route) {
		return
	}

	p.invokeHandler(c, route)
}

// runPreRequest invokes a service's pre-request callback. It returns
// false when the pipeline must stop: the callback ended the response
// or faulted.
func (p *Pipeline) runPreRequest(svc *router.Service, c *router.Context) bool {
	if svc == nil || svc.PreRequest == nil {
		return true
	}
	if err := p.guarded(c, func() error { return svc.PreRequest(c) }); err != nil {
		status := util.StatusFor(err)
		c.Response().EndError(status, clientMessage(err, status))
		p.reportError(c, err)
		return false
	}
	return !c.Ended()
}

// notFound hands the request to the not-found collaborator when one is
// registered, and guarantees a terminated response either way.
func (p *Pipeline) notFound(c *router.Context) {
	p.metrics.RecordNotFound()
	top := p.registry.Top()
	if top != nil && top.NotFound != nil {
		if err := p.guarded(c, func() error { return top.NotFound(c) }); err != nil {
			p.reportError(c, err)
		}
	}
	if !c.Ended() {
		c.Response().EndError(http.StatusNotFound, "not found")
	}
}

// runHooks executes the route's hook chain in declaration order,
// strictly sequentially. It returns true when the handler may run.
func (p *Pipeline) runHooks(c *router.Context, route *router.Route) bool {
	for _, hb := range route.HookChain() {
		ok, err := p.callHook(c, hb, route.Name)

		if c.Ended() {
			// The hook produced the response itself; the chain stops
			// with no synthesized overwrite.
			if err != nil {
				p.reportError(c, util.NewHookError(hb.Name, route.Name, err))
			}
			return false
		}
		if err != nil {
			p.metrics.RecordHookFailure(hb.Name)
			c.Response().EndError(http.StatusInternalServerError, "internal server error")
			p.reportError(c, util.NewHookError(hb.Name, route.Name, err))
			return false
		}
		if !ok {
			p.metrics.RecordHookFailure(hb.Name)
			c.Response().EndError(http.StatusBadRequest, "request rejected")
			return false
		}
	}
	return true
}

// callHook invokes one hook binding, converting a panic into an error.
// A binding whose name never resolved is treated as failed.
func (p *Pipeline) callHook(c *router.Context, hb router.HookBinding, routeName string) (bool, error) {
	if hb.Fn == nil {
		return false, nil
	}
	var ok bool
	err := p.guarded(c, func() error {
		var hookErr error
		ok, hookErr = hb.Fn(c, routeName)
		return hookErr
	})
	return ok, err
}

// invokeHandler runs the route handler and synthesizes the error
// response for a returned or recovered fault. A handler that completes
// without writing gets a no-content termination rather than leaving
// the connection to the timeout race.
func (p *Pipeline) invokeHandler(c *router.Context, route *router.Route) {
	err := p.guarded(c, func() error { return route.Handler(c) })
	if err == nil {
		if !c.Ended() {
			c.Response().EndStatus(http.StatusNoContent)
		}
		return
	}

	status := util.StatusFor(err)
	c.Response().EndError(status, clientMessage(err, status))
	p.reportError(c, err)
}

// guarded runs fn, converting a panic into an error with the stack
// logged.
func (p *Pipeline) guarded(c *router.Context, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			p.metrics.RecordPanic()
			p.logger.Error("panic recovered",
				observability.Any("panic", rec),
				observability.String("method", c.Method()),
				observability.String("path", c.Path()),
				observability.String("stack", string(debug.Stack())),
			)
			// Keep a panicked error in the chain so a carried status
			// still maps through StatusFor.
			if perr, ok := rec.(error); ok {
				err = fmt.Errorf("panic: %w", perr)
			} else {
				err = fmt.Errorf("panic: %v", rec)
			}
		}
	}()
	return fn()
}

// reportError logs a fault and notifies the route-error collaborator.
// The synthesized response, if any, has already been written.
func (p *Pipeline) reportError(c *router.Context, err error) {
	p.logger.Error("request failed",
		observability.String("method", c.Method()),
		observability.String("path", c.Path()),
		observability.Error(err),
	)
	if top := p.registry.Top(); top != nil && top.RouteError != nil {
		top.RouteError(c, err)
	}
}

// clientMessage picks a safe message for a synthesized error response.
// Server faults never expose the underlying error to the client.
func clientMessage(err error, status int) string {
	if status >= http.StatusInternalServerError {
		return "internal server error"
	}
	var httpErr *util.HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	return http.StatusText(status)
}
