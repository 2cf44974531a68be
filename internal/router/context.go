package router

import (
	"net/http"

	"github.com/routegrid/routegrid/internal/pattern"
)

// Context is the per-request state threaded through the dispatch
// pipeline, the hooks, and the handler. It is created fresh for each
// inbound request and owned exclusively by that request; nothing in it
// is shared across concurrent requests.
type Context struct {
	request  *http.Request
	response *ResponseWriter

	params  map[string]string
	rest    []string
	hasRest bool
	bound   bool

	body    any
	bodySet bool

	locals map[string]any
	auth   any
}

// NewContext creates a request context around a request/response pair.
func NewContext(r *http.Request, w *ResponseWriter) *Context {
	return &Context{request: r, response: w}
}

// Request returns the underlying HTTP request.
func (c *Context) Request() *http.Request {
	return c.request
}

// Response returns the guarded response writer.
func (c *Context) Response() *ResponseWriter {
	return c.response
}

// Method returns the request method.
func (c *Context) Method() string {
	return c.request.Method
}

// Path returns the raw request URL path.
func (c *Context) Path() string {
	return c.request.URL.Path
}

// BindValues injects resolved path parameters and the rest capture.
// Binding twice is a programming error and panics.
func (c *Context) BindValues(vals pattern.Values) {
	if c.bound {
		panic("router: context parameters bound twice")
	}
	c.bound = true
	c.params = vals.Params
	c.rest = vals.Rest
	c.hasRest = vals.Rest != nil
}

// Param returns the named path parameter, or "" when absent.
func (c *Context) Param(name string) string {
	return c.params[name]
}

// Params returns the full parameter bag. It may be nil for routes that
// capture nothing.
func (c *Context) Params() map[string]string {
	return c.params
}

// Rest returns the rest capture as an ordered segment sequence. It is
// non-nil only for routes whose pattern ends in a rest segment.
func (c *Context) Rest() []string {
	return c.rest
}

// HasRest reports whether the matched pattern produced a rest capture.
func (c *Context) HasRest() bool {
	return c.hasRest
}

// SetBody stores the processed request body. The slot is write-once;
// a second write is a programming error and panics.
func (c *Context) SetBody(v any) {
	if c.bodySet {
		panic("router: context body set twice")
	}
	c.bodySet = true
	c.body = v
}

// Body returns the processed request body: a map[string]any or other
// decoded JSON value for the structured-data type, url.Values for the
// form-encoded type, or raw []byte passthrough.
func (c *Context) Body() any {
	return c.body
}

// HasBody reports whether the body slot has been written.
func (c *Context) HasBody() bool {
	return c.bodySet
}

// SetLocal stores a request-scoped value for inter-hook data passing.
func (c *Context) SetLocal(key string, value any) {
	if c.locals == nil {
		c.locals = make(map[string]any)
	}
	c.locals[key] = value
}

// Local returns a request-scoped value stored by an earlier stage.
func (c *Context) Local(key string) (any, bool) {
	v, ok := c.locals[key]
	return v, ok
}

// SetAuth stores the authenticated principal for downstream stages.
func (c *Context) SetAuth(v any) {
	c.auth = v
}

// Auth returns the authenticated principal, if any stage set one.
func (c *Context) Auth() any {
	return c.auth
}

// Ended reports whether the response has been written.
func (c *Context) Ended() bool {
	return c.response.Ended()
}

// JSON ends the response with a JSON body.
func (c *Context) JSON(status int, v any) error {
	c.response.EndJSON(status, v)
	return nil
}

// Text ends the response with a plain text body.
func (c *Context) Text(status int, body string) error {
	c.response.End(status, "text/plain; charset=utf-8", []byte(body))
	return nil
}

// NoContent ends the response with a bare status.
func (c *Context) NoContent(status int) error {
	c.response.EndStatus(status)
	return nil
}

// Redirect ends the response with a redirect to location.
func (c *Context) Redirect(status int, location string) error {
	c.response.SetHeader("Location", location)
	c.response.EndStatus(status)
	return nil
}
