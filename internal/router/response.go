package router

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/routegrid/routegrid/internal/observability"
)

// ResponseWriter is the single authority for terminating a request. The
// first caller to end the response wins; every later attempt is a no-op
// observable only through the drop callback and a debug log line. It
// never double-writes transport bytes and never panics on a late write.
//
// Baseline security headers are applied once at construction, before
// any body can be sent. They can be overridden through the header map
// and are never re-applied afterwards.
type ResponseWriter struct {
	w      http.ResponseWriter
	logger observability.Logger

	mu     sync.Mutex
	ended  bool
	status int
	onDrop func()
}

// NewResponseWriter wraps an http.ResponseWriter with the single-write
// latch and applies the baseline security headers.
func NewResponseWriter(w http.ResponseWriter, security map[string]string, logger observability.Logger) *ResponseWriter {
	if logger == nil {
		logger = observability.NopLogger()
	}
	for name, value := range security {
		w.Header().Set(name, value)
	}
	return &ResponseWriter{w: w, logger: logger}
}

// OnDrop registers the diagnostic callback invoked when a write attempt
// loses the single-write race.
func (rw *ResponseWriter) OnDrop(fn func()) {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	rw.onDrop = fn
}

// Header returns the underlying header map. Writing to it after the
// response has ended has no effect on the wire.
func (rw *ResponseWriter) Header() http.Header {
	return rw.w.Header()
}

// SetHeader sets a header, overriding a baseline security header if one
// was applied under the same name.
func (rw *ResponseWriter) SetHeader(name, value string) {
	rw.w.Header().Set(name, value)
}

// Ended reports whether the response has been written.
func (rw *ResponseWriter) Ended() bool {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.ended
}

// Status returns the status code of the terminal write, or 0 if the
// response has not ended yet.
func (rw *ResponseWriter) Status() int {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.status
}

// End performs the terminal write: status line, optional content type,
// and body. It returns false, writing nothing, if the response already
// ended. Transport faults are logged; the latch is set regardless so
// the request still counts as terminated.
func (rw *ResponseWriter) End(status int, contentType string, body []byte) bool {
	rw.mu.Lock()
	if rw.ended {
		onDrop := rw.onDrop
		rw.mu.Unlock()

		rw.logger.Debug("response write dropped by single-write guard",
			observability.Int("status", status),
		)
		if onDrop != nil {
			onDrop()
		}
		return false
	}
	rw.ended = true
	rw.status = status
	rw.mu.Unlock()

	if contentType != "" {
		rw.w.Header().Set("Content-Type", contentType)
	}
	rw.w.WriteHeader(status)
	if len(body) > 0 {
		if _, err := rw.w.Write(body); err != nil {
			rw.logger.Warn("response body write failed",
				observability.Int("status", status),
				observability.Error(err),
			)
		}
	}
	return true
}

// EndJSON ends the response with a JSON body. A marshal failure falls
// back to a plain 500.
func (rw *ResponseWriter) EndJSON(status int, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		rw.logger.Error("response marshal failed", observability.Error(err))
		return rw.End(http.StatusInternalServerError, "application/json",
			[]byte(`{"error":"internal server error"}`))
	}
	return rw.End(status, "application/json", data)
}

// EndError ends the response with a synthesized JSON error body for the
// given status.
func (rw *ResponseWriter) EndError(status int, message string) bool {
	if message == "" {
		message = http.StatusText(status)
	}
	return rw.EndJSON(status, map[string]string{"error": message})
}

// EndStatus ends the response with a bare status and no body.
func (rw *ResponseWriter) EndStatus(status int) bool {
	return rw.End(status, "", nil)
}
