package router

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseWriterSingleWrite(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec, nil, nil)

	var dropped atomic.Int32
	rw.OnDrop(func() { dropped.Add(1) })

	assert.False(t, rw.Ended())
	assert.Equal(t, 0, rw.Status())

	ok := rw.End(http.StatusOK, "text/plain", []byte("first"))
	require.True(t, ok)
	assert.True(t, rw.Ended())
	assert.Equal(t, http.StatusOK, rw.Status())

	ok = rw.End(http.StatusInternalServerError, "text/plain", []byte("second"))
	assert.False(t, ok)
	assert.Equal(t, int32(1), dropped.Load())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "first", rec.Body.String())
}

func TestResponseWriterConcurrentWriters(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec, nil, nil)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rw.End(http.StatusOK, "", nil) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load(), "exactly one terminal write may occur")
}

func TestResponseWriterSecurityHeaders(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec, map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "SAMEORIGIN",
	}, nil)

	// Explicit override sticks; the baseline is never re-applied.
	rw.SetHeader("X-Frame-Options", "DENY")
	rw.End(http.StatusOK, "", nil)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestResponseWriterEndJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec, nil, nil)

	require.True(t, rw.EndJSON(http.StatusCreated, map[string]string{"id": "1"}))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"1"}`, rec.Body.String())
}

func TestResponseWriterEndJSONMarshalFailure(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec, nil, nil)

	require.True(t, rw.EndJSON(http.StatusOK, func() {}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestResponseWriterEndError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec, nil, nil)

	require.True(t, rw.EndError(http.StatusNotFound, ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())
}
