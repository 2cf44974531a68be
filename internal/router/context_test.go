package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routegrid/routegrid/internal/pattern"
)

func newTestContext(t *testing.T, method, target string) (*Context, *httptest.ResponseRecorder) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	return NewContext(req, NewResponseWriter(rec, nil, nil)), rec
}

func TestContextBindValues(t *testing.T) {
	t.Parallel()

	c, _ := newTestContext(t, http.MethodGet, "/articles/42")

	c.BindValues(pattern.Values{
		Params: map[string]string{"id": "42"},
		Rest:   []string{"a", "b"},
	})

	assert.Equal(t, "42", c.Param("id"))
	assert.Equal(t, "", c.Param("missing"))
	assert.Equal(t, []string{"a", "b"}, c.Rest())
	assert.True(t, c.HasRest())
}

func TestContextBindValuesTwicePanics(t *testing.T) {
	t.Parallel()

	c, _ := newTestContext(t, http.MethodGet, "/articles")

	c.BindValues(pattern.Values{})
	assert.Panics(t, func() {
		c.BindValues(pattern.Values{})
	})
}

func TestContextBodyWriteOnce(t *testing.T) {
	t.Parallel()

	c, _ := newTestContext(t, http.MethodPost, "/articles")

	assert.False(t, c.HasBody())
	c.SetBody(map[string]any{"title": "x"})
	assert.True(t, c.HasBody())
	assert.NotNil(t, c.Body())

	assert.Panics(t, func() {
		c.SetBody("again")
	})
}

func TestContextLocalsAndAuth(t *testing.T) {
	t.Parallel()

	c, _ := newTestContext(t, http.MethodGet, "/articles")

	_, ok := c.Local("user")
	assert.False(t, ok)

	c.SetLocal("user", "alice")
	v, ok := c.Local("user")
	require.True(t, ok)
	assert.Equal(t, "alice", v)

	assert.Nil(t, c.Auth())
	c.SetAuth("token")
	assert.Equal(t, "token", c.Auth())
}

func TestContextResponseHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		write      func(c *Context) error
		wantStatus int
		check      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name: "json",
			write: func(c *Context) error {
				return c.JSON(http.StatusOK, map[string]int{"n": 1})
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.JSONEq(t, `{"n":1}`, rec.Body.String())
			},
		},
		{
			name: "text",
			write: func(c *Context) error {
				return c.Text(http.StatusTeapot, "short and stout")
			},
			wantStatus: http.StatusTeapot,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "short and stout", rec.Body.String())
			},
		},
		{
			name: "no content",
			write: func(c *Context) error {
				return c.NoContent(http.StatusNoContent)
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name: "redirect",
			write: func(c *Context) error {
				return c.Redirect(http.StatusMultipleChoices, "/v2/articles")
			},
			wantStatus: http.StatusMultipleChoices,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "/v2/articles", rec.Header().Get("Location"))
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, rec := newTestContext(t, http.MethodGet, "/x")
			require.NoError(t, tt.write(c))
			assert.True(t, c.Ended())
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
