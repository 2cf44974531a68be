package dispatch

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routegrid/routegrid/internal/config"
	"github.com/routegrid/routegrid/internal/util"
)

func TestCompileIgnoreRules(t *testing.T) {
	t.Parallel()

	rules, err := compileIgnoreRules([]config.IgnoreRule{
		{Methods: []string{"GET", "HEAD"}, Path: "healthz"},
		{Path: "debug/*"},
		{Methods: []string{"*"}, Path: "favicon.ico"},
	})
	require.NoError(t, err)
	require.Len(t, rules, 3)

	assert.True(t, matchIgnore(rules, http.MethodGet, "/healthz"))
	assert.True(t, matchIgnore(rules, http.MethodHead, "/healthz"))
	assert.False(t, matchIgnore(rules, http.MethodPost, "/healthz"))

	// No method set means every method.
	assert.True(t, matchIgnore(rules, http.MethodPost, "/debug/pprof"))
	assert.True(t, matchIgnore(rules, http.MethodDelete, "/favicon.ico"))

	assert.False(t, matchIgnore(rules, http.MethodGet, "/api/users"))
}

func TestCompileIgnoreRulesMethodCase(t *testing.T) {
	t.Parallel()

	rules, err := compileIgnoreRules([]config.IgnoreRule{
		{Methods: []string{"get"}, Path: "healthz"},
	})
	require.NoError(t, err)

	assert.True(t, matchIgnore(rules, http.MethodGet, "/healthz"))
}

func TestCompileIgnoreRulesBadPattern(t *testing.T) {
	t.Parallel()

	_, err := compileIgnoreRules([]config.IgnoreRule{
		{Path: "debug/*/trailing"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrConfigInvalid)
}
