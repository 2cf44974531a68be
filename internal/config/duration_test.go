package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// yamlUnmarshal is a test helper shared with config_test.go.
func yamlUnmarshal(doc string, out interface{}) error {
	return yaml.Unmarshal([]byte(doc), out)
}

func TestDurationJSON(t *testing.T) {
	t.Parallel()

	var v struct {
		Timeout Duration `json:"timeout"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"timeout":"250ms"}`), &v))
	assert.Equal(t, 250*time.Millisecond, v.Timeout.Duration())

	require.NoError(t, json.Unmarshal([]byte(`{"timeout":null}`), &v))
	assert.Equal(t, time.Duration(0), v.Timeout.Duration())

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"timeout":"0s"}`, string(data))
}

func TestDurationYAMLRoundTrip(t *testing.T) {
	t.Parallel()

	d := Duration(5 * time.Second)
	data, err := yaml.Marshal(d)
	require.NoError(t, err)

	var back Duration
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, d, back)
}
