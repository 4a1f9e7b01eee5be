package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroValueDocument(t *testing.T) {
	var d Document
	assert.True(t, d.IsZero())

	_, ok := d.Get("anything")
	assert.False(t, ok)
	assert.Equal(t, "fallback", d.String("a.b", "fallback"))
}

func TestSetGet(t *testing.T) {
	d := New()
	d.Set("worker.threads", 4)
	d.Set("worker.name", "resizer")
	d.Set("worker.debug", true)

	assert.Equal(t, 4, d.Int("worker.threads", 0))
	assert.Equal(t, "resizer", d.String("worker.name", ""))
	assert.True(t, d.Bool("worker.debug", false))

	// Missing and mistyped paths fall back to defaults.
	assert.Equal(t, 7, d.Int("worker.missing", 7))
	assert.Equal(t, 0, d.Int("worker.name", 0))
}

func TestSetThroughScalarReplaces(t *testing.T) {
	d := New()
	d.Set("a", "scalar")
	d.Set("a.b", 1)

	assert.Equal(t, 1, d.Int("a.b", 0))
}

func TestYAMLRoundTrip(t *testing.T) {
	d := New()
	d.Set("pipeline.batch", 128)
	d.Set("pipeline.source", "provider")

	data, err := d.YAML()
	require.NoError(t, err)

	parsed, err := ParseYAML(data)
	require.NoError(t, err)
	assert.Equal(t, 128, parsed.Int("pipeline.batch", 0))
	assert.Equal(t, "provider", parsed.String("pipeline.source", ""))
}

func TestParseYAMLInvalid(t *testing.T) {
	_, err := ParseYAML([]byte("{not yaml"))
	assert.Error(t, err)

	d, err := ParseYAML(nil)
	require.NoError(t, err)
	assert.True(t, d.IsZero())
}

func TestCloneIsDeep(t *testing.T) {
	d := New()
	d.Set("worker.threads", 4)

	clone := d.Clone()
	clone.Set("worker.threads", 8)

	assert.Equal(t, 4, d.Int("worker.threads", 0))
	assert.Equal(t, 8, clone.Int("worker.threads", 0))
}

func TestSafeAccess(t *testing.T) {
	d := New()
	d.Set("v", 1)
	s := NewSafe(d)

	got := s.Get()
	got.Set("v", 2)
	assert.Equal(t, 1, s.Get().Int("v", 0), "Get must return a copy")

	next := New()
	next.Set("v", 3)
	s.Update(next)
	assert.Equal(t, 3, s.Get().Int("v", 0))
}
