package conv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigGet(t *testing.T) {
	cfg := map[string]any{"n": 20, "f": 0.5, "zero": 0, "flag": true, "name": "cosine", "big": 3.0}

	assert.Equal(t, int64(20), ConfigGetInt64(cfg, "n", 10))
	assert.Equal(t, int64(3), ConfigGetInt64(cfg, "big", 10))
	assert.Equal(t, int64(10), ConfigGetInt64(cfg, "missing", 10))
	assert.Equal(t, int64(10), ConfigGetInt64(nil, "n", 10))

	assert.Equal(t, 0.5, ConfigGetFloat64(cfg, "f", 1))
	assert.Equal(t, 0.0, ConfigGetFloat64(cfg, "zero", 1))
	assert.Equal(t, 1.0, ConfigGetFloat64(cfg, "flag", 1), "bool is not a number here")

	assert.True(t, ConfigGet(cfg, "flag", false))
	assert.Equal(t, "cosine", ConfigGet(cfg, "name", ""))
	assert.Equal(t, "x", ConfigGet(cfg, "n", "x"), "type mismatch falls back")
}

func TestSliceAnyToString(t *testing.T) {
	assert.Equal(t, []string{"N1", "42"}, SliceAnyToString([]any{"N1", 42, struct{}{}}))
	assert.Equal(t, []string{"a"}, SliceAnyToString([]string{"a"}))
	assert.Nil(t, SliceAnyToString("N1"))
	assert.Nil(t, SliceAnyToString(nil))
}
