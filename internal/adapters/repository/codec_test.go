package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommaListCodec(t *testing.T) {
	codec := CommaListCodec()

	encoded, err := codec.Encode([]string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, "a,b,c", encoded)

	// JSON request bodies decode string arrays as []interface{}
	encoded, err = codec.Encode([]interface{}{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, "x,y", encoded)

	encoded, err = codec.Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "", encoded)

	_, err = codec.Encode([]interface{}{"a", 1})
	assert.Error(t, err)

	_, err = codec.Encode(42)
	assert.Error(t, err)
}

func TestSplitCommaList(t *testing.T) {
	assert.Equal(t, []string{}, SplitCommaList(""))
	assert.Equal(t, []string{"one"}, SplitCommaList("one"))
	assert.Equal(t, []string{"a", "b"}, SplitCommaList("a,b"))
}

func TestCommaListRoundTrip(t *testing.T) {
	codec := CommaListCodec()
	for _, list := range [][]string{{}, {"solo"}, {"a", "b", "c"}} {
		encoded, err := codec.Encode(list)
		require.NoError(t, err)
		assert.Equal(t, list, SplitCommaList(encoded))
	}
}

func TestJSONCodec(t *testing.T) {
	codec := JSONCodec()

	encoded, err := codec.Encode(map[string]string{"region": "eu"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"region":"eu"}`, encoded)

	encoded, err = codec.Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "", encoded)
}

func TestFormatScalar(t *testing.T) {
	cases := []struct {
		value    interface{}
		expected string
	}{
		{nil, ""},
		{"plain", "plain"},
		{true, "true"},
		{7, "7"},
		{int64(8), "8"},
		{float64(9), "9"},
		{9.5, "9.5"},
		{time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), "2025-01-02T03:04:05Z"},
	}
	for _, tc := range cases {
		got, err := formatScalar(tc.value)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, got, "value %v", tc.value)
	}

	_, err := formatScalar(struct{}{})
	assert.Error(t, err)
}
