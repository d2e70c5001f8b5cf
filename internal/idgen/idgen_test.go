package idgen

import (
	"encoding/base64"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var urlSafe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func TestEncodeNumber(t *testing.T) {
	tests := []struct {
		n    uint32
		want string
	}{
		{n: 0, want: "MA"},
		{n: 7, want: "Nw"},
		{n: 123, want: "MTIz"},
		{n: 4294967295, want: "NDI5NDk2NzI5NQ"},
	}

	for _, tt := range tests {
		t.Run(strconv.FormatUint(uint64(tt.n), 10), func(t *testing.T) {
			assert.Equal(t, tt.want, encodeNumber(tt.n))
		})
	}
}

func TestRandom_Generate(t *testing.T) {
	gen := Random{}

	for i := 0; i < 200; i++ {
		id, err := gen.Generate()
		require.NoError(t, err)
		require.NotEmpty(t, id)
		assert.Regexp(t, urlSafe, id)

		raw, err := base64.RawURLEncoding.DecodeString(id)
		require.NoError(t, err)
		_, err = strconv.ParseUint(string(raw), 10, 32)
		assert.NoError(t, err, "id %s should decode to a uint32", id)
	}
}

func TestSnowflake_Generate(t *testing.T) {
	gen, err := NewSnowflake(3)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := gen.Generate()
		require.NoError(t, err)
		assert.Regexp(t, urlSafe, id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestNew(t *testing.T) {
	gen, err := New("", 0)
	require.NoError(t, err)
	assert.IsType(t, Random{}, gen)

	gen, err = New(KindSnowflake, 1)
	require.NoError(t, err)
	assert.IsType(t, &Snowflake{}, gen)

	_, err = New(KindSnowflake, 5000)
	assert.Error(t, err)

	_, err = New("uuid", 0)
	assert.EqualError(t, err, `unknown id generator "uuid"`)
}

func TestGeneratorFunc(t *testing.T) {
	gen := GeneratorFunc(func() (string, error) { return "fixed", nil })
	id, err := gen.Generate()
	require.NoError(t, err)
	assert.Equal(t, "fixed", id)
}
