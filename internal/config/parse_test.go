package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseIntFn(t *testing.T) {
	parse := parseIntFn[int](checkRange(1, 10))

	tcs := []struct {
		name    string
		in      any
		want    int
		wantErr bool
	}{
		{name: "toml integer", in: int64(5), want: 5},
		{name: "plain int", in: 7, want: 7},
		{name: "out of range", in: int64(11), wantErr: true},
		{name: "string", in: "5", wantErr: true},
		{name: "float", in: 5.0, wantErr: true},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parse(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseStringFn(t *testing.T) {
	got, err := parseStringFn(nil)("eth0")
	assert.NoError(t, err)
	assert.Equal(t, "eth0", got)

	_, err = parseStringFn(checkNonEmpty)(" ")
	assert.Error(t, err)

	_, err = parseStringFn(nil)(true)
	assert.Error(t, err)
}

func TestParseBoolFn(t *testing.T) {
	got, err := parseBoolFn()(true)
	assert.NoError(t, err)
	assert.True(t, got)

	_, err = parseBoolFn()("true")
	assert.Error(t, err)
}

func TestMustParse(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, MustParseLogLevel("WARN"))
	assert.Equal(t, "10.0.0.0/24", MustParsePrefix("10.0.0.9/24").String())
	assert.Panics(t, func() { MustParsePrefix("nope") })
}
