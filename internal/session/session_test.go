package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithNewTraceID(t *testing.T) {
	ctx := WithNewTraceID(context.Background())

	id, ok := TraceIDFrom(ctx)
	assert.True(t, ok)
	assert.Len(t, id, 16)
	assert.Regexp(t, "^[0-9a-f]{16}$", id)

	// an existing trace id is kept
	again, _ := TraceIDFrom(WithNewTraceID(ctx))
	assert.Equal(t, id, again)
}

func TestInterfaceFrom(t *testing.T) {
	tcs := []struct {
		name   string
		ctx    context.Context
		want   string
		wantOk bool
	}{
		{"missing", context.Background(), "", false},
		{"empty", WithInterface(context.Background(), ""), "", false},
		{"set", WithInterface(context.Background(), "eth0"), "eth0", true},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := InterfaceFrom(tc.ctx)
			assert.Equal(t, tc.wantOk, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
