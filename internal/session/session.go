package session

import (
	"context"
	"math/rand/v2"
	"unsafe"
)

// We define unexported key types to prevent key collisions with other packages.
type (
	traceIDCtxKey struct{}
	ifaceCtxKey   struct{}
)

// WithNewTraceID ensures a trace ID is present in the context.
// If one already exists, it returns the original context unmodified.
func WithNewTraceID(ctx context.Context) context.Context {
	if _, ok := TraceIDFrom(ctx); ok {
		return ctx
	}

	return context.WithValue(ctx, traceIDCtxKey{}, generateTraceID())
}

// TraceIDFrom extracts a trace ID string from the context, if one exists.
func TraceIDFrom(ctx context.Context) (string, bool) {
	traceID, ok := ctx.Value(traceIDCtxKey{}).(string)
	if ok {
		return traceID, true
	}
	return "", false
}

// WithInterface returns a new context carrying the name of the network
// interface a goroutine is working on.
func WithInterface(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ifaceCtxKey{}, name)
}

// InterfaceFrom extracts the interface name from the context, if one exists.
func InterfaceFrom(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(ifaceCtxKey{}).(string)
	return name, ok && name != ""
}

// generateTraceID creates a 16 hex character random trace ID.
func generateTraceID() string {
	b := make([]byte, 16)

	q := rand.Uint64()

	// iterate from last index (15) down to 0
	for i := 15; i >= 0; i-- {
		r := uint8(q & 0xF)
		q >>= 4
		if r > 9 {
			r += 0x27
		}
		b[i] = r + 0x30
	}

	return unsafe.String(unsafe.SliceData(b), 16)
}
