package config

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/rs/zerolog"
)

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

func isOk[T any](p *T, err error) bool {
	return p != nil && err == nil
}

func parseBoolFn() func(any) (bool, error) {
	return func(v any) (bool, error) {
		b, ok := v.(bool)
		if !ok {
			return false, fmt.Errorf("expected bool, got %T", v)
		}
		return b, nil
	}
}

func parseStringFn(check func(string) error) func(any) (string, error) {
	return func(v any) (string, error) {
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("expected string, got %T", v)
		}

		if check != nil {
			if err := check(s); err != nil {
				return "", err
			}
		}

		return s, nil
	}
}

func parseIntFn[T integer](check func(int64) error) func(any) (T, error) {
	return func(v any) (T, error) {
		var n int64
		switch x := v.(type) {
		case int64:
			n = x
		case int:
			n = int64(x)
		default:
			return 0, fmt.Errorf("expected integer, got %T", v)
		}

		if check != nil {
			if err := check(n); err != nil {
				return 0, err
			}
		}

		return T(n), nil
	}
}

func MustParseLogLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		panic(err)
	}
	return level
}

func MustParsePrefix(s string) netip.Prefix {
	prefix, err := netip.ParsePrefix(s)
	if err != nil {
		panic(err)
	}
	return prefix.Masked()
}
