package config

import (
	"fmt"
	"net/netip"
	"slices"
	"strings"
)

var availableLogLevels = []string{"info", "warn", "trace", "error", "debug"}

func checkLogLevel(v string) error {
	if !slices.Contains(availableLogLevels, strings.ToLower(v)) {
		return fmt.Errorf(
			"invalid log level %q, available: %s",
			v,
			strings.Join(availableLogLevels, ", "),
		)
	}
	return nil
}

func checkRange(lo, hi int64) func(int64) error {
	return func(v int64) error {
		if v < lo || hi < v {
			return fmt.Errorf("out of range[%d-%d]", lo, hi)
		}
		return nil
	}
}

// checkIntRange adapts checkRange to cli int flag validators.
func checkIntRange(lo, hi int64) func(int) error {
	check := checkRange(lo, hi)
	return func(v int) error {
		return check(int64(v))
	}
}

func checkTarget(v string) error {
	prefix, err := netip.ParsePrefix(v)
	if err != nil {
		return fmt.Errorf("invalid target %q: %w", v, err)
	}

	if !prefix.Addr().Is4() {
		return fmt.Errorf("target %q is not an IPv4 range", v)
	}

	if prefix.Bits() < 20 {
		return fmt.Errorf("target %q is too large, use /20 or narrower", v)
	}

	return nil
}

func checkInterfaceName(v string) error {
	if strings.ContainsAny(v, " \t/") {
		return fmt.Errorf("invalid interface name %q", v)
	}
	return nil
}

func checkNonEmpty(v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("must not be empty")
	}
	return nil
}

var (
	checkReadTimeout = checkRange(1, 1000)
	checkSnapLen     = checkRange(64, 65535)
	checkQueueCap    = checkRange(0, 10_000_000)
	checkInterval    = checkRange(1, 86400)
	checkReplyWait   = checkRange(100, 60000)
	checkWindow      = checkRange(1, 100000)
	checkLogLines    = checkRange(1, 100)
	checkRefresh     = checkRange(100, 60000)
	checkDuration    = checkRange(1, 604800)
)
