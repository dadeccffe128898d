package discovery

import (
	"fmt"
	"net/netip"
)

// MaxHosts bounds the size of a sweep. A /20 is the largest IPv4 range
// accepted.
const MaxHosts = 4094

// DefaultTarget returns the /24 around addr, or the interface prefix itself
// when it is narrower than a /24.
func DefaultTarget(addr netip.Addr, prefix netip.Prefix) netip.Prefix {
	if prefix.IsValid() && prefix.Bits() >= 24 {
		return prefix.Masked()
	}

	return netip.PrefixFrom(addr, 24).Masked()
}

// Hosts enumerates the host addresses of an IPv4 prefix. The network and
// broadcast addresses are left out for prefixes shorter than /31.
func Hosts(prefix netip.Prefix) ([]netip.Addr, error) {
	if !prefix.IsValid() || !prefix.Addr().Is4() {
		return nil, fmt.Errorf("invalid IPv4 target %q", prefix)
	}

	prefix = prefix.Masked()
	size := uint64(1) << (32 - prefix.Bits())
	if size > MaxHosts+2 {
		return nil, fmt.Errorf(
			"target %s is too large; at most %d hosts are scanned",
			prefix,
			MaxHosts,
		)
	}

	hosts := make([]netip.Addr, 0, size)
	for a := prefix.Addr(); prefix.Contains(a); a = a.Next() {
		hosts = append(hosts, a)
	}

	if prefix.Bits() < 31 && len(hosts) > 2 {
		hosts = hosts[1 : len(hosts)-1]
	}

	return hosts, nil
}
