package packet

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/jackpal/gateway"
)

// InterfaceByName returns the named interface, or the interface that carries
// the default route when name is empty.
func InterfaceByName(name string) (*net.Interface, error) {
	if name != "" {
		iface, err := net.InterfaceByName(name)
		if err != nil {
			return nil, fmt.Errorf("interface %q: %w", name, err)
		}
		return iface, nil
	}

	return DefaultInterface()
}

// DefaultInterface finds the interface whose address is used for the
// default route.
func DefaultInterface() (*net.Interface, error) {
	localIP, err := gateway.DiscoverInterface()
	if err != nil {
		return nil, fmt.Errorf("could not discover default interface address: %w", err)
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("could not get network interfaces: %w", err)
	}

	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue // Skip interfaces whose addresses cannot be retrieved
		}
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && ipnet.IP.Equal(localIP) {
				return &iface, nil
			}
		}
	}

	return nil, fmt.Errorf("failed to find default interface for local IP: %s", localIP)
}

// InterfacePrefix returns the first IPv4 address of iface together with its
// network prefix.
func InterfacePrefix(iface *net.Interface) (netip.Addr, netip.Prefix, error) {
	addrs, err := iface.Addrs()
	if err != nil {
		return netip.Addr{}, netip.Prefix{}, err
	}

	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}

		ip4 := ipnet.IP.To4()
		if ip4 == nil || ip4.IsLoopback() {
			continue
		}

		ip, _ := netip.AddrFromSlice(ip4)
		ones, _ := ipnet.Mask.Size()

		return ip, netip.PrefixFrom(ip, ones).Masked(), nil
	}

	return netip.Addr{}, netip.Prefix{}, fmt.Errorf("no IPv4 address on %s", iface.Name)
}

// GatewayAddr returns the address of the default gateway.
func GatewayAddr() (netip.Addr, error) {
	ip, err := gateway.DiscoverGateway()
	if err != nil {
		return netip.Addr{}, fmt.Errorf("could not discover gateway: %w", err)
	}

	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return netip.Addr{}, fmt.Errorf("invalid gateway address %v", ip)
	}

	return addr.Unmap(), nil
}
