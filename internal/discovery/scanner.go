package discovery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"slices"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/rs/zerolog"
	"github.com/xvzc/lanwatch/internal/device"
	"github.com/xvzc/lanwatch/internal/logging"
	"github.com/xvzc/lanwatch/internal/packet"
)

// Scanner enumerates the devices reachable in a target range.
type Scanner interface {
	Scan(ctx context.Context, target netip.Prefix) ([]device.Device, error)
}

// ARPScanner sweeps a range with ARP requests and collects the replies.
type ARPScanner struct {
	logger    zerolog.Logger
	handle    packet.Handle
	srcMAC    net.HardwareAddr
	srcAddr   netip.Addr
	vendors   *device.VendorDB
	replyWait time.Duration
}

func NewARPScanner(
	logger zerolog.Logger,
	handle packet.Handle,
	srcMAC net.HardwareAddr,
	srcAddr netip.Addr,
	vendors *device.VendorDB,
	replyWait time.Duration,
) *ARPScanner {
	return &ARPScanner{
		logger:    logger,
		handle:    handle,
		srcMAC:    srcMAC,
		srcAddr:   srcAddr,
		vendors:   vendors,
		replyWait: replyWait,
	}
}

// Scan sends one ARP request per host of target and waits replyWait for the
// replies. Devices are returned sorted by address.
func (s *ARPScanner) Scan(
	ctx context.Context,
	target netip.Prefix,
) ([]device.Device, error) {
	logger := logging.WithLocalScope(ctx, s.logger, "arp_scan")

	hosts, err := Hosts(target)
	if err != nil {
		return nil, err
	}

	filter, err := arpReplyFilter(s.srcMAC)
	if err != nil {
		return nil, fmt.Errorf("failed to generate BPF instructions: %w", err)
	}

	if err := s.handle.SetBPFRawInstructionFilter(filter); err != nil {
		return nil, fmt.Errorf("failed to set ARP BPF filter: %w", err)
	}
	defer func() { _ = s.handle.ClearBPF() }()

	buf := gopacket.NewSerializeBuffer()
	for _, host := range hosts {
		if host == s.srcAddr {
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := s.writeRequest(buf, host); err != nil {
			return nil, err
		}
	}

	logger.Trace().Int("hosts", len(hosts)).Msg("arp requests sent")

	found := map[netip.Addr]net.HardwareAddr{}
	deadline := time.Now().Add(s.replyWait)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, _, err := s.handle.ReadPacketData()
		if errors.Is(err, packet.ErrReadTimeout) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read ARP reply: %w", err)
		}

		addr, mac, ok := s.parseReply(data)
		if !ok || !target.Contains(addr) {
			continue
		}

		if _, seen := found[addr]; !seen {
			logger.Trace().Str("addr", addr.String()).Str("mac", mac.String()).Msg("arp reply received")
		}
		found[addr] = mac
	}

	devices := make([]device.Device, 0, len(found))
	for addr, mac := range found {
		d := device.Device{Addr: addr, MAC: mac}
		if s.vendors != nil {
			d.Vendor = s.vendors.Lookup(mac)
		}
		devices = append(devices, d)
	}

	slices.SortFunc(devices, func(a, b device.Device) int {
		return a.Addr.Compare(b.Addr)
	})

	return devices, nil
}

func (s *ARPScanner) writeRequest(buf gopacket.SerializeBuffer, host netip.Addr) error {
	src := s.srcAddr.As4()
	dst := host.As4()

	eth := &layers.Ethernet{
		SrcMAC:       s.srcMAC,
		DstMAC:       net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		EthernetType: layers.EthernetTypeARP,
	}
	arp := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   []byte(s.srcMAC),
		SourceProtAddress: src[:],
		DstHwAddress:      []byte{0, 0, 0, 0, 0, 0},
		DstProtAddress:    dst[:],
	}

	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, eth, arp); err != nil {
		return fmt.Errorf("failed to serialize ARP request: %w", err)
	}

	if err := s.handle.WritePacketData(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to send ARP request to %s: %w", host, err)
	}

	return nil
}

// parseReply extracts the sender of an ARP reply addressed to us.
func (s *ARPScanner) parseReply(data []byte) (netip.Addr, net.HardwareAddr, bool) {
	p := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Lazy)

	arpLayer, ok := p.Layer(layers.LayerTypeARP).(*layers.ARP)
	if !ok || arpLayer.Operation != layers.ARPReply {
		return netip.Addr{}, nil, false
	}

	if !bytes.Equal(arpLayer.DstHwAddress, s.srcMAC) {
		return netip.Addr{}, nil, false
	}

	addr, ok := netip.AddrFromSlice(arpLayer.SourceProtAddress)
	if !ok {
		return netip.Addr{}, nil, false
	}

	mac := make(net.HardwareAddr, len(arpLayer.SourceHwAddress))
	copy(mac, arpLayer.SourceHwAddress)

	return addr.Unmap(), mac, true
}
