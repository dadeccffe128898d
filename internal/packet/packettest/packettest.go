// Package packettest builds decoded packets for tests.
package packettest

import (
	"net"
	"net/netip"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

var (
	srcMAC = net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01}
	dstMAC = net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x02}
)

// Endpoint is an address and port pair.
type Endpoint struct {
	Addr netip.Addr
	Port uint16
}

func EP(addr string, port uint16) Endpoint {
	return Endpoint{Addr: netip.MustParseAddr(addr), Port: port}
}

// TCP builds an Ethernet/IP/TCP frame carrying payload.
func TCP(src, dst Endpoint, payload []byte) gopacket.Packet {
	tcp := &layers.TCP{
		SrcPort: layers.TCPPort(src.Port),
		DstPort: layers.TCPPort(dst.Port),
		Seq:     1,
		ACK:     true,
		PSH:     len(payload) > 0,
		Window:  65535,
	}

	return build(src.Addr, dst.Addr, layers.IPProtocolTCP, tcp, payload)
}

// UDP builds an Ethernet/IP/UDP frame carrying payload.
func UDP(src, dst Endpoint, payload []byte) gopacket.Packet {
	udp := &layers.UDP{
		SrcPort: layers.UDPPort(src.Port),
		DstPort: layers.UDPPort(dst.Port),
	}

	return build(src.Addr, dst.Addr, layers.IPProtocolUDP, udp, payload)
}

// ARP builds a broadcast ARP request, which has no network layer.
func ARP(sender, target netip.Addr) gopacket.Packet {
	eth := &layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       layers.EthernetBroadcast,
		EthernetType: layers.EthernetTypeARP,
	}
	arp := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   srcMAC,
		SourceProtAddress: sender.AsSlice(),
		DstHwAddress:      make([]byte, 6),
		DstProtAddress:    target.AsSlice(),
	}

	return decode(serialize(eth, arp))
}

// Raw decodes arbitrary bytes as an Ethernet frame.
func Raw(data []byte) gopacket.Packet {
	return decode(data)
}

// At sets the capture timestamp of p and returns it.
func At(p gopacket.Packet, ts time.Time) gopacket.Packet {
	p.Metadata().Timestamp = ts
	return p
}

type transport interface {
	gopacket.SerializableLayer
	SetNetworkLayerForChecksum(gopacket.NetworkLayer) error
}

func build(
	src, dst netip.Addr,
	proto layers.IPProtocol,
	tl transport,
	payload []byte,
) gopacket.Packet {
	eth := &layers.Ethernet{SrcMAC: srcMAC, DstMAC: dstMAC}

	var nl gopacket.SerializableLayer
	if src.Is4() {
		eth.EthernetType = layers.EthernetTypeIPv4
		ip := &layers.IPv4{
			Version:  4,
			TTL:      64,
			Protocol: proto,
			SrcIP:    src.AsSlice(),
			DstIP:    dst.AsSlice(),
		}
		_ = tl.SetNetworkLayerForChecksum(ip)
		nl = ip
	} else {
		eth.EthernetType = layers.EthernetTypeIPv6
		ip := &layers.IPv6{
			Version:    6,
			HopLimit:   64,
			NextHeader: proto,
			SrcIP:      src.AsSlice(),
			DstIP:      dst.AsSlice(),
		}
		_ = tl.SetNetworkLayerForChecksum(ip)
		nl = ip
	}

	return decode(serialize(eth, nl, tl, gopacket.Payload(payload)))
}

func serialize(ls ...gopacket.SerializableLayer) []byte {
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, ls...); err != nil {
		panic(err)
	}

	return buf.Bytes()
}

func decode(data []byte) gopacket.Packet {
	return gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)
}
