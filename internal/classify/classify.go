package classify

import (
	"fmt"
	"net"
	"net/netip"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/xvzc/lanwatch/internal/activity"
	"github.com/xvzc/lanwatch/internal/proto"
)

// maxTextRunes bounds the decoded payload text kept in a summary.
const maxTextRunes = 256

// Classify turns one captured packet into an activity record. It reports
// false for packets without an IPv4 or IPv6 header. It never panics: a
// packet that trips the decoder is discarded.
func Classify(p gopacket.Packet) (rec activity.Record, ok bool) {
	if p == nil {
		return activity.Record{}, false
	}

	defer func() {
		if r := recover(); r != nil {
			rec, ok = activity.Record{}, false
		}
	}()

	return classify(p)
}

func classify(p gopacket.Packet) (activity.Record, bool) {
	var rec activity.Record

	switch ip := p.NetworkLayer().(type) {
	case *layers.IPv4:
		rec.Src, rec.Dst = toAddr(ip.SrcIP), toAddr(ip.DstIP)
		rec.Protocol = ip.Protocol
	case *layers.IPv6:
		rec.Src, rec.Dst = toAddr(ip.SrcIP), toAddr(ip.DstIP)
		rec.Protocol = ip.NextHeader
	default:
		return activity.Record{}, false
	}

	if !rec.Src.IsValid() || !rec.Dst.IsValid() {
		return activity.Record{}, false
	}

	rec.Time = p.Metadata().Timestamp

	lines := []string{
		fmt.Sprintf(
			"Packet detected: %s -> %s, Protocol: %d (%s)",
			rec.Src, rec.Dst, uint8(rec.Protocol), rec.Protocol,
		),
	}

	var payload []byte
	var overTCP bool
	switch t := p.TransportLayer().(type) {
	case *layers.TCP:
		rec.SrcPort, rec.DstPort, rec.HasPorts = uint16(t.SrcPort), uint16(t.DstPort), true
		payload, overTCP = t.LayerPayload(), true
		lines = append(lines, fmt.Sprintf(
			"TCP Packet - Source Port: %d, Destination Port: %d", rec.SrcPort, rec.DstPort,
		))
	case *layers.UDP:
		rec.SrcPort, rec.DstPort, rec.HasPorts = uint16(t.SrcPort), uint16(t.DstPort), true
		payload = t.LayerPayload()
		lines = append(lines, fmt.Sprintf(
			"UDP Packet - Source Port: %d, Destination Port: %d", rec.SrcPort, rec.DstPort,
		))
	default:
		if app := p.ApplicationLayer(); app != nil {
			payload = app.Payload()
		}
	}

	switch {
	case len(payload) > 0 && proto.IsTLSRecord(payload):
		rec.Tag = activity.TagEncrypted
		lines = append(lines, "Encrypted traffic detected. Cannot decrypt.")
	case len(payload) > 0:
		rec.Tag = activity.TagPlaintext
		lines = append(lines, describePayload(rec, payload, overTCP)...)
	default:
		rec.Tag = activity.TagUnclassified
	}

	rec.Summary = strings.Join(lines, "\n")

	return rec, true
}

func describePayload(rec activity.Record, payload []byte, overTCP bool) []string {
	var lines []string

	if rec.HasPorts && (rec.SrcPort == proto.DNSPort || rec.DstPort == proto.DNSPort) {
		if desc, ok := proto.DescribeDNS(payload, overTCP); ok {
			lines = append(lines, desc)
		}
	}

	if req, ok := proto.ParseRequestLine(payload); ok {
		lines = append(lines, "HTTP request: "+req.String())
	}

	return append(lines, "Raw packet data (human-readable): "+decodeText(payload))
}

// decodeText renders payload as text, dropping invalid UTF-8 and control
// characters. Payloads with nothing printable become a placeholder.
func decodeText(payload []byte) string {
	total := len(payload)

	var sb strings.Builder
	n := 0

	for len(payload) > 0 && n < maxTextRunes {
		r, size := utf8.DecodeRune(payload)
		payload = payload[size:]

		if r == utf8.RuneError && size <= 1 {
			continue
		}

		switch {
		case r == '\n' || r == '\t':
			sb.WriteRune(r)
		case r == '\r':
			continue
		case unicode.IsPrint(r) || unicode.IsSpace(r):
			sb.WriteRune(r)
		default:
			continue
		}
		n++
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return fmt.Sprintf("<binary payload, %d bytes>", total)
	}

	if len(payload) > 0 {
		text += "..."
	}

	return text
}

func toAddr(ip net.IP) netip.Addr {
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return netip.Addr{}
	}

	return addr.Unmap()
}
