package proto

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/miekg/dns"
)

// DNSPort is the well-known port for plain DNS over UDP and TCP.
const DNSPort = 53

// DescribeDNS unpacks a DNS message and returns a one line description of it,
// like "DNS query example.com. A" or "DNS response example.com. A (2 answers)".
// Messages carried over TCP are prefixed with a two byte length.
func DescribeDNS(payload []byte, overTCP bool) (string, bool) {
	if overTCP {
		if len(payload) < 2 {
			return "", false
		}
		n := int(binary.BigEndian.Uint16(payload[:2]))
		payload = payload[2:]
		if n < len(payload) {
			payload = payload[:n]
		}
	}

	msg := new(dns.Msg)
	if err := msg.Unpack(payload); err != nil {
		return "", false
	}

	var sb strings.Builder
	if msg.Response {
		sb.WriteString("DNS response")
	} else {
		sb.WriteString("DNS query")
	}

	for _, q := range msg.Question {
		sb.WriteString(" ")
		sb.WriteString(q.Name)
		sb.WriteString(" ")
		sb.WriteString(dns.TypeToString[q.Qtype])
	}

	if msg.Response {
		if msg.Rcode != dns.RcodeSuccess {
			sb.WriteString(" [")
			sb.WriteString(dns.RcodeToString[msg.Rcode])
			sb.WriteString("]")
		}
		sb.WriteString(" (")
		sb.WriteString(pluralize(len(msg.Answer), "answer"))
		sb.WriteString(")")
	}

	return sb.String(), true
}

func pluralize(n int, word string) string {
	s := strconv.Itoa(n) + " " + word
	if n != 1 {
		s += "s"
	}
	return s
}
