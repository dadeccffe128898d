package proto

import (
	"encoding/binary"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTLSRecord(t *testing.T) {
	tcs := []struct {
		name  string
		input []byte
		want  bool
	}{
		{"client hello", []byte{0x16, 0x03, 0x01, 0x00, 0x2a, 0x01}, true},
		{"application data tls1.2", []byte{0x17, 0x03, 0x03, 0x01, 0x00, 0xde, 0xad}, true},
		{"alert", []byte{0x15, 0x03, 0x03, 0x00, 0x02, 0x02, 0x28}, true},
		{"too short", []byte{0x16, 0x03, 0x01}, false},
		{"plain http", []byte("GET / HTTP/1.1\r\n"), false},
		{"bad version", []byte{0x16, 0x02, 0x00, 0x00, 0x10}, false},
		{"zero length", []byte{0x17, 0x03, 0x03, 0x00, 0x00}, false},
		{"oversized", []byte{0x17, 0x03, 0x03, 0xff, 0xff}, false},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTLSRecord(tc.input))
		})
	}
}

func TestParseRequestLine(t *testing.T) {
	tcs := []struct {
		name   string
		input  string
		want   RequestLine
		wantOk bool
	}{
		{"full", "GET /index.html HTTP/1.1\r\nHost: a\r\n", RequestLine{"GET", "/index.html"}, true},
		{"cut before version", "GET /", RequestLine{"GET", "/"}, true},
		{"post", "POST /api HTTP/1.0\n", RequestLine{"POST", "/api"}, true},
		{"unknown method", "FETCH / HTTP/1.1", RequestLine{}, false},
		{"response", "HTTP/1.1 200 OK", RequestLine{}, false},
		{"no target", "GET", RequestLine{}, false},
		{"garbage version", "GET / FOO", RequestLine{}, false},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseRequestLine([]byte(tc.input))
			assert.Equal(t, tc.wantOk, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDescribeDNS(t *testing.T) {
	query := new(dns.Msg)
	query.SetQuestion("example.com.", dns.TypeA)
	raw, err := query.Pack()
	require.NoError(t, err)

	desc, ok := DescribeDNS(raw, false)
	require.True(t, ok)
	assert.Equal(t, "DNS query example.com. A", desc)

	resp := new(dns.Msg)
	resp.SetReply(query)
	rr, err := dns.NewRR("example.com. 60 IN A 93.184.216.34")
	require.NoError(t, err)
	resp.Answer = append(resp.Answer, rr)
	raw, err = resp.Pack()
	require.NoError(t, err)

	framed := binary.BigEndian.AppendUint16(nil, uint16(len(raw)))
	framed = append(framed, raw...)

	desc, ok = DescribeDNS(framed, true)
	require.True(t, ok)
	assert.Equal(t, "DNS response example.com. A (1 answer)", desc)

	_, ok = DescribeDNS([]byte{0x01, 0x02}, false)
	assert.False(t, ok)
}
