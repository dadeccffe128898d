package proto

import (
	"encoding/binary"
)

type TLSMessageType byte

const (
	// A record may carry up to 2^14 bytes of plaintext plus 2048 bytes of
	// cipher expansion.
	TLSMaxRecordLen     uint16         = 16384 + 2048
	TLSHeaderLen                       = 5
	TLSInvalid          TLSMessageType = 0x0
	TLSChangeCipherSpec TLSMessageType = 0x14
	TLSAlert            TLSMessageType = 0x15
	TLSHandshake        TLSMessageType = 0x16
	TLSApplicationData  TLSMessageType = 0x17
	TLSHeartbeat        TLSMessageType = 0x18
)

type TLSHeader struct {
	Type         TLSMessageType
	ProtoVersion uint16 // major | minor
	PayloadLen   uint16
}

// ParseTLSHeader reads the record header at the start of b. It reports false
// when b does not start with something shaped like an SSLv3/TLS record.
func ParseTLSHeader(b []byte) (TLSHeader, bool) {
	if len(b) < TLSHeaderLen {
		return TLSHeader{}, false
	}

	h := TLSHeader{
		Type:         TLSMessageType(b[0]),
		ProtoVersion: binary.BigEndian.Uint16(b[1:3]),
		PayloadLen:   binary.BigEndian.Uint16(b[3:5]),
	}

	if h.Type < TLSChangeCipherSpec || h.Type > TLSHeartbeat {
		return TLSHeader{}, false
	}

	// SSL 3.0 (0x0300) through TLS 1.3 on the wire (0x0304).
	if h.ProtoVersion>>8 != 0x03 || h.ProtoVersion&0xff > 0x04 {
		return TLSHeader{}, false
	}

	if h.PayloadLen == 0 || h.PayloadLen > TLSMaxRecordLen {
		return TLSHeader{}, false
	}

	return h, true
}

// IsTLSRecord reports whether payload starts with an encrypted-session
// record header.
func IsTLSRecord(payload []byte) bool {
	_, ok := ParseTLSHeader(payload)
	return ok
}

func (t TLSMessageType) String() string {
	switch t {
	case TLSChangeCipherSpec:
		return "change_cipher_spec"
	case TLSAlert:
		return "alert"
	case TLSHandshake:
		return "handshake"
	case TLSApplicationData:
		return "application_data"
	case TLSHeartbeat:
		return "heartbeat"
	default:
		return "invalid"
	}
}
