package packet

import (
	"errors"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// ErrReadTimeout is returned by ReadPacketData when no packet arrived within
// the read timeout of the handle. It is not a failure of the handle.
var ErrReadTimeout = errors.New("packet read timed out")

// Handle is a common interface for both AF_PACKET (Linux) and pcap (Others)
type Handle interface {
	// ReadPacketData reads the next packet from the wire, waiting at most
	// the configured read timeout before returning ErrReadTimeout.
	ReadPacketData() (data []byte, ci gopacket.CaptureInfo, err error)

	// WritePacketData sends a raw packet.
	WritePacketData(data []byte) error

	SetBPFRawInstructionFilter(filters []BPFInstruction) error

	ClearBPF() error

	LinkType() layers.LinkType

	// Close closes the handle.
	Close()
}

type BPFInstruction struct {
	Op uint16
	Jt uint8
	Jf uint8
	K  uint32
}

// HandleOptions controls how a capture handle is opened.
type HandleOptions struct {
	SnapLen     int
	ReadTimeout time.Duration
	Promiscuous bool
}

func (o HandleOptions) withDefaults() HandleOptions {
	if o.SnapLen <= 0 {
		o.SnapLen = 3200
	}

	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 500 * time.Millisecond
	}

	return o
}
