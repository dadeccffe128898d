package packet

import (
	"github.com/google/gopacket"
)

// Source turns raw frames read from a Handle into decoded packets.
type Source struct {
	handle  Handle
	decoder gopacket.Decoder
}

func NewSource(handle Handle) *Source {
	return &Source{
		handle:  handle,
		decoder: handle.LinkType(),
	}
}

// NextPacket reads and decodes one frame. It returns ErrReadTimeout when
// nothing arrived within the handle's read timeout.
func (s *Source) NextPacket() (gopacket.Packet, error) {
	data, ci, err := s.handle.ReadPacketData()
	if err != nil {
		return nil, err
	}

	// The handle hands out a fresh slice per read, so the packet can keep it.
	p := gopacket.NewPacket(data, s.decoder, gopacket.DecodeOptions{
		Lazy:   true,
		NoCopy: true,
	})

	md := p.Metadata()
	md.CaptureInfo = ci

	return p, nil
}

func (s *Source) Close() {
	s.handle.Close()
}
