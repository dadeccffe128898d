package discovery

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/xvzc/lanwatch/internal/packet"
)

// arpReplyFilter accepts ARP replies addressed to ownMAC.
func arpReplyFilter(ownMAC net.HardwareAddr) ([]packet.BPFInstruction, error) {
	if len(ownMAC) != 6 {
		return nil, fmt.Errorf("invalid MAC address length")
	}

	macHigh := binary.BigEndian.Uint32(ownMAC[0:4])
	macLow := binary.BigEndian.Uint16(ownMAC[4:6])

	// {Op, Jt, Jf, K}; every Jf lands on the final drop.
	return []packet.BPFInstruction{
		// EtherType == ARP
		{Op: 0x28, Jt: 0, Jf: 0, K: 12},
		{Op: 0x15, Jt: 0, Jf: 7, K: 0x0806},

		// Ether dst, compared as 4 + 2 bytes
		{Op: 0x20, Jt: 0, Jf: 0, K: 0},
		{Op: 0x15, Jt: 0, Jf: 5, K: macHigh},
		{Op: 0x28, Jt: 0, Jf: 0, K: 4},
		{Op: 0x15, Jt: 0, Jf: 3, K: uint32(macLow)},

		// ARP operation at 14 + 6
		{Op: 0x28, Jt: 0, Jf: 0, K: 20},
		{Op: 0x15, Jt: 0, Jf: 1, K: 2},

		{Op: 0x6, Jt: 0, Jf: 0, K: 0x00040000},
		{Op: 0x6, Jt: 0, Jf: 0, K: 0x00000000},
	}, nil
}
