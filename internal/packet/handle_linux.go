//go:build linux

package packet

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"time"
	"unsafe"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"golang.org/x/sys/unix"
)

var _ Handle = (*LinuxHandle)(nil)

// LinuxHandle uses standard syscalls (via x/sys/unix) to capture/inject packets.
// This ensures compatibility across all Linux architectures (including 386/MIPS).
type LinuxHandle struct {
	fd      int
	ifIndex int
	snapLen int
	buf     []byte
}

// NewHandle opens a raw socket bound to iface. Reads wait at most
// opts.ReadTimeout.
func NewHandle(iface *net.Interface, opts HandleOptions) (Handle, error) {
	if iface == nil {
		return nil, errors.New("no interface given")
	}
	opts = opts.withDefaults()

	// Protocol Setup (Network Byte Order)
	proto := htons(unix.ETH_P_ALL)

	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(proto))
	if err != nil {
		return nil, fmt.Errorf("failed to open raw socket: %w", err)
	}

	sll := &unix.SockaddrLinklayer{
		Protocol: proto,
		Ifindex:  iface.Index,
	}

	if err := unix.Bind(fd, sll); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("failed to bind raw socket to %s: %w", iface.Name, err)
	}

	tv := unix.NsecToTimeval(opts.ReadTimeout.Nanoseconds())
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}

	if opts.Promiscuous {
		mreq := &unix.PacketMreq{
			Ifindex: int32(iface.Index),
			Type:    unix.PACKET_MR_PROMISC,
		}
		err := unix.SetsockoptPacketMreq(fd, unix.SOL_PACKET, unix.PACKET_ADD_MEMBERSHIP, mreq)
		if err != nil {
			_ = unix.Close(fd)
			return nil, fmt.Errorf("failed to enable promiscuous mode: %w", err)
		}
	}

	h := &LinuxHandle{
		fd:      fd,
		ifIndex: iface.Index,
		snapLen: opts.SnapLen,
		buf:     make([]byte, 65536),
	}

	return h, nil
}

// ReadPacketData reads using unix.Recvfrom. An expired SO_RCVTIMEO is
// reported as ErrReadTimeout.
func (h *LinuxHandle) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	n, _, err := unix.Recvfrom(h.fd, h.buf, 0)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) ||
			errors.Is(err, unix.EINTR) {
			return nil, gopacket.CaptureInfo{}, ErrReadTimeout
		}
		return nil, gopacket.CaptureInfo{}, err
	}

	captured := min(n, h.snapLen)
	data := make([]byte, captured)
	copy(data, h.buf[:captured])

	ci := gopacket.CaptureInfo{
		Timestamp:      time.Now(),
		CaptureLength:  captured,
		Length:         n,
		InterfaceIndex: h.ifIndex,
	}

	return data, ci, nil
}

// WritePacketData injects packet using unix.Sendto
func (h *LinuxHandle) WritePacketData(data []byte) error {
	addr := &unix.SockaddrLinklayer{
		Ifindex: h.ifIndex,
	}
	return unix.Sendto(h.fd, data, 0, addr)
}

func (h *LinuxHandle) LinkType() layers.LinkType {
	return layers.LinkTypeEthernet
}

func (h *LinuxHandle) Close() {
	_ = unix.Close(h.fd)
}

// SetBPFRawInstructionFilter attaches BPF using unix helper
func (h *LinuxHandle) SetBPFRawInstructionFilter(raw []BPFInstruction) error {
	if len(raw) == 0 {
		return errors.New("empty bpf program")
	}

	filter := make([]unix.SockFilter, len(raw))
	for i, r := range raw {
		filter[i] = unix.SockFilter{
			Code: r.Op,
			Jt:   r.Jt,
			Jf:   r.Jf,
			K:    r.K,
		}
	}

	fprog := &unix.SockFprog{
		Len:    uint16(len(filter)),
		Filter: &filter[0],
	}

	return unix.SetsockoptSockFprog(h.fd, unix.SOL_SOCKET, unix.SO_ATTACH_FILTER, fprog)
}

// ClearBPF detaches the filter
func (h *LinuxHandle) ClearBPF() error {
	// Dummy value 0 is sufficient
	return unix.SetsockoptInt(h.fd, unix.SOL_SOCKET, unix.SO_DETACH_FILTER, 0)
}

// --- Endian Utils ---
func determineNativeEndian() binary.ByteOrder {
	buf := [2]byte{}
	*(*uint16)(unsafe.Pointer(&buf[0])) = uint16(0xABCD)
	switch buf {
	case [2]byte{0xCD, 0xAB}:
		return binary.LittleEndian
	case [2]byte{0xAB, 0xCD}:
		return binary.BigEndian
	default:
		panic("could not determine native endianness")
	}
}

func htons(v uint16) uint16 {
	if determineNativeEndian() == binary.LittleEndian {
		return (v << 8) | (v >> 8)
	}
	return v
}
