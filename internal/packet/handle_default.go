//go:build !linux

package packet

import (
	"errors"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
)

var _ Handle = (*DefaultHandle)(nil)

type DefaultHandle struct {
	*pcap.Handle
}

// NewHandle opens a pcap handle on iface. Reads wait at most
// opts.ReadTimeout.
func NewHandle(iface *net.Interface, opts HandleOptions) (Handle, error) {
	if iface == nil {
		return nil, errors.New("no interface given")
	}
	opts = opts.withDefaults()

	iHandle, err := pcap.NewInactiveHandle(iface.Name)
	if err != nil {
		return nil, err
	}
	defer iHandle.CleanUp()

	// max bytes per packet to capture
	if err := iHandle.SetSnapLen(opts.SnapLen); err != nil {
		return nil, err
	}

	if err := iHandle.SetPromisc(opts.Promiscuous); err != nil {
		return nil, err
	}

	// bounded wait: a read returns NextErrorTimeoutExpired after this.
	if err := iHandle.SetTimeout(opts.ReadTimeout); err != nil {
		return nil, err
	}

	handle, err := iHandle.Activate()
	if err != nil {
		return nil, err
	}

	return &DefaultHandle{handle}, nil
}

func (h *DefaultHandle) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	data, ci, err := h.Handle.ReadPacketData()
	if errors.Is(err, pcap.NextErrorTimeoutExpired) {
		return nil, ci, ErrReadTimeout
	}

	return data, ci, err
}

func (h *DefaultHandle) ClearBPF() error {
	return h.SetBPFFilter("")
}

func (h *DefaultHandle) SetBPFRawInstructionFilter(
	inst []BPFInstruction,
) error {
	var converted []pcap.BPFInstruction
	for _, v := range inst {
		converted = append(converted, pcap.BPFInstruction{
			Code: v.Op, Jt: v.Jt, Jf: v.Jf, K: v.K,
		})
	}

	return h.SetBPFInstructionFilter(converted)
}
