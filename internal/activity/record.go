package activity

import (
	"net/netip"
	"time"

	"github.com/google/gopacket/layers"
)

// Tag is the classification of the payload carried by a packet.
type Tag string

const (
	TagPlaintext    Tag = "plaintext"
	TagEncrypted    Tag = "encrypted"
	TagUnclassified Tag = "unclassified"
)

// Record is the classified description of one captured packet.
// Records are values and are never modified after classification.
type Record struct {
	Time     time.Time         `json:"time"`
	Src      netip.Addr        `json:"src"`
	Dst      netip.Addr        `json:"dst"`
	Protocol layers.IPProtocol `json:"protocol"`
	SrcPort  uint16            `json:"src_port,omitempty"`
	DstPort  uint16            `json:"dst_port,omitempty"`
	HasPorts bool              `json:"-"`
	Tag      Tag               `json:"tag"`
	Summary  string            `json:"summary"`
}

// Touches reports whether addr is the source or the destination of r.
func (r Record) Touches(addr netip.Addr) bool {
	return r.Src == addr || r.Dst == addr
}
