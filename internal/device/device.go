package device

import (
	"encoding/json"
	"net"
	"net/netip"
	"sync/atomic"
)

// UnknownVendor is shown for devices whose vendor could not be resolved.
const UnknownVendor = "Unknown"

// Device is one host found by a discovery cycle.
type Device struct {
	Addr   netip.Addr
	MAC    net.HardwareAddr
	Vendor string
}

func (d Device) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		IP     string `json:"ip"`
		MAC    string `json:"mac"`
		Vendor string `json:"vendor"`
	}{
		IP:     d.Addr.String(),
		MAC:    d.MAC.String(),
		Vendor: d.VendorLabel(),
	})
}

// VendorLabel returns the vendor or UnknownVendor.
func (d Device) VendorLabel() string {
	if d.Vendor == "" {
		return UnknownVendor
	}
	return d.Vendor
}

// Label is the text used for the device in filter options.
func (d Device) Label() string {
	return d.Addr.String() + " (" + d.VendorLabel() + ")"
}

// Registry holds the device list of the latest discovery cycle. The list is
// replaced as a whole; readers always see one complete snapshot.
type Registry struct {
	snapshot atomic.Pointer[[]Device]
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Replace swaps in a new snapshot. The registry keeps its own copy.
func (r *Registry) Replace(devices []Device) {
	cp := append([]Device(nil), devices...)
	r.snapshot.Store(&cp)
}

// Devices returns the current snapshot. Callers must not modify it.
func (r *Registry) Devices() []Device {
	p := r.snapshot.Load()
	if p == nil {
		return nil
	}
	return *p
}

// Lookup returns the device with the given address.
func (r *Registry) Lookup(addr netip.Addr) (Device, bool) {
	for _, d := range r.Devices() {
		if d.Addr == addr {
			return d, true
		}
	}
	return Device{}, false
}
