package geo

import (
	"net/netip"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPublic(t *testing.T) {
	tcs := []struct {
		addr string
		want bool
	}{
		{addr: "8.8.8.8", want: true},
		{addr: "2606:4700::1111", want: true},
		{addr: "192.168.1.1", want: false},
		{addr: "10.0.0.1", want: false},
		{addr: "127.0.0.1", want: false},
		{addr: "169.254.1.1", want: false},
		{addr: "fe80::1", want: false},
		{addr: "224.0.0.251", want: false},
		{addr: "255.255.255.255", want: false},
	}

	for _, tc := range tcs {
		t.Run(tc.addr, func(t *testing.T) {
			assert.Equal(t, tc.want, IsPublic(netip.MustParseAddr(tc.addr)))
		})
	}
}

func TestNilReader(t *testing.T) {
	var r *Reader

	_, ok := r.Lookup(netip.MustParseAddr("8.8.8.8"))
	assert.False(t, ok)
	assert.NoError(t, r.Close())
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.mmdb"))
	assert.Error(t, err)
}
