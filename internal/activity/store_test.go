package activity

import (
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	addrA = netip.MustParseAddr("192.168.1.10")
	addrB = netip.MustParseAddr("192.168.1.20")
	addrC = netip.MustParseAddr("192.168.1.30")
)

func record(i int, src, dst netip.Addr) Record {
	return Record{
		Time: time.Unix(int64(1700000000+i), 0),
		Src:  src,
		Dst:  dst,
		Tag:  TagUnclassified,
	}
}

func fill(s *Store, k int) []Record {
	var all []Record
	for i := range k {
		r := record(i, addrA, addrB)
		s.Append(r)
		all = append(all, r)
	}
	return all
}

func TestStoreRecent(t *testing.T) {
	tcs := []struct {
		name string
		k    int
		n    int
	}{
		{"empty", 0, 5},
		{"n smaller than k", 10, 3},
		{"n equals k", 10, 10},
		{"n larger than k", 10, 50},
		{"wrapped window", 250, 100},
		{"wrapped window partial", 250, 7},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStore(100)
			all := fill(s, tc.k)

			got := s.Recent(tc.n)

			want := min(tc.n, tc.k, 100)
			require.Len(t, got, want)
			if want > 0 {
				assert.Equal(t, all[tc.k-want:], got)
			}
		})
	}
}

func TestStoreWindowEqualsLogBelowCapacity(t *testing.T) {
	s := NewStore(DefaultWindow)
	all := fill(s, 42)

	assert.Equal(t, all, s.All())
	assert.Equal(t, s.All(), s.Recent(DefaultWindow))
	assert.Equal(t, 42, s.Len())
}

func TestStoreEviction(t *testing.T) {
	s := NewStore(3)
	all := fill(s, 5)

	assert.Equal(t, all[2:], s.Recent(10))
	assert.Len(t, s.All(), 5)
	assert.Equal(t, 3, s.WindowSize())
}

func TestStoreByDevice(t *testing.T) {
	s := NewStore(10)
	s.Append(record(0, addrA, addrB))
	s.Append(record(1, addrC, addrA))
	s.Append(record(2, addrB, addrC))

	got := s.ByDevice(addrA)
	require.Len(t, got, 2)
	for _, r := range got {
		assert.True(t, r.Touches(addrA))
	}
	assert.True(t, got[0].Time.Before(got[1].Time))

	assert.Empty(t, s.ByDevice(netip.MustParseAddr("10.0.0.1")))
}

func TestStoreRecentReturnsCopy(t *testing.T) {
	s := NewStore(10)
	fill(s, 3)

	got := s.Recent(3)
	got[0].Summary = "mutated"

	assert.Empty(t, s.Recent(3)[0].Summary)
}

func TestStoreConcurrentReaders(t *testing.T) {
	s := NewStore(50)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				rs := s.Recent(50)
				for i := 1; i < len(rs); i++ {
					assert.False(t, rs[i].Time.Before(rs[i-1].Time))
				}
			}
		}()
	}

	fill(s, 500)
	wg.Wait()
}
