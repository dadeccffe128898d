package geo

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/oschwald/maxminddb-golang"
	"github.com/xvzc/lanwatch/internal/cache"
)

// Location is the part of a GeoLite2 City record used in exports.
type Location struct {
	Country string `json:"country,omitempty"`
	City    string `json:"city,omitempty"`
}

type cityRecord struct {
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

const cacheSize = 4096

type cached struct {
	loc Location
	ok  bool
}

// Reader looks up public addresses in a MaxMind database.
type Reader struct {
	db    *maxminddb.Reader
	cache *cache.LRU[netip.Addr, cached]
}

func Open(path string) (*Reader, error) {
	db, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database: %w", err)
	}

	return &Reader{
		db:    db,
		cache: cache.NewLRU[netip.Addr, cached](cacheSize),
	}, nil
}

// Lookup returns the location of addr. Private, loopback and other
// non-public addresses are never looked up.
func (r *Reader) Lookup(addr netip.Addr) (Location, bool) {
	if r == nil || !IsPublic(addr) {
		return Location{}, false
	}

	if c, ok := r.cache.Get(addr); ok {
		return c.loc, c.ok
	}

	loc, ok := r.lookup(addr)
	r.cache.Set(addr, cached{loc: loc, ok: ok})

	return loc, ok
}

func (r *Reader) lookup(addr netip.Addr) (Location, bool) {
	var rec cityRecord
	if err := r.db.Lookup(net.IP(addr.AsSlice()), &rec); err != nil {
		return Location{}, false
	}

	loc := Location{
		Country: rec.Country.ISOCode,
		City:    rec.City.Names["en"],
	}

	return loc, loc != (Location{})
}

func (r *Reader) Close() error {
	if r == nil {
		return nil
	}
	return r.db.Close()
}

// IsPublic reports whether addr is a globally routable unicast address.
func IsPublic(addr netip.Addr) bool {
	return addr.IsValid() &&
		addr.IsGlobalUnicast() &&
		!addr.IsPrivate() &&
		!addr.IsLoopback() &&
		!addr.IsLinkLocalUnicast()
}
