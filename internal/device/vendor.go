package device

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/xvzc/lanwatch/internal/logging"
)

// PrivateVendor labels locally administered (randomized) MAC addresses.
const PrivateVendor = "Local/Privacy MAC"

// ouiEntry is one line of the vendor database, a JSON-lines file such as
// {"oui":"00:1A:11","companyName":"Google, Inc."}. Longer assignments
// (MA-M, MA-S) use longer prefixes like "70:B3:D5:1".
type ouiEntry struct {
	OUI     string `json:"oui"`
	Company string `json:"companyName"`
}

// VendorDB resolves MAC addresses to vendor names.
type VendorDB struct {
	logger zerolog.Logger
	path   string

	mu      sync.RWMutex
	entries map[string]string
}

// NewVendorDB loads the database at path. An empty path yields an empty
// database that only recognises private addresses.
func NewVendorDB(logger zerolog.Logger, path string) (*VendorDB, error) {
	db := &VendorDB{
		logger:  logger,
		path:    path,
		entries: map[string]string{},
	}

	if path == "" {
		return db, nil
	}

	if err := db.Reload(); err != nil {
		return nil, err
	}

	return db, nil
}

// Reload reads the database file again and swaps the entries in.
func (db *VendorDB) Reload() error {
	f, err := os.Open(db.path)
	if err != nil {
		return fmt.Errorf("failed to open vendor database: %w", err)
	}
	defer func() { _ = f.Close() }()

	entries := map[string]string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e ouiEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}

		if prefix := normalize(e.OUI); prefix != "" && e.Company != "" {
			entries[prefix] = e.Company
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read vendor database: %w", err)
	}

	db.mu.Lock()
	db.entries = entries
	db.mu.Unlock()

	db.logger.Debug().Int("entries", len(entries)).Str("path", db.path).Msg("vendor database loaded")

	return nil
}

// Lookup returns the vendor of mac, trying the longest registered prefix
// first. It returns "" when the vendor is unknown.
func (db *VendorDB) Lookup(mac net.HardwareAddr) string {
	if len(mac) < 3 {
		return ""
	}

	key := normalize(mac.String())

	db.mu.RLock()
	for i := len(key); i >= 6; i-- {
		if v, ok := db.entries[key[:i]]; ok {
			db.mu.RUnlock()
			return v
		}
	}
	db.mu.RUnlock()

	// locally administered bit
	if mac[0]&0x02 != 0 {
		return PrivateVendor
	}

	return ""
}

// Len returns the number of loaded prefixes.
func (db *VendorDB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.entries)
}

// Watch reloads the database whenever its file changes, until ctx is done.
func (db *VendorDB) Watch(ctx context.Context) error {
	if db.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory so editors that replace the file are noticed.
	if err := watcher.Add(filepath.Dir(db.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", db.path, err)
	}

	go func() {
		defer func() { _ = watcher.Close() }()

		logger := logging.WithLocalScope(ctx, db.logger, "watch")
		target := filepath.Clean(db.path)

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target ||
					!ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if err := db.Reload(); err != nil {
					logging.WarnUnwrapped(&logger, "vendor database reload failed", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn().Err(err).Msg("file watcher error")
			}
		}
	}()

	return nil
}

// normalize strips separators and upper-cases a MAC or OUI prefix.
func normalize(s string) string {
	r := strings.NewReplacer(":", "", "-", "", ".", "")
	return strings.ToUpper(r.Replace(strings.TrimSpace(s)))
}
