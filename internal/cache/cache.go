// Package cache keeps decoded entry documents on disk, keyed by the
// content hash of the JSON they were decoded from.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"deoptlens/internal/entry"
)

// SchemaVersion is bumped whenever Payload or the entry model changes shape.
const SchemaVersion uint16 = 1

// Digest is a SHA-256 content hash.
type Digest [sha256.Size]byte

// Sum hashes data.
func Sum(data []byte) Digest {
	return sha256.Sum256(data)
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether d was never set.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Payload is what a cache file holds.
type Payload struct {
	Schema uint16 `msgpack:"schema"`
	// Source is the entries file the document was decoded from.
	Source   string         `msgpack:"source"`
	Document entry.Document `msgpack:"document"`
}

// NewPayload wraps doc with the current schema version.
func NewPayload(src string, doc *entry.Document) *Payload {
	p := &Payload{Schema: SchemaVersion, Source: src}
	if doc != nil {
		p.Document = *doc
	}
	return p
}

// Disk is a directory of msgpack payloads. Safe for concurrent use.
// A nil *Disk is a valid cache that never hits.
type Disk struct {
	mu  sync.RWMutex
	dir string
}

// Open returns the cache for app under $XDG_CACHE_HOME or ~/.cache.
func Open(app string) (*Disk, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locate cache dir: %w", err)
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDir(filepath.Join(base, app))
}

// OpenDir returns a cache rooted at dir, creating it.
func OpenDir(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Disk{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *Disk) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *Disk) pathFor(key Digest) string {
	return filepath.Join(c.dir, "entries", key.String()+".mp")
}

// Put writes payload under key. The file is replaced atomically.
func (c *Disk) Put(key Digest, payload *Payload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return fmt.Errorf("encode cache payload: %w", err)
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

// Get loads the payload stored under key into out. A missing file or a
// payload from another schema version is a miss, not an error.
func (c *Disk) Get(key Digest, out *Payload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	var got Payload
	if err := msgpack.NewDecoder(f).Decode(&got); err != nil {
		return false, fmt.Errorf("decode cache payload %s: %w", key, err)
	}
	if got.Schema != SchemaVersion {
		return false, nil
	}
	*out = got
	return true, nil
}

// DropAll removes every cached payload.
func (c *Disk) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// rename first so a concurrent process never sees a half-deleted dir
	old := c.dir + ".old-" + time.Now().Format("20060102150405.000000000")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
