package batch

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"pampac/internal/document"
)

// bump when CachedOutput changes shape
const cacheSchemaVersion uint16 = 1

// Key identifies a run of a rule file over a document.
type Key [sha256.Size]byte

// NewKey hashes the rule file and document bytes. Lengths are mixed in so
// that moving bytes between the two inputs changes the key.
func NewKey(rules, doc []byte) Key {
	h := sha256.New()
	var n [8]byte
	for _, part := range [][]byte{rules, doc} {
		size := uint64(len(part))
		for i := range n {
			n[i] = byte(size >> (8 * i))
		}
		h.Write(n[:])
		h.Write(part)
	}
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

func (k Key) String() string { return hex.EncodeToString(k[:]) }

// CachedOutput is what a cache entry holds: the annotated document of one
// run, MessagePack encoded, and its firing count.
type CachedOutput struct {
	Schema   uint16 `msgpack:"schema"`
	Firings  int    `msgpack:"firings"`
	Document []byte `msgpack:"document"`
}

// Cache stores run outputs on disk keyed by Key. Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// OpenCache opens the cache in dir, or in $XDG_CACHE_HOME/pampac (falling
// back to ~/.cache/pampac) when dir is empty.
func OpenCache(dir string) (*Cache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "pampac")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) Dir() string { return c.dir }

func (c *Cache) pathFor(key Key) string {
	s := key.String()
	return filepath.Join(c.dir, "runs", s[:2], s+".mp")
}

// Put writes an entry atomically.
func (c *Cache) Put(key Key, out *CachedOutput) error {
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
	defer os.Remove(f.Name())

	stored := *out
	stored.Schema = cacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(&stored); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads an entry. Entries of another schema version count as misses.
func (c *Cache) Get(key Key) (*CachedOutput, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()
	var out CachedOutput
	if err := msgpack.NewDecoder(f).Decode(&out); err != nil {
		return nil, false, err
	}
	if out.Schema != cacheSchemaVersion {
		return nil, false, nil
	}
	return &out, true, nil
}

// DropAll removes every entry.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "runs"))
}

func snapshot(doc *document.Document, firings int) (*CachedOutput, error) {
	var buf bytes.Buffer
	if err := document.Encode(&buf, doc, document.FormatMsgpack); err != nil {
		return nil, err
	}
	return &CachedOutput{Firings: firings, Document: buf.Bytes()}, nil
}

func (out *CachedOutput) restore() (*document.Document, error) {
	return document.Decode(bytes.NewReader(out.Document), document.FormatMsgpack)
}
