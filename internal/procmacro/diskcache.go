package procmacro

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"macrobridge/internal/plainkey"
	"macrobridge/internal/protocol/v2"
)

// Current schema version - increment when diskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит результаты раскрытия макросов на диске по ключу запроса.
// Thread-safe for concurrent access. A nil *DiskCache is a valid, empty cache.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

type diskPayload struct {
	Schema uint16
	Result v2.Result
}

// OpenDiskCache opens <user cache dir>/app.
func OpenDiskCache(app string) (*DiskCache, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("open disk cache: %w", err)
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt opens the cache rooted at dir, creating it if needed.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open disk cache: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key plainkey.Digest) string {
	hexKey := key.String()
	// подкаталог по первым двум символам, чтобы не раздувать один каталог
	return filepath.Join(c.dir, "expand", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a result to the disk cache.
func (c *DiskCache) Put(key plainkey.Digest, res v2.Result) error {
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
	defer func() { _ = os.Remove(tmp) }()

	if err := msgpack.NewEncoder(f).Encode(diskPayload{Schema: diskCacheSchemaVersion, Result: res}); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, p)
}

// Get reads a result. A payload from another schema version is a miss.
func (c *DiskCache) Get(key plainkey.Digest) (v2.Result, bool, error) {
	if c == nil {
		return v2.Result{}, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return v2.Result{}, false, nil
		}
		return v2.Result{}, false, err
	}
	defer func() { _ = f.Close() }()

	var payload diskPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return v2.Result{}, false, fmt.Errorf("decode %s: %w", key, err)
	}
	if payload.Schema != diskCacheSchemaVersion {
		return v2.Result{}, false, nil
	}
	return payload.Result, true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог, удалим и создадим заново
	old := c.dir + ".old-" + time.Now().Format("20060102150405.000000000")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.MkdirAll(c.dir, 0o755)
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
