// Package cache implements the engine's two-level per-context byte-range
// cache: an L1 line for small, frequent reads and an L2 line for
// large sequential ones, both backed by hashicorp/golang-lru/v2.
//
// The cache is read with Peek, never Get: Get would promote an entry to
// most-recently-used and turn the library's LRU into a recency cache, but
// this cache needs oldest-first (FIFO) eviction. Since every cache line is
// inserted at most once for its lifetime here, Peek-only lookup plus Add's
// built-in over-capacity eviction reproduces FIFO eviction exactly while
// still reusing the library's bookkeeping.
package cache

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/h5coro/h5coro/driver"
)

const (
	// L1LineSize is the cache-line size of the small, hot L1 level.
	L1LineSize int64 = 1 << 20 // 1 MiB
	l1Mask     int64 = L1LineSize - 1
	// L1Entries is the number of L1 lines kept per Context.
	L1Entries = 157

	// L2LineSize is the cache-line size of the large, cold L2 level.
	L2LineSize int64 = 128 << 20 // 128 MiB
	l2Mask     int64 = L2LineSize - 1
	// L2Entries is the number of L2 lines kept per Context.
	L2Entries = 17
)

type entry struct {
	pos  int64
	size int64
	data []byte
}

// Stats reports cumulative cache counters.
type Stats struct {
	CacheMisses     int64
	L1Replacements  int64
	L2Replacements  int64
	BytesRead       int64
}

// Cache is a two-level byte-range cache in front of a driver.Driver. It
// implements io.ReaderAt so it can be handed directly to internal/binary.Reader.
type Cache struct {
	driver driver.Driver
	log    *logrus.Entry

	mu    sync.Mutex
	l1    *lru.Cache[int64, *entry]
	l2    *lru.Cache[int64, *entry]
	stats Stats
}

// New builds a two-level cache in front of d.
func New(d driver.Driver, log *logrus.Entry) *Cache {
	l1, err := lru.New[int64, *entry](L1Entries)
	if err != nil {
		panic(fmt.Sprintf("cache: building L1: %v", err)) // fixed capacity, cannot fail
	}
	l2, err := lru.New[int64, *entry](L2Entries)
	if err != nil {
		panic(fmt.Sprintf("cache: building L2: %v", err))
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Cache{driver: d, log: log, l1: l1, l2: l2}
}

// Stats returns a snapshot of the current cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// ReadAt implements io.ReaderAt by routing through the cache with caching enabled and a read-ahead hint equal to
// the requested size.
func (c *Cache) ReadAt(dst []byte, offset int64) (int, error) {
	if err := c.Request(offset, int64(len(dst)), dst, int64(len(dst)), true); err != nil {
		return 0, err
	}
	return len(dst), nil
}

// Request implements the lookup-then-fill algorithm:
//  1. if dst is non-nil, search L1 then L2 for full coverage of
//     [offset, offset+size); on hit, copy and return.
//  2. on miss, read max(size, hint) bytes (when caching) or exactly size
//     bytes (when not), outside the lock.
//  3. insert into L1 if the read fits an L1 line, else L2, evicting the
//     oldest entry on a full level; on a racing duplicate insert, discard
//     the buffer just read.
func (c *Cache) Request(offset, size int64, dst []byte, hint int64, mayCache bool) error {
	if dst != nil {
		if c.tryHit(offset, size, dst) {
			return nil
		}
	}

	cache := mayCache
	readSize := size
	if cache {
		if hint > readSize {
			readSize = hint
		}
		// Trim read-ahead that runs past the end of the resource; only the
		// requested range itself must be available.
		if end := c.driver.Size(); end >= 0 && offset+readSize > end && offset+size <= end {
			readSize = end - offset
		}
	}

	var buf []byte
	var readErr error
	if cache {
		buf = make([]byte, readSize)
		readErr = driver.ReadFull(c.driver, buf, offset)
	} else {
		readErr = driver.ReadFull(c.driver, dst, offset)
	}
	if readErr != nil {
		return readErr
	}

	c.mu.Lock()
	c.stats.BytesRead += readSize
	c.mu.Unlock()

	if !cache {
		return nil
	}

	line := offset &^ l1Mask
	level, lineSize, mask := &c.l1, L1LineSize, l1Mask
	if readSize > L1LineSize {
		level, lineSize, mask = &c.l2, L2LineSize, l2Mask
		line = offset &^ mask
	}
	_ = lineSize

	c.mu.Lock()
	if _, ok := (*level).Peek(line); ok {
		// Another goroutine inserted this line first; drop ours.
		c.mu.Unlock()
		if dst != nil {
			copy(dst, buf[:size])
		}
		return nil
	}
	evicted := (*level).Add(line, &entry{pos: offset, size: readSize, data: buf})
	if evicted {
		if level == &c.l1 {
			c.stats.L1Replacements++
		} else {
			c.stats.L2Replacements++
		}
	}
	c.mu.Unlock()

	if dst != nil {
		copy(dst, buf[:size])
	}
	return nil
}

// tryHit searches L1 then L2 for an entry covering [offset, offset+size).
func (c *Cache) tryHit(offset, size int64, dst []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lookup(c.l1, offset, size, l1Mask, dst) {
		return true
	}
	if c.lookup(c.l2, offset, size, l2Mask, dst) {
		return true
	}
	c.stats.CacheMisses++
	return false
}

// lookup checks the line at or before offset, and the line at or before
// (aligned(offset)-1), to tolerate a request that straddles a line boundary.
func (c *Cache) lookup(level *lru.Cache[int64, *entry], offset, size, mask int64, dst []byte) bool {
	line := offset &^ mask
	if e, ok := level.Peek(line); ok && covers(e, offset, size) {
		copy(dst, e.data[offset-e.pos:offset-e.pos+size])
		return true
	}

	prevLine := line - 1
	if prevLine >= 0 {
		prevLine &^= mask
		if e, ok := level.Peek(prevLine); ok && covers(e, offset, size) {
			copy(dst, e.data[offset-e.pos:offset-e.pos+size])
			return true
		}
	}
	return false
}

func covers(e *entry, offset, size int64) bool {
	return offset >= e.pos && offset+size <= e.pos+e.size
}

// Driver returns the underlying driver (used by Context.Close to release it).
func (c *Cache) Driver() driver.Driver {
	return c.driver
}

// Size delegates to the underlying driver so a Cache can itself be handed
// anywhere a driver.Driver is expected.
func (c *Cache) Size() int64 {
	return c.driver.Size()
}

// Close empties both cache levels and releases the underlying driver.
func (c *Cache) Close() error {
	c.mu.Lock()
	c.l1.Purge()
	c.l2.Purge()
	c.mu.Unlock()
	return c.driver.Close()
}

var _ driver.Driver = (*Cache)(nil)
