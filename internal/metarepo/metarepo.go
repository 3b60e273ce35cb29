// Package metarepo implements the metadata repository: a cache of
// already-parsed dataset metadata keyed by a fixed-width hash of the
// resource URL and dataset path, so that two readers opening the same
// dataset concurrently through one Repository parse its object header,
// dataspace, datatype, layout and chunk index exactly once between them.
// hdf5.Context builds one Repository per Context; entries are not shared
// between Contexts.
package metarepo

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// MaxEntries bounds the repository the way the original engine's
// MAX_META_STORE does: once full, the oldest entry is evicted to make room
// for a new one (FIFO, not recency based — see the Peek-only discipline
// below).
const MaxEntries = 150000

// Key identifies one dataset's metadata: the resource's URL and the path of
// the dataset within it, combined into a single fixed-width hash the way
// the original engine hashes "url" fields into a fixed-size table key.
type Key struct {
	url  string
	path string
}

func NewKey(url, path string) Key {
	return Key{url: url, path: path}
}

func (k Key) hash() [32]byte {
	h := sha256.New()
	h.Write([]byte(k.url))
	h.Write([]byte{0})
	h.Write([]byte(k.path))
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// hashKey reduces the full hash to a 64-bit map key; collisions would merge
// two distinct datasets' entries, which is acceptable for a cache (a
// spurious cache miss is the worst outcome, not a correctness bug, since
// Repository always re-derives the value it stores under a given Key).
func (k Key) hashKey() uint64 {
	sum := k.hash()
	return binary.LittleEndian.Uint64(sum[:8])
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.url, k.path)
}

// Repository is a concurrency-safe cache mapping Key to
// caller-defined metadata values (typically a parsed dataset descriptor).
// A single flight group deduplicates concurrent first-time loads of the
// same key so that N goroutines opening the same dataset at once run the
// loader once and all receive its result.
type Repository[V any] struct {
	mu    sync.Mutex
	cache *lru.Cache[uint64, entry[V]]
	group singleflight.Group

	evictions int64
}

type entry[V any] struct {
	key   Key
	value V
}

// New builds an empty Repository with MaxEntries capacity.
func New[V any]() *Repository[V] {
	c, err := lru.New[uint64, entry[V]](MaxEntries)
	if err != nil {
		panic(fmt.Sprintf("metarepo: building cache: %v", err)) // fixed capacity, cannot fail
	}
	return &Repository[V]{cache: c}
}

// Lookup returns the cached value for key, if present. It never promotes
// the entry to most-recently-used (Peek, not Get) so that eviction under
// Add remains oldest-first.
func (r *Repository[V]) Lookup(key Key) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.cache.Peek(key.hashKey())
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// GetOrLoad returns the cached value for key, loading it with load if
// absent. Concurrent calls for the same key share a single in-flight load.
func (r *Repository[V]) GetOrLoad(key Key, load func() (V, error)) (V, error) {
	if v, ok := r.Lookup(key); ok {
		return v, nil
	}

	v, err, _ := r.group.Do(key.String(), func() (interface{}, error) {
		// Re-check under the flight group: another caller may have
		// populated the cache between our Lookup and this Do call.
		if v, ok := r.Lookup(key); ok {
			return v, nil
		}
		v, err := load()
		if err != nil {
			return v, err
		}
		r.store(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

func (r *Repository[V]) store(key Key, value V) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cache.Peek(key.hashKey()); ok {
		return
	}
	if r.cache.Add(key.hashKey(), entry[V]{key: key, value: value}) {
		r.evictions++
	}
}

// Evictions returns the number of entries discarded to stay within capacity.
func (r *Repository[V]) Evictions() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evictions
}

// Len returns the number of entries currently cached.
func (r *Repository[V]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Len()
}
