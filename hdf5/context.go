package hdf5

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/h5coro/h5coro/async"
	"github.com/h5coro/h5coro/cache"
	"github.com/h5coro/h5coro/driver"
	"github.com/h5coro/h5coro/driver/posix"
	"github.com/h5coro/h5coro/internal/dtype"
	"github.com/h5coro/h5coro/internal/herrors"
	"github.com/h5coro/h5coro/internal/layout"
	"github.com/h5coro/h5coro/internal/logging"
	"github.com/h5coro/h5coro/internal/message"
	"github.com/h5coro/h5coro/internal/metarepo"
)

// defaultQueueDepth bounds the pending-request queue a pool not given an
// explicit depth is built with.
const defaultQueueDepth = 64

var (
	poolMu sync.Mutex
	pool   *async.Pool
)

// Init starts the process-wide asynchronous reader pool with numThreads
// workers. It is one-time: a second call is a no-op, matching the original
// engine's init/deinit contract. numThreads <= 0 runs ReadAsync requests
// synchronously on the submitting goroutine instead of spawning workers.
func Init(numThreads int) {
	poolMu.Lock()
	defer poolMu.Unlock()
	if pool != nil {
		return
	}
	pool = async.NewPool(numThreads, defaultQueueDepth, logging.Entry(nil))
}

// Deinit stops the process-wide pool, joining all workers. It is safe to
// call even if Init was never called. After Deinit, ReadAsync falls back to
// synchronous execution until Init is called again.
func Deinit() {
	poolMu.Lock()
	p := pool
	pool = nil
	poolMu.Unlock()
	if p != nil {
		p.Close()
	}
}

func currentPool() *async.Pool {
	poolMu.Lock()
	defer poolMu.Unlock()
	if pool == nil {
		// Mirrors the "0 worker threads" synchronous mode: no process-wide
		// Init call yet, so async reads still complete, just inline.
		return async.NewPool(0, 1, nil)
	}
	return pool
}

// Context is a per-opened-resource bundle: one driver, the two-level cache
// in front of it, and a metadata repository deduplicating concurrent first
// opens of the same dataset through this Context. Its lifetime is explicit
// Open -> Close; outstanding Futures obtained from it must complete before
// Close releases the underlying driver.
type Context struct {
	resource string
	cache    *cache.Cache
	file     *File
	repo     *metarepo.Repository[*Dataset]
	log      *logrus.Entry

	mu sync.Mutex
}

// ContextOptions configures NewContext.
type ContextOptions struct {
	// Driver, if set, is used instead of opening resource through the
	// posix driver — the hook external callers use to hand in an
	// already-constructed driver/s3.Driver or a driver/memory.Driver for
	// tests.
	Driver driver.Driver
	Logger *logrus.Entry
}

// ContextOption mutates a ContextOptions.
type ContextOption func(*ContextOptions)

// WithDriver opens the Context over an already-constructed driver instead
// of opening resource as a local path.
func WithDriver(d driver.Driver) ContextOption {
	return func(o *ContextOptions) { o.Driver = d }
}

// WithLogger attaches a logger the Context and everything it creates
// (cache, pool submissions) logs through.
func WithLogger(log *logrus.Entry) ContextOption {
	return func(o *ContextOptions) { o.Logger = log }
}

// NewContext opens resource (a local path unless WithDriver overrides it)
// behind a fresh two-level cache and returns a Context ready for Read and
// ReadAsync.
func NewContext(resource string, opts ...ContextOption) (*Context, error) {
	var o ContextOptions
	for _, opt := range opts {
		opt(&o)
	}
	log := logging.Entry(o.Logger)

	drv := o.Driver
	if drv == nil {
		var err error
		drv, err = posix.Open(nil, resource)
		if err != nil {
			return nil, herrors.Wrap(herrors.CodeResource, herrors.SeverityFatal, "opening resource %q: %w", resource, err)
		}
	}

	cch := cache.New(drv, log)

	f, err := openDriver(resource, cch, nil)
	if err != nil {
		cch.Close()
		return nil, herrors.Wrap(herrors.CodeFormat, herrors.SeverityFatal, "opening %q: %w", resource, err)
	}

	ctx := &Context{
		resource: resource,
		cache:    cch,
		file:     f,
		repo:     metarepo.New[*Dataset](),
		log:      log,
	}
	f.ctx = ctx
	return ctx, nil
}

// Close drains the Context's cache and closes its driver. All Futures
// obtained from this Context's ReadAsync must have completed first; Close
// does not cancel outstanding work.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.file.Close()
}

// Root returns the root group of the Context's underlying file, for
// diagnostic tools that want to walk the whole object graph.
func (c *Context) Root() *Group {
	return c.file.Root()
}

// Version returns the underlying file's superblock version.
func (c *Context) Version() int {
	return c.file.Version()
}

// CacheStats reports the Context's byte-range cache counters.
func (c *Context) CacheStats() cache.Stats {
	return c.cache.Stats()
}

// Evictions reports how many metadata entries this Context's repository
// has discarded to stay within capacity.
func (c *Context) Evictions() int64 {
	return c.repo.Evictions()
}

func (c *Context) openDataset(path string) (*Dataset, error) {
	key := metarepo.NewKey(c.resource, path)
	return c.repo.GetOrLoad(key, func() (*Dataset, error) {
		return c.file.OpenDataset(path)
	})
}

// ReadInfo describes the outcome of a Context read: the dataset's resolved
// shape and element type, plus its decoded data (nil when metaOnly was
// requested, or before an async Future completes).
type ReadInfo struct {
	Dataset     string
	Shape       []uint64
	NumElements uint64
	DtypeSize   int
	DtypeClass  message.DatatypeClass
	Data        interface{}

	dtype     *message.Datatype
	valueType dtype.ValueType
}

// Decode converts raw bytes read for this ReadInfo's hyperslice into dest,
// a pointer to a slice of the Go type matching DtypeClass/DtypeSize — or,
// if the read requested value coercion (C13), a pointer to a []int64 or
// []float64. Used to finish decoding a Future's buffer after ReadAsync.
// Coercion may revise NumElements (the string-to-integer path recomputes
// it from the first NUL).
func (info *ReadInfo) Decode(raw []byte, dest interface{}) error {
	if info.valueType == dtype.ValueTypeNone {
		return dtype.Convert(info.dtype, raw, info.NumElements, dest)
	}

	coerced, n, err := dtype.Coerce(info.dtype, raw, info.NumElements, info.valueType)
	if err != nil {
		return err
	}
	info.NumElements = n

	destVal := reflect.ValueOf(dest)
	if destVal.Kind() != reflect.Ptr {
		return fmt.Errorf("dest must be a pointer")
	}
	destVal.Elem().Set(reflect.ValueOf(coerced))
	return nil
}

// resolveHyperslice fills in a whole-dataset hyperslice when start is nil,
// and returns it alongside its resolved element-count-per-dimension.
func resolveHyperslice(ds *Dataset, start, count []uint64) (*layout.Hyperslice, []uint64) {
	if start == nil {
		start = make([]uint64, ds.Rank())
		count = ds.Shape()
		if ds.Rank() == 0 {
			count = []uint64{1}
		}
	}
	return &layout.Hyperslice{Start: start, Count: count}, count
}

// Read performs a synchronous hyperslice read of the dataset at path,
// opening and caching its metadata through this Context's repository. A nil
// start/count reads the whole dataset. metaOnly resolves shape and type
// only, skipping the (potentially expensive) chunk fetch entirely. valueType
// requests the C13 post-read coercion of spec §4.9: ValueTypeNone decodes
// into the dataset's native Go type, ValueTypeInteger/ValueTypeReal coerce
// every element into a uniform int64/float64 (NumElements may be revised by
// the string-to-integer coercion path).
func (c *Context) Read(path string, valueType dtype.ValueType, start, count []uint64, metaOnly bool) (*ReadInfo, error) {
	traceID := logging.NextTraceID()
	log := logging.WithTrace(c.log, traceID).WithField("dataset", path)

	ds, err := c.openDataset(path)
	if err != nil {
		log.WithError(err).Error("opening dataset")
		return nil, herrors.Wrap(herrors.CodeFormat, herrors.SeverityError, "opening dataset %q: %w", path, err)
	}

	hs, shape := resolveHyperslice(ds, start, count)
	info := &ReadInfo{
		Dataset:     path,
		Shape:       shape,
		NumElements: hs.NumElements(),
		DtypeSize:   ds.DtypeSize(),
		DtypeClass:  ds.DtypeClass(),
		dtype:       ds.datatype,
		valueType:   valueType,
	}
	if metaOnly {
		return info, nil
	}

	raw, err := ds.rawHyperslice(hs)
	if err != nil {
		log.WithError(err).Error("reading hyperslice")
		return nil, herrors.Wrap(herrors.CodeResource, herrors.SeverityError, "reading dataset %q: %w", path, err)
	}

	if valueType != dtype.ValueTypeNone {
		coerced, n, err := dtype.Coerce(ds.datatype, raw, hs.NumElements(), valueType)
		if err != nil {
			log.WithError(err).Error("coercing values")
			return nil, herrors.Wrap(herrors.CodePipeline, herrors.SeverityError, "coercing dataset %q: %w", path, err)
		}
		info.NumElements = n
		info.Data = coerced
		return info, nil
	}

	goType, err := ds.GoType()
	if err != nil {
		return nil, herrors.Wrap(herrors.CodeFormat, herrors.SeverityError, "resolving Go type for %q: %w", path, err)
	}
	dest := reflect.New(reflect.SliceOf(goType))
	if err := dtype.Convert(ds.datatype, raw, hs.NumElements(), dest.Interface()); err != nil {
		return nil, herrors.Wrap(herrors.CodeFormat, herrors.SeverityError, "decoding dataset %q: %w", path, err)
	}
	info.Data = dest.Elem().Interface()
	return info, nil
}

// ReadAsync enqueues the chunk fetch/decode for a hyperslice read on the
// process-wide pool started by Init (or runs it inline if Init was never
// called) and returns immediately. Metadata resolution is synchronous —
// it is cheap once cached — so the returned ReadInfo's Shape/DtypeClass are
// already valid; call future.Wait then info.Decode to materialize Data.
// valueType carries the C13 coercion request through to that later Decode
// call, same as Read.
func (c *Context) ReadAsync(path string, valueType dtype.ValueType, start, count []uint64) (*ReadInfo, *async.Future, error) {
	traceID := logging.NextTraceID()
	log := logging.WithTrace(c.log, traceID).WithField("dataset", path)

	ds, err := c.openDataset(path)
	if err != nil {
		log.WithError(err).Error("opening dataset")
		return nil, nil, herrors.Wrap(herrors.CodeFormat, herrors.SeverityError, "opening dataset %q: %w", path, err)
	}

	hs, shape := resolveHyperslice(ds, start, count)
	info := &ReadInfo{
		Dataset:     path,
		Shape:       shape,
		NumElements: hs.NumElements(),
		DtypeSize:   ds.DtypeSize(),
		DtypeClass:  ds.DtypeClass(),
		dtype:       ds.datatype,
		valueType:   valueType,
	}

	future := currentPool().SubmitAsync(func() ([]byte, error) {
		raw, err := ds.rawHyperslice(hs)
		if err != nil {
			log.WithError(err).Error("reading hyperslice")
			return nil, fmt.Errorf("reading dataset %q: %w", path, err)
		}
		return raw, nil
	})
	return info, future, nil
}
