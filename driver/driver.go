// Package driver defines the byte-range I/O contract the engine reads
// through, plus the ReadFull helper. The implementations live in
// subpackages that satisfy the same interface: posix (local filesystem),
// memory (in-process byte slice) and s3 (object storage).
package driver

import (
	"errors"
	"fmt"
	"io"
)

// ErrShortRead is returned when a driver cannot satisfy the requested size.
// A short read is always fatal to the caller; the engine never tolerates
// partial reads silently.
var ErrShortRead = errors.New("driver: short read")

// Driver is a synchronous, blocking, byte-addressable resource. A single
// Driver instance is owned by exactly one Context and is safe to call from
// the goroutine that owns that Context; distinct Driver instances (e.g. one
// per open Context) may be used concurrently from different goroutines.
type Driver interface {
	// ReadAt reads up to len(dst) bytes starting at offset and returns the
	// number read, which is less than len(dst) when the resource ends
	// first. ReadFull turns such a short count into ErrShortRead.
	ReadAt(dst []byte, offset int64) (int, error)

	// Size returns the total size of the resource in bytes, or -1 if
	// unknown (e.g. a streaming resource with no declared length).
	Size() int64

	// Close releases any resource held by the driver (file handles,
	// connections). Close is idempotent.
	Close() error
}

// ReadFull reads exactly len(dst) bytes through d, translating any short
// read into ErrShortRead.
func ReadFull(d Driver, dst []byte, offset int64) error {
	n, err := d.ReadAt(dst, offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("driver read at %d: %w", offset, err)
	}
	if n < len(dst) {
		return fmt.Errorf("%w: requested %d bytes at offset %d, got %d", ErrShortRead, len(dst), offset, n)
	}
	return nil
}
