// Package memory provides an in-process Driver backed by a byte slice, used
// to unit test everything above the driver boundary without touching a
// filesystem or network.
package memory

import (
	"fmt"

	"github.com/h5coro/h5coro/driver"
)

// Driver is a driver.Driver over an in-memory byte slice.
type Driver struct {
	data   []byte
	closed bool
}

// New wraps data as a Driver. The slice is not copied; callers must not
// mutate it while the Driver is in use.
func New(data []byte) *Driver {
	return &Driver{data: data}
}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) ReadAt(dst []byte, offset int64) (int, error) {
	if d.closed {
		return 0, fmt.Errorf("memory driver: closed")
	}
	if offset < 0 || offset > int64(len(d.data)) {
		return 0, fmt.Errorf("memory driver: offset %d out of range", offset)
	}
	n := copy(dst, d.data[offset:])
	return n, nil
}

func (d *Driver) Size() int64 {
	return int64(len(d.data))
}

func (d *Driver) Close() error {
	d.closed = true
	return nil
}
