// Package posix implements driver.Driver over a local (or fake, for tests)
// filesystem via afero, so the same code path that reads real files in
// production can be exercised against afero.NewMemMapFs() in tests.
package posix

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/h5coro/h5coro/driver"
)

// Driver reads byte ranges out of a single opened afero file.
type Driver struct {
	fs   afero.Fs
	file afero.File
	size int64
}

// Open opens path on fs (pass nil for the real OS filesystem) and returns a
// Driver over it.
func Open(fs afero.Fs, path string) (*Driver, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("posix driver: opening %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("posix driver: stat %s: %w", path, err)
	}
	return &Driver{fs: fs, file: f, size: info.Size()}, nil
}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) ReadAt(dst []byte, offset int64) (int, error) {
	n, err := d.file.ReadAt(dst, offset)
	if err != nil && n < len(dst) {
		return n, fmt.Errorf("posix driver: %w", err)
	}
	return n, nil
}

func (d *Driver) Size() int64 {
	return d.size
}

func (d *Driver) Close() error {
	return d.file.Close()
}
