// Package s3 implements driver.Driver against an S3-compatible object store
// using minio-go, so byte-range reads issued by the cache turn into
// ranged GetObject calls instead of a single whole-object fetch.
package s3

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"

	"github.com/h5coro/h5coro/driver"
)

// Driver reads byte ranges from one S3 object.
type Driver struct {
	client *minio.Client
	bucket string
	key    string
	size   int64
}

// Open stats the object to learn its size and returns a Driver over it.
func Open(ctx context.Context, client *minio.Client, bucket, key string) (*Driver, error) {
	info, err := client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("s3 driver: stat s3://%s/%s: %w", bucket, key, err)
	}
	return &Driver{client: client, bucket: bucket, key: key, size: info.Size}, nil
}

var _ driver.Driver = (*Driver)(nil)

// ReadAt issues a single ranged GetObject for [offset, offset+len(dst)).
func (d *Driver) ReadAt(dst []byte, offset int64) (int, error) {
	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(offset, offset+int64(len(dst))-1); err != nil {
		return 0, fmt.Errorf("s3 driver: setting range: %w", err)
	}

	obj, err := d.client.GetObject(context.Background(), d.bucket, d.key, opts)
	if err != nil {
		return 0, fmt.Errorf("s3 driver: GetObject s3://%s/%s: %w", d.bucket, d.key, err)
	}
	defer obj.Close()

	n, err := io.ReadFull(obj, dst)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return n, fmt.Errorf("s3 driver: reading range: %w", err)
	}
	return n, nil
}

func (d *Driver) Size() int64 {
	return d.size
}

func (d *Driver) Close() error {
	return nil
}
