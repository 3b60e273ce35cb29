package async

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolSubmitSynchronousZeroWorkers(t *testing.T) {
	p := NewPool(0, 1, nil)
	defer p.Close()

	data, err := p.Submit(func() ([]byte, error) { return []byte("inline"), nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "inline" {
		t.Fatalf("unexpected data: %q", data)
	}
}

func TestPoolSubmitAsyncWorkersRun(t *testing.T) {
	p := NewPool(4, 8, nil)
	defer p.Close()

	var futures []*Future
	for i := 0; i < 16; i++ {
		futures = append(futures, p.SubmitAsync(func() ([]byte, error) {
			return []byte("x"), nil
		}))
	}
	for i, f := range futures {
		if got := f.Wait(time.Second); got != Complete {
			t.Fatalf("future %d: expected Complete, got %v", i, got)
		}
	}
}

func TestPoolWorkerErrorFinishesInvalid(t *testing.T) {
	p := NewPool(1, 1, nil)
	defer p.Close()

	wantErr := errors.New("boom")
	f := p.SubmitAsync(func() ([]byte, error) { return nil, wantErr })
	if got := f.Wait(time.Second); got != Invalid {
		t.Fatalf("expected Invalid, got %v", got)
	}
	if _, err := f.Result(); err != wantErr {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
}

func TestPoolWorkerPanicFinishesInvalid(t *testing.T) {
	p := NewPool(1, 1, nil)
	defer p.Close()

	f := p.SubmitAsync(func() ([]byte, error) { panic("worker exploded") })
	if got := f.Wait(time.Second); got != Invalid {
		t.Fatalf("expected Invalid after panic, got %v", got)
	}
	if _, err := f.Result(); err == nil {
		t.Fatal("expected non-nil error after worker panic")
	}
}

func TestPoolCloseIsIdempotentAndDrains(t *testing.T) {
	p := NewPool(2, 4, nil)

	var completed int32
	var futures []*Future
	for i := 0; i < 4; i++ {
		futures = append(futures, p.SubmitAsync(func() ([]byte, error) {
			atomic.AddInt32(&completed, 1)
			return []byte("done"), nil
		}))
	}
	for _, f := range futures {
		f.Wait(time.Second)
	}

	p.Close()
	p.Close() // idempotent, must not panic or double-close the channel

	if got := atomic.LoadInt32(&completed); got != 4 {
		t.Fatalf("expected all 4 submissions to run, got %d", got)
	}
}
