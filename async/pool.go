package async

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// ReadRequest is one unit of work submitted to a Pool: call Do and report
// its result on the paired Future.
type ReadRequest struct {
	Do     func() ([]byte, error)
	Future *Future
}

// Pool is a fixed-size group of worker goroutines draining a shared request
// queue, modeling the original engine's reader thread pool (one
// process-wide pool shared by every Context, sized by the caller's
// requested thread count).
type Pool struct {
	requests chan ReadRequest
	wg       sync.WaitGroup
	log      *logrus.Entry

	closeOnce sync.Once
}

// NewPool starts numWorkers goroutines consuming from a queue of depth
// queueDepth. numWorkers <= 0 disables the pool: Submit runs work
// synchronously on the caller's goroutine instead, matching the original
// engine's "0 threads" synchronous mode.
func NewPool(numWorkers, queueDepth int, log *logrus.Entry) *Pool {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if queueDepth < 1 {
		queueDepth = 1
	}
	if numWorkers <= 0 {
		// An unbuffered queue with no receiver makes every SubmitAsync
		// take its inline fallback.
		queueDepth = 0
	}
	p := &Pool{
		requests: make(chan ReadRequest, queueDepth),
		log:      log,
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for req := range p.requests {
		data, err := safeDo(req.Do)
		req.Future.Finish(data, err)
	}
}

func safeDo(do func() ([]byte, error)) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("async: worker panic: %v", r)
		}
	}()
	return do()
}

// SubmitAsync enqueues do for execution by a worker and returns immediately
// with a Future that will hold its result (the original engine's "readp"
// path). If the pool has no workers, do runs synchronously and the returned
// Future is already complete.
func (p *Pool) SubmitAsync(do func() ([]byte, error)) *Future {
	f := NewFuture()
	select {
	case p.requests <- ReadRequest{Do: do, Future: f}:
	default:
		// No worker available to accept without blocking the caller's
		// queue slot; fall back to running inline rather than deadlock
		// a zero-worker pool or a momentarily full queue.
		data, err := safeDo(do)
		f.Finish(data, err)
	}
	return f
}

// Submit runs do and blocks until it completes, returning its result
// directly (the original engine's synchronous "read" path built atop the
// same pool).
func (p *Pool) Submit(do func() ([]byte, error)) ([]byte, error) {
	f := p.SubmitAsync(do)
	f.Wait(0)
	return f.Result()
}

// Close stops accepting new work and waits for in-flight requests to
// finish. Close is idempotent.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.requests)
		p.wg.Wait()
	})
}
