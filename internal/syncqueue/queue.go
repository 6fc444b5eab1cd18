package syncqueue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"daygoal/internal/gateway"
)

var ErrStopped = errors.New("syncqueue: queue stopped")

// Job is one outbound unit of work. Jobs live only for the process lifetime;
// the local store stays the durable source of truth.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Failure reports a unit that did not reach the remote authority. The local
// store is never rolled back because of one.
type Failure struct {
	Job  string
	Kind gateway.Kind
	Err  error
}

// Queue runs enqueued jobs strictly in enqueue order with at most one in
// flight. A slow job blocks everything behind it but never reorders; a
// failed job never halts the queue. Recoverable outcomes retry in place with
// exponential backoff, so retries cannot overtake later mutations.
type Queue struct {
	mu      sync.Mutex
	pending []Job
	out     chan Failure
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64

	maxAttempts int
	baseBackoff time.Duration
}

func New(bufferSize int) *Queue {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Queue{
		pending:     make([]Job, 0),
		out:         make(chan Failure, bufferSize),
		wakeup:      make(chan struct{}, 1),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		maxAttempts: 4,
		baseBackoff: 500 * time.Millisecond,
	}
}

// SetRetryPolicy overrides the retry bounds for recoverable outcomes. Must
// be called before Start.
func (q *Queue) SetRetryPolicy(maxAttempts int, baseBackoff time.Duration) {
	if maxAttempts > 0 {
		q.maxAttempts = maxAttempts
	}
	if baseBackoff > 0 {
		q.baseBackoff = baseBackoff
	}
}

// Failures is the single error-notification channel for every non-success
// outcome. The consumer decides whether to log, toast or ignore.
func (q *Queue) Failures() <-chan Failure {
	return q.out
}

func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.started = true
	go q.loop()
}

func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started || q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	close(q.stopCh)
	q.mu.Unlock()
	<-q.doneCh
}

// Enqueue appends a job without blocking the producer.
func (q *Queue) Enqueue(job Job) error {
	if job.Run == nil {
		return errors.New("syncqueue: job has no work")
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return ErrStopped
	}
	q.pending = append(q.pending, job)
	q.signalWakeup()
	return nil
}

// Dropped counts failures discarded because the consumer lagged behind.
func (q *Queue) Dropped() uint64 {
	return atomic.LoadUint64(&q.dropped)
}

func (q *Queue) loop() {
	defer close(q.doneCh)
	defer close(q.out)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-q.stopCh
		cancel()
	}()

	for {
		job, ok := q.next()
		if !ok {
			select {
			case <-q.wakeup:
				continue
			case <-q.stopCh:
				return
			}
		}
		q.runJob(ctx, job)

		select {
		case <-q.stopCh:
			return
		default:
		}
	}
}

// runJob drives one unit to a terminal outcome. Recoverable failures retry
// in place; aborts are dropped without compensation; everything else is
// reported once.
func (q *Queue) runJob(ctx context.Context, job Job) {
	for attempt := 1; ; attempt++ {
		err := job.Run(ctx)
		if err == nil {
			return
		}
		kind := gateway.KindOf(err)
		switch kind {
		case gateway.KindAbort:
			return
		case gateway.KindRecoverable:
			if attempt < q.maxAttempts && q.sleep(q.baseBackoff<<(attempt-1)) {
				continue
			}
		}
		q.report(Failure{Job: job.Name, Kind: kind, Err: err})
		return
	}
}

func (q *Queue) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-q.stopCh:
		return false
	}
}

func (q *Queue) report(f Failure) {
	select {
	case q.out <- f:
	default:
		atomic.AddUint64(&q.dropped, 1)
	}
}

func (q *Queue) next() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return Job{}, false
	}
	job := q.pending[0]
	q.pending = q.pending[1:]
	return job, true
}

func (q *Queue) signalWakeup() {
	select {
	case q.wakeup <- struct{}{}:
	default:
	}
}
