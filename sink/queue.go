package sink

import (
	"sync"
	"sync/atomic"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
)

// Envelope is a queued operation with its position in the stream.
type Envelope struct {
	Seq uint64
	Op  Operation
}

// Queue is the FIFO channel of operations from the worker to the owner.
//
// Next to the queue proper it holds the in-flight counter: the number of
// operations which have been enqueued but not yet applied. The counter is
// incremented before an operation becomes visible to the owner and
// decremented by the owner after application, therefore it can never be
// observed as zero while an operation is pending.
type Queue struct {
	mx       sync.Mutex
	q        *linkedlistqueue.Queue
	seq      uint64
	inflight atomic.Int64
	wake     chan struct{}
}

// NewQueue creates an empty operation queue.
func NewQueue() *Queue {
	return &Queue{
		q:    linkedlistqueue.New(),
		wake: make(chan struct{}, 1),
	}
}

// Enqueue appends an operation. Safe to call from any goroutine.
func (q *Queue) Enqueue(op Operation) {
	q.inflight.Add(1)
	q.mx.Lock()
	q.seq++
	q.q.Enqueue(Envelope{Seq: q.seq, Op: op})
	q.mx.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Dequeue removes the oldest operation, if any.
func (q *Queue) Dequeue() (Envelope, bool) {
	q.mx.Lock()
	defer q.mx.Unlock()
	v, ok := q.q.Dequeue()
	if !ok {
		return Envelope{}, false
	}
	return v.(Envelope), true
}

// Done marks one dequeued operation as applied. It returns the number of
// operations still in flight.
func (q *Queue) Done() int64 {
	n := q.inflight.Add(-1)
	assertThat(n >= 0, "in-flight counter dropped below zero")
	return n
}

// InFlight is the number of operations enqueued but not yet marked done.
func (q *Queue) InFlight() int64 {
	return q.inflight.Load()
}

// Len is the number of operations waiting in the queue.
func (q *Queue) Len() int {
	q.mx.Lock()
	defer q.mx.Unlock()
	return q.q.Size()
}

// Empty is true if no operation is waiting.
func (q *Queue) Empty() bool {
	return q.Len() == 0
}

// Wake signals that operations have been enqueued since the last receive.
// Signals coalesce.
func (q *Queue) Wake() <-chan struct{} {
	return q.wake
}

// Drop discards all waiting operations and marks them done. It returns the
// number of operations dropped.
func (q *Queue) Drop() int {
	q.mx.Lock()
	n := q.q.Size()
	q.q.Clear()
	q.mx.Unlock()
	q.inflight.Add(int64(-n))
	tracer().Debugf("dropped %d pending operations", n)
	return n
}
