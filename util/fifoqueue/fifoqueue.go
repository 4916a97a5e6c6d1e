package fifoqueue

import (
	"sync"

	"github.com/gammazero/deque"
)

// FIFOQueue implements variable size synchronized FIFO queue
type FIFOQueue[T any] struct {
	d       *deque.Deque[T]
	mutex   sync.Mutex
	cond    *sync.Cond
	closing bool
	closed  bool
}

func New[T any]() *FIFOQueue[T] {
	ret := &FIFOQueue[T]{
		d: new(deque.Deque[T]),
	}
	ret.cond = sync.NewCond(&ret.mutex)
	return ret
}

// Write pushes element. Panics if the queue is closed
func (q *FIFOQueue[T]) Write(elem T) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.closing || q.closed {
		panic("attempt to write to the closed FIFOQueue")
	}
	q.d.PushBack(elem)
	q.cond.Signal()
}

// CloseNow closes FIFOQueue immediately. The elements in the buffer are lost
func (q *FIFOQueue[T]) CloseNow() {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// Close closes FIFOQueue deferred until all elements are read
func (q *FIFOQueue[T]) Close() {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	q.closing = true
	q.cond.Broadcast()
}

// read blocks until an element is available. Returns false when the queue is closed
func (q *FIFOQueue[T]) read() (T, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	for q.d.Len() == 0 && !q.closing && !q.closed {
		q.cond.Wait()
	}
	var nul T
	if q.closed || q.d.Len() == 0 {
		return nul, false
	}
	return q.d.PopFront(), true
}

// Consume reads all elements of the queue until it is closed
func (q *FIFOQueue[T]) Consume(fun func(elem T)) {
	for {
		e, ok := q.read()
		if !ok {
			break
		}
		fun(e)
	}
}

// Len returns number of elements in the queue. Non-deterministic
func (q *FIFOQueue[T]) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	return q.d.Len()
}
