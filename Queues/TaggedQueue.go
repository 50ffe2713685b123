package Queues

import (
	"github.com/g-m-twostay/go-lockfree"
)

type tnode[T any] struct {
	next lockfree.TaggedPtr[tnode[T]]
	v    T
}

// TaggedQueue is a Michael–Scott FIFO whose head, tail and links are tagged
// pointers. Dequeued nodes go onto an internal Treiber pool and are reused,
// never released, so TryPop copies the value out before moving head; T must
// be plain data whose shallow copy is race-benign (integers, small
// pointer-free structs). HazardQueue lifts that restriction.
type TaggedQueue[T any] struct {
	head, tail, pool lockfree.TaggedPtr[tnode[T]]
}

func MakeTaggedQueue[T any]() *TaggedQueue[T] {
	t := new(TaggedQueue[T])
	dummy := new(tnode[T])
	dummy.next.Store(nil, 0)
	t.head.Store(dummy, 0)
	t.tail.Store(dummy, 0)
	t.pool.Store(nil, 0)
	return t
}

func (c *TaggedQueue[T]) newNode(v T) *tnode[T] {
	for {
		poolPtr, poolTag := c.pool.Load()
		if poolPtr == nil {
			n := new(tnode[T])
			n.next.Store(nil, 0)
			n.v = v
			return n
		}
		nextPtr := poolPtr.next.LoadPtr()
		// tag+1 on pop is what defeats ABA against concurrent pops.
		if c.pool.CompareAndSet(poolPtr, poolTag, nextPtr, poolTag+1) {
			poolPtr.next.StorePtr(nil)
			poolPtr.v = v
			return poolPtr
		}
	}
}

func (c *TaggedQueue[T]) retireNode(n *tnode[T]) {
	// Other threads may still read the node, so it is parked in the pool
	// instead of being dropped.
	for {
		poolPtr, poolTag := c.pool.Load()
		n.next.StorePtr(poolPtr)
		if c.pool.CompareAndSet(poolPtr, poolTag, n, poolTag) {
			return
		}
	}
}

func (c *TaggedQueue[T]) Push(item T) {
	n := c.newNode(item)
	for {
		tailPtr, tailTag := c.tail.Load()
		nextPtr, nextTag := tailPtr.next.Load()
		if tailTag != c.tail.LoadTag() {
			continue
		}
		if nextPtr != nil {
			// tail lags; help it forward before retrying.
			c.tail.CompareAndSet(tailPtr, tailTag, nextPtr, tailTag+1)
			continue
		}
		if tailPtr.next.CompareAndSet(nil, nextTag, n, nextTag+1) {
			c.tail.CompareAndSet(tailPtr, tailTag, n, tailTag+1)
			return
		}
	}
}

func (c *TaggedQueue[T]) TryPop() (T, bool) {
	for {
		headPtr, headTag := c.head.Load()
		tailPtr, tailTag := c.tail.Load()
		nextPtr := headPtr.next.LoadPtr()
		if headTag != c.head.LoadTag() {
			continue
		}
		if nextPtr == nil {
			return *new(T), false
		}
		if headPtr == tailPtr {
			c.tail.CompareAndSet(tailPtr, tailTag, nextPtr, tailTag+1)
			continue
		}
		// The copy must precede the head CAS: once head moves, another
		// thread may pop the old head from the pool and overwrite v.
		tmp := nextPtr.v
		if c.head.CompareAndSet(headPtr, headTag, nextPtr, headTag+1) {
			c.retireNode(headPtr)
			return tmp, true
		}
	}
}

func (c *TaggedQueue[T]) Pop() (T, error) {
	if v, ok := c.TryPop(); ok {
		return v, nil
	}
	return *new(T), &EmptyQueueError{}
}

func (c *TaggedQueue[T]) Empty() bool {
	return c.head.LoadPtr().next.LoadPtr() == nil
}
