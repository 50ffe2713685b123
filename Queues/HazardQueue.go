package Queues

import (
	"sync/atomic"
	"unsafe"

	"github.com/g-m-twostay/go-lockfree/Hazards"
)

type nodeBase struct {
	next atomic.Pointer[nodeBase]
}

// queueBase runs the Michael–Scott protocol over untyped nodes; the generic
// wrapper owns value storage and reclamation.
type queueBase struct {
	head atomic.Pointer[nodeBase]
	tail atomic.Pointer[nodeBase]
}

func (b *queueBase) push(tailHp *Hazards.Slot, n *nodeBase) {
	for {
		t := Hazards.Protect(tailHp, &b.tail)
		next := t.next.Load()
		if next != nil {
			b.tail.CompareAndSwap(t, next)
			continue
		}
		if t.next.CompareAndSwap(nil, n) {
			b.tail.CompareAndSwap(t, n)
			return
		}
	}
}

// pop returns with headHp on the removed dummy and nextHp on its successor,
// the node carrying the popped value. The successor is published in nextHp
// before the head CAS, so it stays readable after head moves on.
func (b *queueBase) pop(headHp, nextHp *Hazards.Slot) bool {
	for {
		h := Hazards.Protect(headHp, &b.head)
		next := h.next.Load()
		if next == nil {
			return false
		}
		t := b.tail.Load()
		if h == t {
			b.tail.CompareAndSwap(t, next)
		}
		nextHp.Install(unsafe.Pointer(next))
		if b.head.CompareAndSwap(h, next) {
			return true
		}
	}
}

type hnode[T any] struct {
	nodeBase
	v T
}

// heapNodeDeleter severs the dead node's link and zeroes its value so the
// collector can reclaim the payload without waiting for queue neighbours to
// die.
func heapNodeDeleter[T any](obj, _ unsafe.Pointer) {
	n := (*hnode[T])(obj)
	n.next.Store(nil)
	n.v = *new(T)
}

func poolNodeDeleter[T any](obj, allocator unsafe.Pointer) {
	n := (*hnode[T])(obj)
	n.v = *new(T)
	(*NodePool[T])(allocator).Put(n)
}

// HazardQueue is a Michael–Scott FIFO whose head, tail and links are plain
// atomic pointers; recycled-pointer ABA is prevented by hazard protection
// instead of tags. Values are read out of protected nodes, so any T works.
type HazardQueue[T any] struct {
	base queueBase
	pool *NodePool[T] // nil for the heap variant
	del  Hazards.Deleter
}

func MakeHazardQueue[T any]() *HazardQueue[T] {
	return makeHazardQueue[T](nil, heapNodeDeleter[T])
}

// MakeHazardQueuePooled recycles dequeued nodes through a lock-free free
// list instead of handing them back to the heap.
func MakeHazardQueuePooled[T any]() *HazardQueue[T] {
	return makeHazardQueue[T](new(NodePool[T]), poolNodeDeleter[T])
}

func makeHazardQueue[T any](pool *NodePool[T], del Hazards.Deleter) *HazardQueue[T] {
	q := &HazardQueue[T]{pool: pool, del: del}
	dummy := new(hnode[T])
	q.base.head.Store(&dummy.nodeBase)
	q.base.tail.Store(&dummy.nodeBase)
	return q
}

func (c *HazardQueue[T]) Push(item T) {
	ctx := Hazards.Enter()
	defer ctx.Leave()
	g := ctx.Group(1)
	defer g.Release()
	var n *hnode[T]
	if c.pool != nil {
		n = c.pool.Get(g.Slot(0))
	} else {
		n = new(hnode[T])
	}
	n.v = item
	c.base.push(g.Slot(0), &n.nodeBase)
}

func (c *HazardQueue[T]) TryPop() (T, bool) {
	ctx := Hazards.Enter()
	defer ctx.Leave()
	g := ctx.Group(2)
	defer g.Release()
	headHp, nextHp := g.Slot(0), g.Slot(1)
	if !c.base.pop(headHp, nextHp) {
		return *new(T), false
	}
	n := (*hnode[T])(nextHp.Get())
	item := n.v
	n.v = *new(T) // n is the new dummy; its payload is dead.
	nextHp.Clear()
	headHp.Retire(c.del, unsafe.Pointer(c.pool))
	return item, true
}

func (c *HazardQueue[T]) Pop() (T, error) {
	if v, ok := c.TryPop(); ok {
		return v, nil
	}
	return *new(T), &EmptyQueueError{}
}

func (c *HazardQueue[T]) Empty() bool {
	return c.base.head.Load().next.Load() == nil
}
