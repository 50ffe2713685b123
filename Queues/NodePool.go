package Queues

import (
	"sync/atomic"
	"unsafe"

	"github.com/g-m-twostay/go-lockfree/Hazards"
)

// NodePool is a Treiber free list of queue nodes. Get goes through a hazard
// slot: a node that a dequeuer still protects cannot have been re-pushed,
// so the pop CAS never observes a recycled head with a stale link. Put is a
// plain CAS push; pushes cannot be hurt by ABA.
type NodePool[T any] struct {
	head atomic.Pointer[hnode[T]]
}

func (p *NodePool[T]) Get(s *Hazards.Slot) *hnode[T] {
	for {
		n := Hazards.Protect(s, &p.head)
		if n == nil {
			return new(hnode[T])
		}
		next := n.next.Load()
		if p.head.CompareAndSwap(n, (*hnode[T])(unsafe.Pointer(next))) {
			n.next.Store(nil)
			return n
		}
	}
}

func (p *NodePool[T]) Put(n *hnode[T]) {
	for {
		h := p.head.Load()
		var hb *nodeBase
		if h != nil {
			hb = &h.nodeBase
		}
		n.next.Store(hb)
		if p.head.CompareAndSwap(h, n) {
			return
		}
	}
}
