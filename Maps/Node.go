package Maps

import (
	"cmp"
	"unsafe"

	"github.com/g-m-twostay/go-lockfree"
	"github.com/g-m-twostay/go-lockfree/Hazards"
)

// mnode anchors the markable link; entry adds the immutable payload. The
// list-head dummy is a bare mnode, so link code works on mnode and payload
// code casts to entry.
type mnode struct {
	next lockfree.MarkablePtr[mnode]
}

type entry[K cmp.Ordered, V any] struct {
	mnode
	k K
	v V
}

func asEntry[K cmp.Ordered, V any](p unsafe.Pointer) *entry[K, V] {
	return (*entry[K, V])(p)
}

func asNode(p unsafe.Pointer) *mnode {
	return (*mnode)(p)
}

// entryDeleter severs the dead entry and zeroes its payload so the
// collector can reclaim key and value before the chain around them dies.
func entryDeleter[K cmp.Ordered, V any](obj, _ unsafe.Pointer) {
	n := (*entry[K, V])(obj)
	n.next.Store(lockfree.MakeMarked[mnode](nil))
	n.k = *new(K)
	n.v = *new(V)
}

// searchEqual walks the chain until prevHp rests on the last node with key
// < k and currHp on the first node with key >= k (cleared at the tail).
// currNext is curr's link as last observed. Marked nodes met on the way are
// unlinked and retired here; a marked predecessor restarts from head.
//
// prevHp must arrive holding the head dummy (via InstallDummy) or a node
// already known to sort before k.
func (u *SortedListMap[K, V]) searchEqual(prevHp, currHp *Hazards.Slot, k K) (currNext lockfree.Marked[mnode], found bool) {
	var tmp, prevNext lockfree.Marked[mnode]
retry1:
	prevNext = asNode(prevHp.Get()).next.Load()
retry2:
	if prevNext.IsMarked() {
		prevHp.InstallDummy(unsafe.Pointer(&u.head))
		goto retry1
	}
retry3:
	if prevNext.Nil() {
		currHp.Clear()
		return currNext, false
	}
	currHp.Install(unsafe.Pointer(prevNext.Pointer()))
	// Re-read for the hazard publication.
	tmp = asNode(prevHp.Get()).next.Load()
	if tmp != prevNext {
		prevNext = tmp
		goto retry2
	}
	currNext = asNode(currHp.Get()).next.Load()
	if currNext.IsMarked() {
		if asNode(prevHp.Get()).next.CompareAndSet(prevNext, currNext.AsUnmarked()) {
			currHp.Retire(u.del, nil)
			prevNext = currNext.AsUnmarked()
			goto retry3
		}
		goto retry1
	}
	if asEntry[K, V](currHp.Get()).k < k {
		prevHp.Swap(currHp)
		prevNext = currNext
		goto retry3
	}
	found = asEntry[K, V](currHp.Get()).k == k
	return currNext, found
}

// replaceCurr removes curr and splices newNext into its place: marking
// curr's link and pre-linking the replacement are one CAS, then a helper
// CAS swings prev past curr. The prev CAS may lose to another helper; curr
// is retired only by the winner. On failure currNext is refreshed from
// curr's link and false is returned.
func (u *SortedListMap[K, V]) replaceCurr(prevHp, currHp *Hazards.Slot, currNext *lockfree.Marked[mnode], newNext lockfree.Marked[mnode], out *V) bool {
	curr := asEntry[K, V](currHp.Get())
	if curr.next.CompareAndSet(*currNext, newNext.AsMarked()) {
		retire := asNode(prevHp.Get()).next.CompareAndSet(lockfree.MakeMarked(&curr.mnode), newNext)
		if out != nil {
			*out = curr.v
		}
		if retire {
			currHp.Retire(u.del, nil)
		}
		return true
	}
	*currNext = curr.next.Load()
	return false
}
