package Maps

import (
	"cmp"
	"sync/atomic"
	"unsafe"

	"github.com/g-m-twostay/go-lockfree"
	"github.com/g-m-twostay/go-lockfree/Hazards"
)

// SortedListMap is a lock-free map over a single linked list kept strictly
// sorted by key, after Harris and Michael. Deletion marks the low bit of
// the victim's outgoing link; every traverser helps unlink marked nodes
// before trusting a neighbour. Reclamation goes through Hazards.
type SortedListMap[K cmp.Ordered, V any] struct {
	head mnode // dummy anchor, never retired
	size atomic.Uint64
	del  Hazards.Deleter
}

func MakeSortedListMap[K cmp.Ordered, V any]() *SortedListMap[K, V] {
	return &SortedListMap[K, V]{del: entryDeleter[K, V]}
}

func (u *SortedListMap[K, V]) Size() uint {
	return uint(u.size.Load())
}

func (u *SortedListMap[K, V]) Get(k K) (V, bool) {
	ctx := Hazards.Enter()
	defer ctx.Leave()
	g := ctx.Group(2)
	defer g.Release()
	prevHp, currHp := g.Slot(0), g.Slot(1)
	prevHp.InstallDummy(unsafe.Pointer(&u.head))
	if _, found := u.searchEqual(prevHp, currHp, k); found {
		return asEntry[K, V](currHp.Get()).v, true
	}
	return *new(V), false
}

func (u *SortedListMap[K, V]) HasKey(k K) bool {
	_, found := u.Get(k)
	return found
}

// Put inserts k:v, or replaces the node carrying k. A replacement marks the
// old node and pre-links the new one in a single CAS on the old node's
// link, so no traverser ever sees the key absent. Returns the replaced
// value and whether a replacement happened.
func (u *SortedListMap[K, V]) Put(k K, v V) (old V, replaced bool) {
	n := &entry[K, V]{k: k, v: v}
	ctx := Hazards.Enter()
	defer ctx.Leave()
	g := ctx.Group(2)
	defer g.Release()
	prevHp, currHp := g.Slot(0), g.Slot(1)
	prevHp.InstallDummy(unsafe.Pointer(&u.head))
	for {
		currNext, found := u.searchEqual(prevHp, currHp, k)
		if found {
			for {
				n.next.Store(currNext)
				if u.replaceCurr(prevHp, currHp, &currNext, lockfree.MakeMarked(&n.mnode), &old) {
					return old, true
				}
				if currNext.IsMarked() {
					// Someone removed curr first; search again.
					break
				}
			}
			continue
		}
		var succ *mnode
		if !currHp.Empty() {
			succ = asNode(currHp.Get())
		}
		prevNext := lockfree.MakeMarked(succ)
		n.next.Store(prevNext)
		if asNode(prevHp.Get()).next.CompareAndSet(prevNext, lockfree.MakeMarked(&n.mnode)) {
			u.size.Add(1)
			return old, false
		}
	}
}

// Remove unlinks the node carrying k. The "replacement" is the node's own
// successor, so the same mark-then-help protocol as Put's replacement path
// applies. Returns the removed value and whether a node was removed.
func (u *SortedListMap[K, V]) Remove(k K) (old V, removed bool) {
	ctx := Hazards.Enter()
	defer ctx.Leave()
	g := ctx.Group(2)
	defer g.Release()
	prevHp, currHp := g.Slot(0), g.Slot(1)
	prevHp.InstallDummy(unsafe.Pointer(&u.head))
	for {
		currNext, found := u.searchEqual(prevHp, currHp, k)
		if !found {
			return old, false
		}
		for {
			if u.replaceCurr(prevHp, currHp, &currNext, currNext, &old) {
				u.size.Add(^uint64(0))
				return old, true
			}
			if currNext.IsMarked() {
				break
			}
		}
	}
}

// ForEach visits entries in strictly ascending key order and stops early
// when f returns false. The traversal is concurrent but not linearisable:
// a key continuously present from call start to call end is visited exactly
// once; keys inserted or removed mid-call may or may not be seen. On a
// restart forced by a marked predecessor, the last visited node is parked
// in a third hazard slot and visits are suppressed until the walk passes
// its key again.
func (u *SortedListMap[K, V]) ForEach(f func(K, V) bool) {
	ctx := Hazards.Enter()
	defer ctx.Leave()
	g := ctx.Group(3)
	defer g.Release()
	prevHp, currHp, skipHp := g.Slot(0), g.Slot(1), g.Slot(2)
	var prevNext, currNext, tmp lockfree.Marked[mnode]
retry0:
	prevHp.InstallDummy(unsafe.Pointer(&u.head))
	prevNext = asNode(prevHp.Get()).next.Load()
retry2:
	if prevNext.IsMarked() {
		if skipHp.Empty() {
			skipHp.Swap(prevHp)
		}
		goto retry0
	}
retry3:
	if prevNext.Nil() {
		return
	}
	currHp.Install(unsafe.Pointer(prevNext.Pointer()))
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
		prevNext = asNode(prevHp.Get()).next.Load()
		goto retry2
	}
	if !skipHp.Empty() && asEntry[K, V](skipHp.Get()).k < asEntry[K, V](currHp.Get()).k {
		skipHp.Clear()
	}
	if skipHp.Empty() {
		if cur := asEntry[K, V](currHp.Get()); !f(cur.k, cur.v) {
			return
		}
	}
	prevHp.Swap(currHp)
	prevNext = currNext
	goto retry3
}
