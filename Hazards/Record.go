package Hazards

import (
	"cmp"
	"slices"
	"sync/atomic"
	"unsafe"
)

const (
	// PtrSize is the number of hazard slots in each record. Map traversal
	// is the widest user at 3.
	PtrSize = 3
	// FlushSize is the retired-list length that triggers a scan.
	FlushSize = 16
	// CacheLineSize pads records so two records never share a line.
	CacheLineSize = 64
)

// Deleter reclaims one retired object. allocator is the pool the object
// should return to, nil for plain heap objects. Deleters run only once a
// scan proves the object's address is in no hazard slot.
type Deleter func(obj, allocator unsafe.Pointer)

type retiredItem struct {
	obj       unsafe.Pointer
	allocator unsafe.Pointer
	del       Deleter
}

// reclaim runs the deleter. A panicking deleter forfeits its object; the
// rest of the retired list is untouched.
func (it *retiredItem) reclaim() {
	defer func() { _ = recover() }()
	it.del(it.obj, it.allocator)
}

// record is one claimant's hazard slots plus its retired residue. Records
// are pushed onto a global list once and never removed from it; ownership
// cycles through active (0=free, 1=claimed). Retired items left behind at
// release time are adopted by the next claimant.
type record struct {
	next    *record
	hp      [PtrSize]unsafe.Pointer // accessed atomically; non-nil entries are protected
	retired []retiredItem           // owned by the claimant
	scanned []unsafe.Pointer        // scan scratch, owned by the claimant
	active  atomic.Uint32
	_       [CacheLineSize]byte
}

var recordHead atomic.Pointer[record]

func allocRecord() *record {
	for r := recordHead.Load(); r != nil; r = r.next {
		if r.active.Load() == 0 && r.active.CompareAndSwap(0, 1) {
			return r
		}
	}
	r := &record{retired: make([]retiredItem, 0, FlushSize)}
	r.active.Store(1)
	for {
		head := recordHead.Load()
		r.next = head
		if recordHead.CompareAndSwap(head, r) {
			return r
		}
	}
}

func (r *record) addRetired(obj, allocator unsafe.Pointer, del Deleter) {
	if obj == nil {
		return
	}
	r.retired = append(r.retired, retiredItem{obj, allocator, del})
	if len(r.retired) >= FlushSize {
		r.flush()
	}
}

func ptrCmp(a, b unsafe.Pointer) int {
	return cmp.Compare(uintptr(a), uintptr(b))
}

// flush collects every installed hazard slot from every record, then
// reclaims each retired item whose address is not in the collected set.
// Items still protected stay retired for a later pass. Go's atomic loads
// and stores are sequentially consistent, which gives the store/scan
// ordering the protocol needs without explicit fences.
func (r *record) flush() {
	scanned := r.scanned[:0]
	for rec := recordHead.Load(); rec != nil; rec = rec.next {
		for i := range rec.hp {
			if p := atomic.LoadPointer(&rec.hp[i]); p != nil {
				scanned = append(scanned, p)
			}
		}
	}
	if len(scanned) == 0 {
		r.scanned = scanned
		for i := range r.retired {
			r.retired[i].reclaim()
		}
		r.retired = r.retired[:0]
		return
	}
	slices.SortFunc(scanned, ptrCmp)
	scanned = slices.Compact(scanned)
	r.scanned = scanned
	kept := r.retired[:0]
	for i := range r.retired {
		if _, hit := slices.BinarySearchFunc(scanned, r.retired[i].obj, ptrCmp); hit {
			kept = append(kept, r.retired[i])
		} else {
			r.retired[i].reclaim()
		}
	}
	clear(r.retired[len(kept):])
	r.retired = kept
}

// residue reports the total number of retired items parked across all
// records, claimed or free.
func residue() int {
	t := 0
	for rec := recordHead.Load(); rec != nil; rec = rec.next {
		t += len(rec.retired)
	}
	return t
}

func records() int {
	n := 0
	for rec := recordHead.Load(); rec != nil; rec = rec.next {
		n++
	}
	return n
}
