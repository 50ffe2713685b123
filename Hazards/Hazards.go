// Package Hazards is a hazard-pointer safe-memory-reclamation layer for the
// lock-free containers in this module. A goroutine claims a Context, reserves
// a Group of slots per operation, publishes the pointers it is about to
// dereference, and retires unlinked objects through the Context; retired
// objects are reclaimed only once a scan of every record's slots proves no
// claimant still advertises their address.
package Hazards

import (
	"sync/atomic"
	"unsafe"
)

// Context is a claimed hazard record. A Context belongs to one goroutine at
// a time; claim with Enter, release with Leave.
type Context struct {
	rec  *record
	used int
}

// Enter claims a record, recycling a free one from the global list or
// allocating and publishing a fresh one.
func Enter() *Context {
	return &Context{rec: allocRecord()}
}

// Leave clears every slot, makes one reclamation pass over the retired
// residue, and frees the record for the next claimant. Items that are still
// protected stay parked in the record and are adopted by whoever claims it
// next.
func (c *Context) Leave() {
	for i := range c.rec.hp {
		atomic.StorePointer(&c.rec.hp[i], nil)
	}
	c.used = 0
	if len(c.rec.retired) > 0 {
		c.rec.flush()
	}
	c.rec.active.Store(0)
	c.rec = nil
}

// Retire hands an object that is no longer reachable from any shared
// location to reclamation.
func (c *Context) Retire(obj unsafe.Pointer, del Deleter, allocator unsafe.Pointer) {
	c.rec.addRetired(obj, allocator, del)
}

// Group reserves n of the record's slots for the duration of one operation.
// Groups release in LIFO order.
func (c *Context) Group(n int) *Group {
	if c.used+n > PtrSize {
		panic("Hazards: record slots exhausted")
	}
	g := &Group{c: c, base: c.used, n: n}
	for i := 0; i < n; i++ {
		g.slots[i] = Slot{rec: c.rec, word: &c.rec.hp[c.used+i]}
	}
	c.used += n
	return g
}

type Group struct {
	slots [PtrSize]Slot
	c     *Context
	base  int
	n     int
}

func (g *Group) Slot(i int) *Slot {
	if i >= g.n {
		panic("Hazards: slot index outside group")
	}
	return &g.slots[i]
}

// Release clears the group's slots and returns them to the context.
func (g *Group) Release() {
	for i := 0; i < g.n; i++ {
		g.slots[i].Clear()
	}
	g.c.used = g.base
}

// Slot is a single hazard pointer: one slot in the claimed record plus the
// local view of the protected address.
type Slot struct {
	rec  *record
	word *unsafe.Pointer
	ptr  unsafe.Pointer
}

// Install publishes p in the slot. The caller must re-check that p is still
// reachable from its source after Install returns; Protect does both.
func (s *Slot) Install(p unsafe.Pointer) {
	atomic.StorePointer(s.word, p)
	s.ptr = p
}

// InstallDummy records p locally without occupying the slot. Only for
// anchors that are never retired, such as a list-head dummy.
func (s *Slot) InstallDummy(p unsafe.Pointer) {
	atomic.StorePointer(s.word, nil)
	s.ptr = p
}

func (s *Slot) Clear() {
	atomic.StorePointer(s.word, nil)
	s.ptr = nil
}

// Get returns the locally cached protected pointer.
func (s *Slot) Get() unsafe.Pointer {
	return s.ptr
}

func (s *Slot) Empty() bool {
	return s.ptr == nil
}

// Swap exchanges the protected pointers of two slots from the same group
// without ever leaving either unprotected.
func (s *Slot) Swap(o *Slot) {
	s.word, o.word = o.word, s.word
	s.ptr, o.ptr = o.ptr, s.ptr
}

// Retire clears the slot and hands its object to reclamation. The object
// must already be unreachable from the data structure.
func (s *Slot) Retire(del Deleter, allocator unsafe.Pointer) {
	obj := s.ptr
	s.Clear()
	s.rec.addRetired(obj, allocator, del)
}

// Protect is the safe-read loop: publish the pointer read from src, re-read
// src, and retry until the publication provably happened before any scan
// that could reclaim the pointee.
func Protect[T any](s *Slot, src *atomic.Pointer[T]) *T {
	p1 := src.Load()
	for {
		s.Install(unsafe.Pointer(p1))
		p2 := src.Load()
		if p1 == p2 {
			return p2
		}
		p1 = p2
	}
}
